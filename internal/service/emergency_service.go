package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/spatial"
)

// EmergencyService serves the static Tunisian emergency directory and
// locates the nearest hospital to a set of coordinates.
type EmergencyService struct{}

func NewEmergencyService() *EmergencyService {
	return &EmergencyService{}
}

var emergencyNumbers = map[string]models.EmergencyNumber{
	"police":           {Number: "197", Name: "Police"},
	"ambulance":        {Number: "190", Name: "SAMU (Emergency Medical)"},
	"fire":             {Number: "198", Name: "Fire Department"},
	"national_guard":   {Number: "193", Name: "National Guard"},
	"traffic_police":   {Number: "71 341 141", Name: "Traffic Police"},
	"civil_protection": {Number: "71 560 006", Name: "Civil Protection"},
}

var hospitals = []models.Hospital{
	{Name: "Hôpital Charles Nicolle", Address: "Boulevard du 9 Avril 1938, Tunis", Phone: "71 578 000", Type: "Public", Emergency: true, Governorate: "Tunis", Lat: 36.8003, Lng: 10.1658},
	{Name: "Hôpital La Rabta", Address: "Jebel Lakhdar, Tunis", Phone: "71 578 788", Type: "Public", Emergency: true, Governorate: "Tunis", Lat: 36.8089, Lng: 10.1547},
	{Name: "Clinique El Manar", Address: "El Manar, Tunis", Phone: "71 888 000", Type: "Private", Emergency: true, Governorate: "Tunis", Lat: 36.8425, Lng: 10.1506},
	{Name: "Clinique Les Berges du Lac", Address: "Les Berges du Lac, Tunis", Phone: "71 961 900", Type: "Private", Emergency: true, Governorate: "Tunis", Lat: 36.8344, Lng: 10.2306},
	{Name: "Hôpital Militaire", Address: "Montfleury, Tunis", Phone: "71 391 133", Type: "Military", Emergency: true, Governorate: "Tunis", Lat: 36.7933, Lng: 10.1797},
	{Name: "Hôpital Habib Bourguiba", Address: "Route El Ain, Sfax", Phone: "74 241 511", Type: "Public", Emergency: true, Governorate: "Sfax", Lat: 34.7456, Lng: 10.7617},
	{Name: "Hôpital Hédi Chaker", Address: "Route de Tunis, Sfax", Phone: "74 242 411", Type: "Public", Emergency: true, Governorate: "Sfax", Lat: 34.7589, Lng: 10.7722},
	{Name: "Clinique El Yosr", Address: "Route de Gabes, Sfax", Phone: "74 276 444", Type: "Private", Emergency: true, Governorate: "Sfax", Lat: 34.7234, Lng: 10.7689},
	{Name: "Hôpital Farhat Hached", Address: "Avenue Ibn El Jazzar, Sousse", Phone: "73 221 411", Type: "Public", Emergency: true, Governorate: "Sousse", Lat: 35.8256, Lng: 10.6089},
	{Name: "Hôpital Sahloul", Address: "Sahloul, Sousse", Phone: "73 369 000", Type: "Public", Emergency: true, Governorate: "Sousse", Lat: 35.8567, Lng: 10.5953},
	{Name: "Clinique Les Oliviers", Address: "Boulevard 14 Janvier, Sousse", Phone: "73 242 700", Type: "Private", Emergency: true, Governorate: "Sousse", Lat: 35.8289, Lng: 10.6134},
	{Name: "Hôpital Régional de Bizerte", Address: "Route de Tunis, Bizerte", Phone: "72 431 522", Type: "Public", Emergency: true, Governorate: "Bizerte", Lat: 37.2744, Lng: 9.8639},
	{Name: "Hôpital Habib Bougatfa", Address: "Bizerte", Phone: "72 590 000", Type: "Public", Emergency: true, Governorate: "Bizerte", Lat: 37.2678, Lng: 9.8767},
	{Name: "Hôpital Régional de Gabès", Address: "Gabès Centre", Phone: "75 270 400", Type: "Public", Emergency: true, Governorate: "Gabès", Lat: 33.8886, Lng: 10.0975},
	{Name: "Hôpital Ibn El Jazzar", Address: "Kairouan", Phone: "77 227 411", Type: "Public", Emergency: true, Governorate: "Kairouan", Lat: 35.6781, Lng: 10.0963},
	{Name: "Hôpital Mohamed Taher Maamouri", Address: "Nabeul", Phone: "72 285 633", Type: "Public", Emergency: true, Governorate: "Nabeul", Lat: 36.4561, Lng: 10.7376},
	{Name: "Hôpital de Hammamet", Address: "Hammamet", Phone: "72 280 572", Type: "Public", Emergency: true, Governorate: "Nabeul", Lat: 36.4008, Lng: 10.6167},
	{Name: "Hôpital Fattouma Bourguiba", Address: "Monastir", Phone: "73 461 144", Type: "Public", Emergency: true, Governorate: "Monastir", Lat: 35.7643, Lng: 10.8113},
}

var policeStations = []models.PoliceStation{
	{Name: "Central Police Station", Address: "Avenue Habib Bourguiba", Phone: "71 341 141", Governorate: "Tunis"},
	{Name: "Bab Bhar Police Station", Address: "Place de Barcelone", Phone: "71 256 633", Governorate: "Tunis"},
	{Name: "El Menzah Police Station", Address: "El Menzah 6", Phone: "71 232 199", Governorate: "Tunis"},
	{Name: "Central Police Station", Address: "Centre Ville", Phone: "74 211 100", Governorate: "Sfax"},
	{Name: "Central Police Station", Address: "Centre Ville", Phone: "73 225 566", Governorate: "Sousse"},
}

var towServices = []models.TowService{
	{Name: "SOS Dépannage Tunisie", Phone: "71 862 862", Coverage: "National", Available24h: true},
	{Name: "Touring Club de Tunisie (TCT)", Phone: "71 323 152", Coverage: "National", Available24h: true},
	{Name: "Auto Assistance", Phone: "71 780 780", Coverage: "Greater Tunis", Available24h: true},
	{Name: "Dépannage Express Sfax", Phone: "74 400 400", Coverage: "Sfax Region", Available24h: true},
	{Name: "SOS Auto Sousse", Phone: "73 300 300", Coverage: "Sahel Region", Available24h: true},
}

// Hospitals lists hospitals, optionally restricted to one governorate.
func (s *EmergencyService) Hospitals(governorate string) []models.Hospital {
	if governorate == "" {
		out := make([]models.Hospital, len(hospitals))
		copy(out, hospitals)
		return out
	}
	out := []models.Hospital{}
	for _, h := range hospitals {
		if strings.EqualFold(h.Governorate, governorate) {
			out = append(out, h)
		}
	}
	return out
}

// PoliceStations lists stations, optionally restricted to one governorate.
func (s *EmergencyService) PoliceStations(governorate string) []models.PoliceStation {
	if governorate == "" {
		out := make([]models.PoliceStation, len(policeStations))
		copy(out, policeStations)
		return out
	}
	out := []models.PoliceStation{}
	for _, p := range policeStations {
		if strings.EqualFold(p.Governorate, governorate) {
			out = append(out, p)
		}
	}
	return out
}

// TowServices lists the roadside assistance providers.
func (s *EmergencyService) TowServices() []models.TowService {
	out := make([]models.TowService, len(towServices))
	copy(out, towServices)
	return out
}

// Directory assembles the emergency payload. serviceType narrows it to
// "hospitals", "police" or "tow"; anything else returns everything.
func (s *EmergencyService) Directory(governorate, serviceType string) *models.EmergencyDirectory {
	dir := &models.EmergencyDirectory{
		Numbers:     emergencyNumbers,
		Governorate: governorate,
	}
	switch serviceType {
	case "hospitals":
		dir.Hospitals = s.Hospitals(governorate)
	case "police":
		dir.PoliceStations = s.PoliceStations(governorate)
	case "tow":
		dir.TowServices = s.TowServices()
	default:
		dir.Hospitals = s.Hospitals(governorate)
		dir.PoliceStations = s.PoliceStations(governorate)
		dir.TowServices = s.TowServices()
	}
	return dir
}

// NearestHospital finds the closest emergency hospital to the given
// coordinates.
func (s *EmergencyService) NearestHospital(lat, lng float64) (*models.NearestHospital, error) {
	var nearest *models.Hospital
	best := math.MaxFloat64
	for i := range hospitals {
		h := &hospitals[i]
		if !h.Emergency {
			continue
		}
		d := spatial.HaversineDistance(lat, lng, h.Lat, h.Lng)
		if d < best {
			best = d
			nearest = h
		}
	}
	if nearest == nil {
		return nil, fmt.Errorf("no emergency hospital available")
	}

	return &models.NearestHospital{
		Hospital:            *nearest,
		DistanceKm:          math.Round(best/1000*100) / 100,
		EstimatedTravelMins: spatial.EstimatedTravelMinutes(best),
		EmergencyNumber:     emergencyNumbers["ambulance"].Number,
	}, nil
}
