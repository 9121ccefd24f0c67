package models

// EmergencyNumber is one national emergency contact.
type EmergencyNumber struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// Hospital is one entry of the static hospital directory.
type Hospital struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Type        string  `json:"type"`
	Emergency   bool    `json:"emergency"`
	Governorate string  `json:"governorate"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// PoliceStation is one entry of the static police directory.
type PoliceStation struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Governorate string `json:"governorate"`
}

// TowService is one 24/7 roadside assistance provider.
type TowService struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Coverage     string `json:"coverage"`
	Available24h bool   `json:"available_24h"`
}

// EmergencyDirectory is the /emergency-services response body.
type EmergencyDirectory struct {
	Numbers        map[string]EmergencyNumber `json:"numbers"`
	Hospitals      []Hospital                 `json:"hospitals,omitempty"`
	PoliceStations []PoliceStation            `json:"police_stations,omitempty"`
	TowServices    []TowService               `json:"tow_services,omitempty"`
	Governorate    string                     `json:"governorate,omitempty"`
}

// NearestHospital is the /nearest-hospital response body.
type NearestHospital struct {
	Hospital             Hospital `json:"hospital"`
	DistanceKm           float64  `json:"distance_km"`
	EstimatedTravelMins  int      `json:"estimated_travel_minutes"`
	EmergencyNumber      string   `json:"emergency_number"`
}
