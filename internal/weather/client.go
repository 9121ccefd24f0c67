// Package weather talks to an Open-Meteo compatible forecast API and maps
// WMO condition codes to driving-risk factors. The predictive layer treats
// this service as unreliable: every caller must tolerate an error and fall
// back to static data.
package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Provider is the collaborator interface consumed by the risk module.
type Provider interface {
	CurrentWeather(governorate string) (*Current, error)
	Forecast(governorate string, days int) ([]Day, error)
}

// Current describes present conditions for one governorate.
type Current struct {
	Temperature   float64
	FeelsLike     float64
	Humidity      int
	WindSpeed     float64
	Precipitation float64
	RainChance    int
	WeatherCode   int
	Description   string
	RiskFactor    float64
	IsDay         bool
}

// Day is one day of the forecast.
type Day struct {
	Date           string
	WeatherCode    int
	Description    string
	TemperatureMax float64
	RiskFactor     float64
}

// governorateCoords maps Tunisia's governorates to their centroid.
var governorateCoords = map[string][2]float64{
	"Tunis":       {36.8065, 10.1815},
	"Ariana":      {36.8667, 10.1647},
	"Ben Arous":   {36.7533, 10.2283},
	"Manouba":     {36.8078, 9.8589},
	"Nabeul":      {36.4561, 10.7376},
	"Zaghouan":    {36.4029, 10.1433},
	"Bizerte":     {37.2744, 9.8739},
	"Béja":        {36.7333, 9.1833},
	"Jendouba":    {36.5011, 8.7803},
	"Le Kef":      {36.1747, 8.7047},
	"Siliana":     {36.0850, 9.3708},
	"Sousse":      {35.8288, 10.6405},
	"Monastir":    {35.7643, 10.8113},
	"Mahdia":      {35.5047, 11.0622},
	"Sfax":        {34.7406, 10.7603},
	"Kairouan":    {35.6781, 10.0963},
	"Kasserine":   {35.1672, 8.8365},
	"Sidi Bouzid": {34.8888, 9.4842},
	"Gabès":       {33.8886, 10.0975},
	"Médenine":    {33.3549, 10.5055},
	"Tataouine":   {32.9297, 10.4518},
	"Gafsa":       {34.4250, 8.7842},
	"Tozeur":      {33.9197, 8.1339},
	"Kébili":      {33.7044, 8.9650},
}

// defaultCoords is the center of Tunisia, used for unknown regions.
var defaultCoords = [2]float64{34.0, 9.0}

// descriptions maps WMO weather codes to display text.
var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// riskFactors maps WMO weather codes to accident risk multipliers.
var riskFactors = map[int]float64{
	0:  0.8,
	1:  0.85,
	2:  0.9,
	3:  1.0,
	45: 1.5,
	48: 1.6,
	51: 1.2,
	53: 1.3,
	55: 1.4,
	61: 1.3,
	63: 1.5,
	65: 1.8,
	71: 1.4,
	73: 1.6,
	75: 2.0,
	80: 1.3,
	81: 1.5,
	82: 1.8,
	95: 1.7,
	96: 2.0,
	99: 2.2,
}

// Describe returns the display text for a WMO weather code.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Clear"
}

// RiskFactorFor returns the risk multiplier for a WMO weather code.
func RiskFactorFor(code int) float64 {
	if f, ok := riskFactors[code]; ok {
		return f
	}
	return 1.0
}

// Coords returns the centroid for a governorate, falling back to the
// center of the country.
func Coords(governorate string) (lat, lon float64) {
	if c, ok := governorateCoords[governorate]; ok {
		return c[0], c[1]
	}
	return defaultCoords[0], defaultCoords[1]
}

// Client is the HTTP Provider implementation.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a weather client against the given base URL
// (an Open-Meteo compatible /v1/forecast endpoint).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type currentResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		FeelsLike     float64 `json:"apparent_temperature"`
		Humidity      int     `json:"relative_humidity_2m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		IsDay         int     `json:"is_day"`
	} `json:"current"`
	Hourly struct {
		PrecipitationProbability []int `json:"precipitation_probability"`
	} `json:"hourly"`
}

// CurrentWeather implements Provider.
func (c *Client) CurrentWeather(governorate string) (*Current, error) {
	lat, lon := Coords(governorate)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m,is_day")
	params.Set("hourly", "precipitation_probability")
	params.Set("timezone", "Africa/Tunis")
	params.Set("forecast_days", "1")

	var body currentResponse
	if err := c.get(params, &body); err != nil {
		return nil, err
	}

	cur := &Current{
		Temperature:   body.Current.Temperature,
		FeelsLike:     body.Current.FeelsLike,
		Humidity:      body.Current.Humidity,
		WindSpeed:     body.Current.WindSpeed,
		Precipitation: body.Current.Precipitation,
		WeatherCode:   body.Current.WeatherCode,
		Description:   Describe(body.Current.WeatherCode),
		RiskFactor:    RiskFactorFor(body.Current.WeatherCode),
		IsDay:         body.Current.IsDay == 1,
	}
	if len(body.Hourly.PrecipitationProbability) > 0 {
		cur.RainChance = body.Hourly.PrecipitationProbability[0]
	}
	return cur, nil
}

type forecastResponse struct {
	Daily struct {
		Time           []string  `json:"time"`
		WeatherCode    []int     `json:"weather_code"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Forecast implements Provider.
func (c *Client) Forecast(governorate string, days int) ([]Day, error) {
	lat, lon := Coords(governorate)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("daily", "weather_code,temperature_2m_max")
	params.Set("timezone", "Africa/Tunis")
	params.Set("forecast_days", fmt.Sprintf("%d", days))

	var body forecastResponse
	if err := c.get(params, &body); err != nil {
		return nil, err
	}

	out := make([]Day, 0, len(body.Daily.Time))
	for i, date := range body.Daily.Time {
		d := Day{Date: date}
		if i < len(body.Daily.WeatherCode) {
			d.WeatherCode = body.Daily.WeatherCode[i]
		}
		if i < len(body.Daily.TemperatureMax) {
			d.TemperatureMax = body.Daily.TemperatureMax[i]
		}
		d.Description = Describe(d.WeatherCode)
		d.RiskFactor = RiskFactorFor(d.WeatherCode)
		out = append(out, d)
	}
	return out, nil
}

func (c *Client) get(params url.Values, out interface{}) error {
	resp, err := c.http.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}
