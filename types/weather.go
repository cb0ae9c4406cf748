package types

const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

// ForecastRequest asks for a per-day forecast. Coords, when valid, skip
// geocoding of Query.
type ForecastRequest struct {
	Query    string       `json:"query"`
	Coords   *Coordinates `json:"coords,omitempty"`
	StartISO string       `json:"startISO"`
	EndISO   string       `json:"endISO"`
	Unit     string       `json:"unit"`
}

type ForecastEntry struct {
	DateISO string   `json:"dateISO"`
	Icon    string   `json:"icon"`
	Label   string   `json:"label"`
	TMax    *float64 `json:"tmax"`
	TMin    *float64 `json:"tmin"`
	Unit    string   `json:"unit"`
}

// ForecastResponse is always success-shaped. Failures set Error and leave
// ByDate empty.
type ForecastResponse struct {
	Coords *Coordinates             `json:"coords,omitempty"`
	ByDate map[string]ForecastEntry `json:"byDate"`
	Unit   string                   `json:"unit"`
	Error  string                   `json:"error,omitempty"`
	Cached bool                     `json:"cached,omitempty"`
}

// Condition is the display vocabulary for a provider weather code.
type Condition struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}
