package service

import "github.com/tripweave/tripweave-backend/types"

// MapWeatherCode translates a WMO weather interpretation code into an icon
// and label. Unknown codes map to a generic condition.
func MapWeatherCode(code int) types.Condition {
	switch {
	case code == 0:
		return types.Condition{Icon: "☀️", Label: "Clear"}
	case code == 1 || code == 2:
		return types.Condition{Icon: "⛅", Label: "Partly cloudy"}
	case code == 3:
		return types.Condition{Icon: "☁️", Label: "Cloudy"}
	case code == 45 || code == 48:
		return types.Condition{Icon: "🌫️", Label: "Fog"}
	case code >= 51 && code <= 57:
		return types.Condition{Icon: "🌦️", Label: "Drizzle"}
	case code >= 61 && code <= 67, code >= 80 && code <= 82:
		return types.Condition{Icon: "🌧️", Label: "Rain"}
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return types.Condition{Icon: "❄️", Label: "Snow"}
	case code >= 95 && code <= 99:
		return types.Condition{Icon: "⛈️", Label: "Thunderstorm"}
	default:
		return types.Condition{Icon: "🌡️", Label: "Weather"}
	}
}
