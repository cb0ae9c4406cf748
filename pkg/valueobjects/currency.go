package valueobjects

import "strings"

var countryCurrencies = map[string]Currency{
	"united states":        "USD",
	"canada":               "CAD",
	"united kingdom":       "GBP",
	"ireland":              "EUR",
	"france":               "EUR",
	"germany":              "EUR",
	"spain":                "EUR",
	"italy":                "EUR",
	"portugal":             "EUR",
	"netherlands":          "EUR",
	"belgium":              "EUR",
	"austria":              "EUR",
	"finland":              "EUR",
	"greece":               "EUR",
	"czech republic":       "CZK",
	"poland":               "PLN",
	"sweden":               "SEK",
	"norway":               "NOK",
	"denmark":              "DKK",
	"switzerland":          "CHF",
	"australia":            "AUD",
	"new zealand":          "NZD",
	"india":                "INR",
	"japan":                "JPY",
	"singapore":            "SGD",
	"hong kong":            "HKD",
	"south africa":         "ZAR",
	"brazil":               "BRL",
	"mexico":               "MXN",
	"united arab emirates": "AED",
}

// CurrencyForCountry maps a country name to its currency, USD when unknown.
func CurrencyForCountry(country string) Currency {
	if c, ok := countryCurrencies[strings.ToLower(strings.TrimSpace(country))]; ok {
		return c
	}
	return DefaultCurrency
}
