package service

import (
	"regexp"
	"strings"
)

const unitedStates = "United States"

var (
	commaSpacing  = regexp.MustCompile(`,\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	trailingCode  = regexp.MustCompile(`^(.+)\s+([A-Za-z]{2,3})$`)
)

// PlaceTables expands abbreviations in free-text destinations. Keys are
// lowercase codes.
type PlaceTables struct {
	StateCodes   map[string]string
	CountryCodes map[string]string
}

// DefaultPlaceTables covers the US states plus DC, and the handful of
// country codes travellers commonly type.
func DefaultPlaceTables() PlaceTables {
	return PlaceTables{
		StateCodes: map[string]string{
			"al": "Alabama", "ak": "Alaska", "az": "Arizona", "ar": "Arkansas",
			"ca": "California", "co": "Colorado", "ct": "Connecticut", "de": "Delaware",
			"fl": "Florida", "ga": "Georgia", "hi": "Hawaii", "id": "Idaho",
			"il": "Illinois", "in": "Indiana", "ia": "Iowa", "ks": "Kansas",
			"ky": "Kentucky", "la": "Louisiana", "me": "Maine", "md": "Maryland",
			"ma": "Massachusetts", "mi": "Michigan", "mn": "Minnesota", "ms": "Mississippi",
			"mo": "Missouri", "mt": "Montana", "ne": "Nebraska", "nv": "Nevada",
			"nh": "New Hampshire", "nj": "New Jersey", "nm": "New Mexico", "ny": "New York",
			"nc": "North Carolina", "nd": "North Dakota", "oh": "Ohio", "ok": "Oklahoma",
			"or": "Oregon", "pa": "Pennsylvania", "ri": "Rhode Island", "sc": "South Carolina",
			"sd": "South Dakota", "tn": "Tennessee", "tx": "Texas", "ut": "Utah",
			"vt": "Vermont", "va": "Virginia", "wa": "Washington", "wv": "West Virginia",
			"wi": "Wisconsin", "wy": "Wyoming", "dc": "District of Columbia",
		},
		CountryCodes: map[string]string{
			"nz": "New Zealand", "uk": "United Kingdom", "gb": "United Kingdom",
			"us": "United States", "ca": "Canada", "au": "Australia", "in": "India",
			"de": "Germany", "fr": "France", "jp": "Japan", "br": "Brazil",
			"za": "South Africa", "ie": "Ireland", "it": "Italy", "es": "Spain",
			"nl": "Netherlands",
		},
	}
}

func (t PlaceTables) isStateName(name string) bool {
	for _, state := range t.StateCodes {
		if strings.EqualFold(state, name) {
			return true
		}
	}
	return false
}

// Candidates returns geocoder queries to try in order, most literal first.
// The result never contains duplicates and is empty for blank input.
func (t PlaceTables) Candidates(raw string) []string {
	q := strings.TrimSpace(raw)
	if q == "" {
		return nil
	}
	spaced := commaSpacing.ReplaceAllString(q, ", ")
	spaced = strings.TrimSpace(whitespaceRun.ReplaceAllString(spaced, " "))

	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	add(spaced)

	var parts []string
	for _, p := range strings.Split(spaced, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		rest := parts[:len(parts)-1]
		code := strings.ToLower(last)

		if state, ok := t.StateCodes[code]; ok {
			withState := strings.Join(append(append([]string{}, rest...), state), ", ")
			add(withState)
			add(withState + ", " + unitedStates)
		}
		if country, ok := t.CountryCodes[code]; ok {
			add(strings.Join(append(append([]string{}, rest...), country), ", "))
		}
		if len(parts) == 2 && t.isStateName(last) {
			add(spaced + ", " + unitedStates)
		}
	}

	if !strings.Contains(spaced, ",") {
		if m := trailingCode.FindStringSubmatch(spaced); m != nil {
			code := strings.ToLower(m[2])
			if state, ok := t.StateCodes[code]; ok {
				add(m[1] + ", " + state + ", " + unitedStates)
			} else if country, ok := t.CountryCodes[code]; ok {
				add(m[1] + ", " + country)
			}
		}
	}

	if state, ok := t.StateCodes[strings.ToLower(spaced)]; ok {
		add(state + ", " + unitedStates)
	}
	return out
}
