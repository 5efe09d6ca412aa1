// Package geo maps ISO-3166 alpha-2 country codes to continents.
package geo

import (
	"fmt"
	"sort"
	"strings"
)

// Continent is one of the seven continents.
type Continent string

const (
	Africa       Continent = "Africa"
	Antarctica   Continent = "Antarctica"
	Asia         Continent = "Asia"
	Europe       Continent = "Europe"
	NorthAmerica Continent = "North America"
	Oceania      Continent = "Oceania"
	SouthAmerica Continent = "South America"
)

// byCountry maps assigned ISO-3166 alpha-2 codes to their continent.
// Transcontinental countries are filed under their conventional primary
// continent (RU/TR under Europe, KZ/GE/AZ/CY under Asia, EG under Africa).
var byCountry = map[string]Continent{
	// Africa
	"AO": Africa, "BF": Africa, "BI": Africa, "BJ": Africa, "BW": Africa,
	"CD": Africa, "CF": Africa, "CG": Africa, "CI": Africa, "CM": Africa,
	"CV": Africa, "DJ": Africa, "DZ": Africa, "EG": Africa, "EH": Africa,
	"ER": Africa, "ET": Africa, "GA": Africa, "GH": Africa, "GM": Africa,
	"GN": Africa, "GQ": Africa, "GW": Africa, "KE": Africa, "KM": Africa,
	"LR": Africa, "LS": Africa, "LY": Africa, "MA": Africa, "MG": Africa,
	"ML": Africa, "MR": Africa, "MU": Africa, "MW": Africa, "MZ": Africa,
	"NA": Africa, "NE": Africa, "NG": Africa, "RE": Africa, "RW": Africa,
	"SC": Africa, "SD": Africa, "SH": Africa, "SL": Africa, "SN": Africa,
	"SO": Africa, "SS": Africa, "ST": Africa, "SZ": Africa, "TD": Africa,
	"TG": Africa, "TN": Africa, "TZ": Africa, "UG": Africa, "YT": Africa,
	"ZA": Africa, "ZM": Africa, "ZW": Africa,

	// Antarctica
	"AQ": Antarctica, "BV": Antarctica, "GS": Antarctica, "HM": Antarctica,
	"TF": Antarctica,

	// Asia
	"AE": Asia, "AF": Asia, "AM": Asia, "AZ": Asia, "BD": Asia, "BH": Asia,
	"BN": Asia, "BT": Asia, "CC": Asia, "CN": Asia, "CX": Asia, "CY": Asia,
	"GE": Asia, "HK": Asia, "ID": Asia, "IL": Asia, "IN": Asia, "IO": Asia,
	"IQ": Asia, "IR": Asia, "JO": Asia, "JP": Asia, "KG": Asia, "KH": Asia,
	"KP": Asia, "KR": Asia, "KW": Asia, "KZ": Asia, "LA": Asia, "LB": Asia,
	"LK": Asia, "MM": Asia, "MN": Asia, "MO": Asia, "MV": Asia, "MY": Asia,
	"NP": Asia, "OM": Asia, "PH": Asia, "PK": Asia, "PS": Asia, "QA": Asia,
	"SA": Asia, "SG": Asia, "SY": Asia, "TH": Asia, "TJ": Asia, "TL": Asia,
	"TM": Asia, "TW": Asia, "UZ": Asia, "VN": Asia, "YE": Asia,

	// Europe
	"AD": Europe, "AL": Europe, "AT": Europe, "AX": Europe, "BA": Europe,
	"BE": Europe, "BG": Europe, "BY": Europe, "CH": Europe, "CZ": Europe,
	"DE": Europe, "DK": Europe, "EE": Europe, "ES": Europe, "FI": Europe,
	"FO": Europe, "FR": Europe, "GB": Europe, "GG": Europe, "GI": Europe,
	"GR": Europe, "HR": Europe, "HU": Europe, "IE": Europe, "IM": Europe,
	"IS": Europe, "IT": Europe, "JE": Europe, "LI": Europe, "LT": Europe,
	"LU": Europe, "LV": Europe, "MC": Europe, "MD": Europe, "ME": Europe,
	"MK": Europe, "MT": Europe, "NL": Europe, "NO": Europe, "PL": Europe,
	"PT": Europe, "RO": Europe, "RS": Europe, "RU": Europe, "SE": Europe,
	"SI": Europe, "SJ": Europe, "SK": Europe, "SM": Europe, "TR": Europe,
	"UA": Europe, "VA": Europe, "XK": Europe,

	// North America
	"AG": NorthAmerica, "AI": NorthAmerica, "AW": NorthAmerica,
	"BB": NorthAmerica, "BL": NorthAmerica, "BM": NorthAmerica,
	"BQ": NorthAmerica, "BS": NorthAmerica, "BZ": NorthAmerica,
	"CA": NorthAmerica, "CR": NorthAmerica, "CU": NorthAmerica,
	"CW": NorthAmerica, "DM": NorthAmerica, "DO": NorthAmerica,
	"GD": NorthAmerica, "GL": NorthAmerica, "GP": NorthAmerica,
	"GT": NorthAmerica, "HN": NorthAmerica, "HT": NorthAmerica,
	"JM": NorthAmerica, "KN": NorthAmerica, "KY": NorthAmerica,
	"LC": NorthAmerica, "MF": NorthAmerica, "MQ": NorthAmerica,
	"MS": NorthAmerica, "MX": NorthAmerica, "NI": NorthAmerica,
	"PA": NorthAmerica, "PM": NorthAmerica, "PR": NorthAmerica,
	"SV": NorthAmerica, "SX": NorthAmerica, "TC": NorthAmerica,
	"TT": NorthAmerica, "US": NorthAmerica, "VC": NorthAmerica,
	"VG": NorthAmerica, "VI": NorthAmerica,

	// Oceania
	"AS": Oceania, "AU": Oceania, "CK": Oceania, "FJ": Oceania,
	"FM": Oceania, "GU": Oceania, "KI": Oceania, "MH": Oceania,
	"MP": Oceania, "NC": Oceania, "NF": Oceania, "NR": Oceania,
	"NU": Oceania, "NZ": Oceania, "PF": Oceania, "PG": Oceania,
	"PN": Oceania, "PW": Oceania, "SB": Oceania, "TK": Oceania,
	"TO": Oceania, "TV": Oceania, "UM": Oceania, "VU": Oceania,
	"WF": Oceania, "WS": Oceania,

	// South America
	"AR": SouthAmerica, "BO": SouthAmerica, "BR": SouthAmerica,
	"CL": SouthAmerica, "CO": SouthAmerica, "EC": SouthAmerica,
	"FK": SouthAmerica, "GF": SouthAmerica, "GY": SouthAmerica,
	"PE": SouthAmerica, "PY": SouthAmerica, "SR": SouthAmerica,
	"UY": SouthAmerica, "VE": SouthAmerica,
}

// ContinentOf returns the continent for an alpha-2 country code.
// Lookup is case-insensitive.
func ContinentOf(code string) (Continent, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != 2 {
		return "", fmt.Errorf("%q is not an alpha-2 country code", code)
	}
	c, ok := byCountry[normalized]
	if !ok {
		return "", fmt.Errorf("unknown country code %q", code)
	}
	return c, nil
}

// Codes returns every known country code, sorted.
func Codes() []string {
	out := make([]string, 0, len(byCountry))
	for code := range byCountry {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// CodesIn returns the sorted country codes belonging to a continent.
func CodesIn(c Continent) []string {
	var out []string
	for code, cont := range byCountry {
		if cont == c {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
