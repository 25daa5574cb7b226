package riot

import "strings"

// regionToRouting maps a platform region to the regional routing value used
// to address the account and match services.
var regionToRouting = map[string]string{
	"euw1": "europe", "eun1": "europe", "tr1": "europe", "ru": "europe",
	"na1": "americas", "br1": "americas", "la1": "americas", "la2": "americas",
	"kr": "asia", "jp1": "asia",
	"oc1": "sea", "ph2": "sea", "sg2": "sea", "th2": "sea", "tw2": "sea", "vn2": "sea",
}

const defaultRouting = "europe"

// RoutingForRegion returns the regional routing value for a platform region,
// defaulting to europe for unknown input.
func RoutingForRegion(region string) string {
	if routing, ok := regionToRouting[strings.ToLower(strings.TrimSpace(region))]; ok {
		return routing
	}
	return defaultRouting
}

// NormalizeLeagueRegion expands short region names to full platform codes
// for the ranked-standing service, e.g. "euw" -> "euw1". Codes that are
// already platform regions pass through unchanged.
func NormalizeLeagueRegion(region string) string {
	r := strings.ToLower(strings.TrimSpace(region))
	switch r {
	case "euw", "eun", "na", "br", "tr", "jp", "oc":
		return r + "1"
	case "la":
		return "la1"
	default:
		return r
	}
}
