package domain

import "strings"

// City is a city record returned by the search gateway
type City struct {
	ID    int64
	Title string
}

// MatchCity picks the best city for the typed name from the gateway's
// candidates: an exact title match wins, then the first title containing the
// query as a substring, then the first record overall. Titles and query are
// compared lowercased and trimmed.
func MatchCity(query string, cities []City) (City, bool) {
	if len(cities) == 0 {
		return City{}, false
	}

	q := strings.ToLower(strings.TrimSpace(query))

	for _, c := range cities {
		if strings.ToLower(strings.TrimSpace(c.Title)) == q {
			return c, true
		}
	}
	for _, c := range cities {
		if strings.Contains(strings.ToLower(c.Title), q) {
			return c, true
		}
	}
	return cities[0], true
}
