package query

import (
	"regexp"
	"strconv"
)

// NoDistanceLimit is the sentinel for an unbounded distance query.
const NoDistanceLimit = -1.0

var numericToken = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseRadiusKm normalizes a provider's stored service-radius text into a
// kilometer value. The first numeric token wins and unit suffixes are
// ignored; the directory is single-unit (km) by convention.
//
// Text without a numeric token is unmapped (ok=false), never zero: a
// provider with an unparseable radius must be excluded from distance-bounded
// queries rather than falsely matching as "0 km away".
func ParseRadiusKm(distance string) (km float64, ok bool) {
	token := numericToken.FindString(distance)
	if token == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
