package common

import (
	"strconv"
	"strings"
)

// ParseDecimal parses a float that may use a comma as decimal separator.
func ParseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}
