package reports

import (
	"strconv"
	"strings"
)

// ParseAmount converts a currency/number cell to a float64. Currency symbols
// and thousands separators are stripped and parenthesized values read as
// negative ("(1,200.50)" → -1200.50). Blank, dash, and unparseable cells all
// normalize to zero: financial exports routinely leave cells empty for "no
// activity", so a bad cell is recovered locally, never propagated as an
// error.
func ParseAmount(cell string) float64 {
	s := strings.TrimSpace(cell)
	switch s {
	case "", "-", "—":
		return 0
	}

	replacer := strings.NewReplacer("$", "", ",", "", "(", "-", ")", "")
	s = replacer.Replace(s)

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
