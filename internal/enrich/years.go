package enrich

import (
	"regexp"
	"strconv"
)

var yearRE = regexp.MustCompile(`\d{4}`)

// YearDistance scores a provider-reported year or date string against the
// target year. Two four-digit tokens form an inclusive range (normalized so
// the smaller is the lower bound); one token is a range of a single year.
// The distance is 0 when the target falls inside the range, otherwise the
// gap to the nearest endpoint. ok is false when the target is absent or the
// reported string holds no year token, meaning the pair is incomparable.
func YearDistance(reported string, target int) (distance int, ok bool) {
	if target <= 0 {
		return 0, false
	}
	tokens := yearRE.FindAllString(reported, 2)
	if len(tokens) == 0 {
		return 0, false
	}
	lo, _ := strconv.Atoi(tokens[0])
	hi := lo
	if len(tokens) == 2 {
		hi, _ = strconv.Atoi(tokens[1])
		if hi < lo {
			lo, hi = hi, lo
		}
	}
	switch {
	case target >= lo && target <= hi:
		return 0, true
	case target < lo:
		return lo - target, true
	default:
		return target - hi, true
	}
}
