package repositories

import "time"

// VagueElapsed maps an elapsed duration onto a small set of deliberately
// imprecise phrases. Recipients must not be able to reconstruct the exact
// encounter date from the text, so the bands are coarse and fixed.
func VagueElapsed(since time.Duration) string {
	days := int(since.Hours() / 24)
	switch {
	case days < 7:
		return "in the last week"
	case days < 14:
		return "about a week ago"
	case days < 21:
		return "about 2 weeks ago"
	case days < 28:
		return "about 3 weeks ago"
	case days < 60:
		return "about a month ago"
	case days < 90:
		return "about 2 months ago"
	default:
		return "a few months ago"
	}
}
