package segment

import (
	"regexp"
	"strconv"
	"strings"
)

// timestampRegex matches [HH:]MM:SS[.fff]
var timestampRegex = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{2}(?:\.\d+)?)$`)

// ParseSeconds parses a time argument. Plain numbers are seconds
// ("10.5"); clock forms "MM:SS" and "HH:MM:SS" with optional fractional
// seconds are also accepted ("01:30", "1:02:03.5").
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		seconds, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, invalidArgument("invalid time %q: expected seconds or HH:MM:SS", s)
		}
		return seconds, nil
	}

	matches := timestampRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, invalidArgument("invalid time %q: expected seconds or HH:MM:SS", s)
	}

	hours := 0
	if matches[1] != "" {
		h, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, invalidArgument("invalid time %q: hours out of range", s)
		}
		hours = h
	}
	minutes, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, invalidArgument("invalid time %q: expected seconds or HH:MM:SS", s)
	}
	seconds, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return 0, invalidArgument("invalid time %q: expected seconds or HH:MM:SS", s)
	}

	if minutes > 59 {
		return 0, invalidArgument("invalid time %q: minutes must be 0-59", s)
	}
	if seconds >= 60 {
		return 0, invalidArgument("invalid time %q: seconds must be below 60", s)
	}

	return float64(hours)*3600 + float64(minutes*60) + seconds, nil
}
