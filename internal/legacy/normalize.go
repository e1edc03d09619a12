package legacy

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// AccessUTCOffset compensates for the legacy database storing local wall-clock
// time (UTC+1 or UTC+2 depending on DST). A fixed +2h is applied before the
// value is treated as UTC; timestamps near DST boundaries may be off by one
// hour, matching the behavior of the system being replaced.
const AccessUTCOffset = 2

// ParseAccessDate parses "MM/DD/YY HH:MM:SS" as exported from the legacy
// database. Malformed input yields the current time rather than an error.
// Two-digit years 00-30 map to 20xx, 31-99 to 19xx.
func ParseAccessDate(s string) time.Time {
	parts := strings.Split(strings.TrimSpace(s), " ")
	if len(parts) != 2 {
		return time.Now().UTC()
	}

	dateParts := strings.Split(parts[0], "/")
	timeParts := strings.Split(parts[1], ":")
	if len(dateParts) != 3 || len(timeParts) != 3 {
		return time.Now().UTC()
	}

	nums := make([]int, 0, 6)
	for _, p := range append(dateParts, timeParts...) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Now().UTC()
		}
		nums = append(nums, n)
	}

	month, day, year := nums[0], nums[1], nums[2]
	hour, minute, second := nums[3], nums[4], nums[5]

	if year < 100 {
		if year <= 30 {
			year += 2000
		} else {
			year += 1900
		}
	}

	return time.Date(year, time.Month(month), day, hour+AccessUTCOffset, minute, second, 0, time.UTC)
}

// ParseDocDate parses "DD.MM.YY" or "DD.MM.YYYY" as found in legacy invoice
// documents. Returns nil for anything structurally off; callers treat nil as
// "date unknown".
func ParseDocDate(s string) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return nil
	}

	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}

	if year < 100 {
		if year <= 30 {
			year += 2000
		} else {
			year += 1900
		}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

// ParseSwissNumber parses amounts formatted with apostrophe thousands
// separators ("3'493.75"). Comma decimal separators are accepted. A malformed
// tail is dropped and the leading numeric part still counts; input with no
// leading number, including empty input, yields 0.
func ParseSwissNumber(s string) float64 {
	if strings.TrimSpace(s) == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}
	cleaned := b.String()

	n, err := strconv.ParseFloat(cleaned, 64)
	if err == nil {
		return n
	}
	n, err = strconv.ParseFloat(numericPrefix(cleaned), 64)
	if err != nil {
		return 0
	}
	return n
}

func numericPrefix(s string) string {
	end := 0
	dot := false
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		case r >= '0' && r <= '9':
		default:
			return strings.TrimRight(s[:end], ".-")
		}
		end = i + len(string(r))
	}
	return strings.TrimRight(s[:end], ".-")
}

var accentFold = map[rune]rune{
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'à': 'a', 'â': 'a', 'ä': 'a',
	'î': 'i', 'ï': 'i',
	'ô': 'o', 'ö': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c',
	'É': 'E', 'È': 'E', 'Ê': 'E', 'Ë': 'E',
	'À': 'A', 'Â': 'A', 'Ä': 'A',
	'Î': 'I', 'Ï': 'I',
	'Ô': 'O', 'Ö': 'O',
	'Ù': 'U', 'Û': 'U', 'Ü': 'U',
	'Ç': 'C',
}

// NormalizeFilenameASCII folds accented Latin characters to ASCII and
// collapses every other non-alphanumeric character to underscore. Used as a
// fallback lookup key when a snapshot filename is not found verbatim.
func NormalizeFilenameASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if folded, ok := accentFold[r]; ok {
			return folded
		}
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		if r == '_' || r == '-' {
			return r
		}
		return '_'
	}, s)
}
