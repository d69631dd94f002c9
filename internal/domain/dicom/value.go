package dicom

import "strings"

// DisplayName reorders an Alphabetic person name "Family^Given" as "Given Family".
// A single component is returned unchanged; components past the second are dropped.
func DisplayName(alphabetic string) string {
	parts := strings.Split(alphabetic, "^")
	if len(parts) > 1 {
		return parts[1] + " " + parts[0]
	}
	return alphabetic
}

// FormatDate rewrites a compact YYYYMMDD date as YYYY-MM-DD.
// Inputs shorter than 8 characters yield "". Longer inputs are assumed to be
// formatted already and pass through.
func FormatDate(s string) string {
	switch {
	case len(s) < 8:
		return ""
	case len(s) == 8:
		return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
	default:
		return s
	}
}

// FormatTime rewrites a compact HHMMSS[.ffffff] time as HH:MM:SS.
// Shorter or already separated inputs pass through.
func FormatTime(s string) string {
	if len(s) < 6 || strings.Contains(s, ":") {
		return s
	}
	return s[0:2] + ":" + s[2:4] + ":" + s[4:6]
}

// CompactDate strips the separators of a calendar-widget date (YYYY-MM-DD -> YYYYMMDD).
// The rewrite is textual; calendar correctness is not checked.
func CompactDate(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// CompactTime strips the separators of a HH:MM[:SS] time.
func CompactTime(s string) string {
	return strings.ReplaceAll(s, ":", "")
}
