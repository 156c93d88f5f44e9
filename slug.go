package gmapsgpx

import (
	"regexp"
	"strings"
	"time"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s_-]+`)
)

// Slugify turns free text into a lowercase, hyphen-separated token that is
// safe to use in a filename.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Timestamp returns the current local time as YYYYMMDD-HHMMSS.
func Timestamp() string {
	return time.Now().Format("20060102-150405")
}

// SuggestedFilename builds an output filename from an optional route name.
func SuggestedFilename(name string) string {
	if name != "" {
		return Slugify(name) + "-" + Timestamp() + ".gpx"
	}
	return "route-" + Timestamp() + ".gpx"
}
