package auth

import (
	"regexp"
	"strings"
)

var (
	windowsRe = regexp.MustCompile(`Windows NT ([\d.]+)`)
	chromeRe  = regexp.MustCompile(`Chrome/([\d.]+)`)
	edgeRe    = regexp.MustCompile(`Edg/([\d.]+)`)
)

// SummarizeUserAgent reduces a User-Agent header to the parts that identify a device
// for session matching, e.g. "Windows NT 10.0 | Chrome/120.0.0.0 | Edg/120.0.0.0".
// Agents with none of the known markers are kept verbatim.
func SummarizeUserAgent(ua string) string {
	var parts []string
	if m := windowsRe.FindStringSubmatch(ua); m != nil {
		parts = append(parts, "Windows NT "+m[1])
	}
	if m := chromeRe.FindStringSubmatch(ua); m != nil {
		parts = append(parts, "Chrome/"+m[1])
	}
	if m := edgeRe.FindStringSubmatch(ua); m != nil {
		parts = append(parts, "Edg/"+m[1])
	}
	if len(parts) == 0 {
		summary := strings.TrimSpace(ua)
		if len(summary) > 255 {
			summary = summary[:255]
		}
		return summary
	}
	return strings.Join(parts, " | ")
}
