package pagination

import (
	"net/http"
	"strings"
)

// NextLink returns the rel="next" URL of an RFC 5988 Link header, or "" when the
// response is the last page.
func NextLink(h http.Header) string {
	for _, value := range h.Values("Link") {
		if next := parseNext(value); next != "" {
			return next
		}
	}
	return ""
}

func parseNext(value string) string {
	rest := value
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			return ""
		}
		rest = rest[open+1:]

		closing := strings.IndexByte(rest, '>')
		if closing < 0 {
			return ""
		}
		target := rest[:closing]
		rest = rest[closing+1:]

		params := rest
		if i := strings.IndexByte(rest, '<'); i >= 0 {
			params = rest[:i]
		}

		if hasRel(params, "next") {
			return strings.TrimSpace(target)
		}
	}
}

func hasRel(params, rel string) bool {
	for _, p := range strings.Split(params, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `",`)
		for _, r := range strings.Fields(val) {
			if strings.EqualFold(r, rel) {
				return true
			}
		}
	}
	return false
}
