package pagination

import (
	"net/http"
	"strings"
)

// nextPageURL extracts the rel="next" target from a response's Link header.
// Returns the empty string when there is no next page, which terminates the
// pagination loop. All knowledge of the header shape lives here.
//
// Header form: <https://host/path?after=x>; rel="next", <...>; rel="last"
func nextPageURL(resp *http.Response) string {
	linkHeader := resp.Header.Get("Link")
	if linkHeader == "" {
		return ""
	}

	for _, entry := range strings.Split(linkHeader, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}

		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if strings.EqualFold(param, `rel="next"`) || strings.EqualFold(param, "rel=next") {
				return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
			}
		}
	}

	return ""
}
