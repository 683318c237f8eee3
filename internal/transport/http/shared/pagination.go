package shared

import (
	"net/url"
	"strconv"
	"strings"
)

type Page struct {
	Limit  int
	Offset int
}

// Page reads limit and offset from the query. A missing limit takes
// defaultLimit and one above maxLimit is clamped; anything unparseable is
// recorded as an issue.
func (v *Validator) Page(query url.Values, defaultLimit, maxLimit int) Page {
	page := Page{Limit: defaultLimit}
	if n, ok := v.queryInt(query, "limit", 1); ok {
		page.Limit = n
	}
	if n, ok := v.queryInt(query, "offset", 0); ok {
		page.Offset = n
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}

func (v *Validator) queryInt(query url.Values, key string, min int) (int, bool) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		v.Add(key, "must be an integer of at least "+strconv.Itoa(min))
		return 0, false
	}
	return n, true
}
