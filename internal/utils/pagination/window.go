package pagination

// Window is an offset based page of a listing.
type Window struct {
	Skip  int
	Limit int
}

// Normalize clamps skip and limit. A non-positive limit falls back to defaultLimit,
// and limits above maxLimit are capped.
func Normalize(skip, limit, defaultLimit, maxLimit int) Window {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Window{Skip: skip, Limit: limit}
}
