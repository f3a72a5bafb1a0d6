package util

const DefaultLimit = 100

// Window clamps skip/limit query values to a sane offset/limit pair.
func Window(skip, limit int) (offset, size int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return skip, limit
}
