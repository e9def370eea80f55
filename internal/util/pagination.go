package util

const MaxPageSize = 100

// Window turns optional skip/first arguments into an offset and limit.
// A missing or non-positive first falls back to def; first is capped at
// MaxPageSize.
func Window(skip, first *int32, def int) (offset, limit int) {
	if skip != nil && *skip > 0 {
		offset = int(*skip)
	}
	limit = def
	if first != nil && *first > 0 {
		limit = int(*first)
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}
