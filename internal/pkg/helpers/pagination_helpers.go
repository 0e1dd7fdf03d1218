package helpers

const (
	// DefaultPageSize applies when the caller asks for no particular size
	DefaultPageSize = 100
	// MaxPageSize caps any requested size
	MaxPageSize = 500
)

// ClampLimit returns the page size to use for a requested limit.
// Zero selects def; anything above max is cut to max.
func ClampLimit(requested, def, max uint64) uint64 {
	if def == 0 {
		def = DefaultPageSize
	}
	if max == 0 {
		max = MaxPageSize
	}
	if def > max {
		def = max
	}

	switch {
	case requested == 0:
		return def
	case requested > max:
		return max
	default:
		return requested
	}
}
