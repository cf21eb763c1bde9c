package chain

// DefaultErrorLimit bounds inline error messages.
const DefaultErrorLimit = 150

// TruncateError renders err for inline display, cutting it to limit runes
// followed by "...". A nil error renders as "".
func TruncateError(err error, limit int) string {
	if err == nil {
		return ""
	}
	return Truncate(err.Error(), limit)
}

// Truncate cuts s to limit runes, appending "..." when something was removed.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultErrorLimit
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
