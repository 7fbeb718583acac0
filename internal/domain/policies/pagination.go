package policies

// Paginate returns the sub-slice for a 1-based page. It is total: out-of-range
// pages and non-positive inputs yield an empty slice, never a panic.
func Paginate[T any](items []T, page int, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return []T{}
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

// NextPage advances with wraparound. The UI exposes only a forward affordance,
// so wrapping back to page 1 is the only way to reach earlier items.
func NextPage(page int, itemCount int, pageSize int) int {
	if page < 1 || pageSize < 1 || itemCount < 1 {
		return 1
	}

	next := page + 1
	if next > PageCount(itemCount, pageSize) {
		return 1
	}

	return next
}

func PageCount(itemCount int, pageSize int) int {
	if itemCount < 1 || pageSize < 1 {
		return 0
	}

	return (itemCount + pageSize - 1) / pageSize
}

// ClampPage wraps a requested page back to 1 when it is past the last page.
func ClampPage(page int, itemCount int, pageSize int) int {
	if page < 1 {
		return 1
	}
	if count := PageCount(itemCount, pageSize); count > 0 && page > count {
		return 1
	}

	return page
}
