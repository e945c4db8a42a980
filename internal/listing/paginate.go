package listing

const (
	DefaultPerPage = 12
	DefaultWindow  = 7
)

type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int   `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	Pages      []int `json:"pages"`
}

// Paginate slices out one page. The page number is clamped into [1, TotalPages].
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	if start > total {
		start = total
	}

	return Page[T]{
		Items:      append([]T{}, items[start:end]...),
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		Pages:      PageNumbers(page, totalPages, DefaultWindow),
	}
}

// PageNumbers returns up to window page numbers centred on current where possible.
func PageNumbers(current, totalPages, window int) []int {
	if totalPages < 1 || window < 1 {
		return []int{}
	}
	start := max(1, min(current-window/2, totalPages-window+1))
	end := min(totalPages, start+window-1)

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
