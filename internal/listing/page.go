package listing

import "github.com/Deepanshu0211/MahadevEnterprises/internal/domain"

type Page struct {
	Items    []*domain.Product `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
	PageSize int               `json:"page_size"`
}

// Paginate slices one 1-based page out of items. Out-of-range pages are empty,
// not errors. pageSize is capped at MaxPageSize.
func Paginate(items []*domain.Product, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	if page < 1 {
		page = 1
	}

	total := len(items)
	pages := (total + pageSize - 1) / pageSize

	// compare before multiplying so huge page numbers cannot overflow
	start, end := total, total
	if page <= pages {
		start = (page - 1) * pageSize
		end = min(start+pageSize, total)
	}

	return Page{
		Items:    items[start:end],
		Page:     page,
		Pages:    pages,
		Total:    total,
		PageSize: pageSize,
	}
}
