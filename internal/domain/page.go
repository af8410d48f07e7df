package domain

// Page is a length-aware page of results.
type Page[T any] struct {
	CurrentPage int   `json:"current_page"`
	Data        []T   `json:"data"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

func NewPage[T any](items []T, total int64, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	p := Page[T]{CurrentPage: page, Data: items, PerPage: perPage, Total: total, LastPage: last}
	if n := len(items); n > 0 {
		from := (page-1)*perPage + 1
		to := from + n - 1
		p.From, p.To = &from, &to
	}
	return p
}
