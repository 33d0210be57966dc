package projection

// Page is the uniform list envelope. Total is only present when the caller
// ran an explicit count query; it is carried through verbatim.
type Page[R any] struct {
	Items    []R    `json:"items"`
	Count    int    `json:"count"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    *int64 `json:"total,omitempty"`
	HasNext  bool   `json:"has_next"`
}

// NewPage derives page metadata from the offset/limit the caller queried
// with. has_next is the conservative heuristic "the page came back full":
// when the dataset size is an exact multiple of limit the last full page
// reports a next page that turns out empty. No extra count query is issued
// to verify.
func NewPage[R any](items []R, offset, limit int, total *int64) Page[R] {
	if items == nil {
		items = []R{}
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return Page[R]{
		Items:    items,
		Count:    len(items),
		Page:     page,
		PageSize: limit,
		Total:    total,
		HasNext:  limit > 0 && len(items) == limit,
	}
}
