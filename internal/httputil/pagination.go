package httputil

// Page parameter bounds shared by every paginated operation.
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// Pagination describes the position of a result page within the full set.
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	LastPage     int   `json:"last_page"`
	PerPage      int   `json:"per_page"`
	Total        int64 `json:"total"`
	From         int   `json:"from"`
	To           int   `json:"to"`
	HasMorePages bool  `json:"has_more_pages"`
}

// NewPagination computes the pagination block for a page of results.
// From and To are 1-based item positions; both are 0 when the page is beyond
// the result set or the set is empty.
func NewPagination(page, perPage int, total int64) *Pagination {
	page, perPage = NormalizePageParams(page, perPage)

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	from := (page-1)*perPage + 1
	to := page * perPage
	if int64(to) > total {
		to = int(total)
	}
	if int64(from) > total {
		from = 0
		to = 0
	}

	return &Pagination{
		CurrentPage:  page,
		LastPage:     lastPage,
		PerPage:      perPage,
		Total:        total,
		From:         from,
		To:           to,
		HasMorePages: page < lastPage,
	}
}

// NormalizePageParams clamps page and per-page values into their valid
// ranges, applying defaults for missing (zero) values.
func NormalizePageParams(page, perPage int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// OffsetForPage converts 1-based page parameters to a row offset.
func OffsetForPage(page, perPage int) int {
	page, perPage = NormalizePageParams(page, perPage)
	return (page - 1) * perPage
}
