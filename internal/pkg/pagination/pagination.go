package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination represents pagination metadata
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
	Offset  int   `json:"-"`
}

// New creates a new pagination instance
func New(page, limit int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		pages = 1
	}

	return &Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
		Offset:  (page - 1) * limit,
	}
}

// FromQuery reads ?page= and ?limit=. ok is false when no page was asked
// for, in which case callers return the whole list.
func FromQuery(c *gin.Context) (page, limit int, ok bool) {
	raw, present := c.GetQuery("page")
	if !present {
		return 0, 0, false
	}
	page, _ = strconv.Atoi(raw)
	limit, _ = strconv.Atoi(c.Query("limit"))
	return page, limit, true
}

// Bounds returns the slice bounds of the current page within Total items.
func (p *Pagination) Bounds() (start, end int) {
	start = p.Offset
	if int64(start) > p.Total {
		start = int(p.Total)
	}
	end = start + p.Limit
	if int64(end) > p.Total {
		end = int(p.Total)
	}
	return start, end
}

// SetHeaders exposes the metadata alongside an unchanged response body.
func (p *Pagination) SetHeaders(c *gin.Context) {
	c.Header("X-Total-Count", strconv.FormatInt(p.Total, 10))
	c.Header("X-Page", strconv.Itoa(p.Page))
	c.Header("X-Per-Page", strconv.Itoa(p.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(p.Pages))
}

// Page returns the items of items that fall on the page described by
// page and limit, and sets the headers.
func Page[T any](c *gin.Context, items []T, page, limit int) []T {
	p := New(page, limit, int64(len(items)))
	p.SetHeaders(c)
	start, end := p.Bounds()
	return items[start:end]
}
