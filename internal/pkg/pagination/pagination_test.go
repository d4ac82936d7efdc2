package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNew_Clamps(t *testing.T) {
	p := New(0, 500, 250)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 3, p.Pages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = New(2, 0, 0)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 1, p.Pages)
}

func TestBounds(t *testing.T) {
	start, end := New(3, 2, 5).Bounds()
	assert.Equal(t, 4, start)
	assert.Equal(t, 5, end)

	start, end = New(9, 2, 5).Bounds()
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?page=2&limit=3", nil)

	page, limit, ok := FromQuery(c)
	assert.True(t, ok)

	got := Page(c, []int{1, 2, 3, 4, 5, 6, 7}, page, limit)
	assert.Equal(t, []int{4, 5, 6}, got)
	assert.Equal(t, "7", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "3", w.Header().Get("X-Total-Pages"))
}

func TestFromQuery_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	_, _, ok := FromQuery(c)
	assert.False(t, ok)
}
