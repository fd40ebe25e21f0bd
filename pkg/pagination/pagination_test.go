package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, Params{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Params{Page: -2, Limit: 10}.Offset())
}

func TestNewPageMetadata(t *testing.T) {
	page := NewPage([]string{"a", "b"}, Params{Page: 2, Limit: 2}, 5)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)

	last := NewPage([]string{"e"}, Params{Page: 3, Limit: 2}, 5)
	assert.False(t, last.HasNext)
}

func TestNewPageEmpty(t *testing.T) {
	page := NewPage[int](nil, Params{}, 0)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestMapKeepsMetadata(t *testing.T) {
	page := NewPage([]int{1, 2}, Params{Page: 1, Limit: 2}, 3)
	mapped := Map(page, func(v int) string { return string(rune('a' + v)) })
	assert.Equal(t, []string{"b", "c"}, mapped.Items)
	assert.Equal(t, page.TotalPages, mapped.TotalPages)
	assert.True(t, mapped.HasNext)
}
