package discovery

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pubdocs/internal/model"
)

func numberedDocs(n int) []model.Document {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]model.Document, n)
	for i := range docs {
		docs[i] = model.Document{ID: fmt.Sprintf("d%02d", i), CreatedAt: base.AddDate(0, 0, -i)}
	}
	return docs
}

func TestPaginate(t *testing.T) {
	docs := numberedDocs(7)

	p := Paginate(docs, 1, 3)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, []string{"d00", "d01", "d02"}, ids(p.Items))

	p = Paginate(docs, 3, 3)
	assert.Equal(t, []string{"d06"}, ids(p.Items))
}

func TestPaginate_EmptyCollection(t *testing.T) {
	p := Paginate(nil, 1, 10)
	assert.Equal(t, 1, p.TotalPages)
	assert.Empty(t, p.Items)
}

func TestPaginate_OutOfRangePages(t *testing.T) {
	docs := numberedDocs(5)

	assert.Empty(t, Paginate(docs, 0, 2).Items)
	assert.Empty(t, Paginate(docs, -1, 2).Items)
	assert.Empty(t, Paginate(docs, 4, 2).Items)
	assert.Equal(t, 3, Paginate(docs, 99, 2).TotalPages)
}

func TestPaginate_PagesPartitionTheCollection(t *testing.T) {
	docs := numberedDocs(23)
	perPage := 5

	total := Paginate(docs, 1, perPage).TotalPages
	var rebuilt []string
	for page := 1; page <= total; page++ {
		rebuilt = append(rebuilt, ids(Paginate(docs, page, perPage).Items)...)
	}

	assert.Equal(t, ids(docs), rebuilt, "pages must cover the collection exactly once, no gaps or overlaps")
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 10, []int{1, 2, 3, 4, 5}},
		{3, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{8, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{1, 3, []int{1, 2, 3}},
		{2, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("current=%d,total=%d", tt.current, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, PageWindow(tt.current, tt.total))
		})
	}
}
