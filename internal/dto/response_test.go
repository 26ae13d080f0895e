package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		name               string
		page, pageSize     int
		wantPage, wantSize int
	}{
		{"in range", 2, 20, 2, 20},
		{"page below one", 0, 20, 1, 20},
		{"negative page", -5, 10, 1, 10},
		{"size below one", 1, 0, 1, 1},
		{"size above cap", 1, 500, 1, 50},
		{"size at cap", 3, 50, 3, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NormalizePagination(tc.page, tc.pageSize)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantSize, p.PageSize)
		})
	}
}

func TestPageResultTotalPages(t *testing.T) {
	assert.Equal(t, 3, NewPageResult(nil, 41, 1, 20).TotalPages)
	assert.Equal(t, 2, NewPageResult(nil, 40, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPageResult(nil, 0, 1, 20).TotalPages)
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}
