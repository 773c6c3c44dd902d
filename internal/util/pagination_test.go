package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, ParseIntDefault("3", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("tres", 1))
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	rows := make([]int, 12)
	for i := range rows {
		rows[i] = i
	}

	tests := []struct {
		name     string
		page     int
		size     int
		want     []int
		wantMeta Meta
	}{
		{name: "first page", page: 1, size: 5, want: []int{0, 1, 2, 3, 4}, wantMeta: Meta{Page: 1, Size: 5, Total: 12, TotalPages: 3, HasNext: true}},
		{name: "last page", page: 3, size: 5, want: []int{10, 11}, wantMeta: Meta{Page: 3, Size: 5, Total: 12, TotalPages: 3, HasPrev: true}},
		{name: "past the end", page: 9, size: 5, want: []int{}, wantMeta: Meta{Page: 9, Size: 5, Total: 12, TotalPages: 3, HasPrev: true}},
		{name: "huge page", page: math.MaxInt/DefaultPageSize + 2, size: 0, want: []int{}, wantMeta: Meta{Page: math.MaxInt/DefaultPageSize + 2, Size: DefaultPageSize, Total: 12, TotalPages: 1, HasPrev: true}},
		{name: "defaults", page: 0, size: 0, want: rows, wantMeta: Meta{Page: 1, Size: DefaultPageSize, Total: 12, TotalPages: 1}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, meta := Paginate(rows, tt.page, tt.size)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMeta, meta)
		})
	}
}
