package pipeline

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidshare/backend/internal/apperr"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		limit   string
		want    Page
		wantErr bool
	}{
		{name: "defaults", want: Page{Number: 1, Limit: 10}},
		{name: "explicit", page: "3", limit: "25", want: Page{Number: 3, Limit: 25}},
		{name: "trimmed", page: " 2 ", limit: "5", want: Page{Number: 2, Limit: 5}},
		{name: "max limit", limit: "100", want: Page{Number: 1, Limit: 100}},
		{name: "zero page", page: "0", wantErr: true},
		{name: "negative limit", limit: "-1", wantErr: true},
		{name: "non numeric", page: "two", wantErr: true},
		{name: "over max", limit: "101", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePage(tt.page, tt.limit, DefaultLimit)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginateWindow(t *testing.T) {
	rows := seq(23)

	got := Paginate(rows, Page{Number: 3, Limit: 10})

	assert.Equal(t, []int{20, 21, 22}, got.Docs)
	assert.Equal(t, 23, got.TotalDocs)
	assert.Equal(t, 3, got.TotalPages)
	assert.Equal(t, 21, got.PagingStart)
	assert.True(t, got.HasPrevPage)
	assert.False(t, got.HasNextPage)
	require.NotNil(t, got.PrevPage)
	assert.Equal(t, 2, *got.PrevPage)
	assert.Nil(t, got.NextPage)
}

func TestPaginateHugePageNumberIsEmpty(t *testing.T) {
	page, err := ParsePage(strconv.Itoa(math.MaxInt/2), "100", DefaultLimit)
	require.NoError(t, err)

	got := Paginate([]int{1, 2, 3}, page)

	assert.Empty(t, got.Docs)
	assert.Equal(t, 3, got.TotalDocs)
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, math.MaxInt, got.PagingStart)
	assert.True(t, got.HasPrevPage)
	assert.False(t, got.HasNextPage)

	got = Paginate([]int{1, 2, 3}, Page{Number: math.MaxInt, Limit: 1})
	assert.Empty(t, got.Docs)
	assert.Equal(t, math.MaxInt, got.PagingStart)
}

func TestPaginateBeyondLastPage(t *testing.T) {
	got := Paginate(seq(5), Page{Number: 4, Limit: 2})

	assert.Empty(t, got.Docs)
	assert.NotNil(t, got.Docs)
	assert.Equal(t, 5, got.TotalDocs)
	assert.Equal(t, 3, got.TotalPages)
	assert.False(t, got.HasNextPage)
}

func TestPaginateEmpty(t *testing.T) {
	got := Paginate([]int{}, Page{Number: 1, Limit: 10})

	assert.Empty(t, got.Docs)
	assert.Equal(t, 0, got.TotalPages)
	assert.False(t, got.HasPrevPage)
	assert.False(t, got.HasNextPage)
}

// Concatenating every page in order reproduces the full set exactly once.
func TestPaginateConcatenationCoversSet(t *testing.T) {
	for size := 0; size <= 40; size++ {
		rows := seq(size)
		for limit := 1; limit <= 12; limit++ {
			first := Paginate(rows, Page{Number: 1, Limit: limit})

			var all []int
			for p := 1; p <= first.TotalPages; p++ {
				page := Paginate(rows, Page{Number: p, Limit: limit})
				want := min(limit, max(0, size-(p-1)*limit))
				require.Len(t, page.Docs, want, "size=%d limit=%d page=%d", size, limit, p)
				assert.Equal(t, size, page.TotalDocs)
				all = append(all, page.Docs...)
			}
			if size == 0 {
				assert.Empty(t, all)
				continue
			}
			assert.Equal(t, rows, all, "size=%d limit=%d", size, limit)
		}
	}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
