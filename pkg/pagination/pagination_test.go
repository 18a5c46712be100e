package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginateMiddlePage(t *testing.T) {
	env := Paginate([]int{1, 2, 3, 4, 5}, 2, 2)

	require.Equal(t, 2, env.Page)
	require.Equal(t, 2, env.PerPage)
	require.Equal(t, 5, env.Total)
	require.Equal(t, 3, env.TotalPages)
	require.Equal(t, []int{3, 4}, env.Data)
}

func TestPaginateEmptyInput(t *testing.T) {
	env := Paginate([]int{}, 1, 5)

	require.Equal(t, 1, env.Page)
	require.Equal(t, 5, env.PerPage)
	require.Equal(t, 0, env.Total)
	require.Equal(t, 0, env.TotalPages)
	require.Empty(t, env.Data)
}

func TestPaginatePastEnd(t *testing.T) {
	env := Paginate([]string{"a", "b"}, 9, 5)

	require.Empty(t, env.Data)
	require.Equal(t, 2, env.Total)
	require.Equal(t, 1, env.TotalPages)
}

func TestPaginateDefaultsOnInvalidParams(t *testing.T) {
	env := Paginate([]int{1, 2, 3, 4, 5, 6}, 0, 0)

	require.Equal(t, DefaultPage, env.Page)
	require.Equal(t, DefaultPerPage, env.PerPage)
	require.Equal(t, []int{1, 2, 3, 4, 5}, env.Data)
}

func TestPaginateTotalsCoverWholeInput(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	perPage := 4
	first := Paginate(items, 1, perPage)
	collected := 0
	for page := 1; page <= first.TotalPages; page++ {
		env := Paginate(items, page, perPage)
		require.Equal(t, len(items), env.Total)
		collected += len(env.Data)
	}
	require.GreaterOrEqual(t, collected, len(items)-perPage)
}

func TestPaginateDedupesReturnedSliceOnly(t *testing.T) {
	env := Paginate([]int{7, 7, 8, 9}, 1, 3)

	// Totals keep counting every input element.
	require.Equal(t, 4, env.Total)
	require.Equal(t, 2, env.TotalPages)
	require.Equal(t, []int{7, 8}, env.Data)
}

func TestPaginateNonComparableElements(t *testing.T) {
	type view struct {
		Tags []string
	}
	items := []view{{Tags: []string{"a"}}, {Tags: []string{"b"}}}

	env := Paginate(items, 1, 5)
	require.Len(t, env.Data, 2)
}

func TestPaginateDoesNotMutateInput(t *testing.T) {
	items := []int{5, 4, 3}
	_ = Paginate(items, 1, 2)
	require.Equal(t, []int{5, 4, 3}, items)
}
