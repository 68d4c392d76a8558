package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ytlearn/internal/domain"
)

func TestBuildRejectsEmptyInput(t *testing.T) {
	_, err := Build(nil)
	require.ErrorIs(t, err, domain.ErrEmptyIndex)

	_, err = Build([][]float32{})
	require.ErrorIs(t, err, domain.ErrEmptyIndex)

	_, err = Build([][]float32{{}})
	require.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestBuildRejectsInconsistentDimensions(t *testing.T) {
	_, err := Build([][]float32{{1, 2}, {1, 2, 3}})
	require.Error(t, err)
}

func TestSearchExactNearest(t *testing.T) {
	vectors := [][]float32{
		{0, 0, 1},
		{0, 1, 0},
		{1, 0, 0},
	}
	ix, err := Build(vectors)
	require.NoError(t, err)
	require.Equal(t, 3, ix.Size())
	require.Equal(t, 3, ix.Dimension())

	hits, err := ix.Search([]float32{0, 1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	require.Equal(t, 1, hits[0].Index)
	require.Equal(t, 0.0, hits[0].Distance)
	for i := 1; i < len(hits); i++ {
		require.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
}

func TestSearchTiesBreakByAscendingIndex(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{1, 0},
		{0, 1},
	}
	ix, err := Build(vectors)
	require.NoError(t, err)

	hits, err := ix.Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 1, 3}, []int{hits[0].Index, hits[1].Index, hits[2].Index, hits[3].Index})
}

func TestSearchClampsTopK(t *testing.T) {
	ix, err := Build([][]float32{{1}, {2}})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestSearchInvalidArguments(t *testing.T) {
	ix, err := Build([][]float32{{1, 2}})
	require.NoError(t, err)

	_, err = ix.Search([]float32{1, 2}, 0)
	require.Error(t, err)

	_, err = ix.Search([]float32{1}, 1)
	require.Error(t, err)
}

func TestRepresentativeRanksByCentroidDistance(t *testing.T) {
	// centroid is (1, 2.25): v2 is closest, v0 and v1 tie, v3 is farthest.
	vectors := [][]float32{
		{0, 0},
		{2, 0},
		{1, 0},
		{1, 9},
	}
	ix, err := Build(vectors)
	require.NoError(t, err)

	hits, err := ix.Representative(3)
	require.NoError(t, err)
	require.Equal(t, []int{2, 0, 1}, []int{hits[0].Index, hits[1].Index, hits[2].Index})

	all, err := ix.Representative(10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, 3, all[3].Index)
}
