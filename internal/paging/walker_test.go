package paging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkAllConcatenatesEveryPage(t *testing.T) {
	const pages = 5
	calls := 0
	fetch := func(_ context.Context, token string, limit int) (Page[int], error) {
		assert.Equal(t, 1000, limit)
		calls++
		idx := 0
		if token != "" {
			fmt.Sscanf(token, "p%d", &idx)
		}
		page := Page[int]{Items: []int{idx * 2, idx*2 + 1}}
		if idx < pages-1 {
			page.NextToken = fmt.Sprintf("p%d", idx+1)
		}
		return page, nil
	}

	all, err := WalkAll(context.Background(), fetch, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, pages, calls)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)
}

func TestWalkAllSinglePage(t *testing.T) {
	fetch := func(context.Context, string, int) (Page[int], error) {
		return Page[int]{Items: []int{1, 2, 3}}, nil
	}
	all, err := WalkAll(context.Background(), fetch, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, all)
}

func TestWalkAllAbortsOnMidWalkFailure(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, token string, _ int) (Page[int], error) {
		calls++
		if token == "boom" {
			return Page[int]{}, errors.New("backend down")
		}
		return Page[int]{Items: []int{1}, NextToken: "boom"}, nil
	}

	all, err := WalkAll(context.Background(), fetch, 100, 0)
	require.Error(t, err)
	assert.Nil(t, all)
	assert.Equal(t, 2, calls)
}

func TestWalkAllStopsAtPageCap(t *testing.T) {
	fetch := func(context.Context, string, int) (Page[int], error) {
		return Page[int]{Items: []int{1}, NextToken: "again"}, nil
	}
	_, err := WalkAll(context.Background(), fetch, 100, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not terminate")
}

func TestWalkAllHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(context.Context, string, int) (Page[int], error) {
		cancel()
		return Page[int]{Items: []int{1}, NextToken: "again"}, nil
	}
	_, err := WalkAll(ctx, fetch, 100, 0)
	require.ErrorIs(t, err, context.Canceled)
}
