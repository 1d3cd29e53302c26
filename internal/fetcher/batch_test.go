package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ytstat/internal/models"
	"ytstat/internal/testutil"
	"ytstat/internal/youtube"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("v%03d", i)
	}
	return out
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"empty", 0, 50, []int{}},
		{"exact", 50, 50, []int{50}},
		{"remainder", 120, 50, []int{50, 50, 20}},
		{"small size", 5, 2, []int{2, 2, 1}},
		{"clamped to provider max", 120, 500, []int{50, 50, 20}},
		{"zero size means max", 60, 0, []int{50, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(ids(tt.n), tt.size)
			got := make([]int, len(chunks))
			for i, c := range chunks {
				got[i] = len(c)
			}
			assert.Equal(t, tt.sizes, got)
		})
	}
}

func TestChunk_PreservesOrder(t *testing.T) {
	chunks := Chunk([]string{"a", "b", "c"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, chunks)
}

func videosCall(ctx context.Context, c youtube.Client, chunk []string) ([]*models.VideoSnapshot, error) {
	return c.GetVideos(ctx, chunk)
}

func TestExecuteBatched_OneCallPerChunk(t *testing.T) {
	factory := &testutil.MockClientFactory{
		VideosFn: func(_ context.Context, _ string, ids []string) ([]*models.VideoSnapshot, error) {
			out := make([]*models.VideoSnapshot, 0, len(ids))
			for _, id := range ids {
				out = append(out, &models.VideoSnapshot{ID: id})
			}
			return out, nil
		},
	}
	f, pool, _ := newTestFetcher(t, 2, factory)

	res, err := ExecuteBatched(context.Background(), f, OpVideos, ids(120), 50, videosCall)
	require.NoError(t, err)
	assert.Len(t, res.Items, 120)
	assert.Empty(t, res.Failed)
	assert.Len(t, factory.CallsTo("GetVideos"), 3)

	var total int64
	for _, s := range pool.Status() {
		total += s.Used
	}
	assert.Equal(t, int64(3), total)
}

func TestExecuteBatched_AbsorbsChunkFailures(t *testing.T) {
	call := 0
	factory := &testutil.MockClientFactory{
		VideosFn: func(_ context.Context, _ string, ids []string) ([]*models.VideoSnapshot, error) {
			call++
			if call == 2 {
				return nil, &models.ProviderError{Kind: models.ErrNotFound, Status: 404}
			}
			return []*models.VideoSnapshot{{ID: ids[0]}}, nil
		},
	}
	f, _, _ := newTestFetcher(t, 1, factory)

	res, err := ExecuteBatched(context.Background(), f, OpVideos, ids(120), 50, videosCall)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Len(t, res.Failed, 50)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], models.ErrNotFound)
}

func TestExecuteBatched_StopsOnFatal(t *testing.T) {
	boom := errors.New("unexpected")
	call := 0
	factory := &testutil.MockClientFactory{
		VideosFn: func(_ context.Context, _ string, ids []string) ([]*models.VideoSnapshot, error) {
			call++
			if call == 2 {
				return nil, boom
			}
			return []*models.VideoSnapshot{{ID: ids[0]}}, nil
		},
	}
	f, _, _ := newTestFetcher(t, 1, factory)

	res, err := ExecuteBatched(context.Background(), f, OpVideos, ids(150), 50, videosCall)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, res.Items, 1)
	assert.Len(t, factory.CallsTo("GetVideos"), 2)
}

func TestExecuteBatched_PoolExhaustedIsFatal(t *testing.T) {
	factory := &testutil.MockClientFactory{
		VideosFn: func(context.Context, string, []string) ([]*models.VideoSnapshot, error) {
			return nil, quotaErr
		},
	}
	f, _, _ := newTestFetcher(t, 1, factory)

	_, err := ExecuteBatched(context.Background(), f, OpVideos, ids(100), 50, videosCall)
	assert.ErrorIs(t, err, models.ErrPoolExhausted)
}
