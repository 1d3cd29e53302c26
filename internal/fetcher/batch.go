package fetcher

import (
	"context"

	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/youtube"
)

// Chunk splits ids into consecutive slices of at most size elements.
// Sizes outside 1..youtube.MaxBatch are clamped to youtube.MaxBatch.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 || size > youtube.MaxBatch {
		size = youtube.MaxBatch
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

type BatchResult[T any] struct {
	Items  []T
	Failed []string
	Errors []error
}

// ExecuteBatched runs call once per chunk of ids. Chunks that fail with an
// absorbable error are reported in Failed and the remaining chunks still
// run; any other error stops the batch and is returned with what was
// collected so far.
func ExecuteBatched[T any](ctx context.Context, f *Fetcher, op Operation, ids []string, size int, call func(context.Context, youtube.Client, []string) ([]T, error)) (BatchResult[T], error) {
	var res BatchResult[T]
	for _, chunk := range Chunk(ids, size) {
		chunk := chunk
		items, err := Execute(ctx, f, op, func(ctx context.Context, c youtube.Client) ([]T, error) {
			return call(ctx, c, chunk)
		})
		if err != nil {
			if !models.IsAbsorbable(err) {
				return res, err
			}
			f.logger.Warnf(providers.TypeCollector, "%s dropped %d ids: %v", op, len(chunk), err)
			res.Failed = append(res.Failed, chunk...)
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Items = append(res.Items, items...)
	}
	return res, nil
}
