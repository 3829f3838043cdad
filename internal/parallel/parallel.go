// Package parallel runs index-parallel maps and reductions over contiguous
// chunks. Each chunk owns its output slots; nothing is shared between workers
// except the read-only inputs captured by the callbacks.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunksPerWorker oversubscribes the pool so uneven chunks still balance.
const chunksPerWorker = 4

// Workers returns the pool size used by For and Reduce.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

func chunkSize(n int) int {
	size := (n + Workers()*chunksPerWorker - 1) / (Workers() * chunksPerWorker)
	if size < 1 {
		size = 1
	}
	return size
}

// For calls fn(i) for every i in [0, n). It stops scheduling new chunks once
// ctx is cancelled and returns ctx's error in that case.
func For(ctx context.Context, n int, fn func(i int)) error {
	return ForChunk(ctx, n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}

// ForChunk calls fn once per contiguous [lo, hi) chunk of [0, n).
func ForChunk(ctx context.Context, n int, fn func(lo, hi int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers())

	size := chunkSize(n)
	for lo := 0; lo < n; lo += size {
		lo := lo
		hi := min(lo+size, n)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Reduce maps each chunk of [0, n) to a partial result with mapFn, then folds
// the partials left to right with merge. The fold order depends only on n and
// the worker count, so results are reproducible for a fixed GOMAXPROCS.
func Reduce[T any](ctx context.Context, n int, zero T, mapFn func(lo, hi int) T, merge func(a, b T) T) (T, error) {
	size := chunkSize(max(n, 1))
	partials := make([]T, (n+size-1)/size)

	err := ForChunk(ctx, n, func(lo, hi int) {
		partials[lo/size] = mapFn(lo, hi)
	})
	if err != nil {
		return zero, err
	}

	acc := zero
	for _, p := range partials {
		acc = merge(acc, p)
	}
	return acc, nil
}
