package publicapi

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"pubapi/internal/render"
	"pubapi/internal/rustdoc"
)

// Options controls which items are listed and how.
type Options struct {
	// WithBlanketImplementations also lists items of blanket impls
	// (impl<T> Trait for T) and auto trait impls.
	WithBlanketImplementations bool
	// Sorted sorts the result.
	Sorted bool
	// Workers bounds the number of concurrent renderers. Zero or less
	// means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns sorted output without blanket implementations.
func DefaultOptions() Options {
	return Options{
		WithBlanketImplementations: false,
		Sorted:                     true,
		Workers:                    runtime.GOMAXPROCS(0),
	}
}

// batchSize is the number of items one render task handles.
const batchSize = 64

// Build lists the public items of crate. The walk is sequential; rendering
// fans out over a bounded worker group that shares the read-only index.
// The only error is cancellation of ctx.
func Build(ctx context.Context, crate *rustdoc.Crate, opts Options) ([]PublicItem, error) {
	entries := collect(crate, opts)
	items := make([]PublicItem, len(entries))
	if len(entries) == 0 {
		return items, ctx.Err()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	batches := (len(entries) + batchSize - 1) / batchSize

	// Each task writes a disjoint range of items; no lock is needed.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, batches))

	var idx rustdoc.Index = crate
	for start := 0; start < len(entries); start += batchSize {
		start := start // per-iteration copy; go directive is below 1.22
		end := min(start+batchSize, len(entries))
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				items[i] = renderEntry(idx, entries[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Sorted {
		Sort(items)
	}
	return items, nil
}

func renderEntry(idx rustdoc.Index, e entry) PublicItem {
	path := make([]string, len(e.path))
	for i, seg := range e.path {
		path[i] = seg.Name
	}
	return PublicItem{Path: path, Tokens: render.Item(idx, e.item, e.path)}
}
