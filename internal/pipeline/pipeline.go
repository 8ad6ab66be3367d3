package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"newswatch/internal/source"
	"newswatch/internal/storage"
)

// Store is the slice of the persistence layer the pipeline needs: point
// existence check, point write, and per-source bookkeeping.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	SaveArticle(ctx context.Context, a *storage.Article) error
	TouchSourceState(name string, count int, failed bool) error
}

// Result aggregates the counters of one pipeline pass. Not persisted.
type Result struct {
	Processed int `json:"processed"`
	Added     int `json:"added"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (r *Result) merge(o Result) {
	r.Processed += o.Processed
	r.Added += o.Added
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// Pipeline runs fetch → normalize → hash → dedup → store for every
// configured source. One invocation, one pass, no internal retries.
type Pipeline struct {
	sources []source.Fetcher
	store   Store
	now     func() time.Time
}

func New(sources []source.Fetcher, store Store) *Pipeline {
	return &Pipeline{
		sources: sources,
		store:   store,
		now:     time.Now,
	}
}

// Run executes one ingestion pass. Sources are fetched concurrently;
// a failing source only loses its own entries. Re-running against
// identical content adds nothing (every entry dedups to skipped).
func (p *Pipeline) Run(ctx context.Context) Result {
	log.Printf("ingest: start, %d sources", len(p.sources))

	var (
		mu    sync.Mutex
		total Result
		wg    sync.WaitGroup
	)
	for _, f := range p.sources {
		fetcher := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := p.runSource(ctx, fetcher)
			mu.Lock()
			total.merge(res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	log.Printf("ingest: done, processed=%d added=%d skipped=%d failed=%d",
		total.Processed, total.Added, total.Skipped, total.Failed)
	return total
}

func (p *Pipeline) runSource(ctx context.Context, f source.Fetcher) Result {
	name := f.Name()

	entries, err := f.Fetch(ctx)
	if err != nil {
		log.Printf("ingest: fetch %s error: %v", name, err)
		if err := p.store.TouchSourceState(name, 0, true); err != nil {
			log.Printf("ingest: touch state %s: %v", name, err)
		}
		return Result{}
	}
	if len(entries) == 0 {
		log.Printf("ingest: %s yielded 0 entries", name)
	}

	var res Result
	for _, e := range entries {
		// Cancellation keeps already-written articles committed; the
		// counters only reflect completed items.
		if ctx.Err() != nil {
			log.Printf("ingest: %s canceled after %d entries", name, res.Processed)
			break
		}
		res.Processed++

		a, ok := Normalize(e)
		if !ok {
			res.Failed++
			continue
		}

		exists, err := p.store.Exists(ctx, a.ID)
		if err != nil {
			log.Printf("ingest: exists check %s: %v", a.ID, err)
			res.Failed++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		a.CapturedAt = p.now()
		if err := p.store.SaveArticle(ctx, &a); err != nil {
			log.Printf("ingest: save %s: %v", a.ID, err)
			res.Failed++
			continue
		}
		res.Added++
	}

	if err := p.store.TouchSourceState(name, res.Processed, false); err != nil {
		log.Printf("ingest: touch state %s: %v", name, err)
	}
	log.Printf("ingest: %s done, processed=%d added=%d skipped=%d failed=%d",
		name, res.Processed, res.Added, res.Skipped, res.Failed)
	return res
}
