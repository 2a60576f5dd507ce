package tpcsim

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// ProcessEventsParallel distributes the events of the source over one
// goroutine per aggregator. Every aggregator owns its output table; each
// one sees a subset of the events, still in increasing id order.
func ProcessEventsParallel(ctx context.Context, source EventSource, aggregators []*Aggregator, progress *Progress, discard bool) error {
	if len(aggregators) == 0 {
		return fmt.Errorf("no aggregators to process events")
	}
	group, ctx := errgroup.WithContext(ctx)
	jobs := make(chan Event, 100)

	group.Go(func() error {
		defer close(jobs)
		return sendEventsToWorkers(ctx, source, jobs, progress)
	})

	for id, aggregator := range aggregators {
		group.Go(func() error {
			return worker(id, aggregator, jobs, progress, discard)
		})
	}
	return group.Wait()
}

func sendEventsToWorkers(ctx context.Context, source EventSource, jobs chan<- Event, progress *Progress) error {
	for {
		event, err := source.NextEvent()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading event: %w", err)
		}
		if progress != nil {
			progress.BeginEvent(event.EventID)
		}
		select {
		case jobs <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func worker(id int, aggregator *Aggregator, jobs <-chan Event, progress *Progress, discard bool) error {
	for event := range jobs {
		if logVerbosity > 1 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, event.EventID), "workers")
		}
		if err := processEvent(aggregator, event, discard); err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}
		if progress != nil {
			progress.EndEvent(event.EventID)
		}
	}
	return nil
}
