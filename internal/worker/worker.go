// Package worker runs queued jobs with a bounded concurrency limit. The bot
// runs it with limit 1 so updates are handled one at a time, in arrival order.
package worker

import "context"

type Options[J any] struct {
	Ctx    context.Context
	Limit  int
	Jobs   <-chan J
	Handle func(context.Context, J)
}

func Start[J any](opts Options[J]) {
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	go func() {
		for {
			select {
			case <-opts.Ctx.Done():
				return
			case job, ok := <-opts.Jobs:
				if !ok {
					return
				}
				select {
				case sem <- struct{}{}:
				case <-opts.Ctx.Done():
					return
				}
				func() {
					defer func() { <-sem }()
					opts.Handle(opts.Ctx, job)
				}()
			}
		}
	}()
}

func Enqueue[J any](ctx context.Context, jobs chan<- J, job J) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case jobs <- job:
		return nil
	}
}
