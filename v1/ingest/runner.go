package ingest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Run consumes msgs until the channel is closed or ctx is cancelled. Each
// topic gets its own worker, so topics are processed in parallel while the
// messages of one topic keep their arrival order. Every message is committed
// after processing, including dropped ones, so a poison payload is not
// redelivered forever.
//
// Run returns once all workers have drained.
func (s *Session) Run(ctx context.Context, msgs <-chan Message) error {
	queueSize := s.cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := make(map[string]chan Message)

dispatch:
	for {
		select {
		case <-gctx.Done():
			break dispatch
		case msg, ok := <-msgs:
			if !ok {
				break dispatch
			}
			ch, exists := workers[msg.Topic]
			if !exists {
				ch = make(chan Message, queueSize)
				workers[msg.Topic] = ch
				g.Go(func() error {
					s.work(gctx, ch)
					return nil
				})
			}
			select {
			case ch <- msg:
			case <-gctx.Done():
				break dispatch
			}
		}
	}

	for _, ch := range workers {
		close(ch)
	}
	return g.Wait()
}

// work drains one topic queue. Messages still queued when ctx is cancelled
// are skipped without a commit, so the broker redelivers them.
func (s *Session) work(ctx context.Context, ch <-chan Message) {
	for msg := range ch {
		if ctx.Err() != nil {
			continue
		}
		_, _ = s.onMessage(ctx, msg)
		s.commit(ctx, msg)
	}
}

func (s *Session) commit(ctx context.Context, msg Message) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to commit message", err, map[string]interface{}{
			"topic": msg.Topic,
		})
	}
}

// Runner starts Session.Run against a Source and stops it again.
type Runner struct {
	session *Session
	source  Source

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewRunner returns a Runner feeding source into session.
func NewRunner(session *Session, source Source) *Runner {
	return &Runner{session: session, source: source}
}

// Start begins consuming in the background.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	msgs := r.source.Consume(ctx, &r.wg)
	go func() {
		defer close(r.done)
		_ = r.session.Run(ctx, msgs)
	}()
}

// Stop cancels consumption and waits for the transport and all workers to
// exit, or for ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	stopped := make(chan struct{})
	go func() {
		r.wg.Wait()
		<-r.done
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
