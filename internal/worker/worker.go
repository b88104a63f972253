package worker

import (
	"context"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aidanlowson/notify-dispatch/internal/dispatch"
	"github.com/aidanlowson/notify-dispatch/internal/rabbitmq/queue"
)

//go:generate mockgen -source=worker.go -destination=../mocks/worker/mock.go -package=mocks

type notificationConsumer interface {
	Consume(ctx context.Context) (<-chan queue.Delivery, error)
}

type batchDispatcher interface {
	ProcessBatch(ctx context.Context, bodies [][]byte) []dispatch.Outcome
}

// Config holds worker pool settings.
type Config struct {
	Count         int           // number of worker goroutines
	BatchSize     int           // max deliveries per dispatched batch
	FlushInterval time.Duration // max time a partial batch waits
	MaxAttempts   int           // redeliveries before a message is discarded to the DLQ
}

// Worker drains the queue consumer, assembles deliveries into batches,
// hands them to the dispatcher and resolves every delivery according to its
// outcome: ack for terminal states, reject (redeliver later) for transport
// failures, discard to the DLQ once the redelivery budget is spent.
type Worker struct {
	queue      notificationConsumer
	dispatcher batchDispatcher
	cfg        Config
}

// NewWorker creates a Worker.
func NewWorker(q notificationConsumer, d batchDispatcher, cfg Config) *Worker {
	if cfg.Count < 1 {
		cfg.Count = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return &Worker{queue: q, dispatcher: d, cfg: cfg}
}

// Run consumes deliveries until ctx is cancelled. It blocks; callers run it
// in a goroutine. In-flight unresolved deliveries are redelivered by the
// broker after shutdown.
func (w *Worker) Run(ctx context.Context) {
	deliveries, err := w.queue.Consume(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to start consuming messages")
		return
	}

	var wg sync.WaitGroup
	wg.Add(w.cfg.Count)

	for i := 0; i < w.cfg.Count; i++ {
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Printf("worker-%d started", id)
			w.runWorker(ctx, id, deliveries)
			zlog.Logger.Printf("worker-%d shutting down", id)
		}(i)
	}

	wg.Wait()
	zlog.Logger.Print("worker pool stopped")
}

func (w *Worker) runWorker(ctx context.Context, id int, deliveries <-chan queue.Delivery) {
	batch := make([]queue.Delivery, 0, w.cfg.BatchSize)

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				if len(batch) > 0 {
					w.flush(ctx, batch)
				}
				return
			}

			batch = append(batch, d)
			if len(batch) >= w.cfg.BatchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (w *Worker) flush(ctx context.Context, batch []queue.Delivery) {
	bodies := make([][]byte, len(batch))
	for i, d := range batch {
		bodies[i] = d.Body()
	}

	outcomes := w.dispatcher.ProcessBatch(ctx, bodies)

	for i, out := range outcomes {
		w.resolve(batch[i], out)
	}
}

func (w *Worker) resolve(d queue.Delivery, out dispatch.Outcome) {
	if out.Status.Ack() {
		if err := d.Ack(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to ack message")
		}
		return
	}

	if d.Attempts() >= w.cfg.MaxAttempts {
		zlog.Logger.Warn().
			Err(out.Err).
			Int("attempts", d.Attempts()).
			Msg("redelivery budget spent, moving message to DLQ")

		if err := d.Discard(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to discard message")
		}
		return
	}

	if err := d.Reject(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to reject message")
	}
}
