package processor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/telem/pkg/errsink"
	"github.com/hyp3rd/telem/pkg/exporter"
	"github.com/hyp3rd/telem/pkg/telemetry"
)

// BatchProcessor buffers emitted records in a bounded queue and exports them
// from a single background worker, either when the buffer reaches
// MaxExportBatchSize, when the scheduled timer fires, or on an explicit
// ForceFlush or Shutdown.
//
// Emit never blocks: when the queue is full the record is dropped and the
// drop reported to the error sink. ForceFlush and Shutdown block the caller
// until the worker answers; do not call them from exporter code, which runs
// on the worker goroutine.
//
// The worker always runs on its own goroutine, so the flush/shutdown
// round-trip cannot starve it under Go's scheduler.
type BatchProcessor struct {
	cfg      BatchConfig
	exporter exporter.Exporter

	queue chan batchMessage
	// done is closed when the worker terminates; producer-facing calls race
	// their replies against it so they never hang on a dead worker.
	done    chan struct{}
	stopped atomic.Bool

	newTicker func(time.Duration) ticker
}

var _ Processor = (*BatchProcessor)(nil)

type messageKind int

const (
	// kindExportRecord appends one record to the worker's buffer.
	kindExportRecord messageKind = iota
	// kindFlush exports the buffer; a nil reply means timer-generated.
	kindFlush
	// kindShutdown exports the buffer, shuts the exporter down, replies, and
	// terminates the worker.
	kindShutdown
	// kindSetResource forwards a resource snapshot to the exporter.
	kindSetResource
)

// batchMessage is the tagged protocol unit between producers and the worker.
// Each message is consumed exactly once, in send order per sender.
type batchMessage struct {
	kind     messageKind
	entry    exporter.Entry
	reply    chan error
	resource *telemetry.Resource
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	ticker *time.Ticker
}

func (r realTicker) C() <-chan time.Time {
	return r.ticker.C
}

func (r realTicker) Stop() {
	r.ticker.Stop()
}

func defaultTickerFactory(interval time.Duration) ticker {
	return realTicker{ticker: time.NewTicker(interval)}
}

// BatchOption mutates batch processor construction.
type BatchOption func(*BatchProcessor)

// WithBatchConfig replaces the default (environment-aware) config.
func WithBatchConfig(cfg BatchConfig) BatchOption {
	return func(bp *BatchProcessor) {
		bp.cfg = cfg
	}
}

// NewBatchProcessor creates the processor and starts its worker. Callers own
// the processor's lifecycle and must invoke Shutdown to release the worker.
func NewBatchProcessor(exp exporter.Exporter, opts ...BatchOption) *BatchProcessor {
	bp := newBatchProcessor(exp, opts...)
	bp.start()

	return bp
}

// newBatchProcessor builds the processor without starting the worker. Split
// from NewBatchProcessor so tests can exercise the queue and swap the ticker
// factory before the worker runs.
func newBatchProcessor(exp exporter.Exporter, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		cfg:       DefaultBatchConfig(),
		exporter:  exp,
		done:      make(chan struct{}),
		newTicker: defaultTickerFactory,
	}

	for _, opt := range opts {
		opt(bp)
	}

	bp.cfg = sanitize(bp.cfg)
	bp.queue = make(chan batchMessage, bp.cfg.MaxQueueSize)

	return bp
}

// sanitize corrects configs assembled without the builder, keeping the queue
// invariant and positive timings.
func sanitize(cfg BatchConfig) BatchConfig {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = DefaultMaxQueueSize
	}

	if cfg.MaxExportBatchSize <= 0 {
		cfg.MaxExportBatchSize = DefaultMaxExportBatchSize
	}

	if cfg.MaxExportBatchSize > cfg.MaxQueueSize {
		cfg.MaxExportBatchSize = cfg.MaxQueueSize
	}

	if cfg.ScheduledDelay <= 0 {
		cfg.ScheduledDelay = DefaultScheduledDelay
	}

	if cfg.MaxExportTimeout <= 0 {
		cfg.MaxExportTimeout = DefaultMaxExportTimeout
	}

	return cfg
}

func (bp *BatchProcessor) start() {
	go bp.worker()
}

// Emit clones the record and attempts a non-blocking enqueue. On a full queue
// the record is dropped and the drop reported to the error sink. After
// Shutdown, Emit returns without doing anything.
func (bp *BatchProcessor) Emit(record *telemetry.Record, scope telemetry.Scope) {
	if bp.stopped.Load() {
		return
	}

	msg := batchMessage{
		kind:  kindExportRecord,
		entry: exporter.Entry{Record: record.Clone(), Scope: scope},
	}

	select {
	case bp.queue <- msg:
	default:
		errsink.Handle(ewrap.Wrapf(errsink.ErrQueueFull, "record from scope %q dropped", scope.Name))
	}
}

// ForceFlush asks the worker to export the current buffer and waits for the
// result. It returns ErrAlreadyShutdown when the worker has terminated and a
// queue-full error when the control message cannot be enqueued; it never
// hangs on a dead worker.
func (bp *BatchProcessor) ForceFlush(ctx context.Context) error {
	if bp.stopped.Load() {
		return errsink.ErrAlreadyShutdown
	}

	reply := make(chan error, 1)

	select {
	case bp.queue <- batchMessage{kind: kindFlush, reply: reply}:
	case <-bp.done:
		return errsink.ErrAlreadyShutdown
	default:
		return ewrap.Wrap(errsink.ErrQueueFull, "force flush rejected")
	}

	return bp.await(ctx, reply)
}

// Shutdown exports the remaining buffer, shuts the exporter down, and
// terminates the worker. Only the first call does any work; subsequent calls
// return ErrAlreadyShutdown. Emit calls made after Shutdown are inert.
func (bp *BatchProcessor) Shutdown(ctx context.Context) error {
	if !bp.stopped.CompareAndSwap(false, true) {
		return errsink.ErrAlreadyShutdown
	}

	reply := make(chan error, 1)

	// The worker stays alive until it consumes this very message, so a
	// blocking send is safe: the queue drains even when momentarily full.
	select {
	case bp.queue <- batchMessage{kind: kindShutdown, reply: reply}:
	case <-ctx.Done():
		return ewrap.Wrap(ctx.Err(), "shutdown enqueue")
	}

	return bp.await(ctx, reply)
}

// SetResource forwards an owned snapshot to the worker. Fire-and-forget: if
// the queue is full or the processor is shut down, the update is discarded.
func (bp *BatchProcessor) SetResource(resource *telemetry.Resource) {
	if bp.stopped.Load() {
		return
	}

	select {
	case bp.queue <- batchMessage{kind: kindSetResource, resource: resource.Clone()}:
	default:
	}
}

func (bp *BatchProcessor) await(ctx context.Context, reply chan error) error {
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ewrap.Wrap(ctx.Err(), "awaiting worker reply")
	case <-bp.done:
		// The worker may have replied right before exiting; prefer the reply.
		select {
		case err := <-reply:
			return err
		default:
			return errsink.ErrChannelClosed
		}
	}
}

// worker is the sole owner of the accumulation buffer and the sole caller
// into the exporter, so buffer access needs no locking.
func (bp *BatchProcessor) worker() {
	defer close(bp.done)

	// time.Ticker first fires one full period after creation, which keeps the
	// timer aligned to the configured delay instead of firing at time zero.
	tick := bp.newTicker(bp.cfg.ScheduledDelay)
	defer tick.Stop()

	buffer := make([]exporter.Entry, 0, bp.cfg.MaxExportBatchSize)

	for {
		select {
		case msg := <-bp.queue:
			switch msg.kind {
			case kindExportRecord:
				buffer = append(buffer, msg.entry)
				if len(buffer) >= bp.cfg.MaxExportBatchSize {
					if err := bp.export(&buffer); err != nil {
						errsink.Handle(err)
					}
				}
			case kindFlush:
				err := bp.export(&buffer)
				if msg.reply != nil {
					msg.reply <- err
				} else if err != nil {
					errsink.Handle(err)
				}
			case kindSetResource:
				bp.exporter.SetResource(msg.resource)
			case kindShutdown:
				err := bp.export(&buffer)

				ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.MaxExportTimeout)
				shutdownErr := bp.exporter.Shutdown(ctx)

				cancel()

				if err == nil && shutdownErr != nil {
					err = ewrap.Wrap(shutdownErr, "exporter shutdown")
				}

				msg.reply <- err

				return
			}
		case <-tick.C():
			// A tick is an implicit flush with nobody waiting on the result.
			if err := bp.export(&buffer); err != nil {
				errsink.Handle(err)
			}
		}
	}
}

// export drains the buffer and races the exporter call against the configured
// timeout. An empty buffer is a no-op that never touches the exporter. When
// the timeout wins, the batch is discarded and the abandoned call keeps the
// old backing array, which is why the buffer is replaced rather than resliced.
func (bp *BatchProcessor) export(buffer *[]exporter.Entry) error {
	if len(*buffer) == 0 {
		return nil
	}

	batch := *buffer
	*buffer = make([]exporter.Entry, 0, bp.cfg.MaxExportBatchSize)

	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.MaxExportTimeout)
	defer cancel()

	result := make(chan error, 1)

	go func() {
		result <- bp.exporter.Export(ctx, batch)
	}()

	select {
	case err := <-result:
		if err != nil {
			return ewrap.Wrapf(err, "export batch of %d", len(batch))
		}

		return nil
	case <-ctx.Done():
		// The exporter call is abandoned, not cancelled; a well-behaved
		// exporter observes ctx and returns, but there is no guarantee.
		return ewrap.Wrapf(errsink.ErrExportTimeout, "after %s", bp.cfg.MaxExportTimeout)
	}
}
