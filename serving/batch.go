package serving

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jessedrelick/agens/core"
	"github.com/jessedrelick/agens/logging"
)

// BatchModel is a stateful inference model that generates completions for a
// batch of prompts in one call. Results must be positionally aligned with the
// submitted prompts.
type BatchModel interface {
	Generate(ctx context.Context, prompts []string) ([]string, error)
}

// BatchRunnerOptions tune batching behavior.
type BatchRunnerOptions struct {
	// MaxBatchSize caps how many pending prompts are flushed per Generate
	// call. Defaults to 8.
	MaxBatchSize int

	// Linger is how long the collector waits for more prompts after the
	// first one arrives before flushing a partial batch. Defaults to 10ms.
	Linger time.Duration

	// Logger for batching diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

type batchReply struct {
	text string
	err  error
}

type batchRequest struct {
	ctx    context.Context
	prompt string
	reply  chan batchReply
}

// BatchRunner is a Backend that queues concurrent Run calls and flushes them
// in batches through a BatchModel. Concurrent callers block only until their
// own batch completes, so a slow inference pass stalls exactly the jobs that
// joined it.
type BatchRunner struct {
	model     BatchModel
	maxBatch  int
	linger    time.Duration
	logger    logging.Logger
	requests  chan batchRequest
	closed    chan struct{}
	closeOnce sync.Once
}

// NewBatchRunner starts the collector goroutine and returns the runner. Close
// must be called to release it.
func NewBatchRunner(model BatchModel, optFns ...func(o *BatchRunnerOptions)) *BatchRunner {
	opts := BatchRunnerOptions{
		MaxBatchSize: 8,
		Linger:       10 * time.Millisecond,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	b := &BatchRunner{
		model:    model,
		maxBatch: opts.MaxBatchSize,
		linger:   opts.Linger,
		logger:   opts.Logger,
		requests: make(chan batchRequest),
		closed:   make(chan struct{}),
	}

	go b.collect()

	return b
}

// Run implements Backend. It blocks until the batch containing this prompt
// has been generated or the context is cancelled.
func (b *BatchRunner) Run(ctx context.Context, msg *core.Message) (string, error) {
	req := batchRequest{ctx: ctx, prompt: msg.Prompt, reply: make(chan batchReply, 1)}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.closed:
		return "", core.ErrServingNotRunning
	case b.requests <- req:
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case reply := <-req.reply:
		return reply.text, reply.err
	}
}

// Close stops the collector. In-flight batches complete; subsequent Run calls
// fail with ErrServingNotRunning. Safe to call more than once.
func (b *BatchRunner) Close() {
	b.closeOnce.Do(func() { close(b.closed) })
}

func (b *BatchRunner) collect() {
	for {
		var first batchRequest

		select {
		case <-b.closed:
			return
		case first = <-b.requests:
		}

		batch := []batchRequest{first}
		timer := time.NewTimer(b.linger)

	fill:
		for len(batch) < b.maxBatch {
			select {
			case req := <-b.requests:
				batch = append(batch, req)
			case <-timer.C:
				break fill
			case <-b.closed:
				timer.Stop()
				b.flush(batch)
				return
			}
		}
		timer.Stop()

		b.flush(batch)
	}
}

func (b *BatchRunner) flush(batch []batchRequest) {
	prompts := make([]string, len(batch))
	for i, req := range batch {
		prompts[i] = req.prompt
	}

	b.logger.Debug("serving.batch.flush", "size", len(batch))

	// Batches run under the first caller's context; each caller still
	// observes its own cancellation while waiting on its reply channel.
	results, err := b.model.Generate(batch[0].ctx, prompts)
	if err == nil && len(results) != len(prompts) {
		err = fmt.Errorf("batch model returned %d results for %d prompts", len(results), len(prompts))
	}

	for i, req := range batch {
		if err != nil {
			req.reply <- batchReply{err: err}
			continue
		}
		req.reply <- batchReply{text: results[i]}
	}
}
