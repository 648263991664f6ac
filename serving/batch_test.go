package serving

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessedrelick/agens/core"
)

type upperModel struct {
	mu      sync.Mutex
	batches [][]string
}

func (m *upperModel) Generate(ctx context.Context, prompts []string) ([]string, error) {
	m.mu.Lock()
	m.batches = append(m.batches, prompts)
	m.mu.Unlock()

	results := make([]string, len(prompts))
	for i, p := range prompts {
		results[i] = strings.ToUpper(p)
	}
	return results, nil
}

type failingModel struct{}

func (failingModel) Generate(ctx context.Context, prompts []string) ([]string, error) {
	return nil, errors.New("device lost")
}

type shortModel struct{}

func (shortModel) Generate(ctx context.Context, prompts []string) ([]string, error) {
	return []string{"only one"}, nil
}

func TestBatchRunner_SingleRequest(t *testing.T) {
	model := &upperModel{}
	b := NewBatchRunner(model)
	defer b.Close()

	text, err := b.Run(context.Background(), &core.Message{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", text)
}

func TestBatchRunner_BatchesConcurrentRequests(t *testing.T) {
	model := &upperModel{}
	b := NewBatchRunner(model, func(o *BatchRunnerOptions) {
		o.Linger = 50 * time.Millisecond
	})
	defer b.Close()

	prompts := []string{"a", "b", "c", "d"}
	results := make([]string, len(prompts))
	errs := make([]error, len(prompts))

	var wg sync.WaitGroup
	for i, p := range prompts {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			results[i], errs[i] = b.Run(context.Background(), &core.Message{Prompt: p})
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Each caller got its own completion regardless of batching layout.
	assert.Equal(t, []string{"A", "B", "C", "D"}, results)

	model.mu.Lock()
	total := 0
	for _, batch := range model.batches {
		total += len(batch)
	}
	model.mu.Unlock()
	assert.Equal(t, len(prompts), total)
}

func TestBatchRunner_ModelErrorReachesEveryCaller(t *testing.T) {
	b := NewBatchRunner(failingModel{})
	defer b.Close()

	_, err := b.Run(context.Background(), &core.Message{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
}

func TestBatchRunner_MisalignedResults(t *testing.T) {
	b := NewBatchRunner(shortModel{}, func(o *BatchRunnerOptions) {
		o.Linger = 50 * time.Millisecond
	})
	defer b.Close()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Run(context.Background(), &core.Message{Prompt: "x"})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	assert.GreaterOrEqual(t, failed, 1, "a misaligned batch must fail its callers")
}

func TestBatchRunner_RunAfterClose(t *testing.T) {
	b := NewBatchRunner(&upperModel{})
	b.Close()

	_, err := b.Run(context.Background(), &core.Message{Prompt: "x"})
	assert.ErrorIs(t, err, core.ErrServingNotRunning)
}

func TestBatchRunner_CloseTwice(t *testing.T) {
	b := NewBatchRunner(&upperModel{})

	b.Close()
	assert.NotPanics(t, func() { b.Close() })
}

func TestBatchRunner_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	model := blockingModel{release: blocked}
	b := NewBatchRunner(model)
	defer b.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := b.Run(ctx, &core.Message{Prompt: "x"})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not observe cancellation")
	}
}

type blockingModel struct {
	release chan struct{}
}

func (m blockingModel) Generate(ctx context.Context, prompts []string) ([]string, error) {
	<-m.release
	return make([]string, len(prompts)), nil
}
