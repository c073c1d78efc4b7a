package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
)

type stubProcessor struct {
	delay time.Duration
	calls atomic.Int32
	fail  string
}

func (s *stubProcessor) ProcessDocument(ctx context.Context, _ string, up pipeline.Upload, docType string) (entity.ProcessingResult, error) {
	s.calls.Add(1)
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return entity.ProcessingResult{}, ctx.Err()
	}
	if up.Name == s.fail {
		return entity.ProcessingResult{}, common.ErrUnknownDocumentType
	}
	return entity.ProcessingResult{Status: constants.ProcessingSuccess, DocumentType: docType}, nil
}

type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func TestQueue_ProcessesAllJobs(t *testing.T) {
	proc := &stubProcessor{delay: time.Millisecond, fail: "bad.pdf"}
	var col collector
	q := NewQueue(proc, nil, WithWorkers(3), WithQueueSize(2), WithResultHandler(col.add))

	names := []string{"a.pdf", "b.pdf", "bad.pdf", "c.pdf", "d.pdf"}
	for _, n := range names {
		if err := q.Enqueue(context.Background(), Job{DocumentType: "DUE", Upload: pipeline.Upload{Name: n}}); err != nil {
			t.Fatalf("Enqueue(%s): %v", n, err)
		}
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if got, want := len(col.results), len(names); got != want {
		t.Fatalf("results: got %d, want %d", got, want)
	}
	failed := 0
	for _, r := range col.results {
		if r.Job.ID == uuid.Nil {
			t.Error("job id not assigned")
		}
		if r.Err != nil {
			failed++
			if !errors.Is(r.Err, common.ErrUnknownDocumentType) {
				t.Errorf("err: got %v", r.Err)
			}
		} else if r.Result.DocumentType != "DUE" {
			t.Errorf("document type: got %q", r.Result.DocumentType)
		}
	}
	if failed != 1 {
		t.Errorf("failed: got %d, want 1", failed)
	}
}

func TestQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewQueue(&stubProcessor{}, nil)
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(context.Background(), Job{}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("got %v, want ErrQueueClosed", err)
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestQueue_ProcessTimeout(t *testing.T) {
	var col collector
	q := NewQueue(&stubProcessor{delay: time.Second}, nil,
		WithWorkers(1),
		WithProcessTimeout(10*time.Millisecond),
		WithResultHandler(col.add),
	)
	if err := q.Enqueue(context.Background(), Job{Upload: pipeline.Upload{Name: "slow.pdf"}}); err != nil {
		t.Fatal(err)
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(col.results) != 1 || !errors.Is(col.results[0].Err, context.DeadlineExceeded) {
		t.Errorf("results: got %+v", col.results)
	}
}

func TestQueue_EnqueueRespectsContextWhenFull(t *testing.T) {
	proc := &stubProcessor{delay: 200 * time.Millisecond}
	q := NewQueue(proc, nil, WithWorkers(1), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	ctx := context.Background()
	_ = q.Enqueue(ctx, Job{}) // taken by the worker
	for proc.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	_ = q.Enqueue(ctx, Job{}) // fills the buffer

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(short, Job{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want DeadlineExceeded", err)
	}
}

func TestQueue_ShutdownInterrupted(t *testing.T) {
	q := NewQueue(&stubProcessor{delay: 300 * time.Millisecond}, nil, WithWorkers(1))
	_ = q.Enqueue(context.Background(), Job{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want DeadlineExceeded", err)
	}
}
