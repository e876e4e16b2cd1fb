package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reelpipe/internal/pipeline"
)

type scriptedRunner struct {
	mu       sync.Mutex
	outcomes []pipeline.Outcome
	calls    int
}

func (r *scriptedRunner) RunOnce(context.Context) pipeline.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := pipeline.Outcome{Kind: pipeline.EmptyQueue}
	if r.calls < len(r.outcomes) {
		outcome = r.outcomes[r.calls]
	}
	r.calls++
	return outcome
}

func (r *scriptedRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestSchedulerStopsAccountOnEmptyQueue(t *testing.T) {
	runner := &scriptedRunner{outcomes: []pipeline.Outcome{
		{Kind: pipeline.Processed, ItemID: 1},
		{Kind: pipeline.Processed, ItemID: 2},
		{Kind: pipeline.EmptyQueue},
	}}

	sched := New(nil)
	if err := sched.Add("acct", runner, time.Millisecond); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.Wait()

	if got := runner.callCount(); got != 3 {
		t.Fatalf("expected 3 passes before draining, got %d", got)
	}
}

func TestSchedulerContinuesAfterFailure(t *testing.T) {
	runner := &scriptedRunner{outcomes: []pipeline.Outcome{
		{Kind: pipeline.Failed, Stage: "publish", Err: errors.New("remote down")},
		{Kind: pipeline.Processed, ItemID: 1},
		{Kind: pipeline.EmptyQueue},
	}}

	sched := New(nil)
	if err := sched.Add("acct", runner, time.Millisecond); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.Wait()

	if got := runner.callCount(); got != 3 {
		t.Fatalf("a failure must not remove the account from rotation, got %d passes", got)
	}
}

func TestSchedulerRunsAccountsIndependently(t *testing.T) {
	fast := &scriptedRunner{outcomes: []pipeline.Outcome{{Kind: pipeline.EmptyQueue}}}
	slow := &scriptedRunner{outcomes: []pipeline.Outcome{
		{Kind: pipeline.Processed, ItemID: 1},
		{Kind: pipeline.EmptyQueue},
	}}

	sched := New(nil)
	if err := sched.Add("fast", fast, time.Millisecond); err != nil {
		t.Fatalf("Add fast: %v", err)
	}
	if err := sched.Add("slow", slow, time.Millisecond); err != nil {
		t.Fatalf("Add slow: %v", err)
	}
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.Wait()

	if fast.callCount() != 1 {
		t.Fatalf("fast account should drain after one pass, got %d", fast.callCount())
	}
	if slow.callCount() != 2 {
		t.Fatalf("slow account should drain after two passes, got %d", slow.callCount())
	}
}

func TestSchedulerStopCancelsJobs(t *testing.T) {
	// Never drains; only Stop can end it.
	runner := &scriptedRunner{outcomes: nil}
	runner.outcomes = make([]pipeline.Outcome, 1000)
	for i := range runner.outcomes {
		runner.outcomes[i] = pipeline.Outcome{Kind: pipeline.Processed}
	}

	sched := New(nil)
	if err := sched.Add("acct", runner, time.Hour); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		sched.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestSchedulerRejectsDuplicatesAndBadInput(t *testing.T) {
	sched := New(nil)
	runner := &scriptedRunner{}
	if err := sched.Add("acct", runner, time.Second); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sched.Add("acct", runner, time.Second); err == nil {
		t.Fatal("duplicate account must be rejected")
	}
	if err := sched.Add("", runner, time.Second); err == nil {
		t.Fatal("empty account must be rejected")
	}
	if err := sched.Add("other", nil, time.Second); err == nil {
		t.Fatal("nil runner must be rejected")
	}
	if err := sched.Add("other", runner, 0); err == nil {
		t.Fatal("non-positive interval must be rejected")
	}

	empty := New(nil)
	if err := empty.Start(context.Background()); err == nil {
		t.Fatal("starting with no accounts must fail")
	}
}
