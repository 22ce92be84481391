package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type fakeReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
	errs   int
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.errs > 0 {
		r.errs--
		return kafka.Message{}, errors.New("broker unavailable")
	}
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

type fakePusher struct {
	pushed []string
	failOn string
}

func (p *fakePusher) PushEventJSON(_ context.Context, raw []byte) error {
	if string(raw) == p.failOn {
		return errors.New("loki down")
	}
	p.pushed = append(p.pushed, string(raw))
	return nil
}

func TestConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &fakeReader{
		msgs:   []kafka.Message{{Value: []byte(`{"eventType":"a"}`)}, {Value: []byte("bad")}, {Value: []byte(`{"eventType":"b"}`)}},
		cancel: cancel,
		errs:   1,
	}
	p := &fakePusher{failOn: "bad"}
	consume(ctx, r, p, zap.NewNop())

	want := []string{`{"eventType":"a"}`, `{"eventType":"b"}`}
	if len(p.pushed) != len(want) {
		t.Fatalf("pushed %v, want %v", p.pushed, want)
	}
	for i := range want {
		if p.pushed[i] != want[i] {
			t.Errorf("pushed[%d] = %s, want %s", i, p.pushed[i], want[i])
		}
	}
}

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *fakePurger) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, p.err
}

func (p *fakePurger) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cutoffs)
}

func TestPurgeSessions_Cutoff(t *testing.T) {
	p := &fakePurger{}
	before := time.Now().UTC()
	purgeSessions(context.Background(), p, 72*time.Hour, zap.NewNop())
	if p.calls() != 1 {
		t.Fatalf("calls = %d", p.calls())
	}
	got := p.cutoffs[0]
	if got.After(before.Add(-72*time.Hour).Add(time.Second)) || got.Before(before.Add(-72*time.Hour).Add(-time.Second)) {
		t.Errorf("cutoff = %v, want about %v", got, before.Add(-72*time.Hour))
	}

	p.err = errors.New("db down")
	purgeSessions(context.Background(), p, time.Hour, zap.NewNop())
	if p.calls() != 2 {
		t.Errorf("failure must still be attempted, calls = %d", p.calls())
	}
}

func TestRunCleanup_Schedules(t *testing.T) {
	p := &fakePurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runCleanup(ctx, p, 20*time.Millisecond, time.Hour, zap.NewNop()) }()

	deadline := time.Now().Add(2 * time.Second)
	for p.calls() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("cleanup ran %d times", p.calls())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runCleanup: %v", err)
	}
}
