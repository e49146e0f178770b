package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockEventSource struct {
	mu        sync.Mutex
	Events    []*domain.OutboxEvent
	FetchErr  error
	MarkErr   error
	Processed []int64
}

func (m *MockEventSource) GetUnprocessedEvents(context.Context, int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	var pending []*domain.OutboxEvent
	for _, ev := range m.Events {
		if !m.isProcessed(ev.ID) {
			pending = append(pending, ev)
		}
	}
	return pending, nil
}

func (m *MockEventSource) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.Processed = append(m.Processed, id)
	return nil
}

func (m *MockEventSource) isProcessed(id int64) bool {
	for _, p := range m.Processed {
		if p == id {
			return true
		}
	}
	return false
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	failFor  map[string]bool
	err      error
	calls    int
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return w.err
	}
	for _, m := range msgs {
		if w.failFor[string(m.Key)] {
			return errors.New("leader not available")
		}
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func orderPlaced(id int64, aggregate string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:          id,
		AggregateID: aggregate,
		EventType:   domain.EventTypeOrderPlaced,
		Payload:     json.RawMessage(`{"order_id":` + aggregate + `}`),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents(t *testing.T) {
	repo := &MockEventSource{Events: []*domain.OutboxEvent{orderPlaced(1, "10"), orderPlaced(2, "11")}}
	w := &fakeWriter{}
	poller := newOutboxPoller(repo, w, logger.Nop(), time.Second)

	published := poller.processUnpublishedEvents(context.Background())

	assert.Equal(t, 2, published)
	assert.Equal(t, []int64{1, 2}, repo.Processed)
	require.Len(t, w.messages, 2)
	assert.Equal(t, "10", string(w.messages[0].Key))
	assert.Equal(t, "event_type", w.messages[0].Headers[0].Key)
	assert.Equal(t, domain.EventTypeOrderPlaced, string(w.messages[0].Headers[0].Value))
}

func TestProcessUnpublishedEvents_FailedPublishStaysPending(t *testing.T) {
	repo := &MockEventSource{Events: []*domain.OutboxEvent{orderPlaced(1, "10"), orderPlaced(2, "11")}}
	w := &fakeWriter{failFor: map[string]bool{"10": true}}
	poller := newOutboxPoller(repo, w, logger.Nop(), time.Second)

	published := poller.processUnpublishedEvents(context.Background())

	assert.Equal(t, 1, published)
	assert.Equal(t, []int64{2}, repo.Processed)
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	repo := &MockEventSource{FetchErr: errors.New("db down")}
	w := &fakeWriter{}
	poller := newOutboxPoller(repo, w, logger.Nop(), time.Second)

	assert.Zero(t, poller.processUnpublishedEvents(context.Background()))
	assert.Zero(t, w.calls)
}

func TestProcessUnpublishedEvents_MarkErrorRetriesLater(t *testing.T) {
	repo := &MockEventSource{Events: []*domain.OutboxEvent{orderPlaced(1, "10")}, MarkErr: errors.New("db down")}
	w := &fakeWriter{}
	poller := newOutboxPoller(repo, w, logger.Nop(), time.Second)

	assert.Zero(t, poller.processUnpublishedEvents(context.Background()))
	assert.Len(t, w.messages, 1)
	assert.Empty(t, repo.Processed)
}

func TestProcessUnpublishedEvents_BreakerOpens(t *testing.T) {
	var events []*domain.OutboxEvent
	for i := int64(1); i <= 8; i++ {
		events = append(events, orderPlaced(i, "x"))
	}
	repo := &MockEventSource{Events: events}
	w := &fakeWriter{err: errors.New("broker unreachable")}
	poller := newOutboxPoller(repo, w, logger.Nop(), time.Second)

	assert.Zero(t, poller.processUnpublishedEvents(context.Background()))
	// five consecutive failures trip the breaker, the rest of the batch is skipped
	assert.Equal(t, 5, w.calls)
	assert.Empty(t, repo.Processed)
}

func TestRun_StopsOnCancelAndClosesWriter(t *testing.T) {
	repo := &MockEventSource{Events: []*domain.OutboxEvent{orderPlaced(1, "10")}}
	w := &fakeWriter{}
	poller := newOutboxPoller(repo, w, logger.Nop(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.Processed) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	assert.True(t, w.closed)
}
