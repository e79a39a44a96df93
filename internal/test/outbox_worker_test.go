package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"petstore-service/internal/kafka"
	"petstore-service/internal/models"
)

// MockMessagePublisher implementa el interface MessagePublisher para testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishPurchase(ctx context.Context, event *models.PurchaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOutboxRepository implementa el interface OutboxRepository para testing
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) TryAcquireOutboxLock(ctx context.Context, lockKey int64) (bool, error) {
	args := m.Called(ctx, lockKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockOutboxRepository) ReleaseOutboxLock(ctx context.Context, lockKey int64) error {
	args := m.Called(ctx, lockKey)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchOutboxBatchOrdered(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkOutboxPublished(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementPublishAttempts(ctx context.Context, id int64, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func runOutboxWorker(t *testing.T, ctx context.Context, cancel context.CancelFunc, publisher *MockMessagePublisher, outbox *MockOutboxRepository) {
	t.Helper()
	worker := kafka.NewOutboxWorker(publisher, outbox, kafka.OutboxConfig{
		LockKey:      42,
		BatchSize:    10,
		PollInterval: 5 * time.Millisecond,
	})

	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("outbox worker did not stop in time")
	}
}

func TestOutboxWorker_PublishesBatchAndMarks(t *testing.T) {
	// Arrange
	mockPublisher := new(MockMessagePublisher)
	mockOutbox := new(MockOutboxRepository)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{"event_id":"e-1","event_type":"purchase.completed","purchase_id":"p-1","purchaser":"Alice","pet_type":"Dog","store":1,"pet_name":"Rex"}`

	mockOutbox.On("TryAcquireOutboxLock", mock.Anything, int64(42)).Return(true, nil)
	mockOutbox.On("ReleaseOutboxLock", mock.Anything, int64(42)).Return(nil)
	mockOutbox.On("FetchOutboxBatchOrdered", mock.Anything, 10).Return([]models.OutboxEvent{
		{ID: 7, EventType: "purchase.completed", Key: "1", Payload: payload},
	}, nil).Once()
	mockOutbox.On("FetchOutboxBatchOrdered", mock.Anything, 10).Return([]models.OutboxEvent{}, nil)

	var published *models.PurchaseEvent
	mockPublisher.On("PublishPurchase", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).(*models.PurchaseEvent) }).
		Return(nil)
	mockOutbox.On("MarkOutboxPublished", mock.Anything, []int64{7}).
		Run(func(args mock.Arguments) { cancel() }).
		Return(nil)

	// Act
	runOutboxWorker(t, ctx, cancel, mockPublisher, mockOutbox)

	// Assert: the payload travels through the publisher, decoded
	require.NotNil(t, published)
	assert.Equal(t, "p-1", published.PurchaseID)
	assert.Equal(t, "Alice", published.Purchaser)
	assert.Equal(t, 1, published.Store)
	assert.Equal(t, "Rex", published.PetName)

	mockPublisher.AssertExpectations(t)
	mockOutbox.AssertExpectations(t)
}

func TestOutboxWorker_PublishFailureIncrementsAttempts(t *testing.T) {
	// Arrange
	mockPublisher := new(MockMessagePublisher)
	mockOutbox := new(MockOutboxRepository)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{"event_id":"e-1","purchase_id":"p-1","store":1}`

	mockOutbox.On("TryAcquireOutboxLock", mock.Anything, int64(42)).Return(true, nil)
	mockOutbox.On("ReleaseOutboxLock", mock.Anything, int64(42)).Return(nil)
	mockOutbox.On("FetchOutboxBatchOrdered", mock.Anything, 10).Return([]models.OutboxEvent{
		{ID: 7, EventType: "purchase.completed", Payload: payload},
	}, nil).Once()
	mockOutbox.On("FetchOutboxBatchOrdered", mock.Anything, 10).Return([]models.OutboxEvent{}, nil)

	mockPublisher.On("PublishPurchase", mock.Anything, mock.Anything).Return(assert.AnError)
	mockOutbox.On("IncrementPublishAttempts", mock.Anything, int64(7), mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(nil)

	// Act
	runOutboxWorker(t, ctx, cancel, mockPublisher, mockOutbox)

	// Assert: la fila queda sin publicar
	mockOutbox.AssertNotCalled(t, "MarkOutboxPublished", mock.Anything, mock.Anything)
	mockOutbox.AssertExpectations(t)
}

func TestOutboxWorker_UndecodablePayloadSkipsPublisher(t *testing.T) {
	// Arrange
	mockPublisher := new(MockMessagePublisher)
	mockOutbox := new(MockOutboxRepository)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockOutbox.On("TryAcquireOutboxLock", mock.Anything, int64(42)).Return(true, nil)
	mockOutbox.On("ReleaseOutboxLock", mock.Anything, int64(42)).Return(nil)
	mockOutbox.On("FetchOutboxBatchOrdered", mock.Anything, 10).Return([]models.OutboxEvent{
		{ID: 9, EventType: "purchase.completed", Payload: "not-json"},
	}, nil).Once()
	mockOutbox.On("FetchOutboxBatchOrdered", mock.Anything, 10).Return([]models.OutboxEvent{}, nil)

	mockOutbox.On("IncrementPublishAttempts", mock.Anything, int64(9), mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(nil)

	// Act
	runOutboxWorker(t, ctx, cancel, mockPublisher, mockOutbox)

	// Assert
	mockPublisher.AssertNotCalled(t, "PublishPurchase", mock.Anything, mock.Anything)
	mockOutbox.AssertNotCalled(t, "MarkOutboxPublished", mock.Anything, mock.Anything)
}

func TestOutboxWorker_LockHeldElsewhereSkipsBatch(t *testing.T) {
	// Arrange
	mockPublisher := new(MockMessagePublisher)
	mockOutbox := new(MockOutboxRepository)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockOutbox.On("TryAcquireOutboxLock", mock.Anything, int64(42)).
		Run(func(args mock.Arguments) { cancel() }).
		Return(false, nil)

	// Act
	runOutboxWorker(t, ctx, cancel, mockPublisher, mockOutbox)

	// Assert: sin el lock no se toca el outbox
	mockOutbox.AssertNotCalled(t, "FetchOutboxBatchOrdered", mock.Anything, mock.Anything)
	mockOutbox.AssertNotCalled(t, "ReleaseOutboxLock", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "PublishPurchase", mock.Anything, mock.Anything)
}
