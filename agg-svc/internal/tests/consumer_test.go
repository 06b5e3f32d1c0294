package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"sendr/agg-svc/internal/domain"
	"sendr/agg-svc/internal/mocks"
	"sendr/agg-svc/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

func placedEvent() domain.OrderEvent {
	return domain.OrderEvent{
		Type:      domain.EventOrderPlaced,
		OrderID:   "o1",
		VendorID:  "v1",
		Status:    "placed",
		Total:     230,
		Items:     []domain.EventItem{{ProductID: "p1", Qty: 2}},
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestConsumer_ProcessEvent(t *testing.T) {
	statusEvent := placedEvent()
	statusEvent.Type = domain.EventStatusChanged
	statusEvent.Status = "accepted"

	tests := []struct {
		name           string
		inputEvent     domain.OrderEvent
		setupMockStore func(*mocks.StoreInterface)
	}{
		{
			name:       "order placed",
			inputEvent: placedEvent(),
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RecordOrderPlaced", mock.Anything, placedEvent()).Return(true, nil).Once()
			},
		},
		{
			name:       "duplicate delivery",
			inputEvent: placedEvent(),
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RecordOrderPlaced", mock.Anything, placedEvent()).Return(false, nil).Once()
			},
		},
		{
			name:       "status changed",
			inputEvent: statusEvent,
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RecordStatusChange", mock.Anything, statusEvent).Return(true, nil).Once()
			},
		},
		{
			name:       "store error",
			inputEvent: statusEvent,
			setupMockStore: func(mockStore *mocks.StoreInterface) {
				mockStore.On("RecordStatusChange", mock.Anything, statusEvent).Return(false, errors.New("redis down")).Once()
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockStore := mocks.NewStoreInterface(t)
			testCase.setupMockStore(mockStore)

			consumer := &service.Consumer{Store: mockStore}
			consumer.ProcessEvent(context.Background(), testCase.inputEvent)
		})
	}
}

func TestConsumer_UnknownEventType(t *testing.T) {
	mockStore := mocks.NewStoreInterface(t)
	consumer := &service.Consumer{Store: mockStore}

	consumer.ProcessEvent(context.Background(), domain.OrderEvent{Type: "new_review", OrderID: "o1"})

	mockStore.AssertNotCalled(t, "RecordOrderPlaced", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "RecordStatusChange", mock.Anything, mock.Anything)
}

func TestConsumer_StartSkipsBadPayloadsAndStopsOnCancel(t *testing.T) {
	reader := mocks.NewMessageReader(t)
	mockStore := mocks.NewStoreInterface(t)
	ctx, cancel := context.WithCancel(context.Background())

	reader.On("ReadMessage", mock.Anything).Return(kafka.Message{Value: []byte("{not json")}, nil).Once()
	reader.On("ReadMessage", mock.Anything).Return(kafka.Message{
		Value: []byte(`{"type":"order_placed","order_id":"o1","vendor_id":"v1","status":"placed","total":230,"items":[{"product_id":"p1","qty":2}],"timestamp":"2024-05-01T10:00:00Z"}`),
	}, nil).Once()
	reader.On("ReadMessage", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(kafka.Message{}, context.Canceled).Once()
	mockStore.On("RecordOrderPlaced", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.OrderID == "o1" && e.Total == 230 && len(e.Items) == 1
	})).Return(true, nil).Once()

	done := make(chan struct{})
	go func() {
		service.NewConsumer(reader, mockStore).Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}
