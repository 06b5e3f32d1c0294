// Package mocks holds testify mocks for the aggregation consumer.
package mocks

import (
	"context"

	"sendr/agg-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type StoreInterface struct {
	mock.Mock
}

func NewStoreInterface(t testingT) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StoreInterface) RecordOrderPlaced(ctx context.Context, e domain.OrderEvent) (bool, error) {
	ret := m.Called(ctx, e)
	return ret.Bool(0), ret.Error(1)
}

func (m *StoreInterface) RecordStatusChange(ctx context.Context, e domain.OrderEvent) (bool, error) {
	ret := m.Called(ctx, e)
	return ret.Bool(0), ret.Error(1)
}

type MessageReader struct {
	mock.Mock
}

func NewMessageReader(t testingT) *MessageReader {
	m := &MessageReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MessageReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(kafka.Message), ret.Error(1)
}
