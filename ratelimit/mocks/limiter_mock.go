package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Consume(scope string, rawIdentifier string, maxInWindow int, window time.Duration) bool {
	args := m.Called(scope, rawIdentifier, maxInWindow, window)
	return args.Bool(0)
}
