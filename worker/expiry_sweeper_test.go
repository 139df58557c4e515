package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/connect360/tagdrop/store/mocks"
)

func TestSweep_DrainsBacklogInOneCall(t *testing.T) {
	mockStore := new(mocks.MockStore)
	sw := NewExpirySweeper(mockStore, 0, 100)

	// Two full batches, then a partial one signalling exhaustion.
	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(100, nil).Twice()
	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(37, nil).Once()

	deleted := sw.Sweep(context.Background())
	assert.Equal(t, 237, deleted)
	mockStore.AssertNumberOfCalls(t, "PurgeExpiredDropMessages", 3)
}

func TestSweep_EmptyBacklog(t *testing.T) {
	mockStore := new(mocks.MockStore)
	sw := NewExpirySweeper(mockStore, 0, 100)

	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(0, nil).Once()

	deleted := sw.Sweep(context.Background())
	assert.Equal(t, 0, deleted)
	mockStore.AssertNumberOfCalls(t, "PurgeExpiredDropMessages", 1)
}

func TestSweep_StoreErrorStopsWithoutPanic(t *testing.T) {
	mockStore := new(mocks.MockStore)
	sw := NewExpirySweeper(mockStore, 0, 100)

	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(100, nil).Once()
	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(0, errors.New("db connection failed")).Once()

	deleted := sw.Sweep(context.Background())
	assert.Equal(t, 100, deleted)
}

func TestSweep_ErrorDoesNotWedgeNextSweep(t *testing.T) {
	mockStore := new(mocks.MockStore)
	sw := NewExpirySweeper(mockStore, 0, 100)

	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(0, errors.New("db connection failed")).Once()
	mockStore.On("PurgeExpiredDropMessages", mock.Anything, 100).Return(12, nil).Once()

	sw.Sweep(context.Background())
	deleted := sw.Sweep(context.Background())
	assert.Equal(t, 12, deleted)
}

func TestSweep_SkipsWhileInProgress(t *testing.T) {
	mockStore := new(mocks.MockStore)
	sw := NewExpirySweeper(mockStore, 0, 100)

	// Simulate a sweep already running.
	sw.inProgress.Store(true)

	deleted := sw.Sweep(context.Background())
	assert.Equal(t, 0, deleted)
	mockStore.AssertNotCalled(t, "PurgeExpiredDropMessages", mock.Anything, mock.Anything)
}

func TestSweep_CancelledContext(t *testing.T) {
	mockStore := new(mocks.MockStore)
	sw := NewExpirySweeper(mockStore, 0, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deleted := sw.Sweep(ctx)
	assert.Equal(t, 0, deleted)
	mockStore.AssertNotCalled(t, "PurgeExpiredDropMessages", mock.Anything, mock.Anything)
}
