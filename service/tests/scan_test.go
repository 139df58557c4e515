package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/connect360/tagdrop/models"
	"github.com/connect360/tagdrop/service"
	"github.com/connect360/tagdrop/store"
)

func TestResolveScan_NotFound(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetTagByCode", ctx, "NOPE").Return(models.Tag{}, store.ErrItemNotFound)

	_, err := svc.ResolveScan(ctx, "NOPE")
	assert.ErrorIs(t, err, service.ErrTagNotFound)
}

func TestResolveScan_StoreError(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetTagByCode", ctx, "TAG-1").Return(models.Tag{}, errors.New("db connection failed"))

	_, err := svc.ResolveScan(ctx, "TAG-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrTagNotFound)
}

func TestResolveScan_InactiveTag_MetadataOnly(t *testing.T) {
	svc, mockStore, _, mockMQ, _ := setupService(t)
	ctx := context.Background()

	tag := models.Tag{Id: "t1", Code: "TAG-1", DomainType: models.DomainCar, Status: models.TagSuspended}
	mockStore.On("GetTagByCode", ctx, "TAG-1").Return(tag, nil)

	result, err := svc.ResolveScan(ctx, "TAG-1")
	assert.NoError(t, err)
	assert.Equal(t, models.TagSuspended, result.Metadata.Status)
	assert.Empty(t, result.Actions)
	assert.Empty(t, result.DropToken)

	// Suspended tags stay dark: no scan event leaves the process.
	mockMQ.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestResolveScan_ActiveCar(t *testing.T) {
	svc, mockStore, _, mockMQ, tokens := setupService(t)
	ctx := context.Background()

	tag := models.Tag{
		Id:              "t1",
		Code:            "TAG-1",
		DomainType:      models.DomainCar,
		Status:          models.TagActive,
		AllowMaskedCall: true,
		AllowSms:        true,
	}
	mockStore.On("GetTagByCode", ctx, "TAG-1").Return(tag, nil)

	sendDone := wrapMockWithSignal(mockMQ.On("Send", mock.Anything, mock.Anything).Return(nil))

	result, err := svc.ResolveScan(ctx, "TAG-1")
	assert.NoError(t, err)

	actionTypes := make([]string, 0, len(result.Actions))
	for _, a := range result.Actions {
		actionTypes = append(actionTypes, a.ActionType)
	}
	assert.Equal(t, []string{"MASKED_CALL_OWNER", "SMS_OWNER", "REPORT_PARKING_ISSUE"}, actionTypes)

	// The drop token is derived, never stored; a rescan yields the same one.
	assert.Equal(t, tokens.DeriveForTag("TAG-1"), result.DropToken)
	assert.True(t, tokens.IsValidFormat(result.DropToken))

	select {
	case <-sendDone:
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for scan event publish")
	}

	sentBody := mockMQ.Calls[0].Arguments.String(1)
	var event service.ScanEvent
	assert.NoError(t, json.Unmarshal([]byte(sentBody), &event))
	assert.Equal(t, "TAG-1", event.TagCode)
	assert.Equal(t, models.DomainCar, event.DomainType)
	assert.NotEmpty(t, event.EventId)
}

func TestResolveScan_ActiveKidActions(t *testing.T) {
	svc, mockStore, _, mockMQ, _ := setupService(t)
	ctx := context.Background()

	tag := models.Tag{
		Id:              "t2",
		Code:            "TAG-2",
		DomainType:      models.DomainKid,
		Status:          models.TagActive,
		AllowMaskedCall: true,
	}
	mockStore.On("GetTagByCode", ctx, "TAG-2").Return(tag, nil)
	sendDone := wrapMockWithSignal(mockMQ.On("Send", mock.Anything, mock.Anything).Return(nil))

	result, err := svc.ResolveScan(ctx, "TAG-2")
	assert.NoError(t, err)

	actionTypes := make([]string, 0, len(result.Actions))
	for _, a := range result.Actions {
		actionTypes = append(actionTypes, a.ActionType)
	}
	assert.Equal(t, []string{"CALL_PRIMARY_GUARDIAN", "NOTIFY_GUARDIANS"}, actionTypes)

	select {
	case <-sendDone:
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for scan event publish")
	}
}
