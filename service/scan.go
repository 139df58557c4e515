package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/connect360/tagdrop/models"
	"github.com/connect360/tagdrop/store"
)

var (
	ErrTagNotFound   = errors.New("tag not found")
	ErrScanThrottled = errors.New("scan throttled")
)

// ScanEvent is published to the notification queue when an active tag is
// scanned. Delivery to the owner's devices happens outside this process.
type ScanEvent struct {
	EventId    string            `json:"eventId"`
	TagCode    string            `json:"tagCode"`
	DomainType models.DomainType `json:"domainType"`
	ScannedAt  time.Time         `json:"scannedAt"`
}

// ResolveScan looks up a physical tag code and shapes the public scan
// payload. Non-active tags resolve to metadata only; the caller decides how
// to present the locked state. Active tags additionally carry the permitted
// contact actions and the tag's derived drop token.
func (s *Service) ResolveScan(ctx context.Context, tagCode string) (models.ScanResult, error) {
	if !s.scanLimiter.Allow() {
		return models.ScanResult{}, ErrScanThrottled
	}

	tag, err := s.Store.GetTagByCode(ctx, tagCode)
	if errors.Is(err, store.ErrItemNotFound) {
		return models.ScanResult{}, ErrTagNotFound
	}
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("resolve tag: %w", err)
	}

	result := models.ScanResult{
		Metadata: models.ScanMetadata{
			TagCode:    tag.Code,
			DomainType: tag.DomainType,
			Status:     tag.Status,
		},
	}

	// No payload for tags that aren't ready; saves the hydration work and
	// keeps suspended tags dark.
	if tag.Status != models.TagActive {
		return result, nil
	}

	result.Actions = actionsForTag(tag)
	result.DropToken = s.Tokens.DeriveForTag(tag.Code)

	// Async side-effects - return to caller as soon as the lookup is done
	go func() {
		eventId, err := uuid.NewV7()
		if err != nil {
			return
		}
		event := ScanEvent{
			EventId:    eventId.String(),
			TagCode:    tag.Code,
			DomainType: tag.DomainType,
			ScannedAt:  time.Now().UTC(),
		}
		if msgBytes, err := json.Marshal(event); err == nil {
			s.MQ.Send(context.Background(), string(msgBytes))
		}
	}()

	return result, nil
}

func actionsForTag(tag models.Tag) []models.ScanAction {
	actions := []models.ScanAction{}

	if tag.AllowMaskedCall {
		switch tag.DomainType {
		case models.DomainKid:
			actions = append(actions, models.ScanAction{ActionType: "CALL_PRIMARY_GUARDIAN"})
		default:
			actions = append(actions, models.ScanAction{ActionType: "MASKED_CALL_OWNER"})
		}
	}
	if tag.AllowWhatsapp {
		actions = append(actions, models.ScanAction{ActionType: "WHATSAPP_OWNER"})
	}
	if tag.AllowSms {
		actions = append(actions, models.ScanAction{ActionType: "SMS_OWNER"})
	}

	switch tag.DomainType {
	case models.DomainCar:
		actions = append(actions, models.ScanAction{ActionType: "REPORT_PARKING_ISSUE"})
	case models.DomainPet:
		actions = append(actions, models.ScanAction{ActionType: "REPORT_SIGHTING"})
	case models.DomainKid:
		actions = append(actions, models.ScanAction{ActionType: "NOTIFY_GUARDIANS"})
	}

	return actions
}
