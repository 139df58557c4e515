package models

import "time"

// DropMessage is one anonymous message row. The only key is the one-way
// token hash; nothing relates a message back to a user or device.
type DropMessage struct {
	Id        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DomainType string

const (
	DomainCar DomainType = "CAR"
	DomainPet DomainType = "PET"
	DomainKid DomainType = "KID"
)

type TagStatus string

const (
	TagMinted    TagStatus = "MINTED"
	TagUnclaimed TagStatus = "UNCLAIMED"
	TagActive    TagStatus = "ACTIVE"
	TagSuspended TagStatus = "SUSPENDED"
	TagRevoked   TagStatus = "REVOKED"
)

// Tag is a physical QR/NFC tag record with its contact permissions.
type Tag struct {
	Id              string
	Code            string
	DomainType      DomainType
	Status          TagStatus
	AllowMaskedCall bool
	AllowWhatsapp   bool
	AllowSms        bool
}

type ScanAction struct {
	ActionType string `json:"actionType"`
}

type ScanMetadata struct {
	TagCode    string     `json:"tagCode"`
	DomainType DomainType `json:"domainType"`
	Status     TagStatus  `json:"status"`
}

// ScanResult is the resolved payload for a scanned tag. DropToken is the
// tag's deterministic message inbox token; it is derived, never looked up.
type ScanResult struct {
	Metadata  ScanMetadata `json:"metadata"`
	Actions   []ScanAction `json:"actions,omitempty"`
	DropToken string       `json:"dropToken,omitempty"`
}
