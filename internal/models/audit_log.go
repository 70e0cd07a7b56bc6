package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditActionCreated     AuditAction = "created"
	AuditActionConfirmed   AuditAction = "confirmed"
	AuditActionCancelled   AuditAction = "cancelled"
	AuditActionRescheduled AuditAction = "rescheduled"
	AuditActionCompleted   AuditAction = "completed"
)

type ActorType string

const (
	ActorTypeUser    ActorType = "USER"
	ActorTypeAPIKey  ActorType = "API_KEY"
	ActorTypeSystem  ActorType = "SYSTEM"
	ActorTypeWebhook ActorType = "WEBHOOK"
)

// BookingAuditLog is an append-only record of booking state transitions.
// One entry per transition; never updated or deleted.
type BookingAuditLog struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID string      `gorm:"index;type:uuid;not null" json:"bookingId"`
	Action    AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	ActorID   *string     `gorm:"type:uuid" json:"actorId,omitempty"`
	ActorType ActorType   `gorm:"type:varchar(20);not null" json:"actorType"`
	Details   string      `gorm:"type:text" json:"details"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *BookingAuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (BookingAuditLog) TableName() string { return "booking_audit_logs" }
