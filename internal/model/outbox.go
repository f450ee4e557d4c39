package model

import "time"

const (
	EventSubmissionCreated   = "submission.created"
	EventSubmissionApproved  = "submission.approved"
	EventSubmissionRejected  = "submission.rejected"
	EventCampaignActivated   = "campaign.activated"
	EventCampaignDeactivated = "campaign.deactivated"
)

const (
	OutboxPending = 0
	OutboxSent    = 1
	OutboxFailed  = 2
)

type OutboxEvent struct {
	ID          uint64    `gorm:"primaryKey"`
	EventType   string    `gorm:"size:64;not null"`
	AggregateID uint64    `gorm:"not null;index"`
	Payload     string    `gorm:"type:text;not null"`
	Status      int       `gorm:"not null;default:0;index"` // 0 pending, 1 sent, 2 failed
	RetryCount  int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OutboxEvent) TableName() string { return "outbox_events" }
