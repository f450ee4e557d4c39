package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits amount columns keep.
const MoneyScale = 2

// FitsMoney reports whether d is stored without rounding.
func FitsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusValid    Status = "VALID"
	StatusRejected Status = "REJECTED"
)

// ParseStatus is case-insensitive: query strings use lower case.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusValid, StatusRejected:
		return st, true
	}
	return "", false
}

// CanTransitionTo reports whether the lifecycle allows s -> next.
// PENDING is the only non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusValid || next == StatusRejected)
}

// Submission is one payment proof sent by a member against a campaign.
// Submitter name, NIM and class name are snapshots taken at submit time.
type Submission struct {
	ID            uint64          `gorm:"primaryKey" json:"id"`
	CampaignID    uint64          `gorm:"not null;index:idx_submission_campaign_status,priority:1" json:"campaignId"`
	SubmitterID   uint64          `gorm:"not null;index" json:"submitterId"`
	SubmitterName string          `gorm:"size:128" json:"submitterName"`
	SubmitterNIM  string          `gorm:"column:submitter_nim;size:32" json:"submitterNim"`
	ClassName     string          `gorm:"size:128" json:"className"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Note          string          `gorm:"type:text" json:"note"`
	PeriodMonth   int             `json:"periodMonth,omitempty"`
	PeriodYear    int             `json:"periodYear,omitempty"`
	Status        Status          `gorm:"size:16;not null;index:idx_submission_campaign_status,priority:2" json:"status"`
	AdminNote     string          `gorm:"size:500" json:"adminNote"`
	ProofRef      string          `gorm:"size:255;uniqueIndex" json:"proofImageRef"`
	DecidedBy     *uint64         `json:"decidedBy,omitempty"`
	DecidedAt     *time.Time      `json:"decidedAt,omitempty"`
	SubmittedAt   time.Time       `gorm:"not null;index" json:"submittedAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// populated by history queries only
	CampaignName string `gorm:"->;-:migration" json:"campaignName,omitempty"`
}

// Expense is money spent out of a campaign by its owner. Append-only.
type Expense struct {
	ID         uint64          `gorm:"primaryKey" json:"id"`
	CampaignID uint64          `gorm:"not null;index" json:"campaignId"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Note       string          `gorm:"type:text" json:"note"`
	RecordedBy uint64          `gorm:"not null" json:"recordedBy"`
	CreatedAt  time.Time       `json:"createdAt"`
}
