package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Scope string

const (
	ScopeClass  Scope = "CLASS"
	ScopeCohort Scope = "COHORT"
)

// ParseScope accepts the canonical names and the client aliases KELAS/ANGKATAN.
func ParseScope(s string) (Scope, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLASS", "KELAS":
		return ScopeClass, true
	case "COHORT", "ANGKATAN":
		return ScopeCohort, true
	}
	return "", false
}

// Campaign is a named collection target (Wadah) members pay into.
type Campaign struct {
	ID           uint64          `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:128;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"targetAmount"`
	Scope        Scope           `gorm:"size:16;not null;index" json:"scope"`
	Active       bool            `gorm:"not null;index" json:"active"`
	OwnerID      uint64          `gorm:"not null;index" json:"ownerId"`
	ClassID      *uint64         `gorm:"index" json:"classId,omitempty"`
	CohortID     *uint64         `gorm:"index" json:"cohortId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
