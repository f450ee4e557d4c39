package model

import "time"

// Class is a Kelas: a study group inside a cohort.
type Class struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CohortID  uint64    `gorm:"not null;index" json:"cohortId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cohort is an Angkatan, identified by its intake year.
type Cohort struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Year      int       `gorm:"not null;index" json:"year"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
