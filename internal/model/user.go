package model

import "time"

type Role string

const (
	RoleMember      Role = "ANGGOTA"
	RoleTreasurer   Role = "BENDAHARA_KELAS"
	RoleCohortAdmin Role = "ADMIN_ANGKATAN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleTreasurer, RoleCohortAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	NIM       string    `gorm:"column:nim;size:32;uniqueIndex;not null" json:"nim"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:128;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      Role      `gorm:"size:32;not null;index" json:"role"`
	ClassID   *uint64   `gorm:"index" json:"classId"`
	CohortID  *uint64   `gorm:"index" json:"cohortId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Actor is the authenticated caller, resolved per request.
type Actor struct {
	ID       uint64
	Role     Role
	ClassID  *uint64
	CohortID *uint64
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, ClassID: u.ClassID, CohortID: u.CohortID}
}
