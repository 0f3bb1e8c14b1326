// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values. Stored upper-case, matching the values the mobile client sends.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleSubAdmin   = "SUB_ADMIN"
	RoleMember     = "MEMBER"
)

// Status values.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusSuspended = "SUSPENDED"
	// StatusDeleted is never written by the delete action (records are removed),
	// but it is honored everywhere so a future soft-delete needs no code changes.
	StatusDeleted = "DELETED"
)

// Badge values. An empty badge means none.
const (
	BadgeBlue  = "blue"  // head
	BadgeGreen = "green" // mid
	BadgeRed   = "red"   // low
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r string) bool {
	switch r {
	case RoleSuperAdmin, RoleSubAdmin, RoleMember:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspended, StatusDeleted:
		return true
	}
	return false
}

// IsValidBadge reports whether b is an assignable badge ("" clears it).
func IsValidBadge(b string) bool {
	switch b {
	case "", BadgeBlue, BadgeGreen, BadgeRed:
		return true
	}
	return false
}

// User is a registered member of the cell, including admins.
//
// PendingChanges holds at most one outstanding edit proposal. Version is bumped on
// every persisted change and guards read-modify-write cycles.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	NameCI               string             `bson:"name_ci" json:"-"` // folded, for search
	FatherName           string             `bson:"father_name" json:"father_name"`
	Mobile               string             `bson:"mobile" json:"mobile"`
	District             string             `bson:"district" json:"district"`
	Designation          string             `bson:"designation" json:"designation"`
	DesignationCI        string             `bson:"designation_ci" json:"-"`
	Jurisdiction         string             `bson:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
	Role                 string             `bson:"role" json:"role"`
	Status               string             `bson:"status" json:"status"`
	Badge                string             `bson:"badge,omitempty" json:"badge,omitempty"`
	PhotoURL             string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	AppointmentLetterURL string             `bson:"appointment_letter_url,omitempty" json:"appointment_letter_url,omitempty"`
	PendingChanges       *ProfileChanges    `bson:"pending_changes,omitempty" json:"pending_changes,omitempty"`
	RejectionReason      string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	Version              int64              `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasProposal reports whether the user has an outstanding edit proposal.
func (u *User) HasProposal() bool {
	return u.PendingChanges != nil && !u.PendingChanges.IsEmpty()
}

// IsAdmin reports whether the user holds either admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleSubAdmin
}

// ProfileChanges is a partial overlay of the editable profile fields.
// A nil field means the key is absent from the proposal.
type ProfileChanges struct {
	Name         *string `bson:"name,omitempty" json:"name,omitempty"`
	FatherName   *string `bson:"father_name,omitempty" json:"father_name,omitempty"`
	Mobile       *string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	District     *string `bson:"district,omitempty" json:"district,omitempty"`
	Designation  *string `bson:"designation,omitempty" json:"designation,omitempty"`
	Jurisdiction *string `bson:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
}

// IsEmpty reports whether no key is present.
func (c *ProfileChanges) IsEmpty() bool {
	return c == nil || (c.Name == nil && c.FatherName == nil && c.Mobile == nil &&
		c.District == nil && c.Designation == nil && c.Jurisdiction == nil)
}

// Keys lists the present keys using their wire names.
func (c *ProfileChanges) Keys() []string {
	if c == nil {
		return nil
	}
	var keys []string
	if c.Name != nil {
		keys = append(keys, "name")
	}
	if c.FatherName != nil {
		keys = append(keys, "father_name")
	}
	if c.Mobile != nil {
		keys = append(keys, "mobile")
	}
	if c.District != nil {
		keys = append(keys, "district")
	}
	if c.Designation != nil {
		keys = append(keys, "designation")
	}
	if c.Jurisdiction != nil {
		keys = append(keys, "jurisdiction")
	}
	return keys
}

// Clone returns a deep copy so callers can mutate without aliasing the original.
func (u *User) Clone() User {
	c := *u
	if u.PendingChanges != nil {
		pc := *u.PendingChanges
		pc.Name = cloneStr(pc.Name)
		pc.FatherName = cloneStr(pc.FatherName)
		pc.Mobile = cloneStr(pc.Mobile)
		pc.District = cloneStr(pc.District)
		pc.Designation = cloneStr(pc.Designation)
		pc.Jurisdiction = cloneStr(pc.Jurisdiction)
		c.PendingChanges = &pc
	}
	return c
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
