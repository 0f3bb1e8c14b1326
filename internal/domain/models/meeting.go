// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting types.
const (
	MeetingPhysical = "physical"
	MeetingWhatsApp = "whatsapp"
	MeetingVirtual  = "virtual"
)

// IsValidMeetingType reports whether t is a known meeting type.
func IsValidMeetingType(t string) bool {
	switch t {
	case MeetingPhysical, MeetingWhatsApp, MeetingVirtual:
		return true
	}
	return false
}

// Meeting is a scheduled gathering. Venue is used for physical meetings,
// Link for virtual ones; WhatsApp calls need neither.
type Meeting struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Date           string             `bson:"date" json:"date"` // YYYY-MM-DD
	Time           string             `bson:"time" json:"time"` // HH:MM
	Venue          string             `bson:"venue,omitempty" json:"venue,omitempty"`
	Link           string             `bson:"link,omitempty" json:"link,omitempty"`
	MeetingType    string             `bson:"meeting_type" json:"meeting_type"`
	Agenda         string             `bson:"agenda" json:"agenda"`
	TargetDistrict string             `bson:"target_district" json:"target_district"`
	CreatedBy      primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Location is the human-readable place shown in announcements.
func (m *Meeting) Location() string {
	switch m.MeetingType {
	case MeetingWhatsApp:
		return "WhatsApp Video Call"
	case MeetingVirtual:
		if m.Link != "" {
			return m.Link
		}
		return "Online"
	}
	return m.Venue
}

// VisibleTo reports whether a member of district should see the meeting.
func (m *Meeting) VisibleTo(district string) bool {
	return m.TargetDistrict == AllBihar || m.TargetDistrict == district
}
