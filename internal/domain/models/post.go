// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Allowed notice lifetimes in hours.
var NoticeExpiryHours = []int{24, 48, 72, 168}

// DefaultNoticeExpiryHours applies when the author does not choose one.
const DefaultNoticeExpiryHours = 72

// Post is a feed entry. Notices are posts with IsNotice set and an expiry.
//
// The Author* fields are a snapshot taken at creation time; later profile
// edits do not rewrite them.
type Post struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AuthorID          primitive.ObjectID  `bson:"author_id" json:"author_id"`
	AuthorName        string              `bson:"author_name" json:"author_name"`
	AuthorDesignation string              `bson:"author_designation" json:"author_designation"`
	AuthorPhoto       string              `bson:"author_photo,omitempty" json:"author_photo,omitempty"`
	Content           string              `bson:"content" json:"content"`
	ImageURL          string              `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Likes             int                 `bson:"likes" json:"likes"`
	IsNotice          bool                `bson:"is_notice" json:"is_notice"`
	ExpiresAt         *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	RelatedMeetingID  *primitive.ObjectID `bson:"related_meeting_id,omitempty" json:"related_meeting_id,omitempty"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
}

// IsActiveNotice reports whether p is a notice that has not yet expired at now.
func (p *Post) IsActiveNotice(now time.Time) bool {
	return p.IsNotice && p.ExpiresAt != nil && p.ExpiresAt.After(now)
}

// AuthorSnapshot copies the display fields of u onto p.
func (p *Post) AuthorSnapshot(u User) {
	p.AuthorID = u.ID
	p.AuthorName = u.Name
	p.AuthorDesignation = u.Designation
	p.AuthorPhoto = u.PhotoURL
}
