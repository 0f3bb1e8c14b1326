// Package proposal applies and discards profile edit proposals.
//
// A user record can wait for two different admin decisions: first approval of
// a new signup (status PENDING) and approval of an edit proposal
// (PendingChanges set). Both share the review queue but are separate kinds.
//
// All functions work on a copy of the record and return it; callers persist
// the copy with a version check so no partial merge is ever visible.
package proposal

import (
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/sangathan/internal/domain/models"
)

// DefaultRejectionReason is recorded when an admin rejects a proposal without a reason.
const DefaultRejectionReason = "Changes Rejected"

// Kind tags what a record is waiting for.
type Kind string

const (
	KindNone   Kind = ""
	KindSignup Kind = "signup"
	KindEdit   Kind = "edit"
)

// ErrEmptyProposal is returned when a proposal carries no keys.
var ErrEmptyProposal = errors.New("no changes to submit")

// KindOf reports the review kind for u. A pending signup that also carries a
// proposal is reviewed as a signup; its proposal is merged on approval.
func KindOf(u *models.User) Kind {
	if u.Status == models.StatusPending {
		return KindSignup
	}
	if u.HasProposal() {
		return KindEdit
	}
	return KindNone
}

// Outcome describes what Approve or Reject did.
type Outcome struct {
	Kind         Kind
	Changed      bool
	MergedKeys   []string
	StatusBefore string
	StatusAfter  string
	Discarded    bool
}

// Submit stores changes as u's proposal, replacing any earlier one.
// Canonical fields are not touched.
func Submit(u models.User, changes models.ProfileChanges, now time.Time) (models.User, error) {
	c := trim(changes)
	if c.IsEmpty() {
		return u, ErrEmptyProposal
	}
	out := u.Clone()
	out.PendingChanges = &c
	out.RejectionReason = ""
	out.UpdatedAt = now
	return out, nil
}

// Approve merges u's proposal (if any) and completes a first approval.
// Approving a record with nothing to review returns it unchanged.
func Approve(u models.User, now time.Time) (models.User, Outcome) {
	out := u.Clone()
	res := Outcome{Kind: KindOf(&u), StatusBefore: u.Status, StatusAfter: u.Status}

	if u.HasProposal() {
		res.MergedKeys = u.PendingChanges.Keys()
		apply(&out, u.PendingChanges)
		out.PendingChanges = nil
		out.RejectionReason = ""
		res.Changed = true
	} else if out.PendingChanges != nil {
		out.PendingChanges = nil
	}

	if u.Status == models.StatusPending {
		out.Status = models.StatusApproved
		out.RejectionReason = ""
		res.StatusAfter = models.StatusApproved
		res.Changed = true
	}

	if res.Changed {
		out.UpdatedAt = now
	}
	return out, res
}

// Reject discards u's proposal and records reason, or, with no proposal,
// marks the record REJECTED. No other canonical field changes.
func Reject(u models.User, reason string, now time.Time) (models.User, Outcome) {
	out := u.Clone()
	res := Outcome{Kind: KindOf(&u), StatusBefore: u.Status, StatusAfter: u.Status}

	switch {
	case u.Status != models.StatusPending && u.HasProposal():
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = DefaultRejectionReason
		}
		out.PendingChanges = nil
		out.RejectionReason = reason
		res.Discarded = true
		res.Changed = true
	case u.Status == models.StatusRejected:
		// already rejected
	default:
		out.PendingChanges = nil
		out.Status = models.StatusRejected
		if r := strings.TrimSpace(reason); r != "" {
			out.RejectionReason = r
		}
		res.Discarded = u.HasProposal()
		res.StatusAfter = models.StatusRejected
		res.Changed = true
	}

	if res.Changed {
		out.UpdatedAt = now
	}
	return out, res
}

func apply(u *models.User, c *models.ProfileChanges) {
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.FatherName != nil {
		u.FatherName = *c.FatherName
	}
	if c.Mobile != nil {
		u.Mobile = *c.Mobile
	}
	if c.District != nil {
		u.District = *c.District
	}
	if c.Designation != nil {
		u.Designation = *c.Designation
	}
	if c.Jurisdiction != nil {
		u.Jurisdiction = *c.Jurisdiction
	}
}

func trim(c models.ProfileChanges) models.ProfileChanges {
	t := func(p *string) *string {
		if p == nil {
			return nil
		}
		s := strings.TrimSpace(*p)
		return &s
	}
	return models.ProfileChanges{
		Name:         t(c.Name),
		FatherName:   t(c.FatherName),
		Mobile:       t(c.Mobile),
		District:     t(c.District),
		Designation:  t(c.Designation),
		Jurisdiction: t(c.Jurisdiction),
	}
}
