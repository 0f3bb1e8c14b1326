package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/app/system/proposal"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubmitEdit stores changes as the actor's own pending proposal, replacing
// any earlier one. Values are normalized and validated here; a proposed
// mobile must not belong to another member.
func (s *Service) SubmitEdit(ctx context.Context, actor *models.User, changes models.ProfileChanges) (models.User, error) {
	if actor == nil {
		return models.User{}, adminpolicy.Deny(adminpolicy.ReasonNotSignedIn).Err(adminpolicy.SubmitEdit)
	}
	if err := cleanChanges(&changes); err != nil {
		return models.User{}, err
	}
	if changes.Mobile != nil {
		if other, err := s.users.GetByMobile(ctx, *changes.Mobile); err == nil && other.ID != actor.ID {
			return models.User{}, userstore.ErrDuplicateMobile
		}
	}

	out, err := s.mutate(ctx, actor, adminpolicy.SubmitEdit, actor.ID, func(u models.User) (models.User, bool, error) {
		next, err := proposal.Submit(u, changes, s.now())
		if errors.Is(err, proposal.ErrEmptyProposal) {
			return u, false, inputval.Invalid("changes", "Please change at least one field.")
		}
		return next, err == nil, err
	})
	if err != nil {
		return models.User{}, err
	}
	s.audit.Admin(ctx, audit.EventEditSubmitted, actor.ID, targetRef(out), out.District,
		map[string]string{"keys": strings.Join(out.PendingChanges.Keys(), ",")})
	return out, nil
}

// cleanChanges normalizes present keys and validates them. Empty strings for
// required fields are rejected; an empty jurisdiction clears it.
func cleanChanges(c *models.ProfileChanges) error {
	res := &inputval.Result{}
	required := func(p **string, field, label string, norm func(string) string) {
		if *p == nil {
			return
		}
		v := norm(**p)
		if v == "" {
			res.Add(field, label+" cannot be empty.")
			return
		}
		*p = &v
	}
	required(&c.Name, "name", "Name", normalize.TitleName)
	required(&c.FatherName, "father_name", "Father's name", normalize.TitleName)
	required(&c.Designation, "designation", "Designation", normalize.Name)

	if c.Mobile != nil {
		m := normalize.Mobile(*c.Mobile)
		if !inputval.IsValidMobile(m) {
			res.Add("mobile", inputval.MobileMessage)
		}
		c.Mobile = &m
	}
	if c.District != nil {
		d, ok := models.CanonicalDistrict(*c.District)
		if !ok {
			res.Add("district", "Please choose a valid district.")
		}
		c.District = &d
	}
	if c.Jurisdiction != nil {
		j := normalize.Name(*c.Jurisdiction)
		c.Jurisdiction = &j
	}
	return res.Err()
}

// ReviewItem is one entry of the admin review queue.
type ReviewItem struct {
	Kind proposal.Kind `json:"kind"`
	User models.User   `json:"user"`
}

// ReviewQueue lists signups awaiting approval and pending edit proposals.
// Super admins see every district, sub admins their own.
func (s *Service) ReviewQueue(ctx context.Context, actor *models.User) ([]ReviewItem, error) {
	if actor == nil || !actor.IsAdmin() || actor.Status != models.StatusApproved {
		return nil, s.authorize(ctx, actor, adminpolicy.ApproveUser, adminpolicy.None)
	}
	district := ""
	if actor.Role == models.RoleSubAdmin {
		district = actor.District
	}
	users, err := s.users.ReviewQueue(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("review queue: %w", err)
	}
	items := make([]ReviewItem, 0, len(users))
	for _, u := range users {
		if actor.Role == models.RoleSubAdmin && u.ID == actor.ID {
			continue
		}
		if k := proposal.KindOf(&u); k != proposal.KindNone {
			items = append(items, ReviewItem{Kind: k, User: u})
		}
	}
	return items, nil
}

// Approve completes a signup or merges an edit proposal. Approving a record
// with nothing pending returns it unchanged with Outcome.Changed false.
func (s *Service) Approve(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.User, proposal.Outcome, error) {
	var res proposal.Outcome
	out, err := s.mutate(ctx, actor, adminpolicy.ApproveUser, id, func(u models.User) (models.User, bool, error) {
		var next models.User
		next, res = proposal.Approve(u, s.now())
		return next, res.Changed, nil
	})
	if err != nil {
		return models.User{}, res, err
	}
	if res.Changed {
		event := audit.EventUserApproved
		if res.Kind == proposal.KindEdit {
			event = audit.EventEditApproved
		}
		s.audit.Admin(ctx, event, actor.ID, targetRef(out), out.District,
			map[string]string{"merged": strings.Join(res.MergedKeys, ",")})
		s.metrics.Review(string(res.Kind), "approve")
		s.log.Info("review approved", zap.String("user_id", out.ID.Hex()), zap.String("kind", string(res.Kind)))
	}
	return out, res, nil
}

// Reject discards a proposal (recording reason) or rejects a signup.
func (s *Service) Reject(ctx context.Context, actor *models.User, id primitive.ObjectID, reason string) (models.User, proposal.Outcome, error) {
	var res proposal.Outcome
	out, err := s.mutate(ctx, actor, adminpolicy.RejectUser, id, func(u models.User) (models.User, bool, error) {
		var next models.User
		next, res = proposal.Reject(u, reason, s.now())
		return next, res.Changed, nil
	})
	if err != nil {
		return models.User{}, res, err
	}
	if res.Changed {
		event := audit.EventUserRejected
		if res.Kind == proposal.KindEdit {
			event = audit.EventEditRejected
		}
		s.audit.Admin(ctx, event, actor.ID, targetRef(out), out.District,
			map[string]string{"reason": out.RejectionReason})
		s.metrics.Review(string(res.Kind), "reject")
	}
	return out, res, nil
}
