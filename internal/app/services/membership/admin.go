package membership

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpdateStatus suspends or reinstates a member.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, id primitive.ObjectID, status string) (models.User, error) {
	status = normalize.Status(status)
	if status != models.StatusSuspended && status != models.StatusApproved {
		return models.User{}, inputval.Invalid("status", "Status must be SUSPENDED or APPROVED.")
	}
	var before string
	out, err := s.mutate(ctx, actor, adminpolicy.UpdateStatus, id, func(u models.User) (models.User, bool, error) {
		before = u.Status
		if u.Status == status {
			return u, false, nil
		}
		next := u.Clone()
		next.Status = status
		next.UpdatedAt = s.now()
		return next, true, nil
	})
	if err != nil {
		return models.User{}, err
	}
	if before != status {
		s.audit.Admin(ctx, audit.EventStatusChanged, actor.ID, targetRef(out), out.District,
			map[string]string{"from": before, "to": status})
	}
	return out, nil
}

// Delete removes a member record permanently.
func (s *Service) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, adminpolicy.DeleteUser, adminpolicy.ForUser(u)); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.audit.Admin(ctx, audit.EventUserDeleted, actor.ID, &id, u.District,
		map[string]string{"name": u.Name})
	return nil
}

// Promote makes a MEMBER a SUB_ADMIN of their district.
func (s *Service) Promote(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.User, error) {
	out, err := s.mutate(ctx, actor, adminpolicy.PromoteSubAdmin, id, func(u models.User) (models.User, bool, error) {
		next := u.Clone()
		next.Role = models.RoleSubAdmin
		next.UpdatedAt = s.now()
		return next, true, nil
	})
	if err != nil {
		return models.User{}, err
	}
	s.audit.Admin(ctx, audit.EventUserPromoted, actor.ID, targetRef(out), out.District, nil)
	return out, nil
}

// AssignBadge sets or clears (badge "") a member's badge.
func (s *Service) AssignBadge(ctx context.Context, actor *models.User, id primitive.ObjectID, badge string) (models.User, error) {
	badge = normalize.Badge(badge)
	if !models.IsValidBadge(badge) {
		return models.User{}, inputval.Invalid("badge", "Badge must be blue, green, red or none.")
	}
	out, err := s.mutate(ctx, actor, adminpolicy.AssignBadge, id, func(u models.User) (models.User, bool, error) {
		if u.Badge == badge {
			return u, false, nil
		}
		next := u.Clone()
		next.Badge = badge
		next.UpdatedAt = s.now()
		return next, true, nil
	})
	if err != nil {
		return models.User{}, err
	}
	s.audit.Admin(ctx, audit.EventBadgeAssigned, actor.ID, targetRef(out), out.District,
		map[string]string{"badge": badge})
	return out, nil
}

// AddMemberInput is a member created directly by the super admin.
type AddMemberInput struct {
	Name         string    `validate:"required,max=100" label:"Name"`
	FatherName   string    `validate:"max=100" label:"Father's name"`
	Mobile       string    `validate:"mobile10" label:"Mobile"`
	District     string    `validate:"district" label:"District"`
	Designation  string    `validate:"required,max=100" label:"Designation"`
	Jurisdiction string    `validate:"max=100" label:"Jurisdiction"`
	Photo        io.Reader `validate:"-"`
}

// AddMember creates an APPROVED member without the signup review.
func (s *Service) AddMember(ctx context.Context, actor *models.User, in AddMemberInput) (models.User, error) {
	if err := s.authorize(ctx, actor, adminpolicy.AddMember, adminpolicy.None); err != nil {
		return models.User{}, err
	}

	in.Name = normalize.TitleName(in.Name)
	in.FatherName = normalize.TitleName(in.FatherName)
	in.Mobile = normalize.Mobile(in.Mobile)
	in.District = normalize.District(in.District)
	in.Designation = normalize.Name(in.Designation)
	in.Jurisdiction = normalize.Name(in.Jurisdiction)
	if err := inputval.Validate(in).Err(); err != nil {
		return models.User{}, err
	}
	if err := s.checkCapacity(ctx, in.Mobile); err != nil {
		return models.User{}, err
	}

	u := models.User{
		Name:         in.Name,
		FatherName:   in.FatherName,
		Mobile:       in.Mobile,
		District:     in.District,
		Designation:  in.Designation,
		Jurisdiction: in.Jurisdiction,
		Role:         models.RoleMember,
		Status:       models.StatusApproved,
	}
	if in.Photo != nil && s.media != nil {
		url, err := s.media.SaveImage(ctx, media.KindPhoto, in.Photo)
		if err != nil {
			return models.User{}, uploadErr("photo", err)
		}
		u.PhotoURL = url
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.audit.Admin(ctx, audit.EventMemberAdded, actor.ID, targetRef(created), created.District, nil)
	return created, nil
}
