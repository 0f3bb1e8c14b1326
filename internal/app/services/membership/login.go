package membership

import (
	"context"
	"errors"
	"fmt"
	"io"

	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.uber.org/zap"
)

// Login resolves mobile to exactly one user. There is no credential check;
// possession of a registered number is the whole of authentication.
func (s *Service) Login(ctx context.Context, mobile string) (*models.User, error) {
	mobile = normalize.Mobile(mobile)
	if !inputval.IsValidMobile(mobile) {
		return nil, inputval.Invalid("mobile", inputval.MobileMessage)
	}

	u, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			s.metrics.Login(metrics.LoginNotFound)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup mobile: %w", err)
	}

	switch u.Status {
	case models.StatusSuspended:
		s.metrics.Login(metrics.LoginSuspended)
		return u, ErrAccountSuspended
	case models.StatusDeleted:
		s.metrics.Login(metrics.LoginDeleted)
		return u, ErrAccountNotFound
	}

	s.metrics.Login(metrics.LoginOK)
	if u.Role == models.RoleSuperAdmin {
		s.StorageCheck(ctx)
	}
	return u, nil
}

// StorageCheck compares media usage with the configured limit and logs a
// warning when it is exceeded. It never fails.
func (s *Service) StorageCheck(ctx context.Context) (over bool, used int64) {
	if s.media == nil {
		return false, 0
	}
	over, used = s.media.OverLimit(ctx, s.cfg.StorageLimitGB)
	if over {
		s.log.Warn("media storage over limit; retention will use the short window",
			zap.Int64("used_bytes", used),
			zap.Float64("limit_gb", s.cfg.StorageLimitGB),
		)
	}
	return over, used
}

// SignupInput is a self-registration. Letter is required; Photo is optional.
type SignupInput struct {
	Name         string    `validate:"required,max=100" label:"Name"`
	FatherName   string    `validate:"required,max=100" label:"Father's name"`
	Mobile       string    `validate:"mobile10" label:"Mobile"`
	District     string    `validate:"district" label:"District"`
	Designation  string    `validate:"required,max=100" label:"Designation"`
	Jurisdiction string    `validate:"max=100" label:"Jurisdiction"`
	Letter       io.Reader `validate:"-"`
	Photo        io.Reader `validate:"-"`
}

func (in *SignupInput) normalize() {
	in.Name = normalize.TitleName(in.Name)
	in.FatherName = normalize.TitleName(in.FatherName)
	in.Mobile = normalize.Mobile(in.Mobile)
	in.District = normalize.District(in.District)
	in.Designation = normalize.Name(in.Designation)
	in.Jurisdiction = normalize.Name(in.Jurisdiction)
}

// Signup registers a MEMBER awaiting approval.
func (s *Service) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	in.normalize()
	res := inputval.Validate(in)
	if in.Letter == nil {
		res.Add("appointment_letter", MsgLetterRequired)
	}
	if err := res.Err(); err != nil {
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
		Status:       models.StatusPending,
	}
	if err := s.checkCapacity(ctx, u.Mobile); err != nil {
		return models.User{}, err
	}

	var err error
	if u.AppointmentLetterURL, err = s.media.SaveDocument(ctx, media.KindLetter, in.Letter); err != nil {
		return models.User{}, uploadErr("appointment_letter", err)
	}
	if in.Photo != nil {
		if u.PhotoURL, err = s.media.SaveImage(ctx, media.KindPhoto, in.Photo); err != nil {
			return models.User{}, uploadErr("photo", err)
		}
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info("member signed up", zap.String("user_id", created.ID.Hex()), zap.String("district", created.District))
	return created, nil
}

// checkCapacity enforces the member cap and mobile uniqueness before any
// upload is stored. The unique index still guards the insert itself.
func (s *Service) checkCapacity(ctx context.Context, mobile string) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n >= int64(s.cfg.MaxUsers) {
		return ErrMembersLimit
	}
	if _, err := s.users.GetByMobile(ctx, mobile); err == nil {
		return userstore.ErrDuplicateMobile
	} else if !errors.Is(err, userstore.ErrNotFound) {
		return fmt.Errorf("lookup mobile: %w", err)
	}
	return nil
}

func uploadErr(field string, err error) error {
	switch {
	case errors.Is(err, media.ErrUnsupported):
		return inputval.Invalid(field, "Please upload a JPEG, PNG, WebP or PDF file.")
	case errors.Is(err, media.ErrTooLarge):
		return inputval.Invalid(field, "The file is too large.")
	}
	return fmt.Errorf("store %s: %w", field, err)
}
