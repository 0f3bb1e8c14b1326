package membership

import (
	"context"
	"fmt"
	"io"

	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/csvutil"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Directory returns the masked rows viewer may enumerate.
func (s *Service) Directory(ctx context.Context, viewer *models.User, req directorypolicy.ScopeRequest) ([]directorypolicy.MemberView, error) {
	if viewer == nil {
		return nil, ErrMemberNotFound
	}
	scope := directorypolicy.ListScope(viewer, req)

	f := userstore.ListFilter{
		Statuses: []string{models.StatusApproved, models.StatusRejected},
		Search:   scope.Search,
	}
	if !scope.AllDistricts {
		f.District = scope.District
	}
	if scope.IncludeSuspended {
		f.Statuses = append(f.Statuses, models.StatusSuspended)
	}

	users, err := s.users.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}
	return directorypolicy.MaskAll(viewer, scope.Filter(users)), nil
}

// Member returns one masked record. Records outside what viewer could list
// with ViewAll (other than viewer's own) are reported as not found.
func (s *Service) Member(ctx context.Context, viewer *models.User, id primitive.ObjectID) (directorypolicy.MemberView, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return directorypolicy.MemberView{}, err
	}
	if viewer == nil {
		return directorypolicy.MemberView{}, ErrMemberNotFound
	}
	scope := directorypolicy.ListScope(viewer, directorypolicy.ScopeRequest{ViewAll: true})
	if u.ID != viewer.ID && !scope.Includes(u) {
		return directorypolicy.MemberView{}, ErrMemberNotFound
	}
	return directorypolicy.Mask(viewer, u), nil
}

// ExportCSV writes exactly the rows Directory returns for the same request.
func (s *Service) ExportCSV(ctx context.Context, viewer *models.User, req directorypolicy.ScopeRequest, w io.Writer) (int, error) {
	rows, err := s.Directory(ctx, viewer, req)
	if err != nil {
		return 0, err
	}
	return len(rows), csvutil.WriteDirectory(w, rows)
}
