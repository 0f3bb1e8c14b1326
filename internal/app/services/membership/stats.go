package membership

import (
	"context"
	"fmt"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/domain/models"
)

// Stats are the dashboard counters.
type Stats struct {
	TotalMembers     int64  `json:"total_members"`
	PendingApprovals int64  `json:"pending_approvals"`
	ActiveDistricts  int    `json:"active_districts"`
	District         string `json:"district,omitempty"`
}

// Stats counts approved members, signups awaiting approval and districts
// with at least one approved member. Scoped like ReviewQueue: the super admin
// counts every district, a sub admin only their own.
func (s *Service) Stats(ctx context.Context, actor *models.User) (Stats, error) {
	if actor == nil || !actor.IsAdmin() || actor.Status != models.StatusApproved {
		return Stats{}, s.authorize(ctx, actor, adminpolicy.ApproveUser, adminpolicy.None)
	}
	var out Stats
	if actor.Role == models.RoleSubAdmin {
		out.District = actor.District
	}
	counts, err := s.users.StatusCounts(ctx, out.District)
	if err != nil {
		return Stats{}, fmt.Errorf("status counts: %w", err)
	}

	districts := map[string]bool{}
	for _, c := range counts {
		switch c.Status {
		case models.StatusApproved:
			out.TotalMembers += c.N
			if c.N > 0 {
				districts[c.District] = true
			}
		case models.StatusPending:
			out.PendingApprovals += c.N
		}
	}
	out.ActiveDistricts = len(districts)
	return out, nil
}
