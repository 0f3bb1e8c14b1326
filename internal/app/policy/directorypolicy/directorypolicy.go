// Package directorypolicy decides which member records a viewer may enumerate
// and which fields of a record the viewer may see.
//
// Visibility rules:
//   - Super admins and sub admins are privileged for every record; any user is
//     privileged for their own record.
//   - Mobile number and father's name are shown only to privileged viewers.
//   - Super admins list every district (or one chosen district) and see suspended
//     accounts; everyone else lists their own district unless they ask to view
//     all districts, and never sees suspended accounts.
//   - Pending and deleted records never appear in a listing.
package directorypolicy

import (
	"strings"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Field names accepted by IsFieldVisible.
const (
	FieldName         = "name"
	FieldFatherName   = "father_name"
	FieldMobile       = "mobile"
	FieldDistrict     = "district"
	FieldDesignation  = "designation"
	FieldJurisdiction = "jurisdiction"
	FieldBadge        = "badge"
	FieldPhoto        = "photo"
	FieldStatus       = "status"
)

// AllDistricts is the district filter value meaning "no district filter".
const AllDistricts = "All"

var publicFields = map[string]bool{
	FieldName:         true,
	FieldDistrict:     true,
	FieldDesignation:  true,
	FieldJurisdiction: true,
	FieldBadge:        true,
	FieldPhoto:        true,
	FieldStatus:       true,
}

var sensitiveFields = map[string]bool{
	FieldFatherName: true,
	FieldMobile:     true,
}

// IsPrivileged reports whether viewer may see target's sensitive fields.
func IsPrivileged(viewer, target *models.User) bool {
	if viewer == nil || target == nil {
		return false
	}
	if viewer.Role == models.RoleSuperAdmin || viewer.Role == models.RoleSubAdmin {
		return true
	}
	return !viewer.ID.IsZero() && viewer.ID == target.ID
}

// IsFieldVisible reports whether field of target is disclosed to viewer.
// Unknown fields are never visible.
func IsFieldVisible(viewer, target *models.User, field string) bool {
	if viewer == nil {
		return false
	}
	if publicFields[field] {
		return true
	}
	if sensitiveFields[field] {
		return IsPrivileged(viewer, target)
	}
	return false
}

// ScopeRequest carries the viewer's listing choices.
type ScopeRequest struct {
	District string // super admin filter; "" or "All" means every district
	ViewAll  bool   // non-super-admin read-only expansion to every district
	Search   string
}

// Scope is the resolved set of records a viewer may enumerate.
type Scope struct {
	AllDistricts     bool
	District         string
	IncludeSuspended bool
	Search           string
}

// ListScope resolves the listing scope for viewer.
func ListScope(viewer *models.User, req ScopeRequest) Scope {
	s := Scope{Search: strings.TrimSpace(req.Search)}
	if viewer == nil {
		return s
	}

	if viewer.Role == models.RoleSuperAdmin {
		s.IncludeSuspended = true
		d := strings.TrimSpace(req.District)
		if d == "" || strings.EqualFold(d, AllDistricts) {
			s.AllDistricts = true
			return s
		}
		if c, ok := models.CanonicalDistrict(d); ok {
			d = c
		}
		s.District = d
		return s
	}

	if req.ViewAll {
		s.AllDistricts = true
		return s
	}
	s.District = viewer.District
	return s
}

// Includes reports whether u falls inside the scope.
func (s Scope) Includes(u *models.User) bool {
	switch u.Status {
	case models.StatusPending, models.StatusDeleted:
		return false
	case models.StatusSuspended:
		if !s.IncludeSuspended {
			return false
		}
	}
	if !s.AllDistricts && u.District != s.District {
		return false
	}
	// Matching folds case and diacritics the same way the user stores do.
	if q := text.Fold(s.Search); q != "" {
		if !strings.Contains(text.Fold(u.Name), q) &&
			!strings.Contains(text.Fold(u.Designation), q) {
			return false
		}
	}
	return true
}

// Filter returns the users inside the scope, preserving order.
func (s Scope) Filter(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for i := range users {
		if s.Includes(&users[i]) {
			out = append(out, users[i])
		}
	}
	return out
}
