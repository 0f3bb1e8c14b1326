package directorypolicy

import (
	"testing"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func user(role, district, status string) *models.User {
	return &models.User{
		ID:          primitive.NewObjectID(),
		Name:        "Some " + role,
		FatherName:  "Father",
		Mobile:      "9000000000",
		District:    district,
		Designation: "Karyakarta",
		Role:        role,
		Status:      status,
	}
}

func TestIsPrivileged(t *testing.T) {
	target := user(models.RoleMember, "Gaya", models.StatusApproved)
	tests := []struct {
		name   string
		viewer *models.User
		want   bool
	}{
		{"super admin", user(models.RoleSuperAdmin, "Patna", models.StatusApproved), true},
		{"sub admin other district", user(models.RoleSubAdmin, "Patna", models.StatusApproved), true},
		{"member other", user(models.RoleMember, "Gaya", models.StatusApproved), false},
		{"self", target, true},
		{"nil viewer", nil, false},
	}
	for _, tt := range tests {
		if got := IsPrivileged(tt.viewer, target); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsFieldVisible(t *testing.T) {
	target := user(models.RoleMember, "Gaya", models.StatusApproved)
	member := user(models.RoleMember, "Gaya", models.StatusApproved)
	admin := user(models.RoleSubAdmin, "Gaya", models.StatusApproved)

	tests := []struct {
		viewer *models.User
		field  string
		want   bool
	}{
		{member, FieldName, true},
		{member, FieldDistrict, true},
		{member, FieldDesignation, true},
		{member, FieldJurisdiction, true},
		{member, FieldBadge, true},
		{member, FieldMobile, false},
		{member, FieldFatherName, false},
		{member, "appointment_letter", false},
		{admin, FieldMobile, true},
		{admin, FieldFatherName, true},
		{target, FieldMobile, true},
		{nil, FieldName, false},
	}
	for _, tt := range tests {
		if got := IsFieldVisible(tt.viewer, target, tt.field); got != tt.want {
			t.Errorf("field %q: got %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestMask_HidesSensitiveFieldsFromMembers(t *testing.T) {
	target := user(models.RoleMember, "Gaya", models.StatusApproved)
	viewer := user(models.RoleMember, "Gaya", models.StatusApproved)

	v := Mask(viewer, target)
	if v.Mobile != "" || v.FatherName != "" {
		t.Errorf("expected mobile and father name hidden, got %q / %q", v.Mobile, v.FatherName)
	}
	if v.Name != target.Name || v.District != "Gaya" {
		t.Errorf("public fields missing: %+v", v)
	}

	self := Mask(target, target)
	if self.Mobile != target.Mobile || self.FatherName != target.FatherName {
		t.Errorf("owner should see own sensitive fields: %+v", self)
	}
}

func TestListScope_SuperAdmin(t *testing.T) {
	sa := user(models.RoleSuperAdmin, "Patna", models.StatusApproved)

	s := ListScope(sa, ScopeRequest{})
	if !s.AllDistricts || !s.IncludeSuspended {
		t.Errorf("super admin default scope: got %+v", s)
	}

	s = ListScope(sa, ScopeRequest{District: "All"})
	if !s.AllDistricts {
		t.Errorf("All filter: got %+v", s)
	}

	s = ListScope(sa, ScopeRequest{District: "gaya"})
	if s.AllDistricts || s.District != "Gaya" {
		t.Errorf("district filter: got %+v", s)
	}
}

func TestListScope_NonSuperAdmin(t *testing.T) {
	for _, role := range []string{models.RoleSubAdmin, models.RoleMember} {
		v := user(role, "Gaya", models.StatusApproved)

		s := ListScope(v, ScopeRequest{District: "Patna"})
		if s.AllDistricts || s.District != "Gaya" {
			t.Errorf("%s default: got %+v, want own district", role, s)
		}
		if s.IncludeSuspended {
			t.Errorf("%s should not include suspended", role)
		}

		s = ListScope(v, ScopeRequest{ViewAll: true})
		if !s.AllDistricts || s.IncludeSuspended {
			t.Errorf("%s view all: got %+v", role, s)
		}
	}
}

func TestScope_Filter(t *testing.T) {
	users := []models.User{
		*user(models.RoleMember, "Gaya", models.StatusApproved),
		*user(models.RoleMember, "Gaya", models.StatusPending),
		*user(models.RoleMember, "Gaya", models.StatusDeleted),
		*user(models.RoleMember, "Gaya", models.StatusSuspended),
		*user(models.RoleMember, "Gaya", models.StatusRejected),
		*user(models.RoleMember, "Patna", models.StatusApproved),
	}

	sub := user(models.RoleSubAdmin, "Gaya", models.StatusApproved)
	got := ListScope(sub, ScopeRequest{}).Filter(users)
	if len(got) != 2 {
		t.Fatalf("sub admin Gaya: got %d rows, want 2", len(got))
	}
	for _, u := range got {
		if u.Status == models.StatusSuspended || u.District != "Gaya" {
			t.Errorf("unexpected row %+v", u)
		}
	}

	sa := user(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	got = ListScope(sa, ScopeRequest{}).Filter(users)
	if len(got) != 4 {
		t.Errorf("super admin: got %d rows, want 4", len(got))
	}
}

func TestScope_Search(t *testing.T) {
	a := user(models.RoleMember, "Gaya", models.StatusApproved)
	a.Name = "Amit Kumar"
	b := user(models.RoleMember, "Gaya", models.StatusApproved)
	b.Name = "Rahul"
	b.Designation = "Zila Adhyaksh"

	sa := user(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	s := ListScope(sa, ScopeRequest{Search: "amit"})
	if !s.Includes(a) || s.Includes(b) {
		t.Error("name search mismatch")
	}
	s = ListScope(sa, ScopeRequest{Search: "ZILA"})
	if s.Includes(a) || !s.Includes(b) {
		t.Error("designation search mismatch")
	}
}

func TestScope_SearchFoldsDiacritics(t *testing.T) {
	a := user(models.RoleMember, "Gaya", models.StatusApproved)
	a.Name = "Abhāy Singh"
	b := user(models.RoleMember, "Gaya", models.StatusApproved)
	b.Name = "Ravi"
	b.Designation = "Prakhaṇḍ Mantri"

	sa := user(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	if !ListScope(sa, ScopeRequest{Search: "ABHAY"}).Includes(a) {
		t.Error("folded name search should match")
	}
	if !ListScope(sa, ScopeRequest{Search: "prakhand"}).Includes(b) {
		t.Error("folded designation search should match")
	}
	if !ListScope(sa, ScopeRequest{Search: "  Abhāy "}).Includes(a) {
		t.Error("search with diacritics and padding should match")
	}
}
