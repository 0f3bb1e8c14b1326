package adminpolicy

import (
	"errors"
	"testing"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mk(role, district, status string) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Name:     role + " " + district,
		District: district,
		Role:     role,
		Status:   status,
	}
}

func strp(s string) *string { return &s }

func TestAuthorize_Review(t *testing.T) {
	super := mk(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	subGaya := mk(models.RoleSubAdmin, "Gaya", models.StatusApproved)
	member := mk(models.RoleMember, "Gaya", models.StatusApproved)

	pendingGaya := mk(models.RoleMember, "Gaya", models.StatusPending)
	pendingPatna := mk(models.RoleMember, "Patna", models.StatusPending)
	editGaya := mk(models.RoleMember, "Gaya", models.StatusApproved)
	editGaya.PendingChanges = &models.ProfileChanges{District: strp("Patna")}
	approvedGaya := mk(models.RoleMember, "Gaya", models.StatusApproved)
	rejectedGaya := mk(models.RoleMember, "Gaya", models.StatusRejected)
	subSelf := *subGaya
	subSelf.PendingChanges = &models.ProfileChanges{District: strp("Patna")}
	superSelf := *super
	superSelf.PendingChanges = &models.ProfileChanges{Designation: strp("State President")}

	tests := []struct {
		name   string
		actor  *models.User
		action Action
		target *models.User
		allow  bool
		reason string
	}{
		{"super approves any district", super, ApproveUser, pendingGaya, true, ""},
		{"sub admin approves own district", subGaya, ApproveUser, pendingGaya, true, ""},
		{"sub admin other district", subGaya, ApproveUser, pendingPatna, false, ReasonOtherDistrict},
		{"sub admin rejects edit in own district", subGaya, RejectUser, editGaya, true, ""},
		{"member cannot approve", member, ApproveUser, pendingGaya, false, ReasonAdminOnly},
		{"approve already approved is allowed (no-op)", super, ApproveUser, approvedGaya, true, ""},
		{"reject approved without proposal", super, RejectUser, approvedGaya, false, ReasonNothingToReview},
		{"approve rejected without proposal", super, ApproveUser, rejectedGaya, false, ReasonNothingToReview},
		{"sub admin approves own edit", subGaya, ApproveUser, &subSelf, false, ReasonSelfReview},
		{"sub admin rejects own edit", subGaya, RejectUser, &subSelf, false, ReasonSelfReview},
		{"super approves own edit", super, ApproveUser, &superSelf, true, ""},
	}
	for _, tt := range tests {
		d := Authorize(tt.actor, tt.action, ForUser(tt.target))
		if d.Allowed != tt.allow {
			t.Errorf("%s: allowed got %v, want %v (reason %q)", tt.name, d.Allowed, tt.allow, d.Reason)
		}
		if !tt.allow && d.Reason != tt.reason {
			t.Errorf("%s: reason got %q, want %q", tt.name, d.Reason, tt.reason)
		}
	}
}

func TestAuthorize_SuperAdminOnly(t *testing.T) {
	super := mk(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	sub := mk(models.RoleSubAdmin, "Gaya", models.StatusApproved)
	target := mk(models.RoleMember, "Gaya", models.StatusApproved)

	for _, a := range []Action{UpdateStatus, DeleteUser, PromoteSubAdmin, AssignBadge} {
		if d := Authorize(super, a, ForUser(target)); !d.Allowed {
			t.Errorf("super %s: denied %q", a, d.Reason)
		}
		if d := Authorize(sub, a, ForUser(target)); d.Allowed || d.Reason != ReasonSuperAdminOnly {
			t.Errorf("sub %s: got %+v, want super-only denial", a, d)
		}
	}

	if d := Authorize(super, AddMember, None); !d.Allowed {
		t.Errorf("super add member denied: %q", d.Reason)
	}
	if d := Authorize(sub, AddMember, None); d.Allowed {
		t.Error("sub admin add member should be denied")
	}
}

func TestAuthorize_SelfTargetDenied(t *testing.T) {
	super := mk(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	for _, a := range []Action{UpdateStatus, DeleteUser, PromoteSubAdmin} {
		d := Authorize(super, a, ForUser(super))
		if d.Allowed || (a != PromoteSubAdmin && d.Reason != ReasonSelfTarget) {
			t.Errorf("%s on self: got %+v", a, d)
		}
	}
	// Badges are not destructive; self-assignment is allowed.
	if d := Authorize(super, AssignBadge, ForUser(super)); !d.Allowed {
		t.Errorf("self badge: denied %q", d.Reason)
	}
}

func TestAuthorize_PromoteRequiresMember(t *testing.T) {
	super := mk(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	sub := mk(models.RoleSubAdmin, "Gaya", models.StatusApproved)
	d := Authorize(super, PromoteSubAdmin, ForUser(sub))
	if d.Allowed || d.Reason != ReasonNotMember {
		t.Errorf("promote sub admin: got %+v", d)
	}
}

func TestAuthorize_Notices(t *testing.T) {
	member := mk(models.RoleMember, "Gaya", models.StatusApproved)
	d := Authorize(member, CreateNotice, None)
	if d.Allowed || d.Reason != "Members cannot post notices" {
		t.Errorf("member notice: got %+v", d)
	}
	if d := Authorize(member, CreateMeeting, None); d.Allowed {
		t.Error("member meeting should be denied")
	}
	for _, role := range []string{models.RoleSuperAdmin, models.RoleSubAdmin} {
		a := mk(role, "Gaya", models.StatusApproved)
		if d := Authorize(a, CreateNotice, None); !d.Allowed {
			t.Errorf("%s notice denied: %q", role, d.Reason)
		}
	}
}

func TestAuthorize_DeletePost(t *testing.T) {
	author := mk(models.RoleMember, "Gaya", models.StatusApproved)
	other := mk(models.RoleMember, "Gaya", models.StatusApproved)
	sub := mk(models.RoleSubAdmin, "Gaya", models.StatusApproved)
	super := mk(models.RoleSuperAdmin, "Patna", models.StatusApproved)
	target := Target{PostAuthor: author.ID.Hex()}

	if !Authorize(author, DeletePost, target).Allowed {
		t.Error("author should delete own post")
	}
	if !Authorize(super, DeletePost, target).Allowed {
		t.Error("super admin should delete any post")
	}
	if Authorize(other, DeletePost, target).Allowed {
		t.Error("other member should not delete")
	}
	if Authorize(sub, DeletePost, target).Allowed {
		t.Error("sub admin should not delete others' posts")
	}
}

func TestAuthorize_SubmitEdit(t *testing.T) {
	m := mk(models.RoleMember, "Gaya", models.StatusApproved)
	other := mk(models.RoleMember, "Gaya", models.StatusApproved)
	if !Authorize(m, SubmitEdit, ForUser(m)).Allowed {
		t.Error("self edit should be allowed")
	}
	if d := Authorize(m, SubmitEdit, ForUser(other)); d.Allowed || d.Reason != ReasonOwnProfileOnly {
		t.Errorf("edit other: got %+v", d)
	}
	p := mk(models.RoleMember, "Gaya", models.StatusPending)
	if !Authorize(p, SubmitEdit, ForUser(p)).Allowed {
		t.Error("pending member may still correct their profile")
	}
}

func TestAuthorize_InactiveActor(t *testing.T) {
	s := mk(models.RoleSuperAdmin, "Patna", models.StatusSuspended)
	target := mk(models.RoleMember, "Gaya", models.StatusPending)
	if d := Authorize(s, ApproveUser, ForUser(target)); d.Allowed || d.Reason != ReasonInactiveActor {
		t.Errorf("suspended actor: got %+v", d)
	}
	if d := Authorize(nil, ApproveUser, ForUser(target)); d.Allowed || d.Reason != ReasonNotSignedIn {
		t.Errorf("nil actor: got %+v", d)
	}
	if d := Authorize(mk(models.RoleSuperAdmin, "Patna", models.StatusApproved), Action("launch"), None); d.Allowed {
		t.Error("unknown action should be denied")
	}
}

func TestDecision_Err(t *testing.T) {
	if err := Allow.Err(CreateNotice); err != nil {
		t.Errorf("allowed decision: got %v", err)
	}
	err := Deny(ReasonMembersNoNotices).Err(CreateNotice)
	var de *DeniedError
	if !errors.As(err, &de) || de.Action != CreateNotice || err.Error() != ReasonMembersNoNotices {
		t.Errorf("got %#v", err)
	}
}
