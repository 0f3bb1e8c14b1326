package membership

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/proposal"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fixture struct {
	svc   *Service
	users *userstore.MemStore
	ctx   context.Context
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	users := userstore.NewMem()
	mediaSvc := media.NewService(&media.DataURLStore{}, nil, zap.NewNop())
	return &fixture{
		svc:   New(users, mediaSvc, nil, nil, zap.NewNop(), cfg),
		users: users,
		ctx:   context.Background(),
	}
}

func (f *fixture) add(t *testing.T, name, mobile, district, role, status string) *models.User {
	t.Helper()
	u, err := f.users.Create(f.ctx, models.User{
		Name: name, Mobile: mobile, District: district, Designation: "Karyakarta",
		FatherName: "Father of " + name, Role: role, Status: status,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return &u
}

func (f *fixture) reload(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := f.users.GetByID(f.ctx, id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return u
}

func sp(s string) *string { return &s }

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func TestLogin(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	f.add(t, "Suspended", "9000000001", "Gaya", models.RoleMember, models.StatusSuspended)
	f.add(t, "Gone", "9000000002", "Gaya", models.RoleMember, models.StatusDeleted)
	f.add(t, "Rahul Singh", "9988776655", "Gaya", models.RoleMember, models.StatusPending)

	tests := []struct {
		name    string
		mobile  string
		wantErr error
		wantMsg string
	}{
		{"super admin", "+91 93417 49399", nil, ""},
		{"pending may sign in", "9988776655", nil, ""},
		{"unknown", "9111111111", ErrUserNotFound, MsgUserNotFound},
		{"suspended", "9000000001", ErrAccountSuspended, MsgAccountSuspended},
		{"deleted", "9000000002", ErrAccountNotFound, MsgAccountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := f.svc.Login(f.ctx, tt.mobile)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if got := f.svc.LoginMessage(err); got != tt.wantMsg {
				t.Errorf("message: got %q, want %q", got, tt.wantMsg)
			}
			if tt.wantErr == nil && u == nil {
				t.Error("expected a user")
			}
		})
	}

	var ve *inputval.Error
	if _, err := f.svc.Login(f.ctx, "12345"); !errors.As(err, &ve) {
		t.Errorf("short mobile: got %v, want validation error", err)
	}
}

func TestSignup(t *testing.T) {
	f := newFixture(t, Config{})

	u, err := f.svc.Signup(f.ctx, SignupInput{
		Name: "ravi kumar", FatherName: "Shyam Kumar", Mobile: "09123400000",
		District: "gaya", Designation: "Block Adhyaksh", Letter: bytes.NewReader(pdf),
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Status != models.StatusPending || u.Role != models.RoleMember {
		t.Errorf("role/status: got %s/%s", u.Role, u.Status)
	}
	if u.Name != "Ravi Kumar" || u.District != "Gaya" || u.Mobile != "9123400000" {
		t.Errorf("normalization: got %q %q %q", u.Name, u.District, u.Mobile)
	}
	if !strings.HasPrefix(u.AppointmentLetterURL, "data:application/pdf;base64,") {
		t.Errorf("letter url: got %.40q", u.AppointmentLetterURL)
	}

	_, err = f.svc.Signup(f.ctx, SignupInput{
		Name: "Other", FatherName: "X", Mobile: "9123400000", District: "Gaya",
		Designation: "Y", Letter: bytes.NewReader(pdf),
	})
	if !errors.Is(err, userstore.ErrDuplicateMobile) {
		t.Errorf("duplicate: got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.svc.Signup(f.ctx, SignupInput{Name: "A", FatherName: "B", Mobile: "12", District: "Atlantis", Designation: "C"})

	var ve *inputval.Error
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want validation error", err)
	}
	fields := map[string]bool{}
	for _, fe := range ve.Fields {
		fields[fe.Field] = true
	}
	for _, want := range []string{"Mobile", "District", "appointment_letter"} {
		if !fields[want] {
			t.Errorf("missing error for %s in %+v", want, ve.Fields)
		}
	}
}

func TestSignup_MembersLimit(t *testing.T) {
	f := newFixture(t, Config{MaxUsers: 1, LimitContact: "9000000000"})
	f.add(t, "Only", "9000000009", "Patna", models.RoleMember, models.StatusApproved)

	_, err := f.svc.Signup(f.ctx, SignupInput{
		Name: "Late", FatherName: "X", Mobile: "9000000010", District: "Patna",
		Designation: "Y", Letter: bytes.NewReader(pdf),
	})
	if !errors.Is(err, ErrMembersLimit) {
		t.Fatalf("got %v, want ErrMembersLimit", err)
	}
	if got := f.svc.LoginMessage(err); got != "Members limit reached. To add request contact: 9000000000" {
		t.Errorf("message: got %q", got)
	}
}

func TestSubmitEdit_AndApprove(t *testing.T) {
	f := newFixture(t, Config{})
	admin := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	member := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	out, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{District: sp("gaya")})
	if err != nil {
		t.Fatalf("SubmitEdit: %v", err)
	}
	if out.District != "Patna" || out.PendingChanges == nil || *out.PendingChanges.District != "Gaya" {
		t.Fatalf("proposal not stored as expected: %+v", out)
	}

	queue, err := f.svc.ReviewQueue(f.ctx, admin)
	if err != nil || len(queue) != 1 || queue[0].Kind != proposal.KindEdit {
		t.Fatalf("queue: %+v, %v", queue, err)
	}

	approved, res, err := f.svc.Approve(f.ctx, admin, member.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.District != "Gaya" || approved.PendingChanges != nil || !res.Changed {
		t.Errorf("after approve: %+v, %+v", approved, res)
	}

	again, res, err := f.svc.Approve(f.ctx, admin, member.ID)
	if err != nil || res.Changed || again.Version != approved.Version {
		t.Errorf("second approve should be a no-op: %+v, %v", res, err)
	}
}

func TestSubmitEdit_Validation(t *testing.T) {
	f := newFixture(t, Config{})
	member := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)
	f.add(t, "Other", "9000000001", "Patna", models.RoleMember, models.StatusApproved)

	var ve *inputval.Error
	if _, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{Mobile: sp("123")}); !errors.As(err, &ve) {
		t.Errorf("bad mobile: got %v", err)
	}
	if _, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{Name: sp("   ")}); !errors.As(err, &ve) {
		t.Errorf("empty name: got %v", err)
	}
	if _, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{}); !errors.As(err, &ve) {
		t.Errorf("empty proposal: got %v", err)
	}
	if _, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{Mobile: sp("9000000001")}); !errors.Is(err, userstore.ErrDuplicateMobile) {
		t.Errorf("taken mobile: got %v", err)
	}
}

func TestReject(t *testing.T) {
	f := newFixture(t, Config{})
	admin := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	member := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)
	if _, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{Designation: sp("Zila Adhyaksh")}); err != nil {
		t.Fatalf("SubmitEdit: %v", err)
	}

	out, _, err := f.svc.Reject(f.ctx, admin, member.ID, "")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if out.PendingChanges != nil || out.RejectionReason != proposal.DefaultRejectionReason {
		t.Errorf("got %+v", out)
	}
	if out.Designation != "Karyakarta" || out.Status != models.StatusApproved {
		t.Error("reject must not touch canonical fields")
	}
}

func TestReview_SubAdminDistrict(t *testing.T) {
	f := newFixture(t, Config{})
	sub := f.add(t, "Gaya Sub", "9000000001", "Gaya", models.RoleSubAdmin, models.StatusApproved)
	gaya := f.add(t, "Rahul Singh", "9988776655", "Gaya", models.RoleMember, models.StatusPending)
	patna := f.add(t, "Patna Pending", "9000000003", "Patna", models.RoleMember, models.StatusPending)

	queue, err := f.svc.ReviewQueue(f.ctx, sub)
	if err != nil || len(queue) != 1 || queue[0].User.ID != gaya.ID || queue[0].Kind != proposal.KindSignup {
		t.Fatalf("queue: %+v, %v", queue, err)
	}

	if _, _, err := f.svc.Approve(f.ctx, sub, gaya.ID); err != nil {
		t.Errorf("approve own district: %v", err)
	}
	_, _, err = f.svc.Approve(f.ctx, sub, patna.ID)
	var de *adminpolicy.DeniedError
	if !errors.As(err, &de) || de.Reason != adminpolicy.ReasonOtherDistrict {
		t.Errorf("approve other district: got %v", err)
	}
	if f.reload(t, patna.ID).Status != models.StatusPending {
		t.Error("denied approval must not change the record")
	}
}

func TestReview_SubAdminOwnEdit(t *testing.T) {
	f := newFixture(t, Config{})
	sub := f.add(t, "Gaya Sub", "9000000001", "Gaya", models.RoleSubAdmin, models.StatusApproved)
	patna := f.add(t, "Patna Pending", "9000000003", "Patna", models.RoleMember, models.StatusPending)

	if _, err := f.svc.SubmitEdit(f.ctx, sub, models.ProfileChanges{District: sp("Patna")}); err != nil {
		t.Fatalf("SubmitEdit: %v", err)
	}

	queue, err := f.svc.ReviewQueue(f.ctx, sub)
	if err != nil || len(queue) != 0 {
		t.Errorf("own edit must not appear in own queue: %+v, %v", queue, err)
	}

	_, _, err = f.svc.Approve(f.ctx, sub, sub.ID)
	var de *adminpolicy.DeniedError
	if !errors.As(err, &de) || de.Reason != adminpolicy.ReasonSelfReview {
		t.Fatalf("approve own edit: got %v", err)
	}
	if got := f.reload(t, sub.ID); got.District != "Gaya" || got.PendingChanges == nil {
		t.Errorf("record changed after denied self approval: %+v", got)
	}
	if _, _, err := f.svc.Approve(f.ctx, sub, patna.ID); !errors.As(err, &de) || de.Reason != adminpolicy.ReasonOtherDistrict {
		t.Errorf("approve other district: got %v", err)
	}
	if _, _, err := f.svc.Reject(f.ctx, sub, sub.ID, ""); !errors.As(err, &de) || de.Reason != adminpolicy.ReasonSelfReview {
		t.Errorf("reject own edit: got %v", err)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t, Config{})
	super := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	sub := f.add(t, "Gaya Sub", "9000000001", "Gaya", models.RoleSubAdmin, models.StatusApproved)
	f.add(t, "Amit Kumar", "9123456789", "Gaya", models.RoleMember, models.StatusApproved)
	f.add(t, "Neha Kumari", "9555555555", "Nalanda", models.RoleMember, models.StatusApproved)
	f.add(t, "Rahul Singh", "9988776655", "Gaya", models.RoleMember, models.StatusPending)
	f.add(t, "Patna Pending", "9000000003", "Patna", models.RoleMember, models.StatusPending)
	f.add(t, "Suspended", "9000000004", "Araria", models.RoleMember, models.StatusSuspended)
	member := f.add(t, "Gaya Member", "9000000005", "Gaya", models.RoleMember, models.StatusApproved)

	tests := []struct {
		name  string
		actor *models.User
		want  Stats
	}{
		{"super admin", super, Stats{TotalMembers: 5, PendingApprovals: 2, ActiveDistricts: 3}},
		{"sub admin", sub, Stats{TotalMembers: 3, PendingApprovals: 1, ActiveDistricts: 1, District: "Gaya"}},
	}
	for _, tt := range tests {
		got, err := f.svc.Stats(f.ctx, tt.actor)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}

	var de *adminpolicy.DeniedError
	if _, err := f.svc.Stats(f.ctx, member); !errors.As(err, &de) {
		t.Errorf("member: got %v, want DeniedError", err)
	}
}

func TestReviewQueue_MemberDenied(t *testing.T) {
	f := newFixture(t, Config{})
	member := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)
	_, err := f.svc.ReviewQueue(f.ctx, member)
	var de *adminpolicy.DeniedError
	if !errors.As(err, &de) {
		t.Errorf("got %v, want DeniedError", err)
	}
}

func TestAdminActions(t *testing.T) {
	f := newFixture(t, Config{})
	admin := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	member := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	if _, err := f.svc.UpdateStatus(f.ctx, admin, member.ID, "suspended"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got := f.reload(t, member.ID).Status; got != models.StatusSuspended {
		t.Errorf("status: got %s", got)
	}
	var ve *inputval.Error
	if _, err := f.svc.UpdateStatus(f.ctx, admin, member.ID, "DELETED"); !errors.As(err, &ve) {
		t.Errorf("invalid status: got %v", err)
	}
	var de *adminpolicy.DeniedError
	if _, err := f.svc.UpdateStatus(f.ctx, admin, admin.ID, "SUSPENDED"); !errors.As(err, &de) {
		t.Errorf("self suspend: got %v", err)
	}

	if _, err := f.svc.AssignBadge(f.ctx, admin, member.ID, "Blue"); err != nil {
		t.Fatalf("AssignBadge: %v", err)
	}
	if got := f.reload(t, member.ID).Badge; got != models.BadgeBlue {
		t.Errorf("badge: got %q", got)
	}
	if _, err := f.svc.AssignBadge(f.ctx, admin, member.ID, "gold"); !errors.As(err, &ve) {
		t.Errorf("invalid badge: got %v", err)
	}

	if _, err := f.svc.Promote(f.ctx, admin, member.ID); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got := f.reload(t, member.ID).Role; got != models.RoleSubAdmin {
		t.Errorf("role: got %s", got)
	}
	if _, err := f.svc.Promote(f.ctx, admin, member.ID); !errors.As(err, &de) || de.Reason != adminpolicy.ReasonNotMember {
		t.Errorf("promote twice: got %v", err)
	}

	if err := f.svc.Delete(f.ctx, admin, member.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(f.ctx, member.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("after delete: got %v", err)
	}
	if err := f.svc.Delete(f.ctx, admin, admin.ID); !errors.As(err, &de) {
		t.Errorf("self delete: got %v", err)
	}
}

func TestAdminActions_SubAdminDenied(t *testing.T) {
	f := newFixture(t, Config{})
	sub := f.add(t, "Gaya Sub", "9000000001", "Gaya", models.RoleSubAdmin, models.StatusApproved)
	member := f.add(t, "Member", "9000000002", "Gaya", models.RoleMember, models.StatusApproved)

	var de *adminpolicy.DeniedError
	if _, err := f.svc.UpdateStatus(f.ctx, sub, member.ID, models.StatusSuspended); !errors.As(err, &de) {
		t.Errorf("UpdateStatus: got %v", err)
	}
	if err := f.svc.Delete(f.ctx, sub, member.ID); !errors.As(err, &de) {
		t.Errorf("Delete: got %v", err)
	}
	if _, err := f.svc.AddMember(f.ctx, sub, AddMemberInput{Name: "X", Mobile: "9000000003", District: "Gaya", Designation: "Y"}); !errors.As(err, &de) {
		t.Errorf("AddMember: got %v", err)
	}
}

func TestAddMember(t *testing.T) {
	f := newFixture(t, Config{})
	admin := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)

	u, err := f.svc.AddMember(f.ctx, admin, AddMemberInput{
		Name: "Sunita Devi", Mobile: "9000000004", District: "Nalanda", Designation: "Mahila Prakoshth",
	})
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if u.Status != models.StatusApproved || u.Role != models.RoleMember {
		t.Errorf("got %s/%s", u.Role, u.Status)
	}
}

// TestScenario walks the directory, edit and review flow end to end.
func TestScenario(t *testing.T) {
	f := newFixture(t, Config{})
	admin := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	sub := f.add(t, "Gaya Sub", "9000000001", "Gaya", models.RoleSubAdmin, models.StatusApproved)
	f.add(t, "Gaya Member", "1234567890", "Gaya", models.RoleMember, models.StatusApproved)
	f.add(t, "Gaya Suspended", "9000000002", "Gaya", models.RoleMember, models.StatusSuspended)
	f.add(t, "Gaya Pending", "9988776655", "Gaya", models.RoleMember, models.StatusPending)
	amit := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)

	all, err := f.svc.Directory(f.ctx, admin, directorypolicy.ScopeRequest{})
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("super admin rows: got %d, want 5 (all but pending)", len(all))
	}
	var sawSuspended bool
	for _, r := range all {
		if r.Status == models.StatusSuspended {
			sawSuspended = true
		}
		if r.Mobile == "" {
			t.Errorf("super admin should see mobile of %s", r.Name)
		}
	}
	if !sawSuspended {
		t.Error("super admin should see suspended members")
	}

	gaya, _ := f.svc.Directory(f.ctx, sub, directorypolicy.ScopeRequest{})
	if len(gaya) != 2 {
		t.Errorf("sub admin rows: got %d, want 2", len(gaya))
	}
	for _, r := range gaya {
		if r.District != "Gaya" || r.Status == models.StatusSuspended {
			t.Errorf("unexpected row for sub admin: %+v", r)
		}
	}

	memberRows, _ := f.svc.Directory(f.ctx, amit, directorypolicy.ScopeRequest{ViewAll: true})
	for _, r := range memberRows {
		if r.ID != amit.ID.Hex() && (r.Mobile != "" || r.FatherName != "") {
			t.Errorf("member sees sensitive fields of %s", r.Name)
		}
	}

	if _, err := f.svc.SubmitEdit(f.ctx, amit, models.ProfileChanges{District: sp("Gaya")}); err != nil {
		t.Fatalf("SubmitEdit: %v", err)
	}
	if got := f.reload(t, amit.ID).District; got != "Patna" {
		t.Errorf("district before approval: got %s", got)
	}
	if _, _, err := f.svc.Approve(f.ctx, admin, amit.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got := f.reload(t, amit.ID); got.District != "Gaya" || got.PendingChanges != nil {
		t.Errorf("after approval: %+v", got)
	}
}

func TestExportCSV_Masked(t *testing.T) {
	f := newFixture(t, Config{})
	f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)
	viewer := f.add(t, "Viewer", "9000000001", "Patna", models.RoleMember, models.StatusApproved)

	var buf bytes.Buffer
	n, err := f.svc.ExportCSV(f.ctx, viewer, directorypolicy.ScopeRequest{}, &buf)
	if err != nil || n != 2 {
		t.Fatalf("ExportCSV: %d, %v", n, err)
	}
	if strings.Contains(buf.String(), "9123456789") {
		t.Error("member export leaked another member's mobile")
	}
}

func TestMember_HiddenRecords(t *testing.T) {
	f := newFixture(t, Config{})
	viewer := f.add(t, "Viewer", "9000000001", "Patna", models.RoleMember, models.StatusApproved)
	pending := f.add(t, "Pending", "9000000002", "Gaya", models.RoleMember, models.StatusPending)
	other := f.add(t, "Other", "9000000003", "Gaya", models.RoleMember, models.StatusApproved)

	if _, err := f.svc.Member(f.ctx, viewer, pending.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("pending: got %v", err)
	}
	v, err := f.svc.Member(f.ctx, viewer, other.ID)
	if err != nil || v.Mobile != "" || v.Name != "Other" {
		t.Errorf("other district: %+v, %v", v, err)
	}
	self, err := f.svc.Member(f.ctx, viewer, viewer.ID)
	if err != nil || self.Mobile != "9000000001" {
		t.Errorf("self: %+v, %v", self, err)
	}
}

func TestApproveReject_Concurrent(t *testing.T) {
	f := newFixture(t, Config{})
	admin := f.add(t, "Test Admin", "9341749399", "Patna", models.RoleSuperAdmin, models.StatusApproved)
	sub := f.add(t, "Patna Sub", "9000000001", "Patna", models.RoleSubAdmin, models.StatusApproved)
	member := f.add(t, "Amit Kumar", "9123456789", "Patna", models.RoleMember, models.StatusApproved)
	if _, err := f.svc.SubmitEdit(f.ctx, member, models.ProfileChanges{District: sp("Gaya")}); err != nil {
		t.Fatalf("SubmitEdit: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, _, _ = f.svc.Approve(f.ctx, admin, member.ID) }()
	go func() { defer wg.Done(); _, _, _ = f.svc.Reject(f.ctx, sub, member.ID, "no") }()
	wg.Wait()

	got := f.reload(t, member.ID)
	if got.PendingChanges != nil {
		t.Fatal("proposal should be resolved")
	}
	merged := got.District == "Gaya" && got.RejectionReason == ""
	rejected := got.District == "Patna" && got.RejectionReason == "no"
	if merged == rejected {
		t.Errorf("exactly one decision should win: %+v", got)
	}
}
