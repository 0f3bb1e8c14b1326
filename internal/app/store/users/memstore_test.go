package userstore_test

import (
	"errors"
	"sync"
	"testing"

	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/sangathan/internal/testutil"
)

func newMember(name, mobile, district string) models.User {
	return models.User{
		Name:        name,
		FatherName:  "Father of " + name,
		Mobile:      mobile,
		District:    district,
		Designation: "Karyakarta",
		Role:        models.RoleMember,
		Status:      models.StatusApproved,
	}
}

func TestMemStore_CreateNormalizes(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := s.Create(ctx, newMember("  Amit   Kumar ", "+91 91234 56789", "patna"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if u.Name != "Amit Kumar" || u.NameCI == "" {
		t.Errorf("name: got %q / %q", u.Name, u.NameCI)
	}
	if u.Mobile != "9123456789" {
		t.Errorf("mobile: got %q", u.Mobile)
	}
	if u.District != "Patna" {
		t.Errorf("district: got %q", u.District)
	}
	if u.Version != 1 || u.CreatedAt.IsZero() {
		t.Errorf("version/timestamps not set: %+v", u)
	}
}

func TestMemStore_DuplicateMobile(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := s.Create(ctx, newMember("A", "9123456789", "Patna")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := s.Create(ctx, newMember("B", "9123456789", "Gaya"))
	if !errors.Is(err, userstore.ErrDuplicateMobile) {
		t.Errorf("got %v, want ErrDuplicateMobile", err)
	}
}

func TestMemStore_RejectsBadRole(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := newMember("A", "9123456789", "Patna")
	u.Role = "admin"
	if _, err := s.Create(ctx, u); err == nil {
		t.Error("expected role validation error")
	}
}

func TestMemStore_UpdateVersionCheck(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := s.Create(ctx, newMember("A", "9123456789", "Patna"))

	a := u
	a.District = "Gaya"
	updated, err := s.Update(ctx, a)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("version: got %d, want 2", updated.Version)
	}

	stale := u
	stale.Designation = "Stale"
	if _, err := s.Update(ctx, stale); !errors.Is(err, userstore.ErrVersionConflict) {
		t.Errorf("stale update: got %v, want ErrVersionConflict", err)
	}

	got, _ := s.GetByID(ctx, u.ID)
	if got.District != "Gaya" || got.Designation != "Karyakarta" {
		t.Errorf("stored record: %+v", got)
	}
}

func TestMemStore_UpdateMobileUniqueness(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := s.Create(ctx, newMember("A", "9123456789", "Patna"))
	_, _ = s.Create(ctx, newMember("B", "9988776655", "Gaya"))

	a.Mobile = "9988776655"
	if _, err := s.Update(ctx, a); !errors.Is(err, userstore.ErrDuplicateMobile) {
		t.Errorf("got %v, want ErrDuplicateMobile", err)
	}

	a.Mobile = "9000000001"
	if _, err := s.Update(ctx, a); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := s.GetByMobile(ctx, "9123456789"); !errors.Is(err, userstore.ErrNotFound) {
		t.Error("old mobile should be released")
	}
	if _, err := s.GetByMobile(ctx, "9000000001"); err != nil {
		t.Errorf("new mobile lookup: %v", err)
	}
}

func TestMemStore_ConcurrentUpdatesOneWins(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := s.Create(ctx, newMember("A", "9123456789", "Patna"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := u
			c.Status = models.StatusSuspended
			if _, err := s.Update(ctx, c); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("wins: got %d, want 1", wins)
	}
}

func TestMemStore_ListAndReviewQueue(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = s.Create(ctx, newMember("Zed", "9000000001", "Gaya"))
	_, _ = s.Create(ctx, newMember("Amit", "9000000002", "Gaya"))
	p := newMember("Pending", "9000000003", "Gaya")
	p.Status = models.StatusPending
	_, _ = s.Create(ctx, p)
	e := newMember("Editor", "9000000004", "Patna")
	d := "Gaya"
	e.PendingChanges = &models.ProfileChanges{District: &d}
	_, _ = s.Create(ctx, e)

	rows, err := s.List(ctx, userstore.ListFilter{District: "Gaya", Statuses: []string{models.StatusApproved}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "Amit" {
		t.Errorf("list: got %d rows, first %q", len(rows), rows[0].Name)
	}

	rows, _ = s.List(ctx, userstore.ListFilter{Search: "edit"})
	if len(rows) != 1 || rows[0].Name != "Editor" {
		t.Errorf("search: got %+v", rows)
	}

	q, _ := s.ReviewQueue(ctx, "")
	if len(q) != 2 {
		t.Errorf("review queue: got %d, want 2", len(q))
	}
	q, _ = s.ReviewQueue(ctx, "Gaya")
	if len(q) != 1 || q[0].Name != "Pending" {
		t.Errorf("review queue Gaya: got %+v", q)
	}
}

func TestMemStore_Delete(t *testing.T) {
	s := userstore.NewMem()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, _ := s.Create(ctx, newMember("A", "9123456789", "Patna"))
	if err := s.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, u.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("count: got %d", n)
	}
	if _, err := s.Create(ctx, newMember("B", "9123456789", "Patna")); err != nil {
		t.Errorf("mobile should be free after delete: %v", err)
	}
}
