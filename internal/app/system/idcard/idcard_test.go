package idcard

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRender(t *testing.T) {
	u := &models.User{
		ID:          primitive.NewObjectID(),
		Name:        "Amit Kumar",
		Mobile:      "9123456789",
		District:    "Patna",
		Designation: "Zila Adhyaksh",
		Status:      models.StatusApproved,
		Badge:       models.BadgeGreen,
	}
	out, err := Render(u)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("size: got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRender_NotApproved(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Status: models.StatusPending}
	if _, err := Render(u); !errors.Is(err, ErrNotApproved) {
		t.Errorf("got %v, want ErrNotApproved", err)
	}
	if _, err := Render(nil); !errors.Is(err, ErrNotApproved) {
		t.Errorf("nil user: got %v", err)
	}
}

func TestQRContent(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Mobile: "9341749399"}
	got := QRContent(u)
	if !strings.HasPrefix(got, "member:"+u.ID.Hex()+":") || !strings.HasSuffix(got, "9341749399") {
		t.Errorf("got %q", got)
	}
}

func TestClip(t *testing.T) {
	if got := clip("  short ", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := clip("abcdefghij", 5); got != "abcd~" {
		t.Errorf("got %q", got)
	}
}
