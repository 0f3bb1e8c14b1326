package formutil

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecode(t *testing.T) {
	var in struct {
		Mobile string `json:"mobile"`
	}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"mobile":"9341749399"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if !IsJSON(req) {
		t.Fatal("expected JSON content type")
	}
	if err := Decode(httptest.NewRecorder(), req, &in); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Mobile != "9341749399" {
		t.Errorf("mobile: got %q", in.Mobile)
	}

	bad := httptest.NewRequest("POST", "/login", strings.NewReader(`{"mobile":`))
	var ve *inputval.Error
	if err := Decode(httptest.NewRecorder(), bad, &in); !errors.As(err, &ve) {
		t.Errorf("malformed body: got %v", err)
	}

	empty := httptest.NewRequest("POST", "/login", nil)
	if err := Decode(httptest.NewRecorder(), empty, &in); err != nil {
		t.Errorf("empty body: got %v", err)
	}
}

func TestFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Amit Kumar")
	fw, _ := mw.CreateFormFile("photo", "me.png")
	_, _ = fw.Write([]byte("png-bytes"))
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/signup", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := ParseMultipart(req); err != nil {
		t.Fatalf("ParseMultipart: %v", err)
	}
	if req.FormValue("name") != "Amit Kumar" {
		t.Errorf("name field lost")
	}

	f, err := File(req, "photo")
	if err != nil || f == nil {
		t.Fatalf("photo: %v, %v", f, err)
	}
	Close(f)

	if f, err := File(req, "appointment_letter"); f != nil || err != nil {
		t.Errorf("missing file: got %v, %v", f, err)
	}
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	req := withParam(httptest.NewRequest("GET", "/directory/"+id.Hex(), nil), "id", id.Hex())

	got, err := ObjectID(req, "id")
	if err != nil || got != id {
		t.Errorf("got %v, %v", got, err)
	}

	if _, err := ObjectID(withParam(httptest.NewRequest("GET", "/", nil), "id", "nope"), "id"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestBool(t *testing.T) {
	req := httptest.NewRequest("GET", "/directory?view_all=on&x=0", nil)
	if !Bool(req, "view_all") || Bool(req, "x") || Bool(req, "missing") {
		t.Error("unexpected flag values")
	}
}
