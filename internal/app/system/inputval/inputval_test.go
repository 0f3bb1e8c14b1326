package inputval

import (
	"errors"
	"testing"
)

func TestIsValidMobile(t *testing.T) {
	tests := []struct {
		mobile string
		want   bool
	}{
		{"9341749399", true},
		{"1234567890", true},
		{"934174939", false},
		{"93417493990", false},
		{"93417a9399", false},
		{"", false},
		{"+919341749", false},
	}

	for _, tt := range tests {
		t.Run(tt.mobile, func(t *testing.T) {
			if got := IsValidMobile(tt.mobile); got != tt.want {
				t.Errorf("IsValidMobile(%q) = %v, want %v", tt.mobile, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://meet.example.com/abc", true},
		{"http://localhost:8080", true},
		{"ftp://example.com", false},
		{"not-a-url", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type signup struct {
		Name     string `validate:"required,max=10" label:"Full name"`
		Mobile   string `validate:"mobile10" label:"Mobile"`
		District string `validate:"required,district" label:"District"`
	}

	tests := []struct {
		name      string
		input     signup
		wantErrs  bool
		wantFirst string
	}{
		{"valid", signup{"Amit", "9123456789", "Patna"}, false, ""},
		{"missing name", signup{"", "9123456789", "Patna"}, true, "Full name is required."},
		{"name too long", signup{"Amit Kumar Singh", "9123456789", "Patna"}, true, "Full name must be at most 10 characters."},
		{"bad mobile", signup{"Amit", "12345", "Patna"}, true, MobileMessage},
		{"bad district", signup{"Amit", "9123456789", "Atlantis"}, true, "Please choose a valid district."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if res.HasErrors() != tt.wantErrs {
				t.Errorf("HasErrors = %v, want %v (%s)", res.HasErrors(), tt.wantErrs, res.All())
			}
			if tt.wantErrs && res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_OneOfAndMeetingTarget(t *testing.T) {
	type meeting struct {
		Type   string `validate:"oneof=physical whatsapp virtual" label:"Meeting type"`
		Target string `validate:"meetingtarget" label:"Target district"`
	}

	if res := Validate(meeting{"physical", "All Bihar"}); res.HasErrors() {
		t.Errorf("valid meeting: %s", res.All())
	}
	res := Validate(meeting{"zoom", "Gaya"})
	if res.First() != "Meeting type must be one of: physical, whatsapp, virtual." {
		t.Errorf("First() = %q", res.First())
	}
	if res := Validate(meeting{"virtual", "Everywhere"}); !res.HasErrors() {
		t.Error("unknown target should fail")
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	if r.All() != "" || r.First() != "" {
		t.Error("empty result should render empty")
	}
	r.Add("a", "Error 1")
	r.Add("b", "Error 2")
	if got := r.All(); got != "Error 1; Error 2" {
		t.Errorf("All() = %q", got)
	}
}

func TestResult_Err(t *testing.T) {
	r := &Result{}
	if r.Err() != nil {
		t.Error("empty result should have no error")
	}
	r.Add("mobile", MobileMessage)
	err := r.Err()
	var ve *Error
	if !errors.As(err, &ve) || err.Error() != MobileMessage {
		t.Errorf("got %#v", err)
	}
	if Invalid("district", "bad").Error() != "bad" {
		t.Error("Invalid message")
	}
}
