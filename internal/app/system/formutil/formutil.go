// Package formutil reads request bodies, URL parameters and uploads for the
// feature handlers. Every failure comes back as an *inputval.Error so the
// handlers can pass it straight to ErrorLogger.Handle.
//
// Example usage:
//
//	var in loginRequest
//	if err := formutil.Decode(w, r, &in); err != nil {
//		h.ErrLog.Handle(w, r, "login: decode", err)
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgBadBody = "Invalid request body."

// IsJSON reports whether the request body is JSON.
func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// Decode fills dst from a JSON body. An empty body leaves dst untouched.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return inputval.Invalid("body", msgBadBody)
	}
	return nil
}

// ParseMultipart parses a multipart form. Non-multipart bodies are parsed as
// urlencoded forms so the same handler serves both.
func ParseMultipart(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
			return inputval.Invalid("body", msgBadBody)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return inputval.Invalid("body", msgBadBody)
	}
	return nil
}

// File returns the uploaded file for field, or nil when none was sent. The
// caller closes the returned file. Call ParseMultipart first.
func File(r *http.Request, field string) (io.ReadCloser, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, inputval.Invalid(field, "Could not read the uploaded file.")
	}
	return f, nil
}

// ObjectID parses the chi URL parameter name.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, inputval.Invalid(name, "Invalid identifier.")
	}
	return oid, nil
}

// Bool reads a form or query flag. "1", "true", "on" and "yes" are true.
func Bool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Close closes c when it is not nil.
func Close(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
