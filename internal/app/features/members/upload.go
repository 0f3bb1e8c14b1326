// internal/app/features/members/upload.go
package members

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/csvutil"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/limits"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// uploadField is the multipart field holding the CSV.
const uploadField = "file"

type uploadResponse struct {
	Created int                `json:"created"`
	Errors  []csvutil.RowError `json:"errors,omitempty"`
}

// HandleUploadCSV handles POST /directory/upload_csv. Each row goes through
// the same path as HandleCreate; a bad row is reported and the rest still
// load. Once the member cap is hit the remaining rows are not attempted.
func (h *Handler) HandleUploadCSV(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCSVUpload)
	if err := formutil.ParseMultipart(r); err != nil {
		h.ErrLog.Handle(w, r, "members upload: parse form", err)
		return
	}
	file, err := formutil.File(r, uploadField)
	if err == nil && file == nil {
		err = inputval.Invalid(uploadField, "Please choose a CSV file.")
	}
	if err != nil {
		h.ErrLog.Handle(w, r, "members upload: file", err)
		return
	}
	defer formutil.Close(file)

	rows, rowErrs, err := csvutil.ParseMembers(file)
	if errors.Is(err, csvutil.ErrTooManyRows) {
		err = inputval.Invalid(uploadField, err.Error())
	}
	if err != nil {
		h.ErrLog.Handle(w, r, "members upload: parse", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "members upload")
	defer cancel()

	actor := su.Actor()
	resp := uploadResponse{Errors: rowErrs}
	for _, row := range rows {
		_, err := h.Members.AddMember(ctx, actor, membership.AddMemberInput{
			Name:         row.Name,
			FatherName:   row.FatherName,
			Mobile:       row.Mobile,
			District:     row.District,
			Designation:  row.Designation,
			Jurisdiction: row.Jurisdiction,
		})
		if err == nil {
			resp.Created++
			continue
		}
		if uierrors.StatusFor(err) >= http.StatusInternalServerError || uierrors.StatusFor(err) == http.StatusForbidden {
			h.ErrLog.Handle(w, r, "members upload: add", err)
			return
		}
		msg := h.Members.LoginMessage(err)
		if msg == "" {
			msg = uierrors.PublicMessage(err)
		}
		resp.Errors = append(resp.Errors, csvutil.RowError{Line: row.Line, Reason: msg})
		if errors.Is(err, membership.ErrMembersLimit) {
			break
		}
	}

	h.Log.Info("members uploaded", zap.String("user_id", su.ID),
		zap.Int("created", resp.Created), zap.Int("errors", len(resp.Errors)))
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
