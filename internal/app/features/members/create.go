// internal/app/features/members/create.go
package members

import (
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
)

// HandleCreate handles POST /directory (multipart: fields plus optional photo).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	if err := formutil.ParseMultipart(r); err != nil {
		h.ErrLog.Handle(w, r, "members: parse form", err)
		return
	}
	photo, err := formutil.File(r, "photo")
	if err != nil {
		h.ErrLog.Handle(w, r, "members: photo", err)
		return
	}
	defer formutil.Close(photo)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "add member")
	defer cancel()

	actor := su.Actor()
	u, err := h.Members.AddMember(ctx, actor, membership.AddMemberInput{
		Name:         r.FormValue("name"),
		FatherName:   r.FormValue("father_name"),
		Mobile:       r.FormValue("mobile"),
		District:     r.FormValue("district"),
		Designation:  r.FormValue("designation"),
		Jurisdiction: r.FormValue("jurisdiction"),
		Photo:        photo,
	})
	if err != nil {
		h.writeAddErr(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, directorypolicy.Mask(actor, &u))
}

func (h *Handler) writeAddErr(w http.ResponseWriter, r *http.Request, err error) {
	if msg := h.Members.LoginMessage(err); msg != "" {
		uierrors.WriteError(w, uierrors.StatusFor(err), msg)
		return
	}
	h.ErrLog.Handle(w, r, "members: add", err)
}
