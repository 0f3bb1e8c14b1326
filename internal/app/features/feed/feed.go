// internal/app/features/feed/feed.go
package feed

import (
	"context"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/sangathan/internal/app/features/errors"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/formutil"
	"github.com/dalemusser/sangathan/internal/app/system/paging"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
)

// postItem is a post plus the viewer's like state.
type postItem struct {
	models.Post
	Liked bool `json:"liked"`
}

type feedResponse struct {
	Posts  []postItem    `json:"posts"`
	Window paging.Window `json:"window"`
}

type likeResponse struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// ServeFeed handles GET /feed?visible=N. "Load more" is the same request
// with visible set to the previous window's next value.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Bulletin.Feed(ctx, paging.ParseVisible(r))
	if err != nil {
		h.ErrLog.Handle(w, r, "feed: list", err)
		return
	}

	liked := h.SessionMgr.LikedPosts(r)
	items := make([]postItem, 0, len(page.Posts))
	for _, p := range page.Posts {
		items = append(items, postItem{Post: p, Liked: liked[p.ID.Hex()]})
	}
	uierrors.WriteJSON(w, http.StatusOK, feedResponse{Posts: items, Window: page.Window})
}

// HandleCreate handles POST /feed. Accepts JSON {"content": "..."} or a
// multipart form with content and an optional image.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	var (
		content string
		image   io.Reader
	)
	if formutil.IsJSON(r) {
		var in struct {
			Content string `json:"content"`
		}
		if err := formutil.Decode(w, r, &in); err != nil {
			h.ErrLog.Handle(w, r, "feed: decode", err)
			return
		}
		content = in.Content
	} else {
		if err := formutil.ParseMultipart(r); err != nil {
			h.ErrLog.Handle(w, r, "feed: parse form", err)
			return
		}
		f, err := formutil.File(r, "image")
		if err != nil {
			h.ErrLog.Handle(w, r, "feed: image", err)
			return
		}
		defer formutil.Close(f)
		content = r.FormValue("content")
		if f != nil {
			image = f
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create post")
	defer cancel()

	p, err := h.Bulletin.CreatePost(ctx, su.Actor(), content, image)
	if err != nil {
		h.ErrLog.Handle(w, r, "feed: create", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, p)
}

// HandleLike handles POST /feed/{id}/like. The first call likes the post
// and the next unlikes it; which posts a viewer liked lives in the session.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "feed: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.SessionMgr.CanLike(r, id.Hex()) {
		h.ErrLog.Handle(w, r, "feed: like", auth.ErrLikeLimit)
		return
	}
	liked := !h.SessionMgr.LikedPosts(r)[id.Hex()]
	n, err := h.Bulletin.ToggleLike(ctx, id, liked)
	if err != nil {
		h.ErrLog.Handle(w, r, "feed: like", err)
		return
	}
	if _, err := h.SessionMgr.ToggleLiked(w, r, id.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "feed: save liked", err, "Could not save your like.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, likeResponse{Likes: n, Liked: liked})
}

// HandleDelete handles DELETE /feed/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.Handle(w, r, "feed: id", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Bulletin.DeletePost(ctx, su.Actor(), id); err != nil {
		h.ErrLog.Handle(w, r, "feed: delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
