package bulletin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dalemusser/sangathan/internal/app/policy/adminpolicy"
	"github.com/dalemusser/sangathan/internal/app/store/audit"
	"github.com/dalemusser/sangathan/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/paging"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePost publishes a regular post. Content or an image is required.
func (s *Service) CreatePost(ctx context.Context, actor *models.User, content string, image io.Reader) (models.Post, error) {
	if err := s.authorize(ctx, actor, adminpolicy.CreatePost, adminpolicy.None); err != nil {
		return models.Post{}, err
	}
	content = htmlsanitize.PlainText(content)
	if content == "" && image == nil {
		return models.Post{}, inputval.Invalid("content", "Please write something or attach an image.")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return models.Post{}, inputval.Invalid("content", fmt.Sprintf("Content must be at most %d characters.", MaxContentLength))
	}

	p := models.Post{Content: content, CreatedAt: s.now()}
	p.AuthorSnapshot(*actor)
	if image != nil {
		url, err := s.media.SaveImage(ctx, media.KindPost, image)
		if err != nil {
			if isUploadErr(err) {
				return models.Post{}, inputval.Invalid("image", "Please attach a JPEG, PNG or WebP image under 10 MB.")
			}
			return models.Post{}, fmt.Errorf("store post image: %w", err)
		}
		p.ImageURL = url
	}

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return models.Post{}, err
	}
	s.metrics.PostCreated()
	return created, nil
}

// ToggleLike applies one like (liked true) or unlike to post id and returns
// the new count. The caller tracks which posts the viewer has liked.
func (s *Service) ToggleLike(ctx context.Context, id primitive.ObjectID, liked bool) (int, error) {
	delta := -1
	if liked {
		delta = 1
	}
	n, err := s.posts.AddLikes(ctx, id, delta)
	return n, postErr(err)
}

// DeletePost removes a post or notice. Authors may delete their own; the
// super admin may delete any.
func (s *Service) DeletePost(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return postErr(err)
	}
	if err := s.authorize(ctx, actor, adminpolicy.DeletePost, adminpolicy.Target{PostAuthor: p.AuthorID.Hex()}); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return postErr(err)
	}
	s.audit.Admin(ctx, audit.EventPostDeleted, actor.ID, nil, "",
		map[string]string{"post_id": id.Hex(), "author_id": p.AuthorID.Hex()})
	return nil
}

// FeedPage is one render of the feed.
type FeedPage struct {
	Posts  []models.Post `json:"posts"`
	Window paging.Window `json:"window"`
}

// Feed returns the newest regular posts, up to visible of them.
func (s *Service) Feed(ctx context.Context, visible int) (FeedPage, error) {
	all, err := s.posts.ListRegular(ctx, paging.MaxFeedPosts)
	if err != nil {
		return FeedPage{}, fmt.Errorf("list feed: %w", err)
	}
	w := paging.FeedWindow(visible, len(all))
	posts := all[:w.Visible]
	if posts == nil {
		posts = []models.Post{}
	}
	return FeedPage{Posts: posts, Window: w}, nil
}

func isUploadErr(err error) bool {
	return errors.Is(err, media.ErrUnsupported) || errors.Is(err, media.ErrTooLarge)
}
