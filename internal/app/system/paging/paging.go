// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

const (
	// FeedBatchSize is how many posts each "load more" reveals.
	FeedBatchSize = 5
	// MaxFeedPosts is the hard cap on posts the feed ever shows.
	MaxFeedPosts = 20
)

// Window is the slice of the feed to render.
type Window struct {
	Visible int  `json:"visible"`  // how many posts to render
	HasMore bool `json:"has_more"` // another batch exists below the fold
	Next    int  `json:"next"`     // visible count after one more batch
}

// Clamp bounds a requested visible count to [FeedBatchSize, MaxFeedPosts].
func Clamp(visible int) int {
	if visible < FeedBatchSize {
		return FeedBatchSize
	}
	if visible > MaxFeedPosts {
		return MaxFeedPosts
	}
	return visible
}

// FeedWindow computes what to render when the client has visible posts
// showing and total posts exist. Loading more at the cap returns the same
// window.
func FeedWindow(visible, total int) Window {
	visible = Clamp(visible)
	available := min(total, MaxFeedPosts)
	if available < 0 {
		available = 0
	}
	shown := min(visible, available)
	return Window{
		Visible: shown,
		HasMore: shown < available,
		Next:    min(visible+FeedBatchSize, MaxFeedPosts),
	}
}

// ParseVisible reads the "visible" query parameter, defaulting to one batch.
func ParseVisible(r *http.Request) int {
	s := query.Get(r, "visible")
	if s == "" {
		return FeedBatchSize
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return FeedBatchSize
	}
	return Clamp(n)
}
