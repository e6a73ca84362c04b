package review

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

const (
	// DefaultMaxBoards caps how many user boards are kept in memory
	DefaultMaxBoards = 1000
	// DefaultBoardTTL drops a board nobody has touched for this long
	DefaultBoardTTL = 30 * time.Minute
)

// Board holds the in-memory snapshot of a user's posts and the campaigns
// derived from it. Campaigns are recomputed in full whenever the posts change.
type Board struct {
	mu        sync.RWMutex
	posts     []entity.Post
	campaigns []entity.Campaign
	loaded    bool
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{
		posts:     []entity.Post{},
		campaigns: []entity.Campaign{},
	}
}

// Replace swaps the whole snapshot for a freshly fetched post list
func (b *Board) Replace(posts []entity.Post) {
	cp := make([]entity.Post, len(posts))
	copy(cp, posts)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.posts = cp
	b.campaigns = entity.GroupByTopic(cp)
	b.loaded = true
}

// Apply mutates a single post in place and regroups.
// It returns false when the post is not on the board.
func (b *Board) Apply(id string, mutate func(*entity.Post)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.posts {
		if b.posts[i].ID == id {
			mutate(&b.posts[i])
			b.posts[i] = b.posts[i].Normalized()
			b.campaigns = entity.GroupByTopic(b.posts)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the posts on the board
func (b *Board) Snapshot() []entity.Post {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]entity.Post, len(b.posts))
	copy(out, b.posts)
	return out
}

// Campaigns returns a copy of the derived campaigns
func (b *Board) Campaigns() []entity.Campaign {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]entity.Campaign, len(b.campaigns))
	for i, c := range b.campaigns {
		out[i] = cloneCampaign(c)
	}
	return out
}

// Campaign returns the campaign with the exact topic
func (b *Board) Campaign(topic string) (entity.Campaign, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := entity.FindCampaign(b.campaigns, topic)
	if !ok {
		return entity.Campaign{}, false
	}
	return cloneCampaign(c), true
}

// Post returns a post by ID
func (b *Board) Post(id string) (entity.Post, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, p := range b.posts {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Post{}, false
}

// Loaded reports whether the board has been filled at least once
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

func cloneCampaign(c entity.Campaign) entity.Campaign {
	posts := make([]entity.Post, len(c.Posts))
	copy(posts, c.Posts)
	c.Posts = posts
	return c
}

// Boards keeps one board per user. At most size boards are held; the least
// recently used one is dropped first, and any board idle for ttl expires.
// A dropped board is simply fetched again on the user's next request.
type Boards struct {
	mu     sync.Mutex
	boards *expirable.LRU[string, *Board]
}

// NewBoards creates an empty board registry. Non-positive limits fall back
// to DefaultMaxBoards and DefaultBoardTTL.
func NewBoards(size int, ttl time.Duration) *Boards {
	if size <= 0 {
		size = DefaultMaxBoards
	}
	if ttl <= 0 {
		ttl = DefaultBoardTTL
	}
	return &Boards{boards: expirable.NewLRU[string, *Board](size, nil, ttl)}
}

// For returns the board of a user, creating it on first use.
// Every call renews the board's idle deadline.
func (r *Boards) For(userID string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.boards.Get(userID)
	if !ok {
		b = NewBoard()
	}
	r.boards.Add(userID, b)
	return b
}

// Len returns the number of boards currently held
func (r *Boards) Len() int {
	return r.boards.Len()
}
