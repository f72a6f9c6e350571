package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/post"
	"github.com/geocoder89/bloghub/internal/query"
)

type PostsRepo struct {
	mu     sync.RWMutex
	items  map[int64]post.Post
	nextID int64
	users  *UsersRepo
}

// NewPostsRepo checks author ids against users, standing in for the
// foreign key the Postgres schema declares.
func NewPostsRepo(users *UsersRepo) *PostsRepo {
	return &PostsRepo{
		items: make(map[int64]post.Post),
		users: users,
	}
}

func (r *PostsRepo) FindOne(ctx context.Context, filter query.Filter) (post.Post, error) {
	posts, err := r.Find(ctx, filter)
	if err != nil {
		return post.Post{}, err
	}

	if len(posts) == 0 {
		return post.Post{}, post.ErrNotFound
	}

	return posts[0], nil
}

func (r *PostsRepo) Find(ctx context.Context, filter query.Filter) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if filter == nil {
		filter = query.All()
	}

	r.mu.RLock()
	out := make([]post.Post, 0, len(r.items))
	for _, p := range r.items {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *PostsRepo) Create(ctx context.Context, np post.NewPost) (post.Post, error) {
	if err := ctx.Err(); err != nil {
		return post.Post{}, err
	}

	if r.users != nil && !r.users.exists(np.AuthorID) {
		return post.Post{}, post.ErrAuthorMissing
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// title conflicts win over content conflicts, whatever the map order
	for _, existing := range r.items {
		if existing.Title == np.Title {
			return post.Post{}, post.ErrTitleTaken
		}
	}
	for _, existing := range r.items {
		if existing.Content == np.Content {
			return post.Post{}, post.ErrContentTaken
		}
	}

	now := time.Now().UTC()
	r.nextID++
	p := post.Post{
		ID:        r.nextID,
		Title:     np.Title,
		Content:   np.Content,
		Hidden:    np.Hidden,
		AuthorID:  np.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.items[p.ID] = p

	return p, nil
}

// SetHidden updates every post matching filter and returns how many changed.
func (r *PostsRepo) SetHidden(ctx context.Context, filter query.Filter, hidden bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for id, p := range r.items {
		if filter.Match(p) {
			p.Hidden = hidden
			p.UpdatedAt = now
			r.items[id] = p
			n++
		}
	}

	return n, nil
}

func (r *PostsRepo) Delete(ctx context.Context, filter query.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, p := range r.items {
		if filter.Match(p) {
			delete(r.items, id)
			n++
		}
	}

	return n, nil
}
