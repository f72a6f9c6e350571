package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/query"
)

type UsersRepo struct {
	mu     sync.RWMutex
	items  map[int64]user.User
	nextID int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.FindOne(ctx, query.Eq(query.FieldID, id))
}

func (r *UsersRepo) FindOne(ctx context.Context, filter query.Filter) (user.User, error) {
	users, err := r.Find(ctx, filter)
	if err != nil {
		return user.User{}, err
	}

	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}

	return users[0], nil
}

// Find returns matching users ordered by id.
func (r *UsersRepo) Find(ctx context.Context, filter query.Filter) ([]user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if filter == nil {
		filter = query.All()
	}

	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		if filter.Match(u) {
			out = append(out, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Create enforces name and email uniqueness under the write lock, the same
// guarantee the Postgres unique constraints give.
func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == nu.Name {
			return user.User{}, user.ErrNameTaken
		}
		if existing.Email == nu.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.nextID++
	u := user.User{
		ID:           r.nextID,
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		CreatedAt:    time.Now().UTC(),
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) exists(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok
}
