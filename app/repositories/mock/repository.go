package mock

import (
	"context"
	"strconv"
	"sync"
	"time"

	"postboard/app/models"
	"postboard/app/repositories"
)

// PostRepository is an in-memory PostRepository that keeps insertion order.
type PostRepository struct {
	posts  map[string]*models.Post
	order  []string
	nextID int
	mutex  sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
	// Writes counts successful Create/Update/Delete calls.
	Writes int
}

// UserRepository is an in-memory UserRepository.
type UserRepository struct {
	users map[models.Identity]*models.User
	mutex sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[string]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.order = nil
	m.nextID = 1
	m.Writes = 0
}

func NewUserRepository(users ...*models.User) *UserRepository {
	m := &UserRepository{users: make(map[models.Identity]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func clone(post *models.Post) *models.Post {
	cp := *post
	cp.AuthorSummary = nil
	if post.ImagePath != nil {
		path := *post.ImagePath
		cp.ImagePath = &path
	}
	return &cp
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	post.ID = strconv.Itoa(m.nextID)
	m.nextID++
	post.BeforeCreate()
	m.posts[post.ID] = clone(post)
	m.order = append(m.order, post.ID)
	m.Writes++
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return clone(post), nil
}

func (m *PostRepository) Find(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := []*models.Post{}
	for _, id := range m.order {
		post, exists := m.posts[id]
		if exists && filter.Matches(post) {
			posts = append(posts, clone(post))
		}
	}
	return posts, nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	post.UpdatedAt = time.Now().UTC()
	m.posts[post.ID] = clone(post)
	m.Writes++
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	m.Writes++
	return nil
}

// UserRepository implementation
func (m *UserRepository) GetByIDs(ctx context.Context, ids []models.Identity) (map[models.Identity]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	users := make(map[models.Identity]*models.User)
	for _, id := range repositories.UniqueIdentities(ids) {
		if u, ok := m.users[id]; ok {
			cp := *u
			users[id] = &cp
		}
	}
	return users, nil
}

func (m *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	cp := *user
	m.users[user.ID] = &cp
	return nil
}
