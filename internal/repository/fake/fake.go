// Package fake provides in-memory AccountStore and PostRepository
// implementations for tests. They keep the same atomicity guarantees as the
// Postgres repositories: unique email on insert, single-use tokens.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/internal/repository"
)

var (
	_ repository.AccountStore   = (*AccountStore)(nil)
	_ repository.PostRepository = (*PostRepository)(nil)
)

// AccountStore is an in-memory repository.AccountStore
type AccountStore struct {
	mu       sync.Mutex
	byID     map[string]*domain.Account
	byEmail  map[string]string
	seq      int
	calls    atomic.Int32
	failWith error
}

// NewAccountStore creates an empty store
func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[string]*domain.Account),
		byEmail: make(map[string]string),
	}
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return s.copyOf(id), nil
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	return s.copyOf(id), nil
}

func (s *AccountStore) FindByVerificationToken(ctx context.Context, tokenHash string) (*domain.Account, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.byID {
		if a.VerificationTokenHash != nil && *a.VerificationTokenHash == tokenHash {
			return s.copyOf(id), nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (s *AccountStore) InsertUnique(ctx context.Context, account *domain.Account) error {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	key := strings.ToLower(account.Email)
	if _, taken := s.byEmail[key]; taken {
		return domain.ErrEmailExists
	}
	s.seq++
	now := time.Now()
	account.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", s.seq)
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	s.byID[account.ID] = &stored
	s.byEmail[key] = account.ID
	return nil
}

func (s *AccountStore) MarkVerified(ctx context.Context, tokenHash string) (*domain.Account, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.byID {
		if !a.IsVerified && a.VerificationTokenHash != nil && *a.VerificationTokenHash == tokenHash {
			a.IsVerified = true
			a.VerificationTokenHash = nil
			a.UpdatedAt = time.Now()
			return s.copyOf(id), nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (s *AccountStore) UpdateFields(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	return s.copyOf(id), nil
}

func (s *AccountStore) copyOf(id string) *domain.Account {
	a := *s.byID[id]
	return &a
}

// PostRepository is an in-memory repository.PostRepository
type PostRepository struct {
	mu    sync.Mutex
	posts map[string]*domain.Post
}

// NewPostRepository creates an empty repository
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*domain.Post)}
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*domain.Post{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, update domain.PostUpdate) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Content != nil {
		p.Content = *update.Content
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

// Calls returns how many store methods have been invoked
func (s *AccountStore) Calls() int {
	return int(s.calls.Load())
}

// FailWith makes FindByEmail and InsertUnique return err
func (s *AccountStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}
