package repos

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/sundayezeilo/repostore/internal/errx"
	"github.com/sundayezeilo/repostore/internal/idgen"
)

// MemoryStore is an in-process Store backed by an insertion-ordered slice.
// Lookups are linear scans by id. Records never leave the store by reference.
type MemoryStore struct {
	mu    sync.RWMutex
	repos []Repo
	ids   idgen.Generator
}

// MemoryStoreConfig holds configuration for the in-memory store.
type MemoryStoreConfig struct {
	IDGenerator idgen.Generator
}

// NewMemoryStore creates an empty store. Ids default to UUID v4.
func NewMemoryStore(config *MemoryStoreConfig) *MemoryStore {
	if config == nil {
		config = &MemoryStoreConfig{}
	}
	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV4()
	}

	return &MemoryStore{
		repos: make([]Repo, 0),
		ids:   config.IDGenerator,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) List(ctx context.Context) ([]Repo, error) {
	const op = "repos.store.List"
	if err := ctx.Err(); err != nil {
		return nil, errx.E(op, errx.Unavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Repo, len(s.repos))
	for i, r := range s.repos {
		out[i] = r.clone()
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, repo Repo) (Repo, error) {
	const op = "repos.store.Create"
	if err := ctx.Err(); err != nil {
		return Repo{}, errx.E(op, errx.Unavailable, err)
	}

	if repo.ID == uuid.Nil {
		id, err := s.ids.Generate()
		if err != nil {
			return Repo{}, errx.E(op, errx.Unavailable, err)
		}
		repo.ID = id
	}
	repo.Likes = 0
	if repo.Techs == nil {
		repo.Techs = []json.RawMessage{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(repo.ID) >= 0 {
		return Repo{}, errx.E(op, errx.Internal, ErrDuplicateID)
	}

	stored := repo.clone()
	s.repos = append(s.repos, stored)
	return stored.clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (Repo, error) {
	const op = "repos.store.Get"
	if err := ctx.Err(); err != nil {
		return Repo{}, errx.E(op, errx.Unavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Repo{}, errx.E(op, errx.NotFound, ErrNotFound)
	}
	return s.repos[i].clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, repo Repo) (Repo, error) {
	const op = "repos.store.Update"
	if err := ctx.Err(); err != nil {
		return Repo{}, errx.E(op, errx.Unavailable, err)
	}

	patch := repo.clone()
	if patch.Techs == nil {
		patch.Techs = []json.RawMessage{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(repo.ID)
	if i < 0 {
		return Repo{}, errx.E(op, errx.NotFound, ErrNotFound)
	}

	current := &s.repos[i]
	current.Title = patch.Title
	current.URL = patch.URL
	current.Techs = patch.Techs
	return current.clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repos.store.Delete"
	if err := ctx.Err(); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return errx.E(op, errx.NotFound, ErrNotFound)
	}
	s.repos = slices.Delete(s.repos, i, i+1)
	return nil
}

func (s *MemoryStore) Like(ctx context.Context, id uuid.UUID) (int64, error) {
	const op = "repos.store.Like"
	if err := ctx.Err(); err != nil {
		return 0, errx.E(op, errx.Unavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return 0, errx.E(op, errx.NotFound, ErrNotFound)
	}
	s.repos[i].Likes++
	return s.repos[i].Likes, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.repos)
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.repos, func(r Repo) bool { return r.ID == id })
}
