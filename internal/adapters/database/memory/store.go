// Package memory provides map-backed repositories with the same contract as
// the pgsql adapter. They back the service tests and the standalone mode
// where no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
)

// store is the generic map-backed keyed store. Entities are deep-copied on
// the way in and out so callers never share nested maps with the store, and
// insertion order is preserved so FindAll is deterministic.
type store[T any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	idOf  func(*T) string
	setID func(*T, string)
}

func newStore[T any](idOf func(*T) string, setID func(*T, string)) *store[T] {
	return &store[T]{
		items: make(map[string]T),
		idOf:  idOf,
		setID: setID,
	}
}

func clone[T any](src *T) (*T, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("failed to copy entity: %w", err)
	}
	dst := new(T)
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("failed to copy entity: %w", err)
	}
	return dst, nil
}

func (s *store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: no entity with id %s", apperrors.ErrNotFound, id)
	}
	return clone(&item)
}

func (s *store[T]) FindAll(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		copied, err := clone(&item)
		if err != nil {
			return nil, err
		}
		out = append(out, *copied)
	}
	return out, nil
}

func (s *store[T]) Save(ctx context.Context, entity *T) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idOf(entity)
	if id == "" {
		id = uuid.NewString()
		s.setID(entity, id)
	}
	copied, err := clone(entity)
	if err != nil {
		return "", err
	}
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = *copied
	return id, nil
}

func (s *store[T]) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: no entity with id %s", apperrors.ErrNotFound, id)
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// userStore adds the email lookup over the generic store.
type userStore struct {
	*store[domain.User]
}

func (s *userStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		user := s.items[id]
		if user.Email == email {
			return clone(&user)
		}
	}
	return nil, fmt.Errorf("%w: no user with email %s", apperrors.ErrNotFound, email)
}

// groupStore adds the member lookup over the generic store.
type groupStore struct {
	*store[domain.Group]
}

func (s *groupStore) FindGroupsByMember(ctx context.Context, email string) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Group
	for _, id := range s.order {
		group := s.items[id]
		if group.HasMember(email) {
			copied, err := clone(&group)
			if err != nil {
				return nil, err
			}
			out = append(out, *copied)
		}
	}
	return out, nil
}

// NewUserRepository creates an in-memory user repository.
func NewUserRepository() portsrepo.UserRepository {
	return &userStore{store: newStore(
		func(u *domain.User) string { return u.UserID },
		func(u *domain.User, id string) { u.UserID = id },
	)}
}

// NewGroupRepository creates an in-memory group repository.
func NewGroupRepository() portsrepo.GroupRepository {
	return &groupStore{store: newStore(
		func(g *domain.Group) string { return g.GroupID },
		func(g *domain.Group, id string) { g.GroupID = id },
	)}
}

// NewBudgetRepository creates an in-memory budget repository.
func NewBudgetRepository() portsrepo.BudgetRepository {
	return newStore(
		func(b *domain.Budget) string { return b.BudgetID },
		func(b *domain.Budget, id string) { b.BudgetID = id },
	)
}

// NewExpenseRepository creates an in-memory expense repository.
func NewExpenseRepository() portsrepo.ExpenseRepository {
	return newStore(
		func(e *domain.Expense) string { return e.ExpenseID },
		func(e *domain.Expense, id string) { e.ExpenseID = id },
	)
}

// NewRepositoryProvider bundles a fresh set of in-memory repositories.
func NewRepositoryProvider() *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		Users:    NewUserRepository(),
		Groups:   NewGroupRepository(),
		Budgets:  NewBudgetRepository(),
		Expenses: NewExpenseRepository(),
	}
}
