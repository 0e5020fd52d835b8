// Package memory provides an in-process implementation of the persistence layer.
// It backs the "memory" storage driver and the use case tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"piquante/internal/domain/entity"
	"piquante/internal/domain/repository"
)

// Store holds every record behind one lock. Transactions are serialized by txMu,
// which makes FindByIDForUpdate a true exclusive section.
type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	users   map[uuid.UUID]*entity.User
	digests map[string]uuid.UUID
	sauces  map[uuid.UUID]*entity.Sauce
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]*entity.User),
		digests: make(map[string]uuid.UUID),
		sauces:  make(map[uuid.UUID]*entity.Sauce),
		now:     time.Now,
	}
}

// journal collects undo steps for writes made inside a transaction.
type journal struct {
	undo []func()
}

func (j *journal) record(fn func()) {
	if j != nil {
		j.undo = append(j.undo, fn)
	}
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

type transactionManager struct {
	store *Store
}

type repositoryFactory struct {
	store   *Store
	journal *journal
}

func (f *repositoryFactory) UserRepo() repository.UserRepository {
	return &userRepository{store: f.store, journal: f.journal}
}

func (f *repositoryFactory) SauceRepo() repository.SauceRepository {
	return &sauceRepository{store: f.store, journal: f.journal}
}

// NewTransactionManager returns a TransactionManager that runs one transaction at a time.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn exclusively and reverts its writes if it fails or panics.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	j := &journal{}
	defer func() {
		if r := recover(); r != nil {
			tm.store.mu.Lock()
			j.rollback()
			tm.store.mu.Unlock()
			panic(r)
		}
	}()

	if err := fn(&repositoryFactory{store: tm.store, journal: j}); err != nil {
		tm.store.mu.Lock()
		j.rollback()
		tm.store.mu.Unlock()

		return err
	}

	return nil
}
