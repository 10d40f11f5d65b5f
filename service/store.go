package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RaghavGalappanavar/Deployment/model"
)

// ContractRepository persists contract records. Create must enforce that a
// purchase request id is used by at most one contract and report a second
// attempt as ErrDuplicateRequest.
type ContractRepository interface {
	Create(ctx context.Context, contract *model.Contract) error
	Get(ctx context.Context, id string) (*model.Contract, error)
	GetByPurchaseRequestID(ctx context.Context, purchaseRequestID string) (*model.Contract, error)
}

// ContractStore is an in-memory ContractRepository
type ContractStore struct {
	mu                sync.RWMutex
	contracts         map[string]*model.Contract
	byPurchaseRequest map[string]string
}

func NewContractStore() *ContractStore {
	slog.Info("contract store initialized", "driver", "memory")
	return &ContractStore{
		contracts:         make(map[string]*model.Contract),
		byPurchaseRequest: make(map[string]string),
	}
}

func (s *ContractStore) Create(_ context.Context, contract *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPurchaseRequest[contract.PurchaseRequestID]; exists {
		return fmt.Errorf("purchase request %s: %w", contract.PurchaseRequestID, ErrDuplicateRequest)
	}
	if _, exists := s.contracts[contract.ID]; exists {
		return fmt.Errorf("contract id %s already stored", contract.ID)
	}

	s.contracts[contract.ID] = contract.Clone()
	s.byPurchaseRequest[contract.PurchaseRequestID] = contract.ID
	return nil
}

func (s *ContractStore) Get(_ context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *ContractStore) GetByPurchaseRequestID(ctx context.Context, purchaseRequestID string) (*model.Contract, error) {
	s.mu.RLock()
	id, ok := s.byPurchaseRequest[purchaseRequestID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("purchase request %s: %w", purchaseRequestID, ErrNotFound)
	}
	return s.Get(ctx, id)
}

// Count returns the number of contracts in the store
func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}
