// Package repository persists submitted orders.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

// OrderListFilter narrows an order listing.
type OrderListFilter struct {
	SessionID string
	Status    *models.OrderStatus
	Limit     int
	Offset    int
}

// OrderRepository stores orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter *OrderListFilter) ([]*models.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}

// Ensure MockOrderRepository implements OrderRepository
var _ OrderRepository = (*MockOrderRepository)(nil)

// MockOrderRepository is an in-memory implementation for testing.
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*models.Order

	// CreateErr, when set, fails the next Create call.
	CreateErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*models.Order),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *order
	return &out, nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter *OrderListFilter) ([]*models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*models.Order, 0, len(m.orders))
	for _, order := range m.orders {
		if filter.SessionID != "" && order.SessionID != filter.SessionID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		out := *order
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	order.Status = status
	out := *order
	return &out, nil
}
