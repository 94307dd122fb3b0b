package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"voyago/internal/domain"
	"voyago/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK CREDIT REPOSITORY
// ──────────────────────────────────────────────

// MockCreditRepository is an in-memory implementation of
// repository.CreditRepository with the same conditional-update
// semantics as the PostgreSQL implementation.
type MockCreditRepository struct {
	mu        sync.Mutex
	accounts  map[string]*domain.CreditAccount
	refunds   map[string]bool
	purchases map[string]bool

	// Counters for verification
	ReserveCallCount int32
	RefundCallCount  int32

	// Error injection
	ReserveError error
	RefundError  error
}

// NewMockCreditRepository creates a new mock credit repository.
func NewMockCreditRepository() *MockCreditRepository {
	return &MockCreditRepository{
		accounts:  make(map[string]*domain.CreditAccount),
		refunds:   make(map[string]bool),
		purchases: make(map[string]bool),
	}
}

// AddAccount seeds an account for a test.
func (m *MockCreditRepository) AddAccount(account *domain.CreditAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.UserID] = account
}

// Account returns the stored account for test assertions.
func (m *MockCreditRepository) Account(userID string) *domain.CreditAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[userID]
}

func (m *MockCreditRepository) GetByUserID(ctx context.Context, userID string) (*domain.CreditAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *account
	return &copy, nil
}

func (m *MockCreditRepository) CreateIfAbsent(ctx context.Context, account *domain.CreditAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[account.UserID]; exists {
		return nil
	}
	copy := *account
	m.accounts[account.UserID] = &copy
	return nil
}

func (m *MockCreditRepository) Reserve(ctx context.Context, userID string, amount int) (bool, int, error) {
	atomic.AddInt32(&m.ReserveCallCount, 1)
	if m.ReserveError != nil {
		return false, 0, m.ReserveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return false, 0, nil
	}
	// Same predicate as the SQL conditional update.
	if account.CreditsRemaining < amount {
		return false, 0, nil
	}
	account.CreditsRemaining -= amount
	account.TotalCreditsUsed += amount
	return true, account.CreditsRemaining, nil
}

func (m *MockCreditRepository) ResetIfStale(ctx context.Context, userID string, allotment int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil
	}
	if account.LastResetAt.Year() < now.Year() ||
		(account.LastResetAt.Year() == now.Year() && account.LastResetAt.Month() < now.Month()) {
		account.CreditsRemaining = allotment
		account.LastResetAt = now
	}
	return nil
}

func (m *MockCreditRepository) Refund(ctx context.Context, userID string, amount int, attemptID string) error {
	atomic.AddInt32(&m.RefundCallCount, 1)
	if m.RefundError != nil {
		return m.RefundError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refunds[attemptID] {
		return nil
	}
	account, ok := m.accounts[userID]
	if !ok {
		return nil
	}
	m.refunds[attemptID] = true
	account.CreditsRemaining += amount
	account.TotalCreditsUsed -= amount
	if account.TotalCreditsUsed < 0 {
		account.TotalCreditsUsed = 0
	}
	return nil
}

func (m *MockCreditRepository) AddCredits(ctx context.Context, purchase *domain.CreditPurchase) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.purchases[purchase.ExternalRef] {
		return false, nil
	}
	account, ok := m.accounts[purchase.UserID]
	if !ok {
		return false, repository.ErrNotFound
	}
	m.purchases[purchase.ExternalRef] = true
	account.CreditsRemaining += purchase.Amount
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is an in-memory implementation of repository.TripRepository.
type MockTripRepository struct {
	mu    sync.Mutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount        int32
	MarkGeneratedCallCount int32

	// Error injection. FailCreateTimes fails that many Create calls
	// before succeeding, for persistence-retry tests.
	CreateError        error
	MarkGeneratedError error
	FailCreateTimes    int32
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip seeds a trip for a test.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trips)
}

// Trip returns a stored trip for test assertions.
func (m *MockTripRepository) Trip(id string) *domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[id]
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if atomic.LoadInt32(&m.FailCreateTimes) > 0 {
		atomic.AddInt32(&m.FailCreateTimes, -1)
		return errors.New("transient store failure")
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Trip
	for _, trip := range m.trips {
		if trip.UserID == userID {
			copy := *trip
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *MockTripRepository) MarkGenerated(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.MarkGeneratedCallCount, 1)
	if m.MarkGeneratedError != nil {
		return m.MarkGeneratedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK PROVIDER
// ──────────────────────────────────────────────

// MockProvider is a mock implementation of service.Provider.
type MockProvider struct {
	Response string
	Model    string
	Err      error

	CallCount int32
}

func (m *MockProvider) Complete(ctx context.Context, prompt string) (string, string, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.Err != nil {
		return "", "", m.Err
	}
	model := m.Model
	if model == "" {
		model = "mock-model"
	}
	return m.Response, model, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of redis.LockStoreInterface.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

// Hold marks a lock as already held by someone else.
func (m *MockLockStore) Hold(tripID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[tripID] = true
}

func (m *MockLockStore) AcquireGenerationLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[tripID] {
		return false, nil
	}
	m.held[tripID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseGenerationLock(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, tripID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRIP CACHE
// ──────────────────────────────────────────────

// MockTripCache is an in-memory implementation of redis.TripCacheInterface.
type MockTripCache struct {
	mu    sync.Mutex
	trips map[string]*domain.Trip

	InvalidateCallCount int32
}

// NewMockTripCache creates a new mock trip cache.
func NewMockTripCache() *MockTripCache {
	return &MockTripCache{trips: make(map[string]*domain.Trip)}
}

func (m *MockTripCache) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, nil
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripCache) Set(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripCache) Invalidate(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, tripID)
	return nil
}
