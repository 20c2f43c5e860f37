package iocache

import (
	"context"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetLedgerStore implements the StoreManager interface.
func (m *MockStoreManager) GetLedgerStore() contract.LedgerStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.LedgerStore)
	return store
}

// GetKnowledgeStore implements the StoreManager interface.
func (m *MockStoreManager) GetKnowledgeStore() contract.KnowledgeStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.KnowledgeStore)
	return store
}

// MockKnowledgeStore is a mock implementation of KnowledgeStore for testing.
type MockKnowledgeStore struct {
	mock.Mock
}

var _ contract.KnowledgeStore = &MockKnowledgeStore{} // Compile-time check

// Get implements the KnowledgeStore interface.
func (m *MockKnowledgeStore) Get(ctx context.Context, scope, key string) (schema.KnowledgeEntry, error) {
	args := m.Called(ctx, scope, key)
	return args.Get(0).(schema.KnowledgeEntry), args.Error(1)
}

// ListByScope implements the KnowledgeStore interface.
func (m *MockKnowledgeStore) ListByScope(ctx context.Context, scope string) ([]schema.KnowledgeEntry, error) {
	args := m.Called(ctx, scope)
	rows, _ := args.Get(0).([]schema.KnowledgeEntry)
	return rows, args.Error(1)
}

// ReplaceScope implements the KnowledgeStore interface.
func (m *MockKnowledgeStore) ReplaceScope(ctx context.Context, scope string, entries []schema.KnowledgeEntry) error {
	args := m.Called(ctx, scope, entries)
	return args.Error(0)
}

// ClearScope implements the KnowledgeStore interface.
func (m *MockKnowledgeStore) ClearScope(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

// GetStatus implements the KnowledgeStore interface.
func (m *MockKnowledgeStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the KnowledgeStore interface.
func (m *MockKnowledgeStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockLedgerStore is a mock implementation of LedgerStore for testing.
type MockLedgerStore struct {
	mock.Mock
}

var _ contract.LedgerStore = &MockLedgerStore{} // Compile-time check

// ListDraws implements the DrawStore interface.
func (m *MockLedgerStore) ListDraws(ctx context.Context, excludeTest bool) ([]schema.RawDraw, error) {
	args := m.Called(ctx, excludeTest)
	rows, _ := args.Get(0).([]schema.RawDraw)
	return rows, args.Error(1)
}

// SaveDraw implements the DrawStore interface.
func (m *MockLedgerStore) SaveDraw(ctx context.Context, draw schema.RawDraw, opts schema.SaveOptions) (schema.SaveResult, error) {
	args := m.Called(ctx, draw, opts)
	return args.Get(0).(schema.SaveResult), args.Error(1)
}

// DeleteDraw implements the DrawStore interface.
func (m *MockLedgerStore) DeleteDraw(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// ClearDraws implements the DrawStore interface.
func (m *MockLedgerStore) ClearDraws(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// FindDuplicates implements the DrawStore interface.
func (m *MockLedgerStore) FindDuplicates(ctx context.Context) ([]schema.DuplicateGroup, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]schema.DuplicateGroup)
	return groups, args.Error(1)
}

// MarkTest implements the DrawStore interface.
func (m *MockLedgerStore) MarkTest(ctx context.Context, ids []string, isTest bool) (int, error) {
	args := m.Called(ctx, ids, isTest)
	return args.Int(0), args.Error(1)
}

// CreateHypothesis implements the HypothesisStore interface.
func (m *MockLedgerStore) CreateHypothesis(ctx context.Context, h schema.Hypothesis) error {
	return m.Called(ctx, h).Error(0)
}

// UpdateHypothesis implements the HypothesisStore interface.
func (m *MockLedgerStore) UpdateHypothesis(ctx context.Context, h schema.Hypothesis) error {
	return m.Called(ctx, h).Error(0)
}

// GetHypothesis implements the HypothesisStore interface.
func (m *MockLedgerStore) GetHypothesis(ctx context.Context, id string) (schema.Hypothesis, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.Hypothesis), args.Error(1)
}

// ListHypotheses implements the HypothesisStore interface.
func (m *MockLedgerStore) ListHypotheses(ctx context.Context) ([]schema.Hypothesis, error) {
	args := m.Called(ctx)
	hyps, _ := args.Get(0).([]schema.Hypothesis)
	return hyps, args.Error(1)
}

// LogOutcome implements the HypothesisStore interface.
func (m *MockLedgerStore) LogOutcome(ctx context.Context, rec schema.OutcomeRecord) error {
	return m.Called(ctx, rec).Error(0)
}

// ListOutcomes implements the HypothesisStore interface.
func (m *MockLedgerStore) ListOutcomes(ctx context.Context) ([]schema.OutcomeRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]schema.OutcomeRecord)
	return recs, args.Error(1)
}

// SaveMode implements the ModeStore interface.
func (m *MockLedgerStore) SaveMode(ctx context.Context, mode schema.GameMode) error {
	return m.Called(ctx, mode).Error(0)
}

// GetMode implements the ModeStore interface.
func (m *MockLedgerStore) GetMode(ctx context.Context, id string) (schema.GameMode, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.GameMode), args.Error(1)
}

// ListModes implements the ModeStore interface.
func (m *MockLedgerStore) ListModes(ctx context.Context) ([]schema.GameMode, error) {
	args := m.Called(ctx)
	modes, _ := args.Get(0).([]schema.GameMode)
	return modes, args.Error(1)
}

// DeleteMode implements the ModeStore interface.
func (m *MockLedgerStore) DeleteMode(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// AddExample implements the ModeStore interface.
func (m *MockLedgerStore) AddExample(ctx context.Context, modeID string, ex schema.ModeExample) error {
	return m.Called(ctx, modeID, ex).Error(0)
}

// DeleteExample implements the ModeStore interface.
func (m *MockLedgerStore) DeleteExample(ctx context.Context, modeID, exampleID string) error {
	return m.Called(ctx, modeID, exampleID).Error(0)
}

// SaveRelation implements the TriggerStore interface.
func (m *MockLedgerStore) SaveRelation(ctx context.Context, r schema.Relation) error {
	return m.Called(ctx, r).Error(0)
}

// ListRelations implements the TriggerStore interface.
func (m *MockLedgerStore) ListRelations(ctx context.Context, activeOnly bool) ([]schema.Relation, error) {
	args := m.Called(ctx, activeOnly)
	rels, _ := args.Get(0).([]schema.Relation)
	return rels, args.Error(1)
}

// DeleteRelation implements the TriggerStore interface.
func (m *MockLedgerStore) DeleteRelation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// SaveEvent implements the TriggerStore interface.
func (m *MockLedgerStore) SaveEvent(ctx context.Context, e schema.TriggerEvent) error {
	return m.Called(ctx, e).Error(0)
}

// ListEvents implements the TriggerStore interface.
func (m *MockLedgerStore) ListEvents(ctx context.Context, status schema.EventStatus) ([]schema.TriggerEvent, error) {
	args := m.Called(ctx, status)
	events, _ := args.Get(0).([]schema.TriggerEvent)
	return events, args.Error(1)
}

// GetStatus implements the LedgerStore interface.
func (m *MockLedgerStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the LedgerStore interface.
func (m *MockLedgerStore) Close() error {
	return m.Called().Error(0)
}
