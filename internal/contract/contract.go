// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/drawbias/schema"
)

// DrawStore defines the operations on the draw ledger.
type DrawStore interface {
	// ListDraws returns every stored draw, skipping test rows when excludeTest is set.
	ListDraws(ctx context.Context, excludeTest bool) ([]schema.RawDraw, error)

	// SaveDraw inserts a draw unless a duplicate exists for (date, country, slot, number).
	SaveDraw(ctx context.Context, draw schema.RawDraw, opts schema.SaveOptions) (schema.SaveResult, error)

	DeleteDraw(ctx context.Context, id string) error
	ClearDraws(ctx context.Context) error

	// FindDuplicates groups draws sharing the same dedup key.
	FindDuplicates(ctx context.Context) ([]schema.DuplicateGroup, error)

	// MarkTest flags or unflags the given draws as test rows and returns the number updated.
	MarkTest(ctx context.Context, ids []string, isTest bool) (int, error)
}

// HypothesisStore defines the operations on hypotheses and their outcome log.
type HypothesisStore interface {
	CreateHypothesis(ctx context.Context, h schema.Hypothesis) error
	UpdateHypothesis(ctx context.Context, h schema.Hypothesis) error
	GetHypothesis(ctx context.Context, id string) (schema.Hypothesis, error)
	ListHypotheses(ctx context.Context) ([]schema.Hypothesis, error)
	LogOutcome(ctx context.Context, rec schema.OutcomeRecord) error
	ListOutcomes(ctx context.Context) ([]schema.OutcomeRecord, error)
}

// ModeStore defines the operations on user-defined game modes.
type ModeStore interface {
	SaveMode(ctx context.Context, m schema.GameMode) error
	GetMode(ctx context.Context, id string) (schema.GameMode, error)
	ListModes(ctx context.Context) ([]schema.GameMode, error)
	DeleteMode(ctx context.Context, id string) error
	AddExample(ctx context.Context, modeID string, ex schema.ModeExample) error
	DeleteExample(ctx context.Context, modeID, exampleID string) error
}

// TriggerStore defines the operations on trigger relations and their events.
type TriggerStore interface {
	SaveRelation(ctx context.Context, r schema.Relation) error
	ListRelations(ctx context.Context, activeOnly bool) ([]schema.Relation, error)
	DeleteRelation(ctx context.Context, id string) error
	SaveEvent(ctx context.Context, e schema.TriggerEvent) error

	// ListEvents returns events with the given status, or all events when status is empty.
	ListEvents(ctx context.Context, status schema.EventStatus) ([]schema.TriggerEvent, error)
}

// LedgerStore bundles every user-owned record behind one connection.
type LedgerStore interface {
	DrawStore
	HypothesisStore
	ModeStore
	TriggerStore
	GetStatus(ctx context.Context) (schema.StoreStatus, error)
	Close() error
}

// KnowledgeStore defines the interface for the derived knowledge cache.
// Entries are grouped by scope and replaced a whole scope at a time.
type KnowledgeStore interface {
	Get(ctx context.Context, scope, key string) (schema.KnowledgeEntry, error)
	ListByScope(ctx context.Context, scope string) ([]schema.KnowledgeEntry, error)
	ReplaceScope(ctx context.Context, scope string, entries []schema.KnowledgeEntry) error
	ClearScope(ctx context.Context, scope string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// StoreManager defines the interface for managing stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetLedgerStore() LedgerStore
	GetKnowledgeStore() KnowledgeStore
}
