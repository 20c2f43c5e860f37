package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

const (
	// ProfileScope is the knowledge cache scope holding number profiles.
	ProfileScope = "number-profile"

	// knowledgeVersion defines the version of the cached profile layout.
	knowledgeVersion = 1

	metaKey   = "__meta__"
	latestKey = "__latest__"
)

// ProfileSource is the subset of the ledger needed to fold profiles.
type ProfileSource interface {
	ListDraws(ctx context.Context, excludeTest bool) ([]schema.RawDraw, error)
	ListHypotheses(ctx context.Context) ([]schema.Hypothesis, error)
	ListOutcomes(ctx context.Context) ([]schema.OutcomeRecord, error)
}

type knowledgeMeta struct {
	TotalDraws int   `json:"totalDraws"`
	UpdatedAt  int64 `json:"updatedAt"`
}

type knowledgeLatest struct {
	LatestTimestamp *int64 `json:"latestTimestamp"`
	UpdatedAt       int64  `json:"updatedAt"`
}

// ProfileKey returns the cache key of a number profile.
func ProfileKey(number int) string {
	return "number:" + agg.PadNumber(number)
}

// LoadProfiles returns the cached profile set, rebuilding it when the scope is
// empty, lacks a meta entry, holds no profiles or was written by another version.
// A nil store always computes directly.
func LoadProfiles(ctx context.Context, src ProfileSource, ks contract.KnowledgeStore, now time.Time) (schema.ProfileSet, error) {
	if ks == nil {
		return computeProfiles(ctx, src, now)
	}

	rows, err := ks.ListByScope(ctx, ProfileScope)
	if err != nil {
		return schema.ProfileSet{}, fmt.Errorf("list knowledge scope: %w", err)
	}
	set, reason := decodeProfiles(rows)
	if reason == "" {
		for i := range set.Profiles {
			agg.RefreshRecency(&set.Profiles[i], now)
		}
		return set, nil
	}
	slog.Debug("rebuilding knowledge", "scope", ProfileScope, "reason", reason)
	return RebuildKnowledge(ctx, src, ks, now)
}

// RebuildKnowledge folds the ledger into profiles and replaces the whole scope.
// An empty ledger clears the scope.
func RebuildKnowledge(ctx context.Context, src ProfileSource, ks contract.KnowledgeStore, now time.Time) (schema.ProfileSet, error) {
	set, err := computeProfiles(ctx, src, now)
	if err != nil {
		return schema.ProfileSet{}, err
	}
	if ks == nil {
		return set, nil
	}
	if set.TotalDraws == 0 {
		if err := ks.ClearScope(ctx, ProfileScope); err != nil {
			return schema.ProfileSet{}, fmt.Errorf("clear knowledge scope: %w", err)
		}
		return set, nil
	}

	entries, err := encodeProfiles(set, now)
	if err != nil {
		return schema.ProfileSet{}, err
	}
	if err := ks.ReplaceScope(ctx, ProfileScope, entries); err != nil {
		return schema.ProfileSet{}, fmt.Errorf("replace knowledge scope: %w", err)
	}
	return set, nil
}

// GetProfile returns the profile of one number and whether it exists.
func GetProfile(ctx context.Context, src ProfileSource, ks contract.KnowledgeStore, number int, now time.Time) (schema.NumberProfile, bool, error) {
	set, err := LoadProfiles(ctx, src, ks, now)
	if err != nil {
		return schema.NumberProfile{}, false, err
	}
	for _, p := range set.Profiles {
		if p.Number == number {
			return p, true, nil
		}
	}
	return schema.NumberProfile{}, false, nil
}

func computeProfiles(ctx context.Context, src ProfileSource, now time.Time) (schema.ProfileSet, error) {
	raws, err := src.ListDraws(ctx, true)
	if err != nil {
		return schema.ProfileSet{}, fmt.Errorf("list draws: %w", err)
	}
	if len(raws) == 0 {
		return emptyProfileSet(), nil
	}
	hyps, err := src.ListHypotheses(ctx)
	if err != nil {
		return schema.ProfileSet{}, fmt.Errorf("list hypotheses: %w", err)
	}
	outcomes, err := src.ListOutcomes(ctx)
	if err != nil {
		return schema.ProfileSet{}, fmt.Errorf("list outcomes: %w", err)
	}
	return agg.BuildProfiles(agg.Normalize(raws), hyps, outcomes, now), nil
}

func emptyProfileSet() schema.ProfileSet {
	return schema.ProfileSet{TotalDraws: 0, Profiles: []schema.NumberProfile{}}
}

func encodeProfiles(set schema.ProfileSet, now time.Time) ([]schema.KnowledgeEntry, error) {
	updatedAt := now.UnixMilli()
	entries := make([]schema.KnowledgeEntry, 0, len(set.Profiles)+2)
	for _, p := range set.Profiles {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode profile %d: %w", p.Number, err)
		}
		entries = append(entries, schema.KnowledgeEntry{Scope: ProfileScope, Key: ProfileKey(p.Number), Value: data, Version: knowledgeVersion, UpdatedAt: updatedAt})
	}

	meta, err := json.Marshal(knowledgeMeta{TotalDraws: set.TotalDraws, UpdatedAt: updatedAt})
	if err != nil {
		return nil, err
	}
	latest, err := json.Marshal(knowledgeLatest{LatestTimestamp: set.LatestTimestamp, UpdatedAt: updatedAt})
	if err != nil {
		return nil, err
	}
	entries = append(entries,
		schema.KnowledgeEntry{Scope: ProfileScope, Key: metaKey, Value: meta, Version: knowledgeVersion, UpdatedAt: updatedAt},
		schema.KnowledgeEntry{Scope: ProfileScope, Key: latestKey, Value: latest, Version: knowledgeVersion, UpdatedAt: updatedAt},
	)
	return entries, nil
}

// decodeProfiles parses a scope. A non-empty reason means the cache must be rebuilt.
func decodeProfiles(rows []schema.KnowledgeEntry) (schema.ProfileSet, string) {
	if len(rows) == 0 {
		return schema.ProfileSet{}, "empty scope"
	}
	set := emptyProfileSet()
	hasMeta := false
	for _, row := range rows {
		if row.Version != knowledgeVersion {
			return schema.ProfileSet{}, "version mismatch"
		}
		switch row.Key {
		case metaKey:
			var meta knowledgeMeta
			if err := json.Unmarshal(row.Value, &meta); err != nil {
				return schema.ProfileSet{}, "corrupt meta entry"
			}
			set.TotalDraws = meta.TotalDraws
			hasMeta = true
		case latestKey:
			var latest knowledgeLatest
			if err := json.Unmarshal(row.Value, &latest); err != nil {
				return schema.ProfileSet{}, "corrupt latest entry"
			}
			set.LatestTimestamp = latest.LatestTimestamp
		default:
			var p schema.NumberProfile
			if err := json.Unmarshal(row.Value, &p); err != nil {
				return schema.ProfileSet{}, "corrupt profile entry"
			}
			set.Profiles = append(set.Profiles, p)
		}
	}
	if !hasMeta {
		return schema.ProfileSet{}, "missing meta entry"
	}
	if len(set.Profiles) == 0 {
		return schema.ProfileSet{}, "no profiles"
	}
	sort.Slice(set.Profiles, func(i, j int) bool {
		return set.Profiles[i].Number < set.Profiles[j].Number
	})
	return set, ""
}
