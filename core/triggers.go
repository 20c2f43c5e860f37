package core

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
)

// Relation window defaults in days.
const (
	DefaultWindowMinDays = 0
	DefaultWindowMaxDays = 5
)

// sampleRelations are the relations installed by SeedRelations.
var sampleRelations = []schema.RelationInput{
	{Origin: 37, Target: 47, Type: schema.TriggersRelation},
	{Origin: 37, Target: 96, Type: schema.TriggersRelation},
	{Origin: 44, Target: 95, Type: schema.WarnsRelation},
}

// NewRelation validates input and returns a relation with defaults applied.
// Numbers are folded into 0..99 and negative windows fall back to defaults.
func NewRelation(in schema.RelationInput, now time.Time) (schema.Relation, error) {
	relType := schema.RelationType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	if _, ok := schema.ValidRelationTypes[relType]; !ok {
		return schema.Relation{}, fmt.Errorf("%w: unknown type %q", iocache.ErrInvalidRelation, in.Type)
	}
	minDays := windowDays(in.WindowMinDays, DefaultWindowMinDays)
	maxDays := windowDays(in.WindowMaxDays, DefaultWindowMaxDays)
	if maxDays < minDays {
		return schema.Relation{}, fmt.Errorf("%w: window max %d is below min %d", iocache.ErrInvalidRelation, maxDays, minDays)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return schema.Relation{
		ID:            uuid.NewString(),
		Origin:        wrapNumber(in.Origin),
		Target:        wrapNumber(in.Target),
		Type:          relType,
		WindowMinDays: minDays,
		WindowMaxDays: maxDays,
		Notes:         strings.TrimSpace(in.Notes),
		IsActive:      active,
		CreatedAt:     now.UTC(),
	}, nil
}

func windowDays(v *int, fallback int) int {
	if v == nil || *v < 0 {
		return fallback
	}
	return *v
}

func wrapNumber(n int) int {
	return ((n % 100) + 100) % 100
}

// DrawTime is the wall clock instant of a draw: its date at the slot hour, in UTC.
func DrawTime(d schema.DrawEvent) time.Time {
	return d.Date.Add(time.Duration(d.Slot.Hour()) * time.Hour)
}

// SeedRelations installs the sample relations that are not already present.
func SeedRelations(ctx context.Context, store contract.TriggerStore, now time.Time) (int, error) {
	existing, err := store.ListRelations(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("list relations: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[fmt.Sprintf("%d-%d-%s", r.Origin, r.Target, r.Type)] = true
	}
	created := 0
	for _, in := range sampleRelations {
		if seen[fmt.Sprintf("%d-%d-%s", in.Origin, in.Target, in.Type)] {
			continue
		}
		in.Notes = "Semilla automática"
		r, err := NewRelation(in, now)
		if err != nil {
			return created, err
		}
		if err := store.SaveRelation(ctx, r); err != nil {
			return created, fmt.Errorf("save relation: %w", err)
		}
		created++
	}
	return created, nil
}

// ProcessDraw opens an event for every active relation whose origin is the
// drawn number, then resolves open events whose target is the drawn number.
// Events opened by the same draw are never resolved by it.
func ProcessDraw(ctx context.Context, store contract.TriggerStore, draw schema.DrawEvent, now time.Time) (opened, resolved int, err error) {
	relations, err := store.ListRelations(ctx, false)
	if err != nil {
		return 0, 0, fmt.Errorf("list relations: %w", err)
	}
	drawTime := DrawTime(draw)
	byID := make(map[string]schema.Relation, len(relations))
	fresh := make(map[string]bool)
	for _, r := range relations {
		byID[r.ID] = r
		if !r.IsActive || r.Origin != draw.Number {
			continue
		}
		ev := schema.TriggerEvent{
			ID:         uuid.NewString(),
			RelationID: r.ID,
			Origin:     r.Origin,
			Target:     r.Target,
			OriginTime: drawTime,
			Deadline:   drawTime.Add(time.Duration(r.WindowMaxDays) * schema.Day),
			Status:     schema.OpenStatus,
		}
		if err := store.SaveEvent(ctx, ev); err != nil {
			return opened, resolved, fmt.Errorf("open event for relation %s: %w", r.ID, err)
		}
		fresh[ev.ID] = true
		opened++
	}

	open, err := store.ListEvents(ctx, schema.OpenStatus)
	if err != nil {
		return opened, resolved, fmt.Errorf("list open events: %w", err)
	}
	for _, ev := range open {
		if fresh[ev.ID] || ev.Target != draw.Number || drawTime.Before(ev.OriginTime) {
			continue
		}
		r, ok := byID[ev.RelationID]
		if !ok {
			continue
		}
		lag := max(0, int(math.Floor(drawTime.Sub(ev.OriginTime).Hours()/24)))
		if lag < r.WindowMinDays {
			continue
		}
		ev.Status = schema.HitStatus
		if lag > r.WindowMaxDays {
			ev.Status = schema.LateHitStatus
		}
		closed := now.UTC()
		ev.Lag = &lag
		ev.HitTime = &drawTime
		ev.ClosedAt = &closed
		if err := store.SaveEvent(ctx, ev); err != nil {
			return opened, resolved, fmt.Errorf("resolve event %s: %w", ev.ID, err)
		}
		resolved++
	}
	return opened, resolved, nil
}

// CloseExpired marks open events whose deadline has passed as misses.
func CloseExpired(ctx context.Context, store contract.TriggerStore, now time.Time) (int, error) {
	open, err := store.ListEvents(ctx, schema.OpenStatus)
	if err != nil {
		return 0, fmt.Errorf("list open events: %w", err)
	}
	closed := 0
	for _, ev := range open {
		if !ev.Deadline.Before(now) {
			continue
		}
		ts := now.UTC()
		ev.Status = schema.MissStatus
		ev.ClosedAt = &ts
		if err := store.SaveEvent(ctx, ev); err != nil {
			return closed, fmt.Errorf("close event %s: %w", ev.ID, err)
		}
		closed++
	}
	return closed, nil
}

// ComputeRelationStats summarizes events per relation. Rates are taken over
// resolved events and lag statistics over hits and late hits. Results are
// sorted by hit rate, then by total events.
func ComputeRelationStats(relations []schema.Relation, events []schema.TriggerEvent) []schema.RelationStats {
	byRelation := make(map[string][]schema.TriggerEvent)
	for _, ev := range events {
		byRelation[ev.RelationID] = append(byRelation[ev.RelationID], ev)
	}
	out := make([]schema.RelationStats, 0, len(relations))
	for _, r := range relations {
		out = append(out, relationStats(r.ID, byRelation[r.ID]))
	}
	slices.SortStableFunc(out, func(a, b schema.RelationStats) int {
		if c := cmp.Compare(b.HitRate, a.HitRate); c != 0 {
			return c
		}
		return cmp.Compare(b.Total, a.Total)
	})
	return out
}

func relationStats(id string, events []schema.TriggerEvent) schema.RelationStats {
	s := schema.RelationStats{RelationID: id, Total: len(events)}
	var lags []float64
	for _, ev := range events {
		switch ev.Status {
		case schema.HitStatus:
			s.Hits++
		case schema.LateHitStatus:
			s.Late++
		case schema.MissStatus:
			s.Misses++
		default:
			s.Open++
		}
		if ev.Lag != nil && (ev.Status == schema.HitStatus || ev.Status == schema.LateHitStatus) {
			lags = append(lags, float64(*ev.Lag))
		}
	}
	if resolvedCount := s.Hits + s.Late + s.Misses; resolvedCount > 0 {
		s.HitRate = float64(s.Hits) / float64(resolvedCount)
		s.MissRate = float64(s.Misses) / float64(resolvedCount)
		s.LateRate = float64(s.Late) / float64(resolvedCount)
	}
	if len(lags) > 0 {
		slices.Sort(lags)
		sum := 0.0
		for _, l := range lags {
			sum += l
		}
		s.AvgLag = sum / float64(len(lags))
		s.MedianLag = percentile(lags, 0.5)
		s.P80Lag = percentile(lags, 0.8)
	}
	return s
}

// percentile interpolates linearly between the closest ranks of sorted values.
func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
