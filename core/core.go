// Package core has core logic for profiling, pattern detection, tiering and selection.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/guide"
	"github.com/huangsam/drawbias/internal/outwriter"
	"github.com/huangsam/drawbias/schema"
)

// ExecutorFunc defines the function signature for executing read-only analysis commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// AnalysisInput gathers everything a pure analysis pass reads.
type AnalysisInput struct {
	Timeline   schema.Timeline
	Profiles   schema.ProfileSet
	Guide      schema.Guide
	Context    schema.AnalysisContext
	WindowDays int
	Now        time.Time
}

// FilterTimeline keeps the draws matching the country and year of the context.
// Country matches case-insensitively; zero values keep everything.
func FilterTimeline(timeline schema.Timeline, c schema.AnalysisContext) schema.Timeline {
	country := strings.ToLower(strings.TrimSpace(c.Country))
	if country == "" && c.Year == 0 {
		return timeline
	}
	out := make(schema.Timeline, 0, len(timeline))
	for _, d := range timeline {
		if country != "" && strings.ToLower(d.Country) != country {
			continue
		}
		if c.Year != 0 && d.Date.Year() != c.Year {
			continue
		}
		out = append(out, d)
	}
	return out
}

// RunAnalysis performs a full pass: patterns, baseline predictions, tiers and
// the final selection. It is pure; re-running it on the same input yields the
// same result.
func RunAnalysis(in AnalysisInput) schema.AnalysisResult {
	timeline := FilterTimeline(in.Timeline, in.Context)
	analysisCtx := in.Context
	if !analysisCtx.TargetSlot.Valid() {
		analysisCtx.TargetSlot = ComputeTargetSlot(timeline, in.Now).Slot
	}

	patterns := DetectPatterns(timeline, in.Guide, in.Now)
	preds := BaselinePredictions(in.Profiles.Profiles, 0)
	tiers := ClassifyTiers(TierInput{
		Timeline:    timeline,
		Profiles:    in.Profiles.Profiles,
		Predictions: preds,
		Patterns:    patterns,
		Guide:       in.Guide,
		Context:     analysisCtx,
		WindowDays:  in.WindowDays,
	})
	selection := SelectFinal(tiers, timeline, in.Now)

	return schema.AnalysisResult{
		GeneratedAt: in.Now.UTC().Format(time.RFC3339),
		Context:     analysisCtx,
		TotalDraws:  len(timeline),
		Predictions: preds[:min(len(preds), DisplayPredictionLimit)],
		Patterns:    patterns,
		Tiers:       tiers,
		Selection:   selection,
	}
}

// LoadTimeline reads and normalizes the draw ledger.
func LoadTimeline(ctx context.Context, store contract.DrawStore, includeTest bool) (schema.Timeline, error) {
	raws, err := store.ListDraws(ctx, !includeTest)
	if err != nil {
		return nil, fmt.Errorf("list draws: %w", err)
	}
	return agg.Normalize(raws), nil
}

// loadAnalysisInput reads the ledger, the profile knowledge and the guide.
func loadAnalysisInput(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (AnalysisInput, error) {
	ledger := mgr.GetLedgerStore()
	timeline, err := LoadTimeline(ctx, ledger, cfg.IncludeTest)
	if err != nil {
		return AnalysisInput{}, err
	}
	profiles, err := LoadProfiles(ctx, ledger, mgr.GetKnowledgeStore(), cfg.Now)
	if err != nil {
		return AnalysisInput{}, err
	}
	g, err := guide.Load(cfg.GuidePath)
	if err != nil {
		return AnalysisInput{}, err
	}
	return AnalysisInput{
		Timeline:   timeline,
		Profiles:   profiles,
		Guide:      g,
		Context:    cfg.Context,
		WindowDays: cfg.WindowDays,
		Now:        cfg.Now,
	}, nil
}

// GetAnalysisResults runs a full pass over the configured stores.
func GetAnalysisResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.AnalysisResult, time.Duration, error) {
	start := time.Now()
	in, err := loadAnalysisInput(ctx, cfg, mgr)
	if err != nil {
		return schema.AnalysisResult{}, 0, err
	}
	printHeader(ctx, cfg, "🧠", fmt.Sprintf("Analyzing %d draws as of %s", len(in.Timeline), cfg.Now.Format(contract.DateTimeFormat)))
	result := RunAnalysis(in)
	return result, time.Since(start), nil
}

// ExecuteAnalysis runs a full pass and prints the final selection.
// It serves as the main entry point for the 'predict' command.
func ExecuteAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, duration, err := GetAnalysisResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAnalysis(result, cfg, duration)
}

// GetBaselinePredictions returns the top baseline predictions.
func GetBaselinePredictions(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.Prediction, error) {
	set, err := LoadProfiles(ctx, mgr.GetLedgerStore(), mgr.GetKnowledgeStore(), cfg.Now)
	if err != nil {
		return nil, err
	}
	return BaselinePredictions(set.Profiles, cfg.ResultLimit), nil
}

// ExecuteBaseline prints baseline predictions straight from the profiles.
func ExecuteBaseline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	preds, err := GetBaselinePredictions(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePredictions(preds, cfg, time.Since(start))
}

// GetPatternReport runs the detectors over the filtered timeline.
func GetPatternReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.PatternReport, error) {
	timeline, err := LoadTimeline(ctx, mgr.GetLedgerStore(), cfg.IncludeTest)
	if err != nil {
		return schema.PatternReport{}, err
	}
	g, err := guide.Load(cfg.GuidePath)
	if err != nil {
		return schema.PatternReport{}, err
	}
	return DetectPatterns(FilterTimeline(timeline, cfg.Context), g, cfg.Now), nil
}

// ExecutePatterns prints the pattern report.
func ExecutePatterns(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	report, err := GetPatternReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePatterns(report, cfg)
}

// ExecuteTiers prints every tier list of a full pass.
func ExecuteTiers(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, _, err := GetAnalysisResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteTiers(result.Tiers, cfg)
}

// ExecuteProfiles prints every cached profile.
func ExecuteProfiles(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	set, err := LoadProfiles(ctx, mgr.GetLedgerStore(), mgr.GetKnowledgeStore(), cfg.Now)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteProfiles(set, cfg)
}

// ExecuteProfile prints the profile of one number with its summary line.
func ExecuteProfile(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, number int) error {
	p, ok, err := GetProfile(ctx, mgr.GetLedgerStore(), mgr.GetKnowledgeStore(), number, cfg.Now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("number %s has never been drawn", agg.PadNumber(number))
	}
	if cfg.Output == schema.TextOut {
		printHeader(ctx, cfg, "🔢", DescribeProfile(p))
	}
	return outwriter.NewOutWriter().WriteProfiles(schema.ProfileSet{TotalDraws: 1, Profiles: []schema.NumberProfile{p}}, cfg)
}

// ExecuteInsights prints the standout numbers per slot, weekday and country.
func ExecuteInsights(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	set, err := LoadProfiles(ctx, mgr.GetLedgerStore(), mgr.GetKnowledgeStore(), cfg.Now)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteInsights(GenerateInsights(set.Profiles), cfg)
}

// ExecuteRebuildKnowledge refreshes the knowledge cache from the ledger.
func ExecuteRebuildKnowledge(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	set, err := RebuildKnowledge(ctx, mgr.GetLedgerStore(), mgr.GetKnowledgeStore(), cfg.Now)
	if err != nil {
		return err
	}
	fmt.Printf("Knowledge rebuilt: %d profiles from %d draws.\n", len(set.Profiles), set.TotalDraws)
	return nil
}

// printHeader writes a header line for text output unless the context suppresses it.
func printHeader(ctx context.Context, cfg *contract.Config, emoji, text string) {
	if shouldSuppressHeader(ctx) || cfg.Output != schema.TextOut {
		return
	}
	if cfg.UseEmojis {
		fmt.Printf("%s %s\n", emoji, text)
		return
	}
	fmt.Println(text)
}
