// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysis prints the result of a full analysis pass.
func (ow *OutWriter) WriteAnalysis(result schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return WriteAnalysisResult(result, cfg, duration)
}

// WritePredictions prints baseline predictions.
func (ow *OutWriter) WritePredictions(preds []schema.Prediction, cfg *contract.Config, duration time.Duration) error {
	return WritePredictionResults(preds, cfg, duration)
}

// WriteTiers prints every tier list of a classifier pass.
func (ow *OutWriter) WriteTiers(report schema.TierReport, cfg *contract.Config) error {
	return WriteTierReport(report, cfg)
}

// WritePatterns prints a pattern report.
func (ow *OutWriter) WritePatterns(report schema.PatternReport, cfg *contract.Config) error {
	return WritePatternReport(report, cfg)
}

// WriteProfiles prints number profiles.
func (ow *OutWriter) WriteProfiles(set schema.ProfileSet, cfg *contract.Config) error {
	return WriteProfileSet(set, cfg)
}

// WriteInsights prints profile insights.
func (ow *OutWriter) WriteInsights(insights []schema.Insight, cfg *contract.Config) error {
	return WriteInsightList(insights, cfg)
}

// WriteModes prints the stored game modes.
func (ow *OutWriter) WriteModes(modes []schema.GameMode, cfg *contract.Config) error {
	return WriteModeList(modes, cfg)
}

// WriteModeReports prints the evaluation of game modes.
func (ow *OutWriter) WriteModeReports(reports []schema.ModeReport, cfg *contract.Config) error {
	return WriteModeReportList(reports, cfg)
}

// WriteModeSuggestions prints mode suggestions.
func (ow *OutWriter) WriteModeSuggestions(suggestions []schema.ModeSuggestion, cfg *contract.Config) error {
	return WriteModeSuggestionList(suggestions, cfg)
}

// WriteHypotheses prints hypotheses.
func (ow *OutWriter) WriteHypotheses(hyps []schema.Hypothesis, cfg *contract.Config) error {
	return WriteHypothesisList(hyps, cfg)
}

// WriteOutcomes prints outcome records.
func (ow *OutWriter) WriteOutcomes(records []schema.OutcomeRecord, cfg *contract.Config) error {
	return WriteOutcomeList(records, cfg)
}

// WriteRelations prints trigger relations.
func (ow *OutWriter) WriteRelations(relations []schema.Relation, cfg *contract.Config) error {
	return WriteRelationList(relations, cfg)
}

// WriteRelationStats prints per-relation statistics.
func (ow *OutWriter) WriteRelationStats(stats []schema.RelationStats, relations []schema.Relation, cfg *contract.Config) error {
	return WriteRelationStatsList(stats, relations, cfg)
}

// WriteTriggerEvents prints trigger events.
func (ow *OutWriter) WriteTriggerEvents(events []schema.TriggerEvent, cfg *contract.Config) error {
	return WriteTriggerEventList(events, cfg)
}

// WriteDraws prints a normalized timeline.
func (ow *OutWriter) WriteDraws(timeline schema.Timeline, cfg *contract.Config) error {
	return WriteDrawTimeline(timeline, cfg)
}

// WriteDuplicates prints duplicate draw groups.
func (ow *OutWriter) WriteDuplicates(groups []schema.DuplicateGroup, cfg *contract.Config) error {
	return WriteDuplicateGroups(groups, cfg)
}

// heading returns the section title, with its emoji only when enabled.
func heading(cfg *contract.Config, emoji, text string) string {
	if cfg.UseEmojis {
		return emoji + " " + text
	}
	return text
}

// tierLabel returns a colored tier label when colors are enabled.
func tierLabel(cfg *contract.Config, tier schema.Tier) string {
	if cfg.UseColors {
		return contract.GetColorTierLabel(tier)
	}
	return contract.GetTierLabel(tier)
}
