package schema

import "time"

// AnalysisContext enumerates the recognised context fields of an analysis pass.
type AnalysisContext struct {
	Country    string        `json:"country,omitempty"`
	Weekday    *time.Weekday `json:"weekday,omitempty"`
	Year       int           `json:"year,omitempty"`
	TargetSlot Slot          `json:"targetSlot"`
}

// GuideEntry is one row of the symbolic guide.
type GuideEntry struct {
	Symbol   string   `json:"simbolo" yaml:"simbolo"`
	Family   string   `json:"familia" yaml:"familia"`
	Polarity Polarity `json:"polaridad" yaml:"polaridad"`
}

// Guide maps a number to its symbolic entry. It is read-only during a pass.
type Guide map[int]GuideEntry

// Evidence is a single supporting sample of a pattern finding.
type Evidence struct {
	Date    string `json:"fecha"`
	Slot    Slot   `json:"horario"`
	Country string `json:"pais,omitempty"`
	Number  int    `json:"numero"`
	Note    string `json:"resumen"`
}

// PatternFinding is a single detector result.
type PatternFinding struct {
	ID               string         `json:"id"`
	Title            string         `json:"titulo"`
	Confidence       float64        `json:"confianza"`
	Summary          string         `json:"resumen"`
	Evidence         []Evidence     `json:"evidencia"`
	Data             FindingData    `json:"datos"`
	NextExpectedDate string         `json:"siguienteFechaEsperada,omitempty"`
}

// FindingData holds the supporting data of a finding. Exactly one field is set,
// matching the detector that produced it.
type FindingData struct {
	Gap        *GapData        `json:"gap,omitempty"`
	Temporal   *TemporalData   `json:"temporal,omitempty"`
	Repeat     *RepeatData     `json:"repeticion,omitempty"`
	Transition *TransitionData `json:"transicion,omitempty"`
	Double     *DoubleData     `json:"doble,omitempty"`
	Family     *FamilyData     `json:"familia,omitempty"`
}

// GapData backs a recurring-gap finding.
type GapData struct {
	Number        int     `json:"numero"`
	Gap           int     `json:"gap"`
	MatchedCycles int     `json:"matchedCycles"`
	TotalGaps     int     `json:"totalGaps"`
	Ratio         float64 `json:"ratio"`
}

// TemporalKind tells weekday and slot biases apart.
type TemporalKind string

const (
	WeekdayBias TemporalKind = "weekday"
	SlotBias    TemporalKind = "slot"
)

// TemporalData backs a weekday or slot bias finding.
type TemporalData struct {
	Number          int          `json:"numero"`
	Kind            TemporalKind `json:"tipo"`
	Label           string       `json:"etiqueta"`
	Count           int          `json:"conteo"`
	WindowRatio     float64      `json:"ventana"`
	HistoricalRatio float64      `json:"historico"`
}

// RepeatData backs a consecutive-repetition finding.
type RepeatData struct {
	Number  int     `json:"numero"`
	Matches int     `json:"repeticion"`
	Total   int     `json:"total"`
	History int     `json:"historial"`
	Ratio   float64 `json:"ratio"`
}

// TransitionData backs an origin -> destination finding.
type TransitionData struct {
	Origin      int     `json:"origen"`
	Destination int     `json:"destino"`
	Count       int     `json:"conteo"`
	Total       int     `json:"total"`
	History     int     `json:"historial"`
	Share       float64 `json:"share"`
}

// DoubleData backs the double-digit weekday finding.
type DoubleData struct {
	Weekday string  `json:"dia"`
	Count   int     `json:"conteo"`
	Total   int     `json:"total"`
	History int     `json:"historial"`
	Ratio   float64 `json:"ratio"`
}

// FamilyData backs a family cluster finding.
type FamilyData struct {
	Family  string  `json:"familia"`
	Days    int     `json:"dias"`
	History int     `json:"historial"`
	Ratio   float64 `json:"ratio"`
}

// PolarityCounts tallies guide polarities over recent draws.
type PolarityCounts struct {
	Positive int `json:"positiva"`
	Neutral  int `json:"neutra"`
	Negative int `json:"negativa"`
}

// PatternReport is the output of a detector pass.
type PatternReport struct {
	Recent         []DrawEvent      `json:"recientes"`
	Families       map[string]int   `json:"familias"`
	Polarities     PolarityCounts   `json:"polaridades"`
	DominantFamily string           `json:"familiaDominante"`
	Energy         string           `json:"energia"`
	Score          float64          `json:"score"`
	Message        string           `json:"mensaje"`
	WindowSize     int              `json:"ventana"`
	Findings       []PatternFinding `json:"hallazgos"`
}

// GapInfo is the modal-gap view of a profile used by the classifier.
type GapInfo struct {
	Mode      *int     `json:"mode"`
	Matches   int      `json:"matches"`
	DaysSince *float64 `json:"daysSince"`
	IsActive  bool     `json:"isActive"`
}

// Narrative reports whether a confirmed hypothesis or outcome backs a number.
type Narrative struct {
	Active     bool   `json:"active"`
	Date       string `json:"fecha,omitempty"`
	Source     string `json:"fuente,omitempty"`
	Kind       string `json:"tipo,omitempty"`
	WindowDays int    `json:"windowDays"`
}

// TierCandidate is a number qualified for a tier with its composite score.
type TierCandidate struct {
	Number       int         `json:"numero"`
	Tier         Tier        `json:"level"`
	Score        float64     `json:"score"`
	Frequency    float64     `json:"frecuencia"`
	Recency      float64     `json:"recencia"`
	Hypothesis   float64     `json:"hipotesis"`
	Context      float64     `json:"contextoScore"`
	SlotRatio    float64     `json:"turnRatio"`
	WeekdayRatio float64     `json:"dowRatio"`
	WindowFreq   float64     `json:"windowFreq"`
	WindowCount  int         `json:"windowCount"`
	Last         *Occurrence `json:"last"`
	Gap          *GapInfo    `json:"gap,omitempty"`
	Narrative    *Narrative  `json:"narrativa,omitempty"`
	Triggers     []string    `json:"triggers"`
}

// TierReport holds every tier list of a classifier pass.
type TierReport struct {
	Strong      []TierCandidate `json:"fuertes"`
	Moderate    []TierCandidate `json:"moderados"`
	Weak        []TierCandidate `json:"debiles"`
	Historic    []TierCandidate `json:"historicos"`
	WindowStart string          `json:"windowStart,omitempty"`
	WindowEnd   string          `json:"windowEnd,omitempty"`
}

// ScoreComponents is the per-tier weighted contribution to a final score.
type ScoreComponents struct {
	Strong   float64 `json:"fuerte"`
	Moderate float64 `json:"moderado"`
	Weak     float64 `json:"debil"`
	Recent   float64 `json:"reciente"`
}

// Sum returns the unclamped total of all components.
func (c ScoreComponents) Sum() float64 {
	return c.Strong + c.Moderate + c.Weak + c.Recent
}

// ScoredEntry is a number in the final ranking.
type ScoredEntry struct {
	Number     int             `json:"numero"`
	Total      float64         `json:"total"`
	Percent    float64         `json:"percent"`
	Components ScoreComponents `json:"components"`
}

// TargetSlot is the next slot the selection is aimed at.
type TargetSlot struct {
	Slot     Slot   `json:"turno"`
	Label    string `json:"label"`
	Recorded int    `json:"registros"`
}

// Selection is the final pick set of a pass.
type Selection struct {
	TopPicks   []ScoredEntry `json:"topPicks"`
	Secondary  []ScoredEntry `json:"secundarios"`
	Wildcard   *int          `json:"comodin"`
	TargetSlot TargetSlot    `json:"turnoObjetivo"`
}

// AnalysisResult bundles every product of a full pass.
type AnalysisResult struct {
	GeneratedAt string          `json:"generatedAt"`
	Context     AnalysisContext `json:"context"`
	TotalDraws  int             `json:"totalDraws"`
	Predictions []Prediction    `json:"predicciones"`
	Patterns    PatternReport   `json:"patrones"`
	Tiers       TierReport      `json:"tiers"`
	Selection   Selection       `json:"seleccion"`
}
