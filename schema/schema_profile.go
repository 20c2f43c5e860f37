package schema

// Occurrence is one entry of a profile's recent-occurrence ring buffer.
type Occurrence struct {
	Date    string `json:"fecha"`
	Slot    Slot   `json:"horario"`
	Country string `json:"pais"`
	Weekday int    `json:"dayOfWeek"`
}

// GapSample is one observed gap between consecutive occurrences.
type GapSample struct {
	Date string `json:"fecha"`
	Gap  int    `json:"gap"`
}

// GapStats tracks the days between consecutive occurrences of a number.
type GapStats struct {
	Total     int         `json:"total"`
	Count     int         `json:"count"`
	Average   *float64    `json:"promedio"`
	Last      *int        `json:"ultimo"`
	Min       *int        `json:"min"`
	Max       *int        `json:"max"`
	DaysSince *float64    `json:"daysSince"`
	History   []GapSample `json:"historial"`
}

// YearSlotCounts holds per-slot counts for one year with a dedicated total.
type YearSlotCounts struct {
	BySlot map[Slot]int `json:"porHorario"`
	Total  int          `json:"total"`
}

// HypothesisDetail is a compact view of a hypothesis linked to a profile.
type HypothesisDetail struct {
	ID    string          `json:"id"`
	State HypothesisState `json:"estado"`
	Date  string          `json:"fecha"`
	Slot  Slot            `json:"turno,omitempty"`
	Text  string          `json:"texto"`
}

// HypothesisSummary aggregates hypotheses linked to one number.
type HypothesisSummary struct {
	Confirmed int                `json:"confirmadas"`
	Refuted   int                `json:"refutadas"`
	Pending   int                `json:"pendientes"`
	Details   []HypothesisDetail `json:"detalles"`
}

// OutcomeBucket counts hits and misses for one context value.
type OutcomeBucket struct {
	Hits   int `json:"aciertos"`
	Misses int `json:"fallos"`
	Total  int `json:"total"`
}

// Rate returns hits over total, or zero for an empty bucket.
func (b OutcomeBucket) Rate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Hits) / float64(b.Total)
}

// LastOutcome is the most recent logged outcome for a number.
type LastOutcome struct {
	Date    string          `json:"fecha"`
	Country string          `json:"pais"`
	Slot    Slot            `json:"horario"`
	State   HypothesisState `json:"estado"`
}

// LearningSummary aggregates the outcome log for one number.
type LearningSummary struct {
	Total       int                      `json:"total"`
	Hits        int                      `json:"aciertos"`
	Misses      int                      `json:"fallos"`
	ByCountry   map[string]OutcomeBucket `json:"porPais"`
	BySlot      map[Slot]OutcomeBucket   `json:"porHorario"`
	ByWeekday   map[int]OutcomeBucket    `json:"porDiaSemana"`
	LastOutcome *LastOutcome             `json:"ultimoResultado"`
}

// NumberProfile holds the folded history of a single number.
type NumberProfile struct {
	Number             int                    `json:"numero"`
	TotalOccurrences   int                    `json:"total"`
	CountsByCountry    map[string]int         `json:"porPais"`
	CountsBySlot       map[Slot]int           `json:"porHorario"`
	CountsByWeekday    map[int]int            `json:"porDiaSemana"`
	CountsBySlotByYear map[int]YearSlotCounts `json:"porHorarioAnio"`
	RecentOccurrences  []Occurrence           `json:"ultimas"`
	Gaps               GapStats               `json:"gaps"`
	RecencyScore       float64                `json:"scoreRecencia"`
	FrequencyScore     float64                `json:"scoreFrecuencia"`
	HypothesisScore    float64                `json:"scoreHipotesis"`
	ContextScore       float64                `json:"scoreContexto"`
	LastSeenUnixMilli  *int64                 `json:"lastSeenTimestamp"`
	LastSeen           *Occurrence            `json:"lastSeen"`
	Hypotheses         HypothesisSummary      `json:"hipotesis"`
	Learning           LearningSummary        `json:"aprendizaje"`
}

// ProfileSet is the result of a profile build or cache read.
type ProfileSet struct {
	TotalDraws      int             `json:"totalDraws"`
	Profiles        []NumberProfile `json:"perfiles"`
	LatestTimestamp *int64          `json:"latestTimestamp"`
}

// Prediction is a baseline score derived directly from a profile.
type Prediction struct {
	Number     int         `json:"numero"`
	Score      float64     `json:"score"`
	Frequency  float64     `json:"frecuencia"`
	Recency    float64     `json:"recencia"`
	Hypothesis float64     `json:"hipotesis"`
	Context    float64     `json:"contexto"`
	LastSeen   *Occurrence `json:"ultimo"`
	Gaps       GapStats    `json:"gaps"`
}

// Insight is a short human-readable observation over all profiles.
type Insight struct {
	Kind        string  `json:"tipo"`
	Title       string  `json:"titulo"`
	Description string  `json:"descripcion"`
	Number      int     `json:"numero"`
	Ratio       float64 `json:"ratio"`
}
