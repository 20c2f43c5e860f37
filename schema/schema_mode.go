package schema

// ModeExample is a user-supplied (original, result) pair that teaches a mode.
type ModeExample struct {
	ID       string `json:"id"`
	Original int    `json:"original"`
	Result   int    `json:"resultado"`
	Note     string `json:"nota,omitempty"`
}

// GameMode is a named transformation rule, either a built-in operation or a
// set of literal examples.
type GameMode struct {
	ID          string         `json:"id"`
	Name        string         `json:"nombre"`
	Kind        string         `json:"tipo"`
	Description string         `json:"descripcion,omitempty"`
	Operation   Operation      `json:"operacion,omitempty"`
	Params      map[string]int `json:"parametros,omitempty"`
	Offset      *int           `json:"offset,omitempty"`
	Examples    []ModeExample  `json:"ejemplos"`
}

// ModeEvidence is one observed hit of a mode rule on the timeline.
type ModeEvidence struct {
	BaseDate   string `json:"baseFecha"`
	BaseSlot   Slot   `json:"baseHorario"`
	ResultDate string `json:"resultadoFecha"`
	ResultSlot Slot   `json:"resultadoHorario"`
	Hops       int    `json:"hops"`
}

// RuleStats holds the historical hit rate of a single (original, result) rule.
type RuleStats struct {
	Original   int            `json:"original"`
	Result     int            `json:"resultado"`
	Note       string         `json:"nota,omitempty"`
	Attempts   int            `json:"intentos"`
	Hits       int            `json:"aciertos"`
	Confidence float64        `json:"confianza"`
	Support    float64        `json:"soporte"`
	Score      float64        `json:"score"`
	Evidence   []ModeEvidence `json:"evidencia"`
}

// ModeReport is the evaluation of one mode over a timeline.
type ModeReport struct {
	ModeID        string              `json:"modeId"`
	ModeName      string              `json:"modeNombre"`
	Rules         []RuleStats         `json:"reglas"`
	ScoreByValue  map[int]float64     `json:"scorePorNumero"`
	DetailByValue map[int][]RuleStats `json:"detallePorNumero"`
}

// ModeSuggestion is a candidate produced by applying a learned rule to a recent draw.
type ModeSuggestion struct {
	ModeID     string  `json:"modeId"`
	ModeName   string  `json:"modeNombre"`
	Number     int     `json:"numero"`
	BaseNumber int     `json:"baseNumero"`
	BaseDate   string  `json:"baseFecha"`
	BaseSlot   Slot    `json:"baseHorario"`
	Confidence float64 `json:"confianza"`
	Support    int     `json:"soporte"`
	Note       string  `json:"nota,omitempty"`
}
