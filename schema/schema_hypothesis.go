package schema

import "time"

// Hypothesis is a user claim that a number will show up on a date and slot.
type Hypothesis struct {
	ID        string          `json:"id"`
	Number    int             `json:"numero"`
	Symbol    string          `json:"simbolo,omitempty"`
	State     HypothesisState `json:"estado"`
	Date      string          `json:"fecha"`
	Slot      Slot            `json:"turno,omitempty"`
	Reasons   []string        `json:"razones"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HypothesisPatch holds optional updates to a hypothesis.
type HypothesisPatch struct {
	Symbol  *string
	State   *HypothesisState
	Date    *string
	Slot    *Slot
	Reasons []string
}

// Outcome is an observed draw used to resolve pending hypotheses.
type Outcome struct {
	Number  int
	Date    string
	Country string
	Slot    Slot
}

// OutcomeRecord logs how one hypothesis was resolved.
type OutcomeRecord struct {
	ID             string          `json:"id"`
	HypothesisID   string          `json:"hypothesisId"`
	Number         int             `json:"numero"`
	State          HypothesisState `json:"estado"`
	ResultDate     string          `json:"fechaResultado"`
	ResultCountry  string          `json:"paisResultado"`
	ResultSlot     Slot            `json:"horarioResultado"`
	HypothesisDate string          `json:"fechaHipotesis"`
	HypothesisSlot Slot            `json:"turnoHipotesis,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}
