package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage and caching.
	DatabaseBackend string

	// Slot represents one of the three daily draw instants.
	Slot string

	// Tier represents a bias signal bucket.
	Tier string

	// HypothesisState represents the lifecycle state of a hypothesis.
	HypothesisState string

	// Operation represents a built-in number transformation.
	Operation string

	// RelationType represents the kind of trigger relation between two numbers.
	RelationType string

	// EventStatus represents the lifecycle state of a trigger event.
	EventStatus string

	// Polarity represents the symbolic charge of a guide entry.
	Polarity string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Daily slots in draw order.
const (
	Slot11AM Slot = "11AM" // T0
	Slot3PM  Slot = "3PM"  // T1
	Slot9PM  Slot = "9PM"  // T2
)

// Signal tiers.
const (
	StrongTier   Tier = "fuerte"
	ModerateTier Tier = "moderado"
	WeakTier     Tier = "debil"
	HistoricTier Tier = "historico"
)

// Hypothesis states.
const (
	PendingState   HypothesisState = "pendiente"
	ConfirmedState HypothesisState = "confirmada"
	RefutedState   HypothesisState = "refutada"
)

// Built-in mode operations.
const (
	MirrorOp   Operation = "mirror"
	DigitSumOp Operation = "digit-sum"
	AddOp      Operation = "add"
	SubOp      Operation = "sub"
	NeighborOp Operation = "neighbor"
	DigitMapOp Operation = "digit-map"
)

// Trigger relation types.
const (
	TriggersRelation   RelationType = "DISPARA"
	WarnsRelation      RelationType = "AVISA"
	ReinforcesRelation RelationType = "REFUERZA"
)

// Trigger event statuses.
const (
	OpenStatus    EventStatus = "OPEN"
	HitStatus     EventStatus = "HIT"
	LateHitStatus EventStatus = "LATE_HIT"
	MissStatus    EventStatus = "MISS"
)

// Guide polarities.
const (
	PositivePolarity Polarity = "positiva"
	NeutralPolarity  Polarity = "neutra"
	NegativePolarity Polarity = "negativa"
)

// AllSlots lists slots by rank.
var AllSlots = []Slot{Slot11AM, Slot3PM, Slot9PM}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidOperations lists all built-in mode operations.
var ValidOperations = map[Operation]struct{}{
	MirrorOp:   {},
	DigitSumOp: {},
	AddOp:      {},
	SubOp:      {},
	NeighborOp: {},
	DigitMapOp: {},
}

// ValidRelationTypes lists all trigger relation types.
var ValidRelationTypes = map[RelationType]struct{}{
	TriggersRelation:   {},
	WarnsRelation:      {},
	ReinforcesRelation: {},
}

// Rank returns the position of the slot within the day, or -1 if unknown.
func (s Slot) Rank() int {
	switch s {
	case Slot11AM:
		return 0
	case Slot3PM:
		return 1
	case Slot9PM:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the slot is one of the known daily slots.
func (s Slot) Valid() bool {
	return s.Rank() >= 0
}

// Hour returns the wall clock hour of the slot.
func (s Slot) Hour() int {
	switch s {
	case Slot3PM:
		return 15
	case Slot9PM:
		return 21
	default:
		return 11
	}
}
