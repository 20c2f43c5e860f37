package schema

import "time"

// Relation links an origin number to a target number expected within a day window.
type Relation struct {
	ID            string       `json:"id"`
	Origin        int          `json:"origen"`
	Target        int          `json:"destino"`
	Type          RelationType `json:"tipo"`
	WindowMinDays int          `json:"ventanaMin"`
	WindowMaxDays int          `json:"ventanaMax"`
	Notes         string       `json:"notas,omitempty"`
	IsActive      bool         `json:"activa"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// RelationInput is the unvalidated form of a relation.
type RelationInput struct {
	Origin        int
	Target        int
	Type          RelationType
	WindowMinDays *int
	WindowMaxDays *int
	Notes         string
	IsActive      *bool
}

// TriggerEvent tracks one firing of a relation until it is resolved.
type TriggerEvent struct {
	ID         string      `json:"id"`
	RelationID string      `json:"relationId"`
	Origin     int         `json:"origen"`
	Target     int         `json:"destino"`
	OriginTime time.Time   `json:"originTs"`
	Deadline   time.Time   `json:"deadline"`
	Status     EventStatus `json:"status"`
	Lag        *int        `json:"lagDias,omitempty"`
	HitTime    *time.Time  `json:"hitTs,omitempty"`
	ClosedAt   *time.Time  `json:"closedAt,omitempty"`
}

// RelationStats summarizes resolved events of one relation.
type RelationStats struct {
	RelationID string  `json:"relationId"`
	Total      int     `json:"total"`
	Hits       int     `json:"hits"`
	Misses     int     `json:"misses"`
	Late       int     `json:"late"`
	Open       int     `json:"open"`
	HitRate    float64 `json:"hitRate"`
	MissRate   float64 `json:"missRate"`
	LateRate   float64 `json:"lateRate"`
	AvgLag     float64 `json:"avgLag"`
	MedianLag  float64 `json:"medianLag"`
	P80Lag     float64 `json:"p80Lag"`
}
