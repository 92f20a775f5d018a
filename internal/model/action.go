package model

import (
	"fmt"
	"strings"
	"time"
)

// Position is the recorded stance of an official on an action
type Position string

const (
	PositionFor     Position = "for"
	PositionAgainst Position = "against"
	PositionAbstain Position = "abstain"
	PositionAbsent  Position = "absent"
)

// Valid reports whether p is one of the closed set of positions
func (p Position) Valid() bool {
	switch p {
	case PositionFor, PositionAgainst, PositionAbstain, PositionAbsent:
		return true
	}
	return false
}

// Invert swaps for and against; abstain and absent are unchanged
func (p Position) Invert() Position {
	switch p {
	case PositionFor:
		return PositionAgainst
	case PositionAgainst:
		return PositionFor
	default:
		return p
	}
}

// Action is a recorded institutional act (typically a vote). Immutable once collected.
type Action struct {
	ID          string    `json:"id"`
	OfficialID  string    `json:"official_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Description string    `json:"description"`
	Position    Position  `json:"position"`
	Category    Category  `json:"category,omitempty"`
	Source      Source    `json:"source"`
	ExternalRef string    `json:"external_ref,omitempty"` // Scrutin number or similar
}

// NewAction validates and builds an action
func NewAction(id, officialID, description string, position Position, occurredAt time.Time, source Source) (*Action, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(officialID) == "" {
		return nil, fmt.Errorf("action: id and official id are required")
	}
	if !position.Valid() {
		return nil, fmt.Errorf("action %s: unknown position %q", id, position)
	}
	return &Action{
		ID:          id,
		OfficialID:  officialID,
		OccurredAt:  occurredAt,
		Description: strings.TrimSpace(description),
		Position:    position,
		Category:    CategoryOther,
		Source:      source,
	}, nil
}
