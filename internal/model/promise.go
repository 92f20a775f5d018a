package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the policy domain a promise belongs to
type Category string

const (
	CategoryEconomic      Category = "economic"
	CategorySocial        Category = "social"
	CategoryEnvironmental Category = "environmental"
	CategorySecurity      Category = "security"
	CategoryHealthcare    Category = "healthcare"
	CategoryEducation     Category = "education"
	CategoryJustice       Category = "justice"
	CategoryImmigration   Category = "immigration"
	CategoryForeignPolicy Category = "foreign_policy"
	CategoryOther         Category = "other"
)

// Categories lists every category in bucket order
var Categories = []Category{
	CategoryEconomic, CategorySocial, CategoryEnvironmental, CategorySecurity, CategoryHealthcare,
	CategoryEducation, CategoryJustice, CategoryImmigration, CategoryForeignPolicy, CategoryOther,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// VerificationStatus tracks a promise through matching
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusDisputed VerificationStatus = "disputed"
)

// Valid reports whether s is a known status
func (s VerificationStatus) Valid() bool {
	return s == StatusPending || s == StatusVerified || s == StatusDisputed
}

// Source describes where a promise or action came from
type Source struct {
	Type string `json:"type"` // speech, interview, manifesto, vote, synthetic...
	URL  string `json:"url,omitempty"`
}

// Promise is a textual commitment attributed to an official
type Promise struct {
	ID         string             `json:"id"`
	OfficialID string             `json:"official_id"`
	Text       string             `json:"text"`
	Category   Category           `json:"category"`
	StatedAt   time.Time          `json:"stated_at"`
	Source     Source             `json:"source"`
	Confidence float64            `json:"confidence"` // Classification confidence [0,1]
	Actionable bool               `json:"actionable"`
	Status     VerificationStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewPromise builds a pending promise, rejecting invalid fields
func NewPromise(id, officialID, text string, category Category, confidence float64, actionable bool, source Source, statedAt time.Time) (*Promise, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(officialID) == "" {
		return nil, fmt.Errorf("promise: id and official id are required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("promise %s: empty text", id)
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.Valid() {
		return nil, fmt.Errorf("promise %s: unknown category %q", id, category)
	}
	if err := CheckUnit("promise confidence", confidence); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Promise{
		ID:         id,
		OfficialID: officialID,
		Text:       strings.TrimSpace(text),
		Category:   category,
		StatedAt:   statedAt,
		Source:     source,
		Confidence: confidence,
		Actionable: actionable,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
