package model

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors shared by the store, engine and ledger.
var (
	ErrDuplicate        = errors.New("duplicate record")
	ErrNotFound         = errors.New("record not found")
	ErrOutOfRange       = errors.New("value out of range")
	ErrOfficialMismatch = errors.New("promise and action belong to different officials")
	ErrChainBroken      = errors.New("credibility history chain broken")
)

// CheckUnit returns ErrOutOfRange unless v is a finite value in [0,1].
func CheckUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s %v: %w", name, v, ErrOutOfRange)
	}
	return nil
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
