package types

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the dehazing pipeline. Callers match them
// with errors.Is; the pipeline wraps them with context.
var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrDegenerateInput   = errors.New("degenerate input")
)

// Params holds the dehazing filter parameters. It is passed by value
// into every stage and never modified.
//
// Radius is the guided filter window, Eps its regularization, Weight
// scales the estimated haze density and MaxV1 caps it. Gamma enables the
// midtone correction of the restored image.
type Params struct {
	Radius int     `json:"radius" yaml:"radius"`
	Eps    float64 `json:"eps" yaml:"eps"`
	Weight float64 `json:"weight" yaml:"weight"`
	MaxV1  float64 `json:"max_v1" yaml:"max_v1"`
	Gamma  bool    `json:"gamma" yaml:"gamma"`
}

// DefaultParams returns the parameters used when none are supplied
func DefaultParams() Params {
	return Params{
		Radius: 81,
		Eps:    0.001,
		Weight: 0.95,
		MaxV1:  0.80,
		Gamma:  false,
	}
}

// Validate rejects parameters for which the pipeline is undefined
func (p Params) Validate() error {
	if p.Radius < 0 {
		return fmt.Errorf("%w: radius must be >= 0, got %d", ErrInvalidParameter, p.Radius)
	}
	if !(p.Eps > 0) {
		return fmt.Errorf("%w: eps must be > 0, got %g", ErrInvalidParameter, p.Eps)
	}
	if !(p.Weight > 0) {
		return fmt.Errorf("%w: weight must be > 0, got %g", ErrInvalidParameter, p.Weight)
	}
	if !(p.MaxV1 >= 0 && p.MaxV1 <= 1) {
		return fmt.Errorf("%w: max_v1 must be between 0 and 1, got %g", ErrInvalidParameter, p.MaxV1)
	}
	return nil
}
