package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParamsAreValid(t *testing.T) {
	p := DefaultParams()
	assert.NoError(t, p.Validate())
	assert.Equal(t, 81, p.Radius)
	assert.Equal(t, 0.001, p.Eps)
	assert.Equal(t, 0.95, p.Weight)
	assert.Equal(t, 0.80, p.MaxV1)
	assert.False(t, p.Gamma)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		valid  bool
	}{
		{"zero radius", func(p *Params) { p.Radius = 0 }, true},
		{"negative radius", func(p *Params) { p.Radius = -1 }, false},
		{"zero eps", func(p *Params) { p.Eps = 0 }, false},
		{"nan eps", func(p *Params) { p.Eps = math.NaN() }, false},
		{"zero weight", func(p *Params) { p.Weight = 0 }, false},
		{"weight above one", func(p *Params) { p.Weight = 1.5 }, true},
		{"max v1 zero", func(p *Params) { p.MaxV1 = 0 }, true},
		{"max v1 one", func(p *Params) { p.MaxV1 = 1 }, true},
		{"max v1 above one", func(p *Params) { p.MaxV1 = 1.01 }, false},
		{"negative max v1", func(p *Params) { p.MaxV1 = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidParameter)
			}
		})
	}
}
