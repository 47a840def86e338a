package worldparams

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"zero plates", func(p *Params) { p.NumPlates = 0 }, false},
		{"negative plates", func(p *Params) { p.NumPlates = -3 }, false},
		{"sea level zero", func(p *Params) { p.SeaLevel = 0 }, false},
		{"sea level one", func(p *Params) { p.SeaLevel = 1 }, false},
		{"folding ratio above one", func(p *Params) { p.FoldingRatio = 1.5 }, false},
		{"folding ratio one", func(p *Params) { p.FoldingRatio = 1 }, true},
		{"aggr rel zero", func(p *Params) { p.AggrOverlapRel = 0 }, false},
		{"aggr rel one", func(p *Params) { p.AggrOverlapRel = 1 }, true},
		{"unbounded cycles", func(p *Params) { p.NumCycles = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			err := p.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}
