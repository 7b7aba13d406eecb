// Package transformer composes record transforms into the ordered cleaning
// chain.
package transformer

import (
	"time"

	"layoffs/pkg/records"
)

// Transformer rewrites a batch of records. Implementations may mutate
// records in place and may return a reslice of the input.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order, feeding each the previous output.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Step is a transformer with a name used in logs and metrics.
type Step struct {
	Name string
	Transformer
}

// Observer is notified after every step with the record counts before and
// after the step and its duration.
type Observer func(step string, in, out int, d time.Duration)

// Steps is an ordered, named chain.
type Steps []Step

// Apply runs every step in order. obs may be nil.
func (s Steps) Apply(in []records.Record, obs Observer) []records.Record {
	out := in
	for _, st := range s {
		n := len(out)
		start := time.Now()
		out = st.Transformer.Apply(out)
		if obs != nil {
			obs(st.Name, n, len(out), time.Since(start))
		}
	}
	return out
}

// Chain drops the step names.
func (s Steps) Chain() Chain {
	c := make(Chain, len(s))
	for i, st := range s {
		c[i] = st.Transformer
	}
	return c
}
