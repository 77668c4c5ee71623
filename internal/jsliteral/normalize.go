// Package jsliteral pulls JavaScript object/array literals out of page
// scripts and rewrites them into strict JSON.
//
// It handles the relaxed literal dialect the site emits for its data
// widgets (unquoted keys, trailing commas, symbolic constants, stringified
// sub-objects). It is not a JavaScript parser.
package jsliteral

import (
	"encoding/json"
	"errors"
)

// Normalizer runs an ordered chain of rewrite stages and validates the result.
type Normalizer struct {
	stages []Stage
}

// NewNormalizer builds a Normalizer. With no stages it uses DefaultStages.
func NewNormalizer(stages ...Stage) *Normalizer {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Normalizer{stages: stages}
}

var defaultNormalizer = NewNormalizer()

// Normalize rewrites lit with the default stages.
func Normalize(lit string) (string, error) { return defaultNormalizer.Normalize(lit) }

// Stages returns the stage names in run order.
func (n *Normalizer) Stages() []string {
	names := make([]string, len(n.stages))
	for i, s := range n.stages {
		names[i] = s.Name
	}
	return names
}

// Normalize applies every stage in order, then checks the text parses as
// strict JSON. A failed parse returns a *ConversionError.
func (n *Normalizer) Normalize(lit string) (string, error) {
	out := lit
	for _, s := range n.stages {
		out = s.Apply(out)
	}
	if err := validate(out); err != nil {
		return "", err
	}
	return out, nil
}

func validate(text string) error {
	var v any
	err := json.Unmarshal([]byte(text), &v)
	if err == nil {
		return nil
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return newConversionError(text, syn.Offset, err)
	}
	return newConversionError(text, 0, err)
}
