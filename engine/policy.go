// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the decision parameters for classifying an article.
type Policy struct {
	// Threshold is the fake-vote share at or above which an article is
	// classified fake. Must be in [0, 1].
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// MinValidVotes is the valid-vote count below which the verdict is
	// "insufficient" regardless of the ratio. Must be >= 0.
	MinValidVotes int `yaml:"minValidVotes" json:"min_valid_votes"`
}

// DefaultPolicy returns the policy used when no file or override is given.
func DefaultPolicy() Policy {
	return Policy{Threshold: 0.6, MinValidVotes: 5}
}

// Validate range-checks the policy fields.
func (p Policy) Validate() error {
	if p.Threshold < 0 || p.Threshold > 1 {
		return &ValidationError{Reason: fmt.Sprintf("threshold %v outside [0, 1]", p.Threshold)}
	}
	if p.MinValidVotes < 0 {
		return &ValidationError{Reason: fmt.Sprintf("minValidVotes %d is negative", p.MinValidVotes)}
	}
	return nil
}

// LoadPolicyFile reads a YAML policy file. Missing fields keep their
// default values; the result is validated before being returned.
func LoadPolicyFile(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
