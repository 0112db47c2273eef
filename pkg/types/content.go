// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the content-engine pipeline:
// the incoming ContentRequest, the per-stage StageResult, the final
// ContentEnvelope and the configuration structs each stage reads.
package types

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
)

// FactCheckLevel controls how many claims the verification stage checks.
type FactCheckLevel string

const (
	FactCheckBasic    FactCheckLevel = "basic"
	FactCheckStandard FactCheckLevel = "standard"
	FactCheckThorough FactCheckLevel = "thorough"
)

// Valid reports whether l is one of the known levels.
func (l FactCheckLevel) Valid() bool {
	switch l {
	case FactCheckBasic, FactCheckStandard, FactCheckThorough:
		return true
	}
	return false
}

// ClaimLimit returns the maximum number of claims checked at this level.
// Zero means unlimited.
func (l FactCheckLevel) ClaimLimit() int {
	switch l {
	case FactCheckBasic:
		return 5
	case FactCheckStandard:
		return 15
	default:
		return 0
	}
}

// Preferences carries the caller's style choices for one request.
type Preferences struct {
	// Style is the overall writing style (e.g. "engaging", "professional").
	Style string `json:"style" yaml:"style" mapstructure:"style"`

	// Tone drives the enhancer's rewrite step: formal, conversational,
	// professional, storytelling.
	Tone string `json:"tone" yaml:"tone" mapstructure:"tone"`

	// TargetAudience names the intended readers (e.g. "general", "experts").
	TargetAudience string `json:"target_audience" yaml:"target_audience" mapstructure:"target_audience"`

	// IncludeVisuals enables the VISUALIZE stage.
	IncludeVisuals bool `json:"include_visuals" yaml:"include_visuals" mapstructure:"include_visuals"`

	// FactCheckLevel selects verification depth.
	FactCheckLevel FactCheckLevel `json:"fact_check_level" yaml:"fact_check_level" mapstructure:"fact_check_level"`
}

// DefaultPreferences mirrors the defaults used when a caller sends none.
func DefaultPreferences() Preferences {
	return Preferences{
		Style:          "engaging",
		Tone:           "professional",
		TargetAudience: "general",
		IncludeVisuals: true,
		FactCheckLevel: FactCheckStandard,
	}
}

// ErrInvalidRequest is returned by NewContentRequest for unusable input.
var ErrInvalidRequest = errors.New("invalid content request")

// ContentRequest is one unit of work for the orchestrator. Fields are
// unexported so the request stays immutable after construction.
type ContentRequest struct {
	id    string
	topic string
	prefs Preferences
}

// NewContentRequest validates the topic and preferences and assigns a request ID.
// Empty preference strings are filled from DefaultPreferences.
func NewContentRequest(topic string, prefs Preferences) (ContentRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ContentRequest{}, fmt.Errorf("%w: topic is empty", ErrInvalidRequest)
	}

	def := DefaultPreferences()
	if prefs.Style == "" {
		prefs.Style = def.Style
	}
	if prefs.Tone == "" {
		prefs.Tone = def.Tone
	}
	if prefs.TargetAudience == "" {
		prefs.TargetAudience = def.TargetAudience
	}
	if prefs.FactCheckLevel == "" {
		prefs.FactCheckLevel = def.FactCheckLevel
	}
	if !prefs.FactCheckLevel.Valid() {
		return ContentRequest{}, fmt.Errorf("%w: unknown fact-check level %q", ErrInvalidRequest, prefs.FactCheckLevel)
	}

	return ContentRequest{
		id:    uuid.NewString(),
		topic: topic,
		prefs: prefs,
	}, nil
}

// ID returns the request identifier.
func (r ContentRequest) ID() string { return r.id }

// Topic returns the trimmed topic.
func (r ContentRequest) Topic() string { return r.topic }

// Preferences returns a copy of the request preferences.
func (r ContentRequest) Preferences() Preferences { return r.prefs }

// Metadata returns a fresh map holding the request's identity and every
// preference. Every stage result and the final envelope carry these keys.
func (r ContentRequest) Metadata() Metadata {
	return Metadata{
		"request_id":       r.id,
		"topic":            r.topic,
		"style":            r.prefs.Style,
		"tone":             r.prefs.Tone,
		"target_audience":  r.prefs.TargetAudience,
		"include_visuals":  r.prefs.IncludeVisuals,
		"fact_check_level": string(r.prefs.FactCheckLevel),
	}
}

// Metadata is the free-form key/value map attached to stage results and the envelope.
type Metadata map[string]any

// Merge returns a new map containing every key of protected plus the
// additions. An addition never overwrites a protected key, so the result
// is always a superset of protected.
func Merge(protected Metadata, additions Metadata) Metadata {
	out := make(Metadata, len(protected)+len(additions))
	maps.Copy(out, additions)
	maps.Copy(out, protected)
	return out
}

// Clone returns a shallow copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}
