// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StageKind tags which pipeline stage produced a StageResult.
type StageKind string

const (
	StageTrend    StageKind = "trend_analysis"
	StageResearch StageKind = "research"
	StageSEO      StageKind = "seo"
	StageArticle  StageKind = "storm_article"
	StageVerified StageKind = "verified_content"
	StageEnhanced StageKind = "enhanced_content"
	StageVisuals  StageKind = "visuals"
)

// StageStatus reports how a stage finished.
type StageStatus string

const (
	// StatusSuccess means the stage produced its full output.
	StatusSuccess StageStatus = "success"
	// StatusDegraded means a collaborator failed and the stage substituted
	// a default or pass-through value.
	StatusDegraded StageStatus = "degraded"
	// StatusFailed means the stage could not produce output at all.
	StatusFailed StageStatus = "failed"
	// StatusSkipped means the request preferences turned the stage off.
	StatusSkipped StageStatus = "skipped"
)

// StageResult is the uniform envelope every stage returns. Content carries
// the stage-specific payload; Reason explains a non-success status.
type StageResult[T any] struct {
	Stage    StageKind   `json:"type" yaml:"type"`
	Status   StageStatus `json:"status" yaml:"status"`
	Reason   string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	Content  T           `json:"content" yaml:"content"`
	Metadata Metadata    `json:"metadata" yaml:"metadata"`
}

// OK reports whether the stage finished with StatusSuccess.
func (r StageResult[T]) OK() bool { return r.Status == StatusSuccess }

// Succeeded builds a success result whose metadata is the request
// metadata merged with the stage additions.
func Succeeded[T any](stage StageKind, content T, base, additions Metadata) StageResult[T] {
	return StageResult[T]{
		Stage:    stage,
		Status:   StatusSuccess,
		Content:  content,
		Metadata: Merge(base, additions),
	}
}

// Degraded builds a degraded result carrying the fallback content.
func Degraded[T any](stage StageKind, content T, reason string, base, additions Metadata) StageResult[T] {
	return StageResult[T]{
		Stage:    stage,
		Status:   StatusDegraded,
		Reason:   reason,
		Content:  content,
		Metadata: Merge(base, additions),
	}
}

// Skipped builds a skipped result with a zero-value payload.
func Skipped[T any](stage StageKind, reason string, base Metadata) StageResult[T] {
	var zero T
	return StageResult[T]{
		Stage:    stage,
		Status:   StatusSkipped,
		Reason:   reason,
		Content:  zero,
		Metadata: Merge(base, nil),
	}
}
