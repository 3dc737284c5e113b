package eci

// consts.go
//
// This file centralizes the hardcoded interpretation standards for the
// Endpoint Confidence Integration engine. These thresholds are the boundary
// between a treatment-related adverse effect and background noise, and they
// feed directly into regulatory NOAEL/LOAEL statements.
//
// WARNING: These values should NEVER be modified without revalidation
// against the legacy study corpus. Changing any of them changes NOAEL
// calls on historical studies.

// ============================================================================
// 1. NON-MONOTONIC DETECTOR - Guards against reversal artifacts
// ============================================================================

const (
	// REVERSAL_RATIO_THRESHOLD: effect[highest]/effect[peak] below which a
	// threshold-pattern response counts as reversed. 0.5 captures both
	// partial and complete reversal; a ratio of exactly 0 is complete
	// reversal and a valid triggering boundary.
	REVERSAL_RATIO_THRESHOLD = 0.5

	// PAIRWISE_ALPHA: significance cut for adjusted pairwise p-values.
	// A sustained threshold effect that remains significant at the top dose
	// must never be flagged as non-monotonic.
	PAIRWISE_ALPHA = 0.05
)

// ============================================================================
// 2. TREND TEST VALIDITY - Guards against variance heterogeneity
// ============================================================================

const (
	// SD_RATIO_THRESHOLD: max(treated SD)/control SD above which variance
	// heterogeneity makes a trend p-value suspect.
	SD_RATIO_THRESHOLD = 2.0

	// CV_RATIO_THRESHOLD: max(treated CV)/control CV criterion, independent
	// of the SD criterion. One criterion firing downgrades trend evidence
	// without a numeric penalty; both firing adds a one-step penalty.
	CV_RATIO_THRESHOLD = 2.0
)

// ============================================================================
// 3. TREND CONCORDANCE - Guards against JT false positives
// ============================================================================

const (
	// TREND_ALPHA: significance cut for the Jonckheere-Terpstra trend
	// p-value when comparing against the Williams step-down verdict.
	TREND_ALPHA = 0.05
)

// ============================================================================
// 4. STATISTICAL BASELINE - Confidence seeding from p-value and effect size
// ============================================================================

const (
	// BASELINE_HIGH_P / BASELINE_HIGH_D: a minimum p-value below 0.01 with a
	// large standardized effect seeds a HIGH statistical baseline.
	BASELINE_HIGH_P = 0.01
	BASELINE_HIGH_D = 0.8

	// BASELINE_MODERATE_P / BASELINE_MODERATE_D: conventional significance
	// with at least a medium effect seeds MODERATE.
	BASELINE_MODERATE_P = 0.05
	BASELINE_MODERATE_D = 0.5
)
