package autopublish

import (
	"fmt"
	"time"
)

// StatusReady is the article status required for auto-publish.
const StatusReady = "ready"

// ArticleSnapshot is the projection of an article consulted by the
// eligibility check. A nil QualityScore or ReviewedAt and an empty RiskLevel
// mean the corresponding assessment does not exist yet.
type ArticleSnapshot struct {
	Status       string
	QualityScore *int
	RiskLevel    RiskLevel
	ReviewedAt   *time.Time
}

// ReasonCode tags an eligibility violation so callers can branch on the
// kind of failure without parsing messages. A missing assessment and a
// failing one are distinct codes.
type ReasonCode string

const (
	ReasonStatusNotReady        ReasonCode = "status_not_ready"
	ReasonMissingQualityScore   ReasonCode = "missing_quality_score"
	ReasonQualityBelowMinimum   ReasonCode = "quality_below_minimum"
	ReasonMissingRiskAssessment ReasonCode = "missing_risk_assessment"
	ReasonRiskExceedsMaximum    ReasonCode = "risk_exceeds_maximum"
	ReasonReviewRequired        ReasonCode = "review_required"
)

// Reason is a single eligibility violation.
type Reason struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}

// EligibilityResult is the outcome of one evaluation. It is computed fresh
// on every call and never persisted. SuggestedPublishDate is set only when
// Eligible is true.
type EligibilityResult struct {
	Eligible             bool       `json:"eligible"`
	Reasons              []Reason   `json:"reasons"`
	SuggestedPublishDate *time.Time `json:"suggested_publish_date,omitempty"`
}

// Evaluate runs the full eligibility check. Every applicable violation is
// accumulated; the check never stops at the first failure, so the caller
// gets the complete list of gates the article still has to clear.
func (e *Engine) Evaluate(a ArticleSnapshot, now time.Time) EligibilityResult {
	var reasons []Reason

	if a.Status != StatusReady {
		reasons = append(reasons, Reason{
			Code:    ReasonStatusNotReady,
			Message: fmt.Sprintf("article status is %q, must be %q", a.Status, StatusReady),
		})
	}

	if a.QualityScore == nil {
		reasons = append(reasons, Reason{
			Code:    ReasonMissingQualityScore,
			Message: "article has no quality score",
		})
	} else if *a.QualityScore < e.cfg.MinimumQualityScore {
		reasons = append(reasons, Reason{
			Code:    ReasonQualityBelowMinimum,
			Message: fmt.Sprintf("quality score %d is below the minimum %d", *a.QualityScore, e.cfg.MinimumQualityScore),
		})
	}

	if !a.RiskLevel.Known() {
		reasons = append(reasons, Reason{
			Code:    ReasonMissingRiskAssessment,
			Message: "article has no risk assessment",
		})
	} else if !a.RiskLevel.Acceptable(e.cfg.MaximumRiskLevel) {
		reasons = append(reasons, Reason{
			Code:    ReasonRiskExceedsMaximum,
			Message: fmt.Sprintf("risk level %s exceeds the maximum %s", a.RiskLevel, e.cfg.MaximumRiskLevel),
		})
	}

	if e.cfg.RequireHumanReview && a.ReviewedAt == nil {
		reasons = append(reasons, Reason{
			Code:    ReasonReviewRequired,
			Message: "human review is required before auto-publish",
		})
	}

	result := EligibilityResult{
		Eligible: len(reasons) == 0,
		Reasons:  reasons,
	}
	if result.Eligible {
		suggested := e.CalculatePublishDate(now)
		result.SuggestedPublishDate = &suggested
	}
	return result
}
