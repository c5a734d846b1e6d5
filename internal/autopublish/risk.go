// Package autopublish implements the auto-publish scheduling engine:
// eligibility evaluation, publishing-window search, retry backoff, and the
// pre-publish notification gate. Everything in this package is a pure
// function of its inputs; callers pass the current time explicitly.
package autopublish

// RiskLevel classifies content risk. The four levels form a total order
// low < medium < high < critical. All comparisons go through ordinals,
// never string equality.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrdinals = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Ordinal returns the position of the level in the risk order,
// or -1 for an unknown level.
func (r RiskLevel) Ordinal() int {
	if ord, ok := riskOrdinals[r]; ok {
		return ord
	}
	return -1
}

// Known reports whether the level is one of the four defined levels.
func (r RiskLevel) Known() bool {
	_, ok := riskOrdinals[r]
	return ok
}

// Compare is a three-way comparator: negative if r orders before other,
// zero if equal, positive if r orders after other.
func (r RiskLevel) Compare(other RiskLevel) int {
	return r.Ordinal() - other.Ordinal()
}

// Acceptable reports whether the level is at or below the given maximum.
func (r RiskLevel) Acceptable(max RiskLevel) bool {
	return r.Ordinal() <= max.Ordinal()
}
