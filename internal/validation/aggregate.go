package validation

import (
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// PassingConsistencyScore is the consistency score above which a consistent package passes.
const PassingConsistencyScore = 70.0

// ValidationRate is the share of attempted items that passed individual validation.
func ValidationRate(st *state.RunState) float64 {
	n := st.ItemCount()
	if n == 0 {
		return 0
	}
	passed := 0
	for _, item := range st.Items() {
		if item.Status.HasContent() && item.Validation != nil && item.Validation.Passed {
			passed++
		}
	}
	return float64(passed) / float64(n)
}

// AverageQuality averages the quality scores of validated items. ok is false when none has a score.
func AverageQuality(st *state.RunState) (avg float64, ok bool) {
	total, n := 0.0, 0
	for _, item := range st.Items() {
		if item.QualityScore != nil {
			total += *item.QualityScore
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// OverallStatus folds the individual and cross-document results into one status.
func OverallStatus(st *state.RunState) types.ValidationStatus {
	validated := false
	for _, item := range st.Items() {
		if item.Validation != nil {
			validated = true
			break
		}
	}
	if !validated {
		return types.ValidationNotValidated
	}

	cross := st.CrossValidation
	rate := ValidationRate(st)
	if cross.HasUnresolvedCritical() || rate == 0 {
		return types.ValidationFailed
	}
	if rate == 1 {
		if cross == nil || cross.Status == types.PassSkipped {
			return types.ValidationPassed
		}
		if cross.Status == types.PassCompleted && cross.Consistent && cross.ConsistencyScore > PassingConsistencyScore {
			return types.ValidationPassed
		}
	}
	return types.ValidationPartial
}

// Aggregate records the overall validation status on st and returns it.
func Aggregate(st *state.RunState) types.ValidationStatus {
	st.Init()
	st.ValidationStatus = OverallStatus(st)
	return st.ValidationStatus
}
