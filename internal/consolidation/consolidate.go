// Package consolidation folds generation, rendering and validation results into the delivery summary.
package consolidation

import (
	"fmt"
	"time"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
	"github.com/WeBuildYourAi/compliance-agent/internal/validation"
)

// KeyDeliverableLimit caps the deliverables named in the executive summary.
const KeyDeliverableLimit = 5

// Consolidate builds the summary of a run and stores it on st.Summary.
// It only reads the results recorded by earlier stages, so it is safe to run on partial state.
func Consolidate(st *state.RunState) *types.Summary {
	st.Init()
	manifest := Manifest(st)
	summary := &types.Summary{
		RunID:            st.RunID,
		RequestID:        st.Request.RequestID,
		Counts:           st.Counts(),
		Manifest:         manifest,
		ExecutiveSummary: executiveSummary(st, manifest),
		ActionItems:      ActionItems(st),
		Duration:         st.Duration(),
		CompletedAt:      time.Now(),
	}
	st.Summary = summary
	return summary
}

// Manifest lists one entry per rendered artifact, in planning order.
func Manifest(st *state.RunState) []types.ManifestEntry {
	entries := []types.ManifestEntry{}
	for _, a := range st.AllArtifacts() {
		entry := types.ManifestEntry{
			ItemID:   a.ItemID,
			Format:   a.Format,
			Location: a.Path,
			Size:     a.Size,
			Checksum: a.Checksum,
			Fallback: a.Fallback,
		}
		if item, ok := st.Item(a.ItemID); ok {
			entry.Title = item.Title
			entry.Status = item.Status
		}
		entries = append(entries, entry)
	}
	return entries
}

// ProjectStatus derives the outcome of the run from item results. A run already marked
// failed stays failed.
func ProjectStatus(st *state.RunState) types.RunStatus {
	if st.Status == types.RunFailed {
		return types.RunFailed
	}
	c := st.Counts()
	switch {
	case c.Attempted > 0 && c.Succeeded == c.Attempted:
		return types.RunCompleted
	case c.Succeeded > 0:
		return types.RunPartial
	}
	return types.RunFailed
}

func executiveSummary(st *state.RunState, manifest []types.ManifestEntry) types.ExecutiveSummary {
	c := st.Counts()
	es := types.ExecutiveSummary{
		ProjectStatus:      ProjectStatus(st),
		DocumentsDelivered: fmt.Sprintf("%d/%d", c.Succeeded, c.Attempted),
		ValidationRate:     validation.ValidationRate(st),
		ValidationStatus:   st.ValidationStatus,
		Frameworks:         st.Frameworks(),
	}
	if avg, ok := validation.AverageQuality(st); ok {
		es.AverageQuality = avg
	}
	if cv := st.CrossValidation; cv != nil && cv.Status == types.PassCompleted {
		es.ConsistencyScore = cv.ConsistencyScore
	}
	if rv := st.RequirementsValidation; rv != nil && rv.Status == types.PassCompleted {
		es.ReadinessScore = rv.OverallScore
		es.Ready = rv.Ready
	} else if rv == nil {
		// variants without a requirements pass are judged on the aggregate status
		es.ReadinessScore = es.ValidationRate * 100
		es.Ready = st.ValidationStatus == types.ValidationPassed && !st.CrossValidation.HasUnresolvedCritical()
	}
	for _, m := range manifest {
		if len(es.KeyDeliverables) == KeyDeliverableLimit {
			break
		}
		es.KeyDeliverables = append(es.KeyDeliverables, fmt.Sprintf("%s (%s)", m.Title, m.Format))
	}
	return es
}
