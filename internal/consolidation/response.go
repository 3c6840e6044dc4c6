package consolidation

import (
	"fmt"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Response projects a finished run for the caller. It consolidates first when no summary exists.
func Response(st *state.RunState) *types.Response {
	summary := st.Summary
	if summary == nil {
		summary = Consolidate(st)
	}
	resp := &types.Response{
		RequestID:          st.Request.RequestID,
		CorrelationID:      st.Request.CorrelationID,
		RunID:              st.RunID,
		Status:             st.Status,
		CurrentStage:       st.CurrentStage,
		ExecutiveSummary:   summary.ExecutiveSummary,
		ActionItems:        summary.ActionItems,
		Manifest:           summary.Manifest,
		ProcessingDuration: summary.Duration.Seconds(),
	}
	for _, m := range st.Messages {
		resp.Messages = append(resp.Messages, fmt.Sprintf("[%s] %s", m.Stage, m.Text))
	}
	return resp
}
