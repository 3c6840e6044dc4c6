package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
		content  bool
	}{
		{StatusPending, false, false},
		{StatusInProgress, false, false},
		{StatusCompleted, true, true},
		{StatusFailed, true, false},
		{StatusRequiresReview, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.content, tt.status.HasContent())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"html", FormatHTML},
		{"HTML", FormatHTML},
		{".pdf", FormatPDF},
		{"word", FormatDOCX},
		{"excel", FormatXLSX},
		{"yml", FormatYAML},
		{"markdown", FormatMarkdown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pptx")
	assert.Error(t, err)
}

func TestParseFramework(t *testing.T) {
	tests := []struct {
		in   string
		want Framework
	}{
		{"GDPR", FrameworkGDPR},
		{"PCI-DSS", FrameworkPCIDSS},
		{"ISO 27001", FrameworkISO27001},
		{"iso27001", FrameworkISO27001},
		{"SOC 2", FrameworkSOC2},
		{"soc2", FrameworkSOC2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFramework(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFramework("made-up-regime")
	assert.Error(t, err)
}

func TestDocumentKind_Family(t *testing.T) {
	for _, s := range []string{"privacy_policy", "ropa", "dpia", "audit_report"} {
		k, err := ParseDocumentKind(s)
		require.NoError(t, err)
		assert.Equal(t, FamilyCompliance, k.Family(), s)
	}
	for _, s := range []string{"brief", "calendar", "playbook"} {
		k, err := ParseDocumentKind(s)
		require.NoError(t, err)
		assert.Equal(t, FamilyMarketing, k.Family(), s)
	}

	_, err := ParseDocumentKind("novel")
	assert.Error(t, err)
}

func TestPriority_RankAndParse(t *testing.T) {
	assert.Less(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, PriorityMedium, ParsePriority("whenever"))
	assert.Equal(t, PriorityHigh, ParsePriority(" HIGH "))
}

func TestParseSeverityAndComplexity(t *testing.T) {
	assert.Equal(t, SeverityCritical, ParseSeverity("Critical"))
	assert.Equal(t, SeverityMinor, ParseSeverity(""))
	assert.Equal(t, ComplexityVeryHigh, ParseComplexity("very_high"))
	assert.Equal(t, ComplexityMedium, ParseComplexity("unknown"))
}

func TestFramework_DisplayName(t *testing.T) {
	assert.Equal(t, "GDPR", FrameworkGDPR.DisplayName())
	assert.Equal(t, "PCI DSS", FrameworkPCIDSS.DisplayName())
	assert.Equal(t, "ISO 27001", FrameworkISO27001.DisplayName())
	assert.Equal(t, "SOC 2", FrameworkSOC2.DisplayName())
	assert.Equal(t, "custom", Framework("custom").DisplayName())
}
