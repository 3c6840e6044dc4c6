package planning

import (
	"regexp"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Framework sources, in cascade order
const (
	SourceBrief       = "brief"
	SourcePrompt      = "prompt"
	SourceProjectPlan = "project_plan"
	SourceContext     = "context"
	SourceAnalysis    = "analysis"
	SourceDefault     = "default"
)

var frameworkKeywords = []struct {
	framework types.Framework
	pattern   *regexp.Regexp
}{
	{types.FrameworkGDPR, keywordPattern("gdpr", "general data protection", "eu data", "european privacy")},
	{types.FrameworkSOX, keywordPattern("sox", "sarbanes", "sarbanes-oxley", "sarbox")},
	{types.FrameworkHIPAA, keywordPattern("hipaa", "health insurance portability", "phi", "protected health")},
	{types.FrameworkCCPA, keywordPattern("ccpa", "cpra", "california consumer privacy")},
	{types.FrameworkPCIDSS, keywordPattern("pci", "pci-dss", "pci dss", "payment card")},
	{types.FrameworkISO27001, keywordPattern("iso 27001", "iso27001", "iso-27001", "iso/iec 27001")},
	{types.FrameworkNIST, keywordPattern("nist", "national institute of standards")},
	{types.FrameworkSOC2, keywordPattern("soc2", "soc 2", "soc ii", "service organization control")},
	{types.FrameworkFERPA, keywordPattern("ferpa", "family educational", "student records")},
	{types.FrameworkGLBA, keywordPattern("glba", "gramm-leach", "gramm leach")},
	{types.FrameworkPIPEDA, keywordPattern("pipeda", "canadian privacy")},
	{types.FrameworkLGPD, keywordPattern("lgpd", "lei geral", "brazilian data", "brazil data protection")},
}

// keywordPattern matches any of the keywords as whole words, case-insensitively.
func keywordPattern(keywords ...string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// DetectFrameworks scans free text for framework mentions, in AllFrameworks order.
func DetectFrameworks(text string) []types.Framework {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var found []types.Framework
	for _, kw := range frameworkKeywords {
		if kw.pattern.MatchString(text) {
			found = append(found, kw.framework)
		}
	}
	return found
}

// InferFrameworks guesses frameworks from the operating regions and industry.
func InferFrameworks(geography []string, industry string) []types.Framework {
	var out []types.Framework
	add := func(fws ...types.Framework) {
		for _, fw := range fws {
			if !containsFramework(out, fw) {
				out = append(out, fw)
			}
		}
	}

	for _, g := range geography {
		region := strings.ToLower(strings.TrimSpace(g))
		switch region {
		case "eu", "europe", "european union", "uk", "united kingdom", "germany", "france", "spain", "italy", "netherlands", "ireland":
			add(types.FrameworkGDPR)
		case "us", "usa", "united states", "california", "us-west", "us-east":
			add(types.FrameworkCCPA)
		case "canada", "canadian":
			add(types.FrameworkPIPEDA)
		case "brazil", "brazilian":
			add(types.FrameworkLGPD)
		}
	}

	ind := strings.ToLower(industry)
	if ind == "" {
		return out
	}
	if containsAny(ind, "healthcare", "health", "medical", "hospital", "clinical") {
		add(types.FrameworkHIPAA)
	}
	if containsAny(ind, "financial", "finance", "bank", "fintech", "payment", "credit card") {
		add(types.FrameworkPCIDSS, types.FrameworkGLBA, types.FrameworkSOX)
	}
	if containsAny(ind, "education", "school", "university", "college", "student") {
		add(types.FrameworkFERPA)
	}
	if containsAny(ind, "saas", "software", "technology", "tech", "cloud") {
		add(types.FrameworkSOC2, types.FrameworkISO27001)
	}
	return out
}

// ResolveFrameworks runs the framework cascade: explicit brief, prompt keywords,
// project plan, then geography and industry, ending with defaults.
// It returns the frameworks and the name of the source that produced them.
func ResolveFrameworks(req *types.ProjectRequest, defaults []types.Framework, log *logging.Logger) ([]types.Framework, string) {
	log = logging.OrNop(log)
	if req == nil {
		req = &types.ProjectRequest{}
	}

	if req.Brief != nil {
		if fws := ParseFrameworkList(req.Brief.Frameworks, log); len(fws) > 0 {
			return fws, SourceBrief
		}
	}
	if fws := DetectFrameworks(req.Prompt); len(fws) > 0 {
		return fws, SourcePrompt
	}
	if req.ProjectPlan != nil {
		if fws := ParseFrameworkList(req.ProjectPlan.Frameworks, log); len(fws) > 0 {
			return fws, SourceProjectPlan
		}
	}
	if req.Brief != nil {
		if fws := InferFrameworks(req.Brief.Geography, req.Brief.Industry); len(fws) > 0 {
			return fws, SourceContext
		}
	}

	log.Warn("no frameworks detected, using defaults", "defaults", defaults)
	return append([]types.Framework(nil), defaults...), SourceDefault
}

// ParseFrameworkList parses raw framework names, skipping unknown ones and duplicates.
func ParseFrameworkList(raw []string, log *logging.Logger) []types.Framework {
	var out []types.Framework
	for _, name := range raw {
		fw, err := types.ParseFramework(name)
		if err != nil {
			logging.OrNop(log).Warn("skipping unknown framework", "framework", name)
			continue
		}
		if !containsFramework(out, fw) {
			out = append(out, fw)
		}
	}
	return out
}

func containsFramework(list []types.Framework, fw types.Framework) bool {
	for _, f := range list {
		if f == fw {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
