// Package steps provides stage definitions and ordering checks for the document
// generation pipeline.
package steps

import (
	"fmt"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Stage names
const (
	StageAnalyze              = "analyze"
	StagePlan                 = "plan"
	StageGenerate             = "generate"
	StageRender               = "render"
	StageValidateIndividual   = "validate_individual"
	StageValidateCross        = "validate_cross"
	StageValidateRequirements = "validate_requirements"
	StageConsolidate          = "consolidate"
)

// Stage categories
const (
	CategoryPlanning      = "planning"
	CategoryGeneration    = "generation"
	CategoryRendering     = "rendering"
	CategoryValidation    = "validation"
	CategoryConsolidation = "consolidation"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Name         string
	Category     string
	Description  string
	Dependencies []string
	// Families lists the document families that run this stage; empty means all.
	Families []types.DocumentFamily
	// Always marks a stage that still runs after the run has been abandoned.
	Always bool
}

// RunsFor reports whether the stage belongs to family's layout.
func (d StageDefinition) RunsFor(family types.DocumentFamily) bool {
	if len(d.Families) == 0 {
		return true
	}
	for _, f := range d.Families {
		if f == family {
			return true
		}
	}
	return false
}

// order is the fixed position of every stage.
var order = []string{
	StageAnalyze,
	StagePlan,
	StageGenerate,
	StageRender,
	StageValidateIndividual,
	StageValidateCross,
	StageValidateRequirements,
	StageConsolidate,
}

// StageRegistry holds all stage definitions
var StageRegistry = map[string]StageDefinition{
	StageAnalyze: {
		Name:        StageAnalyze,
		Category:    CategoryPlanning,
		Description: "Analyzing project requirements",
	},
	StagePlan: {
		Name:         StagePlan,
		Category:     CategoryPlanning,
		Description:  "Planning work items",
		Dependencies: []string{StageAnalyze},
	},
	StageGenerate: {
		Name:         StageGenerate,
		Category:     CategoryGeneration,
		Description:  "Generating documents",
		Dependencies: []string{StagePlan},
	},
	StageRender: {
		Name:         StageRender,
		Category:     CategoryRendering,
		Description:  "Rendering documents",
		Dependencies: []string{StageGenerate},
	},
	StageValidateIndividual: {
		Name:         StageValidateIndividual,
		Category:     CategoryValidation,
		Description:  "Validating documents individually",
		Dependencies: []string{StageGenerate},
	},
	StageValidateCross: {
		Name:         StageValidateCross,
		Category:     CategoryValidation,
		Description:  "Cross-validating documents",
		Dependencies: []string{StageValidateIndividual},
	},
	StageValidateRequirements: {
		Name:         StageValidateRequirements,
		Category:     CategoryValidation,
		Description:  "Validating against success criteria",
		Dependencies: []string{StageValidateIndividual, StageValidateCross},
		Families:     []types.DocumentFamily{types.FamilyCompliance},
	},
	StageConsolidate: {
		Name:         StageConsolidate,
		Category:     CategoryConsolidation,
		Description:  "Consolidating deliverables",
		Dependencies: []string{StageRender},
		Always:       true,
	},
}

// Sequence returns the ordered stage definitions for family.
func Sequence(family types.DocumentFamily) []StageDefinition {
	out := make([]StageDefinition, 0, len(order))
	for _, name := range order {
		def := StageRegistry[name]
		if def.RunsFor(family) {
			out = append(out, def)
		}
	}
	return out
}

// Lookup returns the definition of a stage.
func Lookup(name string) (StageDefinition, bool) {
	def, ok := StageRegistry[name]
	return def, ok
}

// DependencyError represents a stage placed before one of its dependencies
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s: missing dependencies: %v", e.Stage, e.MissingDependencies)
}

// ValidateOrder checks that every stage in names is known and appears after the
// dependencies that belong to family's layout.
func ValidateOrder(names []string, family types.DocumentFamily) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		def, ok := StageRegistry[name]
		if !ok {
			return fmt.Errorf("unknown stage: %s", name)
		}
		if seen[name] {
			return fmt.Errorf("stage %s listed twice", name)
		}

		var missing []string
		for _, dep := range def.Dependencies {
			depDef := StageRegistry[dep]
			if !depDef.RunsFor(family) {
				continue
			}
			if !seen[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Stage: name, MissingDependencies: missing}
		}
		seen[name] = true
	}
	return nil
}
