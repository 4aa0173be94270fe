// Package workflow implements the stage-advancement engine: the canonical
// stage catalog, the next-stage resolver, the stage transition operator and
// the assignment/audit, privacy and reporting logic built on top of it.
package workflow

import (
	"fmt"
	"strings"
)

// Canonical workflow stages, in pipeline order.
const (
	StageIntake           = "intake"
	StageMaterials        = "materials"
	StageMarking          = "marking"
	StageMarkingChecker   = "marking_checker"
	StageCutting          = "cutting"
	StageCuttingChecker   = "cutting_checker"
	StageAariWork         = "aari_work"
	StageStitching        = "stitching"
	StageStitchingChecker = "stitching_checker"
	StageHooks            = "hooks"
	StageIroning          = "ironing"
	StageBilling          = "billing"
)

// CanonicalStages is the fixed total ordering of all workflow stages. An
// order's active stages are always an ordered subset of this list.
var CanonicalStages = []string{
	StageIntake,
	StageMaterials,
	StageMarking,
	StageMarkingChecker,
	StageCutting,
	StageCuttingChecker,
	StageAariWork,
	StageStitching,
	StageStitchingChecker,
	StageHooks,
	StageIroning,
	StageBilling,
}

// UnknownStageError is returned when a stage identifier is not part of the
// canonical stage order. It guards against typos in stage identifiers.
type UnknownStageError struct {
	Stage string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown workflow stage %q", e.Stage)
}

// NoNextStageError is returned when no eligible next stage exists for a
// non-terminal transition. It indicates a misconfigured active-stage set,
// never a normal completion.
type NoNextStageError struct {
	Stage string
}

func (e *NoNextStageError) Error() string {
	return fmt.Sprintf("no next stage resolvable from %q: active stages misconfigured", e.Stage)
}

// stageIndex returns the position of stage in the canonical order
func stageIndex(stage string) (int, error) {
	for i, s := range CanonicalStages {
		if s == stage {
			return i, nil
		}
	}
	return -1, &UnknownStageError{Stage: stage}
}

// IsKnownStage reports whether stage is part of the canonical order
func IsKnownStage(stage string) bool {
	_, err := stageIndex(stage)
	return err == nil
}

// IsCheckerStage reports whether stage is a quality-gate stage that can
// approve or reject work
func IsCheckerStage(stage string) bool {
	return strings.HasSuffix(stage, "_checker")
}

// NextStage returns the first stage strictly after current in canonical
// order that is a member of activeStages, or "" when no such stage exists
// (the workflow is complete for this order/item). An unknown current stage
// is an error, never a silent "".
func NextStage(current string, activeStages []string) (string, error) {
	idx, err := stageIndex(current)
	if err != nil {
		return "", err
	}

	active := make(map[string]bool, len(activeStages))
	for _, s := range activeStages {
		active[s] = true
	}

	for _, s := range CanonicalStages[idx+1:] {
		if active[s] {
			return s, nil
		}
	}
	return "", nil
}

// FirstActiveStage returns the earliest canonical stage present in
// activeStages, or "" when the set is empty. Used when an order is
// confirmed and enters the pipeline.
func FirstActiveStage(activeStages []string) string {
	active := make(map[string]bool, len(activeStages))
	for _, s := range activeStages {
		active[s] = true
	}
	for _, s := range CanonicalStages {
		if active[s] {
			return s
		}
	}
	return ""
}

// LastActiveStage returns the latest canonical stage present in
// activeStages, or "" when the set is empty.
func LastActiveStage(activeStages []string) string {
	active := make(map[string]bool, len(activeStages))
	for _, s := range activeStages {
		active[s] = true
	}
	for i := len(CanonicalStages) - 1; i >= 0; i-- {
		if active[CanonicalStages[i]] {
			return CanonicalStages[i]
		}
	}
	return ""
}

// ContainsStage reports whether stage is a member of activeStages
func ContainsStage(activeStages []string, stage string) bool {
	for _, s := range activeStages {
		if s == stage {
			return true
		}
	}
	return false
}

// aariGarments lists garment types that go through the aari embroidery
// stage; every other garment type skips it.
var aariGarments = map[string]bool{
	"aari_blouse":   true,
	"bridal_blouse": true,
	"aari_gown":     true,
}

// hooklessGarments lists garment types that have no hook fastening and skip
// the hooks stage.
var hooklessGarments = map[string]bool{
	"gown":      true,
	"aari_gown": true,
	"lehenga":   true,
}

// ActiveStagesFor derives the active-stage subset for a garment type.
// The result is always in canonical order.
func ActiveStagesFor(garmentType string) []string {
	stages := make([]string, 0, len(CanonicalStages))
	for _, s := range CanonicalStages {
		if s == StageAariWork && !aariGarments[garmentType] {
			continue
		}
		if s == StageHooks && hooklessGarments[garmentType] {
			continue
		}
		stages = append(stages, s)
	}
	return stages
}
