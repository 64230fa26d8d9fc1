package rules

import (
	"fmt"
	"strings"

	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/depscope-dev/depscope/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS04",
		Description: "target label declared more than once",
		Severity:    lint.SeverityError,
		Check:       checkDuplicateTargets,
	})
	lint.Register(lint.RuleDef{
		ID:          "DS06",
		Description: "invalid or misplaced test metadata",
		Severity:    lint.SeverityWarning,
		Check:       checkTestMetadata,
	})
	lint.Register(lint.RuleDef{
		ID:          "DS07",
		Description: "private target has no dependents",
		Severity:    lint.SeverityInfo,
		Check:       checkOrphans,
	})
	lint.Register(lint.RuleDef{
		ID:          "DS08",
		Description: "deps list contains the same label twice",
		Severity:    lint.SeverityHint,
		Check:       checkDuplicateDeps,
	})
}

func checkDuplicateTargets(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, t := range ctx.Duplicates {
		id := t.Label.String()
		diags = append(diags, lint.Diagnostic{
			Message:   fmt.Sprintf("target %s declared more than once; first declaration wins", id),
			Label:     id,
			BuildFile: t.BuildFile,
		})
	}
	return diags
}

// checkTestMetadata validates size and shard_count on test rules, and
// flags them on rules that are not tests.
func checkTestMetadata(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for id, t := range ctx.Targets {
		if t.IsTest() {
			if t.Size != "" && !build.ValidTestSizes[t.Size] {
				diags = append(diags, lint.Diagnostic{
					Message:   fmt.Sprintf("invalid test size %q", t.Size),
					Label:     id,
					BuildFile: t.BuildFile,
				})
			}
			if t.ShardCount != 0 && (t.ShardCount < build.MinShardCount || t.ShardCount > build.MaxShardCount) {
				diags = append(diags, lint.Diagnostic{
					Message: fmt.Sprintf("shard_count %d outside [%d, %d]",
						t.ShardCount, build.MinShardCount, build.MaxShardCount),
					Label:     id,
					BuildFile: t.BuildFile,
				})
			}
			continue
		}
		if t.Kind == "test_suite" {
			continue
		}
		if t.Size != "" || t.ShardCount != 0 {
			diags = append(diags, lint.Diagnostic{
				Message:   fmt.Sprintf("test metadata on non-test rule %s", t.Kind),
				Label:     id,
				BuildFile: t.BuildFile,
			})
		}
	}
	return diags
}

// checkOrphans flags private library targets nothing depends on.
// Entry points, tests, and declaration-only kinds are exempt.
func checkOrphans(ctx *lint.Context) []lint.Diagnostic {
	if ctx.Graph == nil {
		return nil
	}
	var diags []lint.Diagnostic
	for id, t := range ctx.Targets {
		if t.IsTest() || strings.HasSuffix(t.Kind, "_binary") {
			continue
		}
		switch t.Kind {
		case "test_suite", "package_group", "exported_file", "config_setting", "alias":
			continue
		}
		if !isPrivate(t.Visibility) {
			continue
		}
		if len(ctx.Graph.Dependents(id)) > 0 {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:   fmt.Sprintf("private target %s has no dependents", id),
			Label:     id,
			BuildFile: t.BuildFile,
		})
	}
	return diags
}

// isPrivate reports whether the visibility grants nothing beyond the
// declaring package.
func isPrivate(v build.Visibility) bool {
	for _, spec := range v {
		if spec.Kind != build.VisPrivate {
			return false
		}
	}
	return true
}

func checkDuplicateDeps(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for id, t := range ctx.Targets {
		seen := make(map[string]bool, len(t.Deps))
		for _, dep := range t.Deps {
			depID := dep.String()
			if seen[depID] {
				diags = append(diags, lint.Diagnostic{
					Message:   fmt.Sprintf("dependency %s listed more than once", depID),
					Label:     id,
					BuildFile: t.BuildFile,
				})
				continue
			}
			seen[depID] = true
		}
	}
	return diags
}
