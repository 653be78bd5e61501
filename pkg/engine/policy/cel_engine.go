package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/DrSkyle/aquagrid/pkg/network"
)

// Facts are the variables a rule condition can reference.
type Facts struct {
	Segment       string
	Class         string
	Material      string
	Diameter      int
	InstalledYear int
	Priority      int
	Affected      int
	DryDemand     int
	Population    int
}

// FactsFor extracts rule variables from a failure report.
func FactsFor(r *network.FailureReport) Facts {
	return Facts{
		Segment:       r.Segment.ID,
		Class:         string(r.Segment.Class),
		Material:      r.Segment.Material,
		Diameter:      r.Segment.Diameter,
		InstalledYear: r.Segment.InstalledYear,
		Priority:      r.Segment.PriorityScore,
		Affected:      r.Impact.AffectedNodes,
		DryDemand:     r.Impact.DryDemandNodes,
		Population:    r.Impact.EstimatedPopulation,
	}
}

func (f Facts) vars() map[string]any {
	return map[string]any{
		"segment":        f.Segment,
		"class":          f.Class,
		"material":       f.Material,
		"diameter":       int64(f.Diameter),
		"installed_year": int64(f.InstalledYear),
		"priority":       int64(f.Priority),
		"affected":       int64(f.Affected),
		"dry_demand":     int64(f.DryDemand),
		"population":     int64(f.Population),
	}
}

// Match is a rule whose condition held.
type Match struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type compiled struct {
	rule Rule
	prg  cel.Program
}

// CELEngine manages the compilation and execution of escalation rules.
// Compile before sharing; Evaluate is safe for concurrent use.
type CELEngine struct {
	env      *cel.Env
	programs []compiled
}

// NewCELEngine initializes the CEL environment with the outcome variables.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("segment", cel.StringType),
		cel.Variable("class", cel.StringType),
		cel.Variable("material", cel.StringType),
		cel.Variable("diameter", cel.IntType),
		cel.Variable("installed_year", cel.IntType),
		cel.Variable("priority", cel.IntType),
		cel.Variable("affected", cel.IntType),
		cel.Variable("dry_demand", cel.IntType),
		cel.Variable("population", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	return &CELEngine{env: env}, nil
}

// Compile compiles rules into executable programs. Conditions must be boolean.
func (e *CELEngine) Compile(rules []Rule) error {
	for _, r := range rules {
		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return fmt.Errorf("rule %s must evaluate to bool, got %s", r.ID, ast.OutputType())
		}

		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}

		e.programs = append(e.programs, compiled{rule: r, prg: prg})
	}
	return nil
}

// Evaluate returns matched rules in compile order. A rule that fails at
// runtime is logged and skipped.
func (e *CELEngine) Evaluate(ctx context.Context, f Facts) ([]Match, error) {
	var matches []Match
	vars := f.vars()

	for _, c := range e.programs {
		if err := ctx.Err(); err != nil {
			return matches, err
		}

		out, _, err := c.prg.ContextEval(ctx, vars)
		if err != nil {
			slog.Error("Rule evaluation failed", "rule_id", c.rule.ID, "error", err)
			continue
		}

		if match, ok := out.Value().(bool); ok && match {
			matches = append(matches, Match{ID: c.rule.ID, Action: c.rule.Action})
		}
	}

	return matches, nil
}

// Escalates reports whether any match carries the escalate action.
func Escalates(matches []Match) bool {
	for _, m := range matches {
		if m.Action == ActionEscalate {
			return true
		}
	}
	return false
}
