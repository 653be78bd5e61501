// Package scenario loads HCL failure scenarios.
//
// A scenario names segments to isolate up front and an ordered list of
// failures applied one after another:
//
//	name        = "north trunk"
//	description = "Feeder loss during loop maintenance"
//	isolate     = ["PIPE-LOOP-${loop_size - 1}"]
//
//	failure "PIPE-FEEDER-0" {
//	  note = "plant main"
//	}
//
// The variables loop_size and seed are available in expressions.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidScenario is returned for files that parse but cannot run.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a decoded scenario file.
type Scenario struct {
	Name        string    `hcl:"name"`
	Description string    `hcl:"description,optional"`
	Isolate     []string  `hcl:"isolate,optional"`
	Failures    []Failure `hcl:"failure,block"`
}

// Failure is one burst, applied on top of every earlier step.
type Failure struct {
	Segment string `hcl:"segment,label"`
	Note    string `hcl:"note,optional"`
}

// Vars are exposed to scenario expressions.
type Vars struct {
	LoopSize int
	Seed     uint64
}

func (v Vars) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"loop_size": cty.NumberIntVal(int64(v.LoopSize)),
			"seed":      cty.NumberUIntVal(v.Seed),
		},
	}
}

// Parse decodes src. filename is only used in diagnostics.
func Parse(filename string, src []byte, vars Vars) (*Scenario, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var s Scenario
	if diags := gohcl.DecodeBody(f.Body, vars.evalContext(), &s); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &s, nil
}

// Load reads and parses the scenario at path.
func Load(path string, vars Vars) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(path, src, vars)
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is empty: %w", ErrInvalidScenario)
	}
	if len(s.Failures) == 0 {
		return fmt.Errorf("scenario %q has no failure blocks: %w", s.Name, ErrInvalidScenario)
	}
	for i, f := range s.Failures {
		if f.Segment == "" {
			return fmt.Errorf("failure %d has an empty segment: %w", i, ErrInvalidScenario)
		}
	}
	return nil
}
