package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/refcell/errors"
)

//go:embed default.yaml
var defaultScript []byte

// Op is a scenario step operation.
type Op string

const (
	OpCreate  Op = "create"
	OpClone   Op = "clone"
	OpRelease Op = "release"
	OpExpect  Op = "expect"
)

// Scenario is a parsed lifecycle script.
type Scenario struct {
	Name      string         `yaml:"name"`
	Resources []ResourceSpec `yaml:"resources"`
	Steps     []Step         `yaml:"steps"`
}

// ResourceSpec declares a fake resource. Failed resources stand for failed
// allocations and are passed to Create as nil.
type ResourceSpec struct {
	Name   string `yaml:"name"`
	Value  uint64 `yaml:"value"`
	Failed bool   `yaml:"failed"`
}

// Step is one scenario operation.
//
//	create:  Handle, Resource
//	clone:   Handle, From
//	release: Handle
//	expect:  Resource with Teardowns, and/or Handle with Count and Valid
type Step struct {
	Teardowns *int   `yaml:"teardowns,omitempty"`
	Count     *int   `yaml:"count,omitempty"`
	Valid     *bool  `yaml:"valid,omitempty"`
	Op        Op     `yaml:"op"`
	Handle    string `yaml:"handle,omitempty"`
	From      string `yaml:"from,omitempty"`
	Resource  string `yaml:"resource,omitempty"`
}

func (s Step) String() string {
	switch s.Op {
	case OpCreate:
		return fmt.Sprintf("create %s %s", s.Handle, s.Resource)
	case OpClone:
		return fmt.Sprintf("clone %s %s", s.Handle, s.From)
	case OpRelease:
		return fmt.Sprintf("release %s", s.Handle)
	case OpExpect:
		var b strings.Builder
		b.WriteString("expect")
		if s.Resource != "" {
			b.WriteString(" " + s.Resource)
		}
		if s.Teardowns != nil {
			fmt.Fprintf(&b, " teardowns=%d", *s.Teardowns)
		}
		if s.Handle != "" {
			b.WriteString(" " + s.Handle)
		}
		if s.Count != nil {
			fmt.Fprintf(&b, " count=%d", *s.Count)
		}
		if s.Valid != nil {
			fmt.Fprintf(&b, " valid=%t", *s.Valid)
		}
		return b.String()
	default:
		return string(s.Op)
	}
}

// Default returns the built-in three-alias scenario over resource 0xABCD.
func Default() *Scenario {
	s, err := Parse(defaultScript)
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseScenario, errors.KindNotFound,
			pkgerrors.Wrapf(err, "read scenario %s", path), "cannot read scenario")
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.PhaseScenario, errors.KindParse).
				Detail("empty scenario").
				Build()
		}
		return nil, errors.ParseFailed(errors.PhaseScenario, "scenario", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks resource declarations and the shape of every step. It does
// not simulate the steps; ordering errors surface when the scenario runs.
func (s *Scenario) Validate() error {
	seen := make(map[string]bool, len(s.Resources))
	for i, r := range s.Resources {
		if r.Name == "" {
			return errors.InvalidInput(errors.PhaseScenario, fmt.Sprintf("resource %d has no name", i))
		}
		if seen[r.Name] {
			return errors.InvalidInput(errors.PhaseScenario, fmt.Sprintf("resource %q declared twice", r.Name))
		}
		if r.Failed && r.Value != 0 {
			return errors.InvalidInput(errors.PhaseScenario, fmt.Sprintf("failed resource %q has a value", r.Name))
		}
		seen[r.Name] = true
	}

	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return errors.New(errors.PhaseScenario, errors.KindParse).
				Name(fmt.Sprintf("step %d", i+1)).
				Cause(err).
				Build()
		}
	}
	return nil
}

func (s Step) validate() error {
	missing := func(field string) error {
		return errors.InvalidInput(errors.PhaseScenario, fmt.Sprintf("%s requires %s", s.Op, field))
	}
	switch s.Op {
	case OpCreate:
		if s.Handle == "" {
			return missing("handle")
		}
		if s.Resource == "" {
			return missing("resource")
		}
	case OpClone:
		if s.Handle == "" {
			return missing("handle")
		}
		if s.From == "" {
			return missing("from")
		}
	case OpRelease:
		if s.Handle == "" {
			return missing("handle")
		}
	case OpExpect:
		if s.Teardowns != nil && s.Resource == "" {
			return missing("resource")
		}
		if (s.Count != nil || s.Valid != nil) && s.Handle == "" {
			return missing("handle")
		}
		if s.Teardowns == nil && s.Count == nil && s.Valid == nil {
			return errors.InvalidInput(errors.PhaseScenario, "expect checks nothing")
		}
	default:
		return errors.InvalidInput(errors.PhaseScenario, fmt.Sprintf("unknown op %q", s.Op))
	}
	return nil
}

// ParseStep parses a one-line command:
//
//	create <handle> <resource>
//	clone <handle> <from>
//	release <handle>
//	expect <resource> <teardowns>
func ParseStep(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, errors.New(errors.PhaseScenario, errors.KindParse).Detail("empty command").Build()
	}

	usage := func(form string) (Step, error) {
		return Step{}, errors.New(errors.PhaseScenario, errors.KindParse).
			Value(line).
			Detail("usage: %s", form).
			Build()
	}

	var st Step
	switch Op(fields[0]) {
	case OpCreate:
		if len(fields) != 3 {
			return usage("create <handle> <resource>")
		}
		st = Step{Op: OpCreate, Handle: fields[1], Resource: fields[2]}
	case OpClone:
		if len(fields) != 3 {
			return usage("clone <handle> <from>")
		}
		st = Step{Op: OpClone, Handle: fields[1], From: fields[2]}
	case OpRelease:
		if len(fields) != 2 {
			return usage("release <handle>")
		}
		st = Step{Op: OpRelease, Handle: fields[1]}
	case OpExpect:
		if len(fields) != 3 {
			return usage("expect <resource> <teardowns>")
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 0 {
			return usage("expect <resource> <teardowns>")
		}
		st = Step{Op: OpExpect, Resource: fields[1], Teardowns: &n}
	default:
		return Step{}, errors.New(errors.PhaseScenario, errors.KindParse).
			Value(line).
			Detail("unknown command %q", fields[0]).
			Build()
	}
	return st, nil
}

// Permutations returns every ordering of 0..n-1 in lexicographic order.
func Permutations(n int) [][]int {
	if n <= 0 {
		return nil
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var out [][]int
	for {
		out = append(out, append([]int(nil), perm...))

		i := n - 2
		for i >= 0 && perm[i] >= perm[i+1] {
			i--
		}
		if i < 0 {
			return out
		}
		j := n - 1
		for perm[j] <= perm[i] {
			j--
		}
		perm[i], perm[j] = perm[j], perm[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			perm[l], perm[r] = perm[r], perm[l]
		}
	}
}
