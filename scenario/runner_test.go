package scenario

import (
	"fmt"
	"testing"

	"github.com/wippyai/refcell/errors"
	"github.com/wippyai/refcell/refc"
)

func intp(n int) *int { return &n }

func TestRunner_Default(t *testing.T) {
	r := NewRunner(Default())
	rep, err := r.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	calls := rep.Teardowns["window"]
	if len(calls) != 1 {
		t.Fatalf("window teardowns = %d, want 1", len(calls))
	}
	if calls[0].Value != 0xABCD || calls[0].Null {
		t.Fatalf("window teardown = %+v, want 0xABCD", calls[0])
	}

	nulls := rep.Teardowns["failed-surface"]
	if len(nulls) != 1 || !nulls[0].Null {
		t.Fatalf("failed-surface teardowns = %+v, want one null call", nulls)
	}

	lines := rep.Summary(r.Resources())
	if len(lines) != 2 || lines[0] != fmt.Sprintf("window: 1 teardown(s) [step %d: 0xabcd]", calls[0].Step) {
		t.Fatalf("Summary = %q", lines)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestRunner_FailedResourceFromYAML(t *testing.T) {
	s, err := Parse([]byte(`
name: failed-alloc
resources:
  - name: surface
    failed: true
steps:
  - {op: create,  handle: h, resource: surface}
  - {op: expect,  handle: h, count: 1, valid: false}
  - {op: release, handle: h}
  - {op: expect,  resource: surface, teardowns: 1}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !s.Resources[0].Failed {
		t.Fatal("failed: true not decoded")
	}

	r := NewRunner(s)
	rep, err := r.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	calls := rep.Teardowns["surface"]
	if len(calls) != 1 || !calls[0].Null {
		t.Fatalf("surface teardowns = %+v, want one call with nil", calls)
	}
}

func TestRunner_TeardownOnlyOnLastRelease(t *testing.T) {
	s := &Scenario{
		Resources: []ResourceSpec{{Name: "window", Value: 0xABCD}},
		Steps: []Step{
			{Op: OpCreate, Handle: "h1", Resource: "window"},
			{Op: OpClone, Handle: "h2", From: "h1"},
			{Op: OpClone, Handle: "h3", From: "h2"},
		},
	}

	for _, order := range Permutations(3) {
		r := NewRunner(s)
		if _, err := r.Run(); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		for i, idx := range order {
			if _, err := r.Exec(Step{Op: OpRelease, Handle: fmt.Sprintf("h%d", idx+1)}); err != nil {
				t.Fatalf("order %v: release failed: %v", order, err)
			}
			want := 0
			if i == 2 {
				want = 1
			}
			if got := len(r.Teardowns("window")); got != want {
				t.Fatalf("order %v: after %d releases teardowns = %d, want %d", order, i+1, got, want)
			}
		}
	}
}

func TestRunner_Records(t *testing.T) {
	r := NewRunner(&Scenario{
		Resources: []ResourceSpec{{Name: "tex", Value: 1}},
	})

	res, err := r.Exec(Step{Op: OpCreate, Handle: "a", Resource: "tex"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].Event != refc.EventCreated {
		t.Fatalf("create records = %+v", res.Records)
	}

	res, err = r.Exec(Step{Op: OpRelease, Handle: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 ||
		res.Records[0].Event != refc.EventReleased ||
		res.Records[1].Event != refc.EventTornDown {
		t.Fatalf("release records = %+v", res.Records)
	}
	if res.Records[1].Resource != "tex" {
		t.Fatalf("record resource = %q, want tex", res.Records[1].Resource)
	}
}

func TestRunner_Errors(t *testing.T) {
	base := &Scenario{
		Resources: []ResourceSpec{{Name: "window", Value: 1}},
	}

	tests := []struct {
		name  string
		setup []Step
		step  Step
		kind  errors.Kind
	}{
		{
			name: "unknown resource",
			step: Step{Op: OpCreate, Handle: "h1", Resource: "monitor"},
			kind: errors.KindNotFound,
		},
		{
			name: "unknown handle",
			step: Step{Op: OpRelease, Handle: "ghost"},
			kind: errors.KindNotFound,
		},
		{
			name:  "double release",
			setup: []Step{{Op: OpCreate, Handle: "h1", Resource: "window"}, {Op: OpRelease, Handle: "h1"}},
			step:  Step{Op: OpRelease, Handle: "h1"},
			kind:  errors.KindInvalidInput,
		},
		{
			name:  "clone from released",
			setup: []Step{{Op: OpCreate, Handle: "h1", Resource: "window"}, {Op: OpRelease, Handle: "h1"}},
			step:  Step{Op: OpClone, Handle: "h2", From: "h1"},
			kind:  errors.KindInvalidInput,
		},
		{
			name:  "reused live name",
			setup: []Step{{Op: OpCreate, Handle: "h1", Resource: "window"}},
			step:  Step{Op: OpClone, Handle: "h1", From: "h1"},
			kind:  errors.KindInvalidInput,
		},
		{
			name:  "second cell for live resource",
			setup: []Step{{Op: OpCreate, Handle: "h1", Resource: "window"}},
			step:  Step{Op: OpCreate, Handle: "h2", Resource: "window"},
			kind:  errors.KindDuplicate,
		},
		{
			name:  "failed expectation",
			setup: []Step{{Op: OpCreate, Handle: "h1", Resource: "window"}},
			step:  Step{Op: OpExpect, Resource: "window", Teardowns: intp(1)},
			kind:  errors.KindExpectation,
		},
		{
			name:  "wrong count",
			setup: []Step{{Op: OpCreate, Handle: "h1", Resource: "window"}},
			step:  Step{Op: OpExpect, Handle: "h1", Count: intp(2)},
			kind:  errors.KindExpectation,
		},
		{
			name: "invalid step",
			step: Step{Op: OpClone, Handle: "h2"},
			kind: errors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(base)
			for _, st := range tt.setup {
				if _, err := r.Exec(st); err != nil {
					t.Fatalf("setup %v failed: %v", st, err)
				}
			}
			_, err := r.Exec(tt.step)
			if err == nil {
				t.Fatal("expected an error")
			}
			if k := kindOf(t, err); k != tt.kind {
				t.Fatalf("Kind = %s, want %s (%v)", k, tt.kind, err)
			}
			if err := r.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if n := len(r.Teardowns("window")); n > 1 {
				t.Fatalf("window torn down %d times", n)
			}
		})
	}
}

func TestRunner_RecreateAfterTeardown(t *testing.T) {
	r := NewRunner(&Scenario{
		Resources: []ResourceSpec{{Name: "window", Value: 1}},
		Steps: []Step{
			{Op: OpCreate, Handle: "h1", Resource: "window"},
			{Op: OpRelease, Handle: "h1"},
			{Op: OpCreate, Handle: "h1", Resource: "window"},
			{Op: OpRelease, Handle: "h1"},
			{Op: OpExpect, Resource: "window", Teardowns: intp(2)},
		},
	})
	if _, err := r.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRunner_StepAndHandles(t *testing.T) {
	r := NewRunner(Default())

	for i := 0; i < 3; i++ {
		if _, err := r.Step(); err != nil {
			t.Fatalf("step %d failed: %v", i+1, err)
		}
	}

	hs := r.Handles()
	if len(hs) != 3 {
		t.Fatalf("Handles() = %+v, want 3 entries", hs)
	}
	for i, h := range hs {
		if h.Name != fmt.Sprintf("h%d", i+1) || h.Count != 3 || !h.Valid || h.Resource != "window" {
			t.Fatalf("handle %d = %+v", i, h)
		}
	}

	next, ok := r.Next()
	if !ok || next.Op != OpExpect {
		t.Fatalf("Next() = %v, %v", next, ok)
	}
}

func TestRunner_CloseReleasesRemaining(t *testing.T) {
	r := NewRunner(Default())
	for i := 0; i < 3; i++ {
		if _, err := r.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if n := len(r.Teardowns("window")); n != 1 {
		t.Fatalf("window teardowns after Close = %d, want 1", n)
	}
	if len(r.Handles()) != 0 {
		t.Fatal("Handles() should be empty after Close")
	}
	if _, err := r.Exec(Step{Op: OpRelease, Handle: "h1"}); kindOf(t, err) != errors.KindInvalidInput {
		t.Fatalf("release after Close = %v", err)
	}
}

func TestRunner_StepPastEnd(t *testing.T) {
	r := NewRunner(&Scenario{})
	if !r.Done() {
		t.Fatal("empty scenario should be done")
	}
	if _, err := r.Step(); kindOf(t, err) != errors.KindInvalidInput {
		t.Fatalf("Step past end = %v", err)
	}
}
