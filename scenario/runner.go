package scenario

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/refcell/errors"
	"github.com/wippyai/refcell/refc"
	"github.com/wippyai/refcell/resource"
)

// Resource is the raw value behind a scenario resource.
type Resource struct {
	Name  string
	Value uint64
}

// Call records one teardown invocation.
type Call struct {
	Step  int
	Value uint64
	Null  bool
}

// Record is one lifecycle event observed while running a step.
type Record struct {
	Resource string
	Step     int
	Count    int
	Event    refc.EventType
}

// Result describes one executed step.
type Result struct {
	Records []Record
	Step    Step
	Index   int
}

// HandleState is a snapshot of a live scenario handle.
type HandleState struct {
	Name     string
	Resource string
	Count    int
	Valid    bool
}

// Report summarizes a full run.
type Report struct {
	Teardowns map[string][]Call
	Name      string
	Results   []Result
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandleOptions adds refc options to every handle the runner creates.
func WithHandleOptions(opts ...refc.Option) Option {
	return func(r *Runner) {
		r.handleOpts = append(r.handleOpts, opts...)
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// Runner executes a scenario one step at a time.
type Runner struct {
	scenario   *Scenario
	table      *resource.Table
	registry   *refc.Registry[*Resource]
	logger     *zap.Logger
	raw        map[string]*Resource
	declared   map[string]bool
	handles    map[string]resource.ID
	handleRes  map[string]string
	released   map[string]bool
	teardowns  map[string][]Call
	records    []Record
	handleOpts []refc.Option
	pos        int
	step       int
}

// NewRunner prepares s for execution. Scenario resources are allocated up
// front; handles are created by the steps.
func NewRunner(s *Scenario, opts ...Option) *Runner {
	r := &Runner{
		scenario:  s,
		table:     resource.NewTable(),
		registry:  refc.NewRegistry[*Resource](),
		logger:    refc.Logger(),
		raw:       make(map[string]*Resource),
		declared:  make(map[string]bool),
		handles:   make(map[string]resource.ID),
		handleRes: make(map[string]string),
		released:  make(map[string]bool),
		teardowns: make(map[string][]Call),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, spec := range s.Resources {
		r.declared[spec.Name] = true
		if !spec.Failed {
			r.raw[spec.Name] = &Resource{Name: spec.Name, Value: spec.Value}
		}
	}
	return r
}

// Done reports whether every scripted step has run.
func (r *Runner) Done() bool {
	return r.pos >= len(r.scenario.Steps)
}

// Next returns the next scripted step, if any.
func (r *Runner) Next() (Step, bool) {
	if r.Done() {
		return Step{}, false
	}
	return r.scenario.Steps[r.pos], true
}

// Step runs the next scripted step. The position advances even when the step
// fails, so a caller can report the failure and carry on.
func (r *Runner) Step() (Result, error) {
	st, ok := r.Next()
	if !ok {
		return Result{}, errors.New(errors.PhaseScenario, errors.KindInvalidInput).
			Detail("no steps left").
			Build()
	}
	r.pos++
	return r.Exec(st)
}

// Run executes the remaining steps and stops at the first failure.
func (r *Runner) Run() (*Report, error) {
	report := &Report{Name: r.scenario.Name}
	for !r.Done() {
		res, err := r.Step()
		report.Results = append(report.Results, res)
		if err != nil {
			report.Teardowns = r.teardownSnapshot()
			return report, err
		}
	}
	report.Teardowns = r.teardownSnapshot()
	return report, nil
}

// Exec runs st outside the script, as the interactive tool does.
func (r *Runner) Exec(st Step) (Result, error) {
	if err := st.validate(); err != nil {
		return Result{Step: st}, err
	}

	r.step++
	start := len(r.records)
	res := Result{Step: st, Index: r.step}

	var err error
	switch st.Op {
	case OpCreate:
		err = r.create(st)
	case OpClone:
		err = r.clone(st)
	case OpRelease:
		err = r.release(st)
	case OpExpect:
		err = r.expect(st)
	}

	res.Records = append([]Record(nil), r.records[start:]...)
	if err != nil {
		r.logger.Debug("scenario step failed", zap.Int("step", r.step), zap.Stringer("op", st), zap.Error(err))
	}
	return res, err
}

// Teardowns returns the teardown calls recorded for a resource.
func (r *Runner) Teardowns(name string) []Call {
	return append([]Call(nil), r.teardowns[name]...)
}

// Handles returns a snapshot of live handles sorted by name.
func (r *Runner) Handles() []HandleState {
	out := make([]HandleState, 0, len(r.handles))
	for name, id := range r.handles {
		h, ok := resource.Lookup[*Resource](r.table, id)
		if !ok {
			continue
		}
		out = append(out, HandleState{
			Name:     name,
			Resource: r.handleRes[name],
			Count:    h.Count(),
			Valid:    h.Valid(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resources returns declared resource names in declaration order.
func (r *Runner) Resources() []string {
	names := make([]string, len(r.scenario.Resources))
	for i, spec := range r.scenario.Resources {
		names[i] = spec.Name
	}
	return names
}

// Close releases every handle still live, newest first.
func (r *Runner) Close() error {
	r.step++
	err := r.table.Close()
	for name := range r.handles {
		r.released[name] = true
	}
	r.handles = map[string]resource.ID{}
	return err
}

// OnHandleEvent records cell events for the current step.
func (r *Runner) OnHandleEvent(e refc.Event) {
	r.records = append(r.records, Record{
		Resource: e.Name,
		Step:     r.step,
		Count:    e.Count,
		Event:    e.Type,
	})
}

func (r *Runner) create(st Step) error {
	if err := r.checkNewName(st.Handle); err != nil {
		return err
	}
	if !r.declared[st.Resource] {
		return errors.NotFound(errors.PhaseScenario, "resource", st.Resource)
	}

	name := st.Resource
	opts := append([]refc.Option{refc.WithName(name), refc.WithObserver(r)}, r.handleOpts...)
	h, err := r.registry.Adopt(r.raw[name], func(v *Resource) {
		call := Call{Step: r.step, Null: v == nil}
		if v != nil {
			call.Value = v.Value
		}
		r.teardowns[name] = append(r.teardowns[name], call)
	}, opts...)
	if err != nil {
		return err
	}

	id := resource.Put(r.table, name, h)
	if id == 0 {
		h.Release()
		return errors.Closed(errors.PhaseScenario, "runner")
	}
	r.bind(st.Handle, id, name)
	return nil
}

func (r *Runner) clone(st Step) error {
	if err := r.checkNewName(st.Handle); err != nil {
		return err
	}
	id, err := r.live(st.From)
	if err != nil {
		return err
	}

	nid, ok := resource.Share[*Resource](r.table, id)
	if !ok {
		return errors.Closed(errors.PhaseScenario, "runner")
	}
	r.bind(st.Handle, nid, r.handleRes[st.From])
	return nil
}

func (r *Runner) release(st Step) error {
	id, err := r.live(st.Handle)
	if err != nil {
		return err
	}
	delete(r.handles, st.Handle)
	r.released[st.Handle] = true
	r.table.Remove(id)
	return nil
}

func (r *Runner) expect(st Step) error {
	if st.Teardowns != nil {
		if !r.declared[st.Resource] {
			return errors.NotFound(errors.PhaseScenario, "resource", st.Resource)
		}
		if got := len(r.teardowns[st.Resource]); got != *st.Teardowns {
			return errors.Expectation(st.Resource, "teardowns", *st.Teardowns, got)
		}
	}

	if st.Count == nil && st.Valid == nil {
		return nil
	}
	id, err := r.live(st.Handle)
	if err != nil {
		return err
	}
	h, _ := resource.Lookup[*Resource](r.table, id)
	if st.Count != nil && h.Count() != *st.Count {
		return errors.Expectation(st.Handle, "count", *st.Count, h.Count())
	}
	if st.Valid != nil && h.Valid() != *st.Valid {
		return errors.Expectation(st.Handle, "valid", *st.Valid, h.Valid())
	}
	return nil
}

func (r *Runner) checkNewName(name string) error {
	if _, ok := r.handles[name]; ok {
		return errors.New(errors.PhaseScenario, errors.KindInvalidInput).
			Name(name).
			Detail("handle %q is already live", name).
			Build()
	}
	return nil
}

func (r *Runner) live(name string) (resource.ID, error) {
	if id, ok := r.handles[name]; ok {
		return id, nil
	}
	if r.released[name] {
		return 0, errors.New(errors.PhaseScenario, errors.KindInvalidInput).
			Name(name).
			Detail("handle %q was already released", name).
			Build()
	}
	return 0, errors.NotFound(errors.PhaseScenario, "handle", name)
}

func (r *Runner) bind(name string, id resource.ID, res string) {
	r.handles[name] = id
	r.handleRes[name] = res
	delete(r.released, name)
}

func (r *Runner) teardownSnapshot() map[string][]Call {
	out := make(map[string][]Call, len(r.teardowns))
	for name, calls := range r.teardowns {
		out[name] = append([]Call(nil), calls...)
	}
	return out
}

// Summary formats the teardown totals recorded so far for every declared
// resource.
func (r *Runner) Summary() []string {
	rep := Report{Name: r.scenario.Name, Teardowns: r.teardownSnapshot()}
	return rep.Summary(r.Resources())
}

// Summary formats the teardown totals of a report, one line per resource.
func (rep *Report) Summary(resources []string) []string {
	lines := make([]string, 0, len(resources))
	for _, name := range resources {
		calls := rep.Teardowns[name]
		line := fmt.Sprintf("%s: %d teardown(s)", name, len(calls))
		for _, c := range calls {
			if c.Null {
				line += fmt.Sprintf(" [step %d: null]", c.Step)
			} else {
				line += fmt.Sprintf(" [step %d: %#x]", c.Step, c.Value)
			}
		}
		lines = append(lines, line)
	}
	return lines
}
