package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/errtree"
	"github.com/goliatone/go-formstate/pkg/fieldpath"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Trigger class names carried on Pass handles and log events.
const (
	TriggerChange        = "change"
	TriggerBlur          = "blur"
	TriggerSubmit        = "submit"
	TriggerValidateField = "validate-field"
	TriggerValidateForm  = "validate-form"
	TriggerValidateAll   = "validate-all"
)

// Orchestrator coordinates validator invocations against change, blur,
// submit, and explicit triggers. All state mutation funnels through a single
// mutex; asynchronous runner results are applied only while their generation
// is still current, so a late arrival from a superseded pass can never
// clobber a newer result.
type Orchestrator struct {
	mu sync.Mutex

	initial map[string]any
	values  map[string]any
	touched map[string]any

	// Form-level and field-level results are tracked separately: a form
	// runner result replaces the form tree wholesale (clearing fixed
	// fields), while field runners update only their own path.
	formErrs  errtree.Tree
	fieldErrs errtree.Tree

	generation uint64
	inflight   int

	form   *validation.FormRunner
	fields map[string]validation.FieldFunc
	order  []string

	validateOnChange bool
	validateOnBlur   bool
	log              zerolog.Logger
}

// New constructs an Orchestrator seeded with the caller's initial values.
// Touched and error trees start empty. Validation on change and blur
// defaults to on.
func New(initialValues map[string]any, options ...Option) *Orchestrator {
	o := &Orchestrator{
		initial:          cloneTree(initialValues),
		values:           cloneTree(initialValues),
		touched:          map[string]any{},
		fieldErrs:        errtree.Tree{},
		fields:           map[string]validation.FieldFunc{},
		validateOnChange: true,
		validateOnBlur:   true,
		log:              zerolog.Nop(),
	}
	if o.values == nil {
		o.values = map[string]any{}
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o
}

// RegisterField mounts a field-level validator at path. Registering a path
// twice replaces the validator but keeps its original position in the
// registration order.
func (o *Orchestrator) RegisterField(path string, fn validation.FieldFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registerFieldLocked(path, fn)
}

func (o *Orchestrator) registerFieldLocked(path string, fn validation.FieldFunc) {
	path = normalizeFieldPath(path)
	if path == "" || fn == nil {
		return
	}
	if _, exists := o.fields[path]; !exists {
		o.order = append(o.order, path)
	}
	o.fields[path] = fn
}

// DeregisterField unmounts a field's validator. In-flight results for the
// field are discarded on arrival and its recorded field-level error is
// dropped immediately.
func (o *Orchestrator) DeregisterField(path string) {
	path = normalizeFieldPath(path)
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.fields[path]; !exists {
		return
	}
	delete(o.fields, path)
	for i, candidate := range o.order {
		if candidate == path {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	errtree.Delete(o.fieldErrs, path)
}

// SetValue writes a value and fires a change-triggered pass scoped to the
// changed field, honouring the validateOnChange flag.
func (o *Orchestrator) SetValue(ctx context.Context, path string, value any) *Pass {
	path = normalizeFieldPath(path)
	o.mu.Lock()
	defer o.mu.Unlock()

	if path != "" {
		fieldpath.Set(o.values, path, value)
	}
	if !o.validateOnChange {
		return newSettledPass(TriggerChange, o.mergedErrorsLocked())
	}
	return o.startPassLocked(ctx, TriggerChange, o.form.Enabled(), o.scopedFieldLocked(path), false)
}

// SetValues replaces several values at once and fires a single
// change-triggered, form-level pass.
func (o *Orchestrator) SetValues(ctx context.Context, values map[string]any) *Pass {
	o.mu.Lock()
	defer o.mu.Unlock()

	for path, value := range values {
		if clean := normalizeFieldPath(path); clean != "" {
			fieldpath.Set(o.values, clean, value)
		}
	}
	if !o.validateOnChange {
		return newSettledPass(TriggerChange, o.mergedErrorsLocked())
	}
	return o.startPassLocked(ctx, TriggerChange, o.form.Enabled(), nil, false)
}

// SetTouched marks a field as touched and fires a blur-triggered pass scoped
// to that field, honouring the validateOnBlur flag. Touched markers are only
// ever set, never cleared, by triggers.
func (o *Orchestrator) SetTouched(ctx context.Context, path string) *Pass {
	path = normalizeFieldPath(path)
	o.mu.Lock()
	defer o.mu.Unlock()

	if path != "" {
		fieldpath.Set(o.touched, path, true)
	}
	if !o.validateOnBlur {
		return newSettledPass(TriggerBlur, o.mergedErrorsLocked())
	}
	return o.startPassLocked(ctx, TriggerBlur, o.form.Enabled(), o.scopedFieldLocked(path), false)
}

// Submit fires a submit-triggered pass: the form-level validator and every
// registered field validator run regardless of the change/blur flags, all
// touched markers are forced true so errors become visible, and the pass
// reports Blocked when the merged tree is non-empty or a validator faulted.
func (o *Orchestrator) Submit(ctx context.Context) *Pass {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, leaf := range fieldpath.Leaves(o.values) {
		fieldpath.Set(o.touched, leaf, true)
	}
	for _, path := range o.order {
		fieldpath.Set(o.touched, path, true)
	}

	paths := make([]string, len(o.order))
	copy(paths, o.order)
	return o.startPassLocked(ctx, TriggerSubmit, true, paths, true)
}

// ValidateField runs a single field's validator without touching the
// touched tree or other fields. A path with no registered validator
// resolves immediately with no state change.
func (o *Orchestrator) ValidateField(ctx context.Context, path string) *Pass {
	path = normalizeFieldPath(path)
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startPassLocked(ctx, TriggerValidateField, false, o.scopedFieldLocked(path), false)
}

// ValidateForm runs the form-level validator only.
func (o *Orchestrator) ValidateForm(ctx context.Context) *Pass {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startPassLocked(ctx, TriggerValidateForm, true, nil, false)
}

// ValidateAll runs the form-level validator and every registered field
// validator, without submit semantics (no touched forcing, no blocking).
func (o *Orchestrator) ValidateAll(ctx context.Context) *Pass {
	o.mu.Lock()
	defer o.mu.Unlock()

	paths := make([]string, len(o.order))
	copy(paths, o.order)
	return o.startPassLocked(ctx, TriggerValidateAll, true, paths, false)
}

// Reset restores values (nil restores the initial values), clears touched
// and error trees, and advances the generation so in-flight results are
// discarded on arrival.
func (o *Orchestrator) Reset(values map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if values == nil {
		o.values = cloneTree(o.initial)
	} else {
		o.values = cloneTree(values)
	}
	if o.values == nil {
		o.values = map[string]any{}
	}
	o.touched = map[string]any{}
	o.formErrs = nil
	o.fieldErrs = errtree.Tree{}
	o.generation++
	o.log.Debug().Uint64("generation", o.generation).Msg("form state reset")
}

// Values returns a deep copy of the current values tree.
func (o *Orchestrator) Values() map[string]any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneTree(o.values)
}

// Touched returns a deep copy of the current touched tree.
func (o *Orchestrator) Touched() map[string]any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneTree(o.touched)
}

// Errors returns the current merged error tree: form-level and field-level
// results merged with the field-over-form tie-break, pruned to the values
// tree's key set.
func (o *Orchestrator) Errors() errtree.Tree {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mergedErrorsLocked()
}

// FieldError returns the current merged error message at path, "" if none.
func (o *Orchestrator) FieldError(path string) string {
	return errtree.Get(o.Errors(), normalizeFieldPath(path))
}

// IsValidating reports whether at least one pass is in flight.
func (o *Orchestrator) IsValidating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight > 0
}

// IsValid reports whether the merged error tree is empty.
func (o *Orchestrator) IsValid() bool {
	return errtree.IsEmpty(o.Errors())
}

// Generation returns the current generation counter.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

func (o *Orchestrator) mergedErrorsLocked() errtree.Tree {
	return errtree.Prune(errtree.Merge(o.formErrs, o.fieldErrs), o.values)
}

// scopedFieldLocked resolves the runner set for a single-field trigger.
func (o *Orchestrator) scopedFieldLocked(path string) []string {
	if path == "" {
		return nil
	}
	if _, ok := o.fields[path]; !ok {
		return nil
	}
	return []string{path}
}

// startPassLocked increments the generation, snapshots the values tree, and
// launches one goroutine per applicable runner. Callers hold o.mu. When the
// trigger resolves to zero runners the pass settles immediately with the
// current error state.
func (o *Orchestrator) startPassLocked(ctx context.Context, trigger string, runForm bool, fieldPaths []string, submit bool) *Pass {
	type fieldRun struct {
		path  string
		fn    validation.FieldFunc
		value any
	}

	runForm = runForm && o.form.Enabled()
	runs := make([]fieldRun, 0, len(fieldPaths))
	snapshot := cloneTree(o.values)
	for _, path := range fieldPaths {
		fn, ok := o.fields[path]
		if !ok {
			continue
		}
		value, _ := fieldpath.Get(snapshot, path)
		runs = append(runs, fieldRun{path: path, fn: fn, value: value})
	}

	pending := len(runs)
	if runForm {
		pending++
	}
	if pending == 0 {
		return newSettledPass(trigger, o.mergedErrorsLocked())
	}

	o.generation++
	o.inflight++
	pass := newPass(o.generation, trigger, pending)
	o.log.Debug().
		Uint64("generation", pass.generation).
		Str("trigger", trigger).
		Int("runners", pending).
		Msg("validation pass started")

	form := o.form
	if runForm {
		go func() {
			tree, err := form.Run(ctx, snapshot)
			o.applyFormResult(pass, tree, err)
			if pass.recordForm(tree, err) {
				o.finalizePass(pass, submit)
			}
		}()
	}
	for _, run := range runs {
		go func(run fieldRun) {
			message, err := validation.RunField(ctx, run.path, run.fn, run.value, snapshot)
			o.applyFieldResult(pass, run.path, message, err)
			if pass.recordField(run.path, message, err) {
				o.finalizePass(pass, submit)
			}
		}(run)
	}
	return pass
}

// applyFormResult replaces the form-level error tree when the pass is still
// current. Faults never touch state: previously known errors for unrelated
// fields must survive a broken validator.
func (o *Orchestrator) applyFormResult(pass *Pass, tree errtree.Tree, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if pass.generation != o.generation {
		return
	}
	if err != nil {
		return
	}
	o.formErrs = tree
}

// applyFieldResult updates one field's entry when the pass is still current
// and the field is still registered. An empty message clears the entry.
func (o *Orchestrator) applyFieldResult(pass *Pass, path, message string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if pass.generation != o.generation {
		return
	}
	if _, registered := o.fields[path]; !registered {
		return
	}
	if err != nil {
		return
	}
	if message == "" {
		errtree.Delete(o.fieldErrs, path)
		return
	}
	errtree.Set(o.fieldErrs, path, message)
}

// finalizePass runs once the last runner for a pass has settled. Live
// passes re-apply their field results in registration order so overlapping
// nested paths resolve deterministically, then resolve with the merged
// state; superseded passes resolve as stale without touching state.
func (o *Orchestrator) finalizePass(pass *Pass, submit bool) {
	o.mu.Lock()
	o.inflight--
	stale := pass.generation != o.generation

	var errs errtree.Tree
	if stale {
		errs = pass.merged()
	} else {
		results := pass.fieldResults()
		for _, path := range o.order {
			message, ok := results[path]
			if !ok {
				continue
			}
			if message == "" {
				errtree.Delete(o.fieldErrs, path)
				continue
			}
			errtree.Set(o.fieldErrs, path, message)
		}
		errs = o.mergedErrorsLocked()
	}

	blocked := submit && (stale || pass.faulted() || !errtree.IsEmpty(errs))
	event := o.log.Debug().
		Uint64("generation", pass.generation).
		Str("trigger", pass.trigger).
		Bool("stale", stale)
	if submit {
		event = event.Bool("blocked", blocked)
	}
	if stale {
		event.Msg("stale validation pass discarded")
	} else {
		event.Msg("validation pass settled")
	}
	o.mu.Unlock()

	pass.settle(errs, blocked, stale)
}

func cloneTree(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	cloned, _ := cloneValue(tree).(map[string]any)
	return cloned
}

func cloneValue(value any) any {
	switch node := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, child := range node {
			out[key] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return value
	}
}
