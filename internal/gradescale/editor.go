package gradescale

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	msgSaved      = "Grading Scale saved."
	msgSaveFailed = "An error occurred while saving the grading scale."
)

// SaveState tracks the save workflow.
type SaveState int

const (
	StateIdle SaveState = iota
	StateValidating
	StateInvalid
	StateSaving
	StateSaved
	StateSaveFailed
)

func (s SaveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateSaveFailed:
		return "save_failed"
	}
	return fmt.Sprintf("SaveState(%d)", int(s))
}

type Option func(*Editor)

func WithNotifier(n Notifier) Option { return func(e *Editor) { e.notifier = n } }

func WithLogger(l *zap.Logger) Option { return func(e *Editor) { e.log = l } }

// WithStateHook registers fn to observe every workflow state change. Hooks
// run after the editor lock is released, so they may call back into the
// editor.
func WithStateHook(fn func(SaveState)) Option {
	return func(e *Editor) { e.hooks = append(e.hooks, fn) }
}

// OnSaved registers fn to receive the caller's record after a successful save.
func OnSaved(fn func(*GradeScale)) Option {
	return func(e *Editor) { e.onSaved = append(e.onSaved, fn) }
}

// Editor is the editing session for one grading scale: it holds the record
// being edited, the draft built from it, and the save workflow.
type Editor struct {
	transport Transport
	notifier  Notifier
	log       *zap.Logger
	hooks     []func(SaveState)
	onSaved   []func(*GradeScale)

	mu             sync.Mutex
	src            *GradeScale
	draft          *Draft
	open           bool
	state          SaveState
	primaryEnabled bool
	errs           ErrorSet
	pending        []SaveState

	inFlight atomic.Bool
}

func NewEditor(t Transport, opts ...Option) *Editor {
	e := &Editor{transport: t, log: zap.NewNop(), primaryEnabled: true}
	for _, o := range opts {
		o(e)
	}
	if e.notifier == nil {
		e.notifier = LogNotifier{Log: e.log}
	}
	return e
}

// Open starts editing src, or a new record when src is nil. Saved attributes
// are merged back into *src.
func (e *Editor) Open(src *GradeScale) error {
	if src != nil && src.Type != "" && !src.Type.Valid() {
		return fmt.Errorf("%w: unrecognized grading scale type %q", ErrInvalidArgument, src.Type)
	}
	if e.inFlight.Load() {
		return ErrSaveInFlight
	}
	if src == nil {
		src = &GradeScale{}
	} else if !src.IsNew() {
		e.log.Debug("editing grading scale", zap.String("id", src.ID))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.src = src
	e.draft = FromRecord(*src)
	e.open = true
	e.state = StateIdle
	e.primaryEnabled = true
	e.errs = nil
	return nil
}

// Close ends the session and drops the draft.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
}

func (e *Editor) closeLocked() {
	e.notifier.HideAlert()
	e.open = false
	e.draft = nil
	e.src = nil
	e.errs = nil
	e.primaryEnabled = true
}

func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

func (e *Editor) State() SaveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() (*Draft, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return nil, ErrNotOpen
	}
	return e.draft.Clone(), nil
}

// Apply runs edits in order and stops at the first one that fails.
func (e *Editor) Apply(edits ...Edit) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrNotOpen
	}
	for i, ed := range edits {
		if err := e.draft.Apply(ed); err != nil {
			return fmt.Errorf("edit %d (%s): %w", i, ed.Kind, err)
		}
	}
	return nil
}

// Reset clears the draft back to a blank points scale.
func (e *Editor) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrNotOpen
	}
	if e.draft.IsCourseScale {
		return ErrCourseScaleReadOnly
	}
	e.draft.Reset()
	e.errs = nil
	return nil
}

// Save validates the draft and persists it. Validation failures come back as
// an ErrorSet; transport failures wrap ErrTransport and leave the draft as it
// was.
func (e *Editor) Save(ctx context.Context) error {
	rec, src, err := e.beginSave()
	if err != nil {
		return err
	}
	return e.persist(ctx, rec, src)
}

// SaveAsync is Save with the persist step in the background. Validation and
// the in-flight gate run before it returns.
func (e *Editor) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	rec, src, err := e.beginSave()
	if err != nil {
		done <- err
		close(done)
		return done
	}
	go func() {
		done <- e.persist(ctx, rec, src)
		close(done)
	}()
	return done
}

func (e *Editor) beginSave() (GradeScale, *GradeScale, error) {
	e.mu.Lock()
	defer e.unlock()
	if !e.open {
		return GradeScale{}, nil, ErrNotOpen
	}
	if e.draft.IsCourseScale {
		return GradeScale{}, nil, ErrCourseScaleReadOnly
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return GradeScale{}, nil, ErrSaveInFlight
	}

	e.notifier.HideAlert()
	e.errs = nil
	e.setStateLocked(StateValidating)
	if errs := e.draft.ValidateScale(); errs != nil {
		e.errs = errs
		e.notifier.ShowValidationErrors(errs)
		e.setStateLocked(StateInvalid)
		e.setStateLocked(StateIdle)
		e.inFlight.Store(false)
		return GradeScale{}, nil, errs
	}

	e.primaryEnabled = false
	e.setStateLocked(StateSaving)
	rec, err := e.translateLocked()
	if err != nil {
		e.failLocked(err)
		e.inFlight.Store(false)
		return GradeScale{}, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return rec, e.src, nil
}

func (e *Editor) translateLocked() (rec GradeScale, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("translate draft: %v", r)
		}
	}()
	rec = ToRecord(e.draft)
	rec.CourseID = e.src.CourseID
	if !e.src.IsNew() {
		rec.ID = e.src.ID
	}
	return rec, nil
}

// persist runs the transport without holding the lock. src is the record the
// session was opened with; it stays valid even if the editor is closed
// meanwhile.
func (e *Editor) persist(ctx context.Context, rec GradeScale, src *GradeScale) error {
	attrs, err := e.callTransport(ctx, rec)

	e.mu.Lock()
	if err != nil {
		e.failLocked(err)
		e.unlock()
		e.inFlight.Store(false)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	src.Merge(attrs)
	e.setStateLocked(StateSaved)
	listeners := e.onSaved
	e.closeLocked()
	e.notifier.ShowAlert(AlertInfo, msgSaved)
	e.unlock()
	e.inFlight.Store(false)

	for _, fn := range listeners {
		fn(src)
	}
	return nil
}

func (e *Editor) callTransport(ctx context.Context, rec GradeScale) (attrs GradeScale, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during save: %v", r)
		}
	}()
	return e.transport.Save(ctx, rec)
}

func (e *Editor) failLocked(err error) {
	e.setStateLocked(StateSaveFailed)
	fields := []zap.Field{zap.Error(err)}
	if e.draft != nil {
		fields = append(fields, zap.Stringer("draft", e.draft))
	}
	e.log.Error("saving grading scale failed", fields...)
	e.primaryEnabled = true
	e.notifier.ShowAlert(AlertError, msgSaveFailed)
	e.setStateLocked(StateIdle)
}

func (e *Editor) setStateLocked(s SaveState) {
	e.state = s
	e.pending = append(e.pending, s)
}

// unlock releases e.mu and then reports the states queued while it was held.
func (e *Editor) unlock() {
	states := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, s := range states {
		for _, h := range e.hooks {
			h(s)
		}
	}
}

// UseTotalPoints switches the course to total-points grading.
func (e *Editor) UseTotalPoints(ctx context.Context) error {
	if err := e.transport.SetCourseUseWeights(ctx, false); err != nil {
		e.log.Error("switching course to total points failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}
