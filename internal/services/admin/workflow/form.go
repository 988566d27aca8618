package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultGracePeriod is how long a success notice stays up before navigation.
const DefaultGracePeriod = 4 * time.Second

// Mode selects whether a form creates or updates a record.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// String returns the route action for the mode.
func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Phase gates validation display. A form leaves Pristine only on its first
// submit attempt and never returns.
type Phase int

const (
	PhasePristine Phase = iota
	PhaseTouched
)

// String returns the phase name used in hidden form inputs.
func (p Phase) String() string {
	if p == PhaseTouched {
		return "touched"
	}
	return "pristine"
}

// ParsePhase reads a phase name, defaulting to Pristine.
func ParsePhase(value string) Phase {
	if strings.EqualFold(strings.TrimSpace(value), "touched") {
		return PhaseTouched
	}
	return PhasePristine
}

// Outcome is the terminal state of one Submit call.
type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeSaved
	OutcomeFailed
)

// Result describes a finished Submit.
type Result struct {
	Outcome Outcome
	Reply   Reply
	// Err is the upstream failure for OutcomeFailed.
	Err error
}

// FormConfig wires a FormController.
type FormConfig struct {
	// Resource is the upstream collection path, e.g. "yard-activities".
	Resource string
	Schema   Schema
	Mode     Mode
	// RecordID is the decoded upstream id; required in update mode.
	RecordID string
	// Redirect is the route navigated to after a successful save.
	Redirect string
	// Phase restores a form that was already submitted once.
	Phase Phase
	// GracePeriod defaults to DefaultGracePeriod.
	GracePeriod time.Duration

	Store     Store
	Notifier  Notifier
	Navigator Navigator
	Scheduler Scheduler
	Localizer Localizer
	// OnSaved runs after a successful save, before navigation is scheduled.
	OnSaved func(ctx context.Context, draft Draft, reply Reply)
}

// FormController owns one record draft through validate, submit and navigate.
type FormController struct {
	cfg FormConfig

	mu          sync.Mutex
	draft       Draft
	phase       Phase
	fieldErrors FieldErrors
	submitting  bool
	closed      bool
	navigation  Task
	generation  uint64
}

// NewFormController builds a controller seeded with initial. A nil initial
// starts from the schema zero draft.
func NewFormController(cfg FormConfig, initial Draft) (*FormController, error) {
	if strings.TrimSpace(cfg.Resource) == "" {
		return nil, errors.New("resource is required")
	}
	if cfg.Schema.Len() == 0 {
		return nil, errors.New("schema is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Mode == ModeUpdate && strings.TrimSpace(cfg.RecordID) == "" {
		return nil, errors.New("record id is required in update mode")
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	cfg.Localizer = localizerOrDefault(cfg.Localizer)

	draft := ZeroDraft(cfg.Schema)
	for name, value := range initial {
		if _, ok := cfg.Schema.Field(name); ok {
			draft[name] = value
		}
	}

	c := &FormController{
		cfg:   cfg,
		draft: draft,
		phase: cfg.Phase,
	}
	if c.phase == PhaseTouched {
		c.fieldErrors = Validate(cfg.Schema, draft, cfg.Localizer)
	}
	return c, nil
}

// Draft returns a copy of the current draft.
func (c *FormController) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Phase reports the validation phase.
func (c *FormController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// FieldErrors returns the published violations, nil when none are shown.
func (c *FormController) FieldErrors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErrors.clone()
}

// Submitting reports whether a submit is waiting on the upstream.
func (c *FormController) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Mode reports whether the controller creates or updates.
func (c *FormController) Mode() Mode {
	return c.cfg.Mode
}

// UpdateField merges one value into the draft. Once the form is Touched the
// whole draft is re-validated and the violations republished.
func (c *FormController) UpdateField(name string, value any) error {
	if _, ok := c.cfg.Schema.Field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.draft[name] = value
	if c.phase == PhaseTouched {
		c.fieldErrors = Validate(c.cfg.Schema, c.draft, c.cfg.Localizer)
	}
	return nil
}

// Submit validates the draft and, when valid, sends exactly one request.
//
// A second call while a request is in flight returns ErrSubmitInFlight.
// Upstream failures are reported in Result, not as the returned error.
func (c *FormController) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	c.phase = PhaseTouched
	c.fieldErrors = Validate(c.cfg.Schema, c.draft, c.cfg.Localizer)
	if c.fieldErrors != nil {
		c.mu.Unlock()
		return Result{Outcome: OutcomeInvalid}, nil
	}
	c.submitting = true
	draft := c.draft.Clone()
	c.mu.Unlock()

	reply, err := c.send(ctx, draft)

	c.mu.Lock()
	c.submitting = false
	closed := c.closed
	c.mu.Unlock()

	if err != nil {
		c.notify(Notice{Level: LevelError, Message: FailureMessage(err, c.cfg.Localizer)})
		return Result{Outcome: OutcomeFailed, Err: err}, nil
	}

	c.notify(Notice{Level: LevelSuccess, Message: successMessage(reply, KeySaved, c.cfg.Localizer)})
	if c.cfg.OnSaved != nil {
		c.cfg.OnSaved(ctx, draft, reply)
	}
	if !closed {
		c.scheduleNavigation()
	}
	return Result{Outcome: OutcomeSaved, Reply: reply}, nil
}

// Close cancels any pending navigation. A closed controller never navigates.
func (c *FormController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	if c.navigation != nil {
		c.navigation.Stop()
		c.navigation = nil
	}
}

func (c *FormController) send(ctx context.Context, draft Draft) (Reply, error) {
	if c.cfg.Mode == ModeUpdate {
		return c.cfg.Store.Update(ctx, c.cfg.Resource, c.cfg.RecordID, draft)
	}
	return c.cfg.Store.Create(ctx, c.cfg.Resource, CreatePayload{Data: []Draft{draft}})
}

func (c *FormController) scheduleNavigation() {
	if c.cfg.Navigator == nil || c.cfg.Redirect == "" {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.navigation != nil {
		c.navigation.Stop()
		c.navigation = nil
	}
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	// Schedulers may run f synchronously, so AfterFunc is called unlocked.
	task := c.cfg.Scheduler.AfterFunc(c.cfg.GracePeriod, func() {
		c.navigate(generation)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.generation != generation {
		task.Stop()
		return
	}
	c.navigation = task
}

func (c *FormController) navigate(generation uint64) {
	c.mu.Lock()
	stale := c.closed || generation != c.generation
	if !stale {
		c.navigation = nil
	}
	c.mu.Unlock()
	if stale {
		return
	}
	c.cfg.Navigator.Navigate(c.cfg.Redirect)
}

func (c *FormController) notify(notice Notice) {
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.Notify(notice)
	}
}
