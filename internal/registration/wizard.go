package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	applog "github.com/janisto/provider-onboarding/internal/platform/logging"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

// Step is a page of the provider wizard.
type Step int

const (
	StepIdentity     Step = 1 // company name, address, email, phone
	StepCredentials  Step = 2 // password and confirmation
	StepActivity     Step = 3 // category, status, registration number, description
	StepAvailability Step = 4 // hours, rate, deposit, payment methods

	FirstStep = StepIdentity
	LastStep  = StepAvailability
)

var stepNames = map[Step]string{
	StepIdentity:     "identity",
	StepCredentials:  "credentials",
	StepActivity:     "activity",
	StepAvailability: "availability",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid reports whether s is one of the four wizard steps.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Navigator receives the wizard's navigation signals. Implementations must not
// call back into the wizard synchronously.
type Navigator interface {
	// ToLogin fires once, after the account was created.
	ToLogin()
	// Back fires when the user leaves the wizard.
	Back()
}

// Success is returned by a completed submission.
type Success struct {
	Message string
	// UserID is set when the accounts service returned one.
	UserID string
}

// View is a point-in-time copy of the wizard state.
type View struct {
	Form        Form
	Errors      Errors
	Step        Step
	Submitting  bool
	Done        bool
	LastFailure *SubmissionError
}

// Wizard collects, validates and submits one provider registration. It owns its
// form exclusively; all methods are safe for concurrent use.
type Wizard struct {
	svc accounts.Service
	nav Navigator

	mu          sync.Mutex
	form        Form
	errs        Errors
	touched     map[Field]bool
	step        Step
	submitting  bool
	done        bool
	lastFailure *SubmissionError
}

// New creates a wizard on the first step with an empty form.
func New(svc accounts.Service, nav Navigator) *Wizard {
	if nav == nil {
		nav = discardNavigator{}
	}
	return &Wizard{
		svc:     svc,
		nav:     nav,
		form:    NewForm(),
		errs:    Errors{},
		touched: map[Field]bool{},
		step:    FirstStep,
	}
}

// UpdateField overwrites one field. Validation of the field itself is deferred
// to ValidateField or Submit, but fields whose rule reads this one are checked
// again once the user has interacted with them.
func (w *Wizard) UpdateField(field Field, value any) error {
	if _, ok := fieldSteps[field]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return ErrCompleted
	}
	if err := w.form.set(field, value); err != nil {
		return err
	}
	for _, dep := range dependents[field] {
		if w.touched[dep] || w.form.hasValue(dep) {
			w.validateLocked(dep)
		}
	}
	return nil
}

// ValidateField evaluates one field against the current form and records the
// outcome. It returns "" when the field is valid.
func (w *Wizard) ValidateField(field Field) (string, error) {
	if _, ok := rules[field]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateLocked(field), nil
}

// ValidateAll evaluates every field and reports whether the form is valid.
func (w *Wizard) ValidateAll() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateAllLocked()
}

// Errors returns a copy of the current validation errors.
func (w *Wizard) Errors() Errors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs.Clone()
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Next advances one step. It never validates and stays put on the last step.
func (w *Wizard) Next() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.done && !w.submitting && w.step < LastStep {
		w.step++
	}
	return w.step
}

// Previous goes back one step without touching the form. On the first step it
// hands control back to the caller's screen.
func (w *Wizard) Previous() Step {
	w.mu.Lock()
	if w.done || w.submitting {
		defer w.mu.Unlock()
		return w.step
	}
	if w.step > FirstStep {
		w.step--
		defer w.mu.Unlock()
		return w.step
	}
	step := w.step
	w.mu.Unlock()

	w.nav.Back()
	return step
}

// GoTo jumps to an arbitrary step.
func (w *Wizard) GoTo(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("registration: invalid step %d", int(step))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return ErrCompleted
	}
	if w.submitting {
		return ErrSubmissionInProgress
	}
	w.step = step
	return nil
}

// Leave abandons the wizard. It does nothing once the registration is done.
func (w *Wizard) Leave() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done {
		return
	}
	w.nav.Back()
}

// Snapshot copies the wizard state.
func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return View{
		Form:        w.form,
		Errors:      w.errs.Clone(),
		Step:        w.step,
		Submitting:  w.submitting,
		Done:        w.done,
		LastFailure: w.lastFailure,
	}
}

// Submit validates the whole form and, when it passes, issues exactly one
// account-creation request. Only one submission may be pending at a time.
func (w *Wizard) Submit(ctx context.Context) (*Success, error) {
	w.mu.Lock()
	switch {
	case w.done:
		w.mu.Unlock()
		return nil, ErrCompleted
	case w.submitting:
		w.mu.Unlock()
		return nil, ErrSubmissionInProgress
	case w.step != LastStep:
		w.mu.Unlock()
		return nil, ErrNotOnFinalStep
	}

	if !w.validateAllLocked() {
		field, msg, _ := w.errs.First()
		failure := &SubmissionError{
			Kind:    KindValidation,
			Message: msg,
			Fields:  w.errs.Clone(),
		}
		w.lastFailure = failure
		if step, ok := fieldSteps[field]; ok {
			w.step = step
		}
		w.mu.Unlock()
		applog.LogInfo(ctx, "provider registration refused by validation",
			zap.Int("invalidFields", len(failure.Fields)),
			zap.String("firstInvalidField", field.String()),
		)
		return nil, failure
	}

	payload := w.form.registration()
	w.submitting = true
	w.lastFailure = nil
	w.mu.Unlock()

	success, failure := w.dispatch(ctx, payload)
	if failure != nil {
		return nil, failure
	}
	w.nav.ToLogin()
	return success, nil
}

// dispatch performs the request. The deferred release runs on every exit path,
// so a failing or panicking service never leaves the wizard stuck submitting.
func (w *Wizard) dispatch(
	ctx context.Context, payload accounts.ProviderRegistration,
) (success *Success, failure *SubmissionError) {
	defer func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.submitting = false
		if failure != nil {
			w.lastFailure = failure
			w.step = LastStep
			return
		}
		if success != nil {
			w.done = true
		}
	}()

	ack, err := w.svc.RegisterProvider(ctx, payload)
	if err != nil {
		failure = classifyFailure(err)
		applog.LogWarn(ctx, "provider registration failed",
			zap.String("kind", string(failure.Kind)),
			zap.Int("status", failure.Status),
			zap.Error(err),
		)
		return nil, failure
	}

	success = &Success{Message: MsgAccountCreated}
	if ack != nil {
		success.UserID = ack.UserID
	}
	applog.LogInfo(ctx, "provider registration accepted",
		zap.String("category", payload.Category),
		zap.String("professionalStatus", payload.ProfessionalStatus),
	)
	return success, nil
}

func (w *Wizard) validateLocked(field Field) string {
	msg := rules[field](&w.form)
	w.touched[field] = true
	if msg == "" {
		delete(w.errs, field)
	} else {
		w.errs[field] = msg
	}
	return msg
}

func (w *Wizard) validateAllLocked() bool {
	for _, f := range Fields {
		w.validateLocked(f)
	}
	return len(w.errs) == 0
}

// classifyFailure maps an accounts error onto the wizard's error taxonomy.
// Anything that is not an explicit rejection is treated as a transport failure.
func classifyFailure(err error) *SubmissionError {
	var upstream *accounts.UpstreamError
	if errors.As(err, &upstream) && upstream.Kind == accounts.UpstreamErrorKindRejected {
		msg := strings.TrimSpace(upstream.ServerMessage)
		if msg == "" {
			msg = MsgRejectedFallback
		}
		return &SubmissionError{
			Kind:          KindRejected,
			Message:       msg,
			ServerMessage: upstream.ServerMessage,
			Status:        upstream.Status,
			cause:         err,
		}
	}
	return &SubmissionError{
		Kind:    KindNetwork,
		Message: MsgNetworkFailure,
		cause:   err,
	}
}

type discardNavigator struct{}

func (discardNavigator) ToLogin() {}
func (discardNavigator) Back()    {}
