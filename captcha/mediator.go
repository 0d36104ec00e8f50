package captcha

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/bookbay/driver"
)

// Status is the mediator's progress over one detection event.
type Status string

const (
	StatusAbsent   Status = "absent"
	StatusDetected Status = "detected"
	StatusSolving  Status = "solving"
	StatusSolved   Status = "solved"
	StatusFailed   Status = "failed"
)

// Mediator runs one challenge end-to-end: detect, delegate to the
// provider, inject the token. A StatusFailed result means the enclosing
// operation must abort.
type Mediator struct {
	solver *Solver
	budget time.Duration
	status Status
}

// NewMediator wraps a solver. budget caps one solve end-to-end; zero
// means the caller's context is the only bound.
func NewMediator(solver *Solver, budget time.Duration) *Mediator {
	return &Mediator{solver: solver, budget: budget, status: StatusAbsent}
}

// Status reports the most recent event's terminal status.
func (m *Mediator) Status() Status {
	return m.status
}

// Resolve checks the page for a solvable challenge and, when one is
// present, solves and injects it.
func (m *Mediator) Resolve(ctx context.Context, p driver.Page) Status {
	det, found := Detect(p)
	if !found {
		m.status = StatusAbsent
		return m.status
	}
	m.status = StatusDetected
	slog.Info("captcha detected", "kind", det.Kind, "siteKey", det.SiteKey)

	if m.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.budget)
		defer cancel()
	}

	m.status = StatusSolving
	pageURL := p.URL()

	var token string
	var err error
	switch det.Kind {
	case KindHCaptcha:
		token, err = m.solver.SolveHCaptcha(ctx, det.SiteKey, pageURL)
	default:
		token, err = m.solver.SolveRecaptchaV2(ctx, det.SiteKey, pageURL)
	}
	if err != nil {
		slog.Error("captcha solve failed", "kind", det.Kind, "error", err)
		m.status = StatusFailed
		return m.status
	}

	if err := injectToken(p, det.Kind, token); err != nil {
		slog.Error("captcha token injection failed", "kind", det.Kind, "error", err)
		m.status = StatusFailed
		return m.status
	}

	slog.Info("captcha solved", "kind", det.Kind)
	m.status = StatusSolved
	return m.status
}

// injectToken writes the provider's token into the widget's expected
// response field.
func injectToken(p driver.Page, kind Kind, token string) error {
	var js string
	switch kind {
	case KindHCaptcha:
		js = fmt.Sprintf(
			`() => { const el = document.querySelector('[name="h-captcha-response"]'); if (el) el.value = %q }`,
			token)
	default:
		js = fmt.Sprintf(
			`() => { const el = document.getElementById('g-recaptcha-response'); if (el) el.innerHTML = %q }`,
			token)
	}
	_, err := p.Eval(js)
	return err
}
