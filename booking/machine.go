// Package booking runs a viewing reservation as a linear state machine:
// navigate, clear any challenge, fill the form, submit, verify. Every
// abort leaves the machine in a state that names how far it got.
package booking

import (
	"context"
	"log/slog"
	"strings"

	"github.com/use-agent/bookbay/browser"
	"github.com/use-agent/bookbay/captcha"
	"github.com/use-agent/bookbay/config"
	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/selector"
)

// State names how far one booking attempt progressed.
type State string

const (
	StateIdle            State = "idle"
	StateNavigated       State = "navigated"
	StateCaptchaChecked  State = "captcha_checked"
	StateFormFilled      State = "form_filled"
	StateSubmitted       State = "submitted"
	StateVerifiedSuccess State = "verified_success"
	StateVerifiedFailure State = "verified_failure"
	StateAborted         State = "aborted"
)

// Booking form chains, drawn from the portal's known page variants.
var (
	bookingLinkChain = selector.NewChain("booking link",
		`a[href*="book"]`,
		`a[href*="booking"]`,
		`a[href*="schedule"]`,
		`a[href*="viewing"]`,
		`.book-viewing`,
		`.schedule-viewing`,
	)
	nameFieldChain = selector.NewChain("contact name",
		`input[name="name"]`, `input[id*="name"]`, `input[placeholder*="name"]`)
	emailFieldChain = selector.NewChain("contact email",
		`input[name="email"]`, `input[type="email"]`, `input[id*="email"]`)
	phoneFieldChain = selector.NewChain("contact phone",
		`input[name="phone"]`, `input[type="tel"]`, `input[id*="phone"]`)
	messageFieldChain = selector.NewChain("contact message",
		`textarea[name="message"]`, `textarea[id*="message"]`, `textarea`)
	dateFieldChain = selector.NewChain("viewing date",
		`input[name="date"]`, `input[name="viewing_date"]`, `input[type="date"]`, `#viewing-date`)
	timeSelectChain = selector.NewChain("viewing time",
		`select[name="time"]`, `select[name="viewing_time"]`, `#viewing-time`)
	propertyFieldChain = selector.NewChain("property field",
		`input[name="property_id"]`, `input[name="property"]`, `select[name="property"]`)
	submitChain = selector.NewChain("booking submit",
		`button[type="submit"]`,
		`input[type="submit"]`,
		`button[class*="submit"]`,
		`button[class*="book"]`,
		`.submit-booking`,
		`#submit-booking`,
	)
	successChain = selector.NewChain("booking confirmation",
		`.booking-success`,
		`.success-message`,
		`.confirmation`,
		`[class*="success"]`,
		`[class*="confirm"]`,
	)
	errorChain = selector.NewChain("booking error",
		`.error`, `.error-message`, `[class*="error"]`)
)

// successKeywords confirm that a matched element actually announces a
// completed booking rather than an unrelated banner.
var successKeywords = []string{"success", "confirmed", "booked", "scheduled"}

// Outcome is the terminal report of one booking attempt. Err carries the
// coded operation error for aborted or unverified attempts and is nil
// for any verified outcome, success or rejection alike.
type Outcome struct {
	Success bool
	State   State
	Reason  string
	Err     error
}

// Machine drives one booking attempt over one session.
type Machine struct {
	d     *browser.Driver
	med   *captcha.Mediator
	site  config.SiteConfig
	state State
}

// NewMachine binds the machine to a driver and a challenge mediator.
func NewMachine(d *browser.Driver, med *captcha.Mediator, site config.SiteConfig) *Machine {
	return &Machine{d: d, med: med, site: site, state: StateIdle}
}

// State is where the most recent attempt stopped.
func (m *Machine) State() State {
	return m.state
}

// Book runs the full attempt and updates req.Status to reflect what can
// be proven: submitted after the click, confirmed or failed only after
// verification, and back to pending when the page gave no verdict.
func (m *Machine) Book(ctx context.Context, prop *models.PropertyRecord, req *models.BookingRequest) Outcome {
	m.state = StateIdle
	slog.Info("starting booking", "booking_id", req.ID,
		"property_id", req.PropertyID, "date", req.Date, "time", req.Time)

	if !m.navigateToForm(ctx, prop) {
		return m.abort(req, "booking page not reachable", models.ErrCodeNavigation)
	}
	m.state = StateNavigated

	if status := m.med.Resolve(ctx, m.d.Page()); status == captcha.StatusFailed {
		return m.abort(req, "captcha could not be solved", models.ErrCodeCaptchaUnsolved)
	}
	m.state = StateCaptchaChecked

	if !m.fillForm(ctx, req) {
		return m.abort(req, "booking form could not be filled", models.ErrCodeInteraction)
	}
	m.state = StateFormFilled

	if !m.d.Click(ctx, submitChain) {
		return m.abort(req, "no submit control found", models.ErrCodeSelectorNotFound)
	}
	m.state = StateSubmitted
	req.Status = models.BookingSubmitted
	slog.Info("booking form submitted", "booking_id", req.ID)

	m.d.Pace(ctx)
	return m.verify(req)
}

// navigateToForm tries the deterministic booking URL first, then falls
// back to discovering a booking link on the property page.
func (m *Machine) navigateToForm(ctx context.Context, prop *models.PropertyRecord) bool {
	if prop.PropertyID != "" {
		direct := m.site.BaseURL + m.site.BookingEndpoint + "/" + prop.PropertyID
		if err := m.d.Navigate(ctx, direct); err == nil && m.looksLikeBookingPage() {
			return true
		}
		slog.Debug("direct booking URL did not land on a form", "url", direct)
	}

	if prop.URL == "" {
		return false
	}
	if err := m.d.Navigate(ctx, prop.URL); err != nil {
		slog.Warn("property page navigation failed", "url", prop.URL, "error", err)
		return false
	}
	if !m.d.Click(ctx, bookingLinkChain) {
		slog.Warn("no booking link found on property page", "url", prop.URL)
		return false
	}
	m.d.Pace(ctx)
	return true
}

// looksLikeBookingPage checks that the current page carries at least one
// bookable form field, so a soft 404 is not mistaken for the form.
func (m *Machine) looksLikeBookingPage() bool {
	if _, err := selector.Resolve(m.d.Page(), nameFieldChain); err == nil {
		return true
	}
	if _, err := selector.Resolve(m.d.Page(), dateFieldChain); err == nil {
		return true
	}
	_, err := selector.Resolve(m.d.Page(), submitChain)
	return err == nil
}

// fillForm types the contact and slot fields. Name and email are
// required; everything else is filled when its field exists.
func (m *Machine) fillForm(ctx context.Context, req *models.BookingRequest) bool {
	if !m.d.Type(ctx, nameFieldChain, req.ContactName) {
		slog.Warn("contact name field not found")
		return false
	}
	if !m.d.Type(ctx, emailFieldChain, req.ContactEmail) {
		slog.Warn("contact email field not found")
		return false
	}
	if req.ContactPhone != "" && !m.d.Type(ctx, phoneFieldChain, req.ContactPhone) {
		slog.Debug("contact phone field not found, skipping")
	}
	if req.Message != "" && !m.d.Type(ctx, messageFieldChain, req.Message) {
		slog.Debug("message field not found, skipping")
	}
	if req.Date != "" && !m.d.Type(ctx, dateFieldChain, req.Date) {
		slog.Debug("date field not found, skipping")
	}
	if req.Time != "" && !m.selectTime(ctx, req.Time) {
		slog.Debug("time select not found, skipping")
	}
	if req.PropertyID != "" {
		m.fillPropertyField(ctx, req.PropertyID)
	}
	return true
}

// selectTime picks the slot option by exact value, then exact text, then
// substring in either direction.
func (m *Machine) selectTime(ctx context.Context, timeValue string) bool {
	sel, found := m.d.WaitPresent(ctx, timeSelectChain, 0)
	if !found {
		return false
	}
	options, err := sel.Elements("option")
	if err != nil || len(options) == 0 {
		return false
	}
	pick := func(match func(driver.Element) bool) bool {
		for _, opt := range options {
			if match(opt) {
				return opt.Click() == nil
			}
		}
		return false
	}
	if pick(func(o driver.Element) bool { return o.Attribute("value") == timeValue }) {
		return true
	}
	if pick(func(o driver.Element) bool { return strings.TrimSpace(o.Text()) == timeValue }) {
		return true
	}
	return pick(func(o driver.Element) bool {
		text := strings.TrimSpace(o.Text())
		return text != "" && (strings.Contains(text, timeValue) || strings.Contains(timeValue, text))
	})
}

// fillPropertyField sets a hidden or visible property reference when the
// form carries one. Optional: many variants bind the property by URL.
func (m *Machine) fillPropertyField(ctx context.Context, propertyID string) {
	el, found := m.d.WaitPresent(ctx, propertyFieldChain, 0)
	if !found {
		return
	}
	if err := el.Clear(); err == nil {
		_ = el.Input(propertyID)
	}
}

// verify reads the post-submit page for a confirmation or an error. When
// neither is provable the status drops back to pending: absence of
// confirmation is not confirmation.
func (m *Machine) verify(req *models.BookingRequest) Outcome {
	if text, ok := m.findConfirmation(); ok {
		m.state = StateVerifiedSuccess
		req.Status = models.BookingConfirmed
		slog.Info("booking confirmed", "booking_id", req.ID, "message", text)
		return Outcome{Success: true, State: m.state, Reason: text}
	}

	if el, err := selector.Resolve(m.d.Page(), errorChain); err == nil && el.Visible() {
		text := strings.TrimSpace(el.Text())
		m.state = StateVerifiedFailure
		req.Status = models.BookingFailed
		slog.Warn("booking rejected", "booking_id", req.ID, "message", text)
		return Outcome{Success: false, State: m.state, Reason: text}
	}

	if urlSignalsSuccess(m.d.Page().URL()) {
		m.state = StateVerifiedSuccess
		req.Status = models.BookingConfirmed
		slog.Info("booking confirmed by redirect", "booking_id", req.ID)
		return Outcome{Success: true, State: m.state, Reason: "confirmation redirect"}
	}

	m.state = StateVerifiedFailure
	req.Status = models.BookingPending
	slog.Warn("booking outcome unverified", "booking_id", req.ID)
	reason := "no confirmation or error found after submit"
	return Outcome{
		Success: false,
		State:   m.state,
		Reason:  reason,
		Err:     models.NewOpError(models.ErrCodeUnverified, reason, nil),
	}
}

// findConfirmation scans each confirmation selector for a visible
// element whose text carries a success keyword. The keyword check guards
// against generic class names matching unrelated banners.
func (m *Machine) findConfirmation() (string, bool) {
	for _, sel := range successChain.Selectors {
		els, err := m.d.Page().Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if !el.Visible() {
				continue
			}
			text := strings.TrimSpace(el.Text())
			lower := strings.ToLower(text)
			for _, kw := range successKeywords {
				if strings.Contains(lower, kw) {
					return text, true
				}
			}
		}
	}
	return "", false
}

func urlSignalsSuccess(url string) bool {
	lower := strings.ToLower(url)
	for _, kw := range []string{"success", "confirm", "booked"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (m *Machine) abort(req *models.BookingRequest, reason, code string) Outcome {
	m.state = StateAborted
	req.Status = models.BookingFailed
	slog.Error("booking aborted", "booking_id", req.ID, "reason", reason)
	return Outcome{
		Success: false,
		State:   m.state,
		Reason:  reason,
		Err:     models.NewOpError(code, reason, nil),
	}
}
