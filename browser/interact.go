package browser

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/selector"
)

const (
	// clickAttempts bounds the local retry budget; nothing above this
	// layer retries.
	clickAttempts = 3

	// pollInterval is how often a wait re-resolves its chain.
	pollInterval = 200 * time.Millisecond
)

// Driver performs click/type/read against chain-resolved elements with
// bounded waits, local retry, and human-like pacing. It never returns an
// error to callers: a false result means the target could not be
// interacted with on this page variant.
type Driver struct {
	page    driver.Page
	pacer   *Pacer
	timeout time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDriver binds the driver to a page. The timeout bounds each
// visibility/clickability wait.
func NewDriver(p driver.Page, pacer *Pacer, timeout time.Duration) *Driver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Driver{
		page:    p,
		pacer:   pacer,
		timeout: timeout,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Page exposes the underlying transport for callers that read rather
// than interact (markup extraction, URL checks).
func (d *Driver) Page() driver.Page {
	return d.page
}

// Navigate paces, then loads the URL.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := d.pacer.Wait(ctx); err != nil {
		return err
	}
	return d.page.Navigate(url)
}

// Pace imposes one inter-request delay without any other action, used
// between navigation settling and result parsing.
func (d *Driver) Pace(ctx context.Context) {
	_ = d.pacer.Wait(ctx)
}

// WaitVisible polls until an element resolved by the chain is displayed,
// up to the timeout.
func (d *Driver) WaitVisible(ctx context.Context, c selector.Chain, timeout time.Duration) (driver.Element, bool) {
	return d.waitFor(ctx, c, timeout, func(el driver.Element) bool { return el.Visible() })
}

// WaitClickable polls until an element resolved by the chain is
// displayed, up to the timeout. Script-level clicking does not require
// the element to be unobscured, so visibility is the whole predicate.
func (d *Driver) WaitClickable(ctx context.Context, c selector.Chain, timeout time.Duration) (driver.Element, bool) {
	return d.waitFor(ctx, c, timeout, func(el driver.Element) bool { return el.Visible() })
}

// WaitPresent polls until the chain resolves at all, up to the timeout.
func (d *Driver) WaitPresent(ctx context.Context, c selector.Chain, timeout time.Duration) (driver.Element, bool) {
	return d.waitFor(ctx, c, timeout, func(driver.Element) bool { return true })
}

func (d *Driver) waitFor(ctx context.Context, c selector.Chain, timeout time.Duration, ok func(driver.Element) bool) (driver.Element, bool) {
	if timeout <= 0 {
		timeout = d.timeout
	}
	deadline := time.Now().Add(timeout)
	for {
		if el, err := selector.Resolve(d.page, c); err == nil && ok(el) {
			return el, true
		}
		if time.Now().After(deadline) {
			return nil, false
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Click waits for the chain's target to become clickable and clicks it
// through script. Up to three attempts with a short randomized backoff;
// a short pause follows a successful click so the interaction does not
// look machine-timed.
func (d *Driver) Click(ctx context.Context, c selector.Chain) bool {
	for attempt := 1; attempt <= clickAttempts; attempt++ {
		el, found := d.WaitClickable(ctx, c, d.timeout)
		if found {
			if err := el.Click(); err == nil {
				d.sleepRange(ctx, 500*time.Millisecond, 1500*time.Millisecond)
				return true
			} else {
				slog.Debug("click attempt failed", "target", c.Name, "attempt", attempt, "error", err)
			}
		}
		if attempt < clickAttempts {
			d.sleepRange(ctx, time.Second, 2*time.Second)
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

// Type waits for the chain's target, clears it, then emits the text one
// character at a time with randomized inter-key delays.
func (d *Driver) Type(ctx context.Context, c selector.Chain, text string) bool {
	el, found := d.WaitPresent(ctx, c, d.timeout)
	if !found {
		return false
	}
	if err := el.Clear(); err != nil {
		slog.Debug("clear before type failed", "target", c.Name, "error", err)
	}
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			slog.Debug("keystroke failed", "target", c.Name, "error", err)
			return false
		}
		d.sleepRange(ctx, 50*time.Millisecond, 150*time.Millisecond)
		if ctx.Err() != nil {
			return false
		}
	}
	return true
}

func (d *Driver) sleepRange(ctx context.Context, min, max time.Duration) {
	d.mu.Lock()
	delay := min + time.Duration(d.rng.Int63n(int64(max-min)))
	d.mu.Unlock()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
