package browser

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/bookbay/config"
	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/selector"
)

// identityPool is rotated onto fresh sessions that do not reuse an
// existing browser profile.
var identityPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// loginIndicators locates an authenticated-session marker on the home
// page. Informational only: search proceeds either way.
var loginIndicators = selector.NewChain("login indicator",
	`a[href*="logout"]`,
	`a[href*="signout"]`,
	`a[href*="sign-out"]`,
	`[class*="user-menu"]`,
	`[class*="account"]`,
)

// Session owns one browsing context: the browser process, its single
// page, the rotated identity and egress address, and the pacing state.
// A session must not be shared by concurrent operations; Reset fully
// replaces the context instead of mutating it.
type Session struct {
	cfg      config.BrowserConfig
	pacer    *Pacer
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	identity string
	proxyIdx int
	rng      *rand.Rand
}

// NewSession launches a browser with the anti-detection profile applied
// and a fresh identity rotated in.
func NewSession(cfg config.BrowserConfig, pacing config.PacingConfig) (*Session, error) {
	s := &Session{
		cfg:   cfg,
		pacer: NewPacer(pacing),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.launch(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) launch() error {
	l := launcher.New().
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox)

	if s.cfg.BrowserBin != "" {
		l = l.Bin(s.cfg.BrowserBin)
	}
	if len(s.cfg.ProxyPool) > 0 {
		proxy := s.cfg.ProxyPool[s.proxyIdx%len(s.cfg.ProxyPool)]
		s.proxyIdx++
		l = l.Proxy(proxy)
		slog.Info("egress rotated", "proxy", proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	// Randomized window size: a fixed headless default is an easy
	// fingerprint.
	width := 1200 + s.rng.Intn(721)
	height := 800 + s.rng.Intn(281)
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", width, height))

	if s.cfg.ProfilePath != "" {
		l.Set(flags.UserDataDir, s.cfg.ProfilePath)
		slog.Info("reusing existing browser profile", "path", s.cfg.ProfilePath)
	} else {
		s.identity = identityPool[s.rng.Intn(len(identityPool))]
		l.Set(flags.Flag("user-agent"), s.identity)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return models.NewOpError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return models.NewOpError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.Close()
		return models.NewOpError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	err = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept-Language":           gson.New("en-US,en;q=0.5"),
			"DNT":                       gson.New("1"),
			"Upgrade-Insecure-Requests": gson.New("1"),
			"Referer":                   gson.New("https://www.google.com/"),
		},
	}.Call(page)
	if err != nil {
		slog.Warn("extra header setup failed, proceeding with defaults", "error", err)
	}

	s.launcher = l
	s.browser = b
	s.page = page
	slog.Info("browser session started", "identity", s.identity, "window", fmt.Sprintf("%dx%d", width, height))
	return nil
}

// Page exposes the session's tab through the narrow transport interface.
func (s *Session) Page() driver.Page {
	return newRodPage(s.page, s.cfg.RequestTimeout)
}

// Driver builds the interaction driver bound to this session's page and
// pacing state.
func (s *Session) Driver() *Driver {
	return NewDriver(s.Page(), s.pacer, s.cfg.ElementTimeout)
}

// Identity is the outbound identity string rotated in at launch; empty
// when an existing profile is being reused.
func (s *Session) Identity() string {
	return s.identity
}

// Reset discards the whole browsing context and starts a new one with
// the next identity and egress address. It is the only supported
// recovery from suspected detection: accumulated cookies and
// fingerprinting state do not survive.
func (s *Session) Reset() error {
	slog.Info("resetting browser session")
	s.teardown()
	return s.launch()
}

// CheckLoggedIn probes the current page for an authenticated-session
// marker.
func (s *Session) CheckLoggedIn() bool {
	el, err := selector.Resolve(s.Page(), loginIndicators)
	if err != nil {
		return false
	}
	return el.Visible()
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.teardown()
}

func (s *Session) teardown() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Warn("browser close failed", "error", err)
		}
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	s.page = nil
}
