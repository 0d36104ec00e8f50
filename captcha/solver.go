package captcha

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/bookbay/antidetect"
	"github.com/use-agent/bookbay/config"
	"github.com/use-agent/bookbay/models"
)

const defaultProviderURL = "https://2captcha.com"

// ErrNoCredentials is returned when no provider API key is configured.
// Solving fails closed: this is a configuration error, never a silent
// success.
var ErrNoCredentials = models.NewOpError(models.ErrCodeCaptchaProvider,
	"captcha API key not configured", nil)

// Solver talks the provider's submit/poll protocol. Calls block until
// the provider answers or the context ends; solving latency is external
// (human-in-the-loop or ML) so the caller's context carries the budget.
type Solver struct {
	apiKey       string
	providerURL  string
	http         *antidetect.Client
	pollInterval time.Duration
}

// NewSolver builds a provider client. The key may be empty; every solve
// call will then fail closed.
func NewSolver(cfg config.CaptchaConfig, httpClient *antidetect.Client) *Solver {
	return &Solver{
		apiKey:       cfg.APIKey,
		providerURL:  defaultProviderURL,
		http:         httpClient,
		pollInterval: 5 * time.Second,
	}
}

// SolveRecaptchaV2 solves a reCAPTCHA v2 challenge for the given site
// key and page URL, returning the response token.
func (s *Solver) SolveRecaptchaV2(ctx context.Context, siteKey, pageURL string) (string, error) {
	return s.solve(ctx, url.Values{
		"method":    {"userrecaptcha"},
		"googlekey": {siteKey},
		"pageurl":   {pageURL},
	})
}

// SolveHCaptcha solves an hCaptcha challenge for the given site key and
// page URL, returning the response token.
func (s *Solver) SolveHCaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	return s.solve(ctx, url.Values{
		"method":  {"hcaptcha"},
		"sitekey": {siteKey},
		"pageurl": {pageURL},
	})
}

// SolveImage solves a plain image captcha from raw image bytes.
func (s *Solver) SolveImage(ctx context.Context, image []byte) (string, error) {
	return s.solve(ctx, url.Values{
		"method": {"base64"},
		"body":   {base64.StdEncoding.EncodeToString(image)},
	})
}

// solve submits the task and polls until the provider has an answer.
func (s *Solver) solve(ctx context.Context, form url.Values) (string, error) {
	if s.apiKey == "" {
		return "", ErrNoCredentials
	}
	form.Set("key", s.apiKey)

	body, err := s.http.PostForm(ctx, s.providerURL+"/in.php", form)
	if err != nil {
		return "", models.NewOpError(models.ErrCodeCaptchaProvider, "task submission failed", err)
	}
	taskID, ok := strings.CutPrefix(strings.TrimSpace(string(body)), "OK|")
	if !ok {
		return "", models.NewOpError(models.ErrCodeCaptchaProvider,
			fmt.Sprintf("provider rejected task: %s", strings.TrimSpace(string(body))), nil)
	}

	resURL := fmt.Sprintf("%s/res.php?key=%s&action=get&id=%s",
		s.providerURL, url.QueryEscape(s.apiKey), url.QueryEscape(taskID))

	for {
		select {
		case <-time.After(s.pollInterval):
		case <-ctx.Done():
			return "", models.NewOpError(models.ErrCodeCaptchaProvider, "solve cancelled", ctx.Err())
		}

		body, err := s.http.Get(ctx, resURL)
		if err != nil {
			return "", models.NewOpError(models.ErrCodeCaptchaProvider, "result poll failed", err)
		}
		answer := strings.TrimSpace(string(body))
		if answer == "CAPCHA_NOT_READY" {
			continue
		}
		if token, ok := strings.CutPrefix(answer, "OK|"); ok {
			return token, nil
		}
		return "", models.NewOpError(models.ErrCodeCaptchaProvider,
			fmt.Sprintf("provider error: %s", answer), nil)
	}
}
