package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Site.BaseURL == "" {
		t.Error("BaseURL default missing")
	}
	if cfg.Site.BookingEndpoint != "/book" {
		t.Errorf("BookingEndpoint = %q", cfg.Site.BookingEndpoint)
	}
	if cfg.Pacing.MinDelay <= 0 || cfg.Pacing.MaxDelay < cfg.Pacing.MinDelay {
		t.Errorf("pacing defaults inverted: %v..%v", cfg.Pacing.MinDelay, cfg.Pacing.MaxDelay)
	}
	if cfg.Captcha.SolveTimeout != 180*time.Second {
		t.Errorf("SolveTimeout = %v", cfg.Captcha.SolveTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKBAY_BASE_URL", "https://staging.example.com")
	t.Setenv("BOOKBAY_HEADLESS", "false")
	t.Setenv("BOOKBAY_ELEMENT_TIMEOUT", "3s")
	t.Setenv("BOOKBAY_PROXY_LIST", "http://p1:8080, http://p2:8080 ,")

	cfg := Load()
	if cfg.Site.BaseURL != "https://staging.example.com" {
		t.Errorf("BaseURL = %q", cfg.Site.BaseURL)
	}
	if cfg.Browser.Headless {
		t.Error("Headless override ignored")
	}
	if cfg.Browser.ElementTimeout != 3*time.Second {
		t.Errorf("ElementTimeout = %v", cfg.Browser.ElementTimeout)
	}
	if len(cfg.Browser.ProxyPool) != 2 || cfg.Browser.ProxyPool[1] != "http://p2:8080" {
		t.Errorf("ProxyPool = %v", cfg.Browser.ProxyPool)
	}
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("BOOKBAY_HEADLESS", "not-a-bool")
	t.Setenv("BOOKBAY_MIN_DELAY", "not-a-duration")

	cfg := Load()
	if !cfg.Browser.Headless {
		t.Error("unparsable bool did not fall back to default")
	}
	if cfg.Pacing.MinDelay != 2*time.Second {
		t.Errorf("unparsable duration did not fall back: %v", cfg.Pacing.MinDelay)
	}
}
