package captcha

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/bookbay/antidetect"
	"github.com/use-agent/bookbay/config"
)

func testPacing() config.PacingConfig {
	return config.PacingConfig{MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func newTestSolver(t *testing.T, handler http.Handler) *Solver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewSolver(config.CaptchaConfig{APIKey: "test-key"}, antidetect.New(nil, testPacing()))
	s.providerURL = srv.URL
	s.pollInterval = 10 * time.Millisecond
	return s
}

func TestSolveRecaptchaV2(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("method") != "userrecaptcha" {
			t.Errorf("method = %q", r.FormValue("method"))
		}
		if r.FormValue("googlekey") != "site-key" || r.FormValue("key") != "test-key" {
			t.Errorf("unexpected form: %v", r.Form)
		}
		w.Write([]byte("OK|42"))
	})
	mux.HandleFunc("/res.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "42" || r.URL.Query().Get("action") != "get" {
			t.Errorf("unexpected query: %v", r.URL.Query())
		}
		if polls.Add(1) == 1 {
			w.Write([]byte("CAPCHA_NOT_READY"))
			return
		}
		w.Write([]byte("OK|solved-token"))
	})

	s := newTestSolver(t, mux)
	token, err := s.SolveRecaptchaV2(t.Context(), "site-key", "https://example.com/book/C-100")
	if err != nil {
		t.Fatalf("SolveRecaptchaV2: %v", err)
	}
	if token != "solved-token" {
		t.Errorf("token = %q", token)
	}
	if polls.Load() < 2 {
		t.Errorf("polled %d times, want a not-ready round first", polls.Load())
	}
}

func TestSolveRejectedTask(t *testing.T) {
	s := newTestSolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ERROR_WRONG_USER_KEY"))
	}))

	if _, err := s.SolveHCaptcha(t.Context(), "site-key", "https://example.com"); err == nil {
		t.Fatal("rejected task reported no error")
	}
}

func TestSolveProviderError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK|42"))
	})
	mux.HandleFunc("/res.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ERROR_CAPTCHA_UNSOLVABLE"))
	})

	s := newTestSolver(t, mux)
	if _, err := s.SolveImage(t.Context(), []byte{0x89, 0x50}); err == nil {
		t.Fatal("provider error reported no error")
	}
}

func TestSolveWithoutCredentialsFailsClosed(t *testing.T) {
	s := NewSolver(config.CaptchaConfig{}, antidetect.New(nil, testPacing()))
	_, err := s.SolveRecaptchaV2(t.Context(), "site-key", "https://example.com")
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}
