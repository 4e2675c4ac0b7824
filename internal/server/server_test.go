package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/amx/internal/shared"
	"golang.org/x/oauth2"
)

type fakeExchanger struct {
	code string
	err  error
}

func (f *fakeExchanger) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "access-" + code, TokenType: "Bearer"}, nil
}

func freeRedirect(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return "http://" + addr + "/callback"
}

func TestRouter(t *testing.T) {
	t.Run("applies middleware in registration order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("expected first,second,handler, got %s", got)
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges code", func(t *testing.T) {
		ex := &fakeExchanger{}
		h := NewOAuthHandler(ex, "state-1", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "access-abc" {
			t.Errorf("unexpected token %q", result.Token.AccessToken)
		}
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("rejects mismatched state", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "expected", "/cb")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cb?state=other&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected state error")
		}
	})

	t.Run("reports denied consent", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("wraps exchange failure", func(t *testing.T) {
		boom := errors.New("boom")
		h := NewOAuthHandler(&fakeExchanger{err: boom}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=x", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if result := <-h.Result(); !errors.Is(result.Error(), boom) {
			t.Errorf("expected wrapped boom, got %v", result.Error())
		}
	})

	t.Run("processes a single callback", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "s", "")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=x", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=y", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})
}

func TestFlow(t *testing.T) {
	t.Run("completes when the browser hits the callback", func(t *testing.T) {
		redirect := freeRedirect(t)
		ex := &fakeExchanger{}
		var out bytes.Buffer

		flow := NewFlow(FlowOpts{
			RedirectURI: redirect,
			AuthURL:     func(state string) string { return redirect + "?state=" + state + "&code=granted" },
			Exchanger:   ex,
			Output:      &out,
			Timeout:     5 * time.Second,
			OpenBrowser: func(u string) error {
				go func() {
					resp, err := http.Get(u)
					if err == nil {
						resp.Body.Close()
					}
				}()
				return nil
			},
		})

		token, err := flow.Authorize(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "access-granted" {
			t.Errorf("unexpected token %q", token.AccessToken)
		}
		if !strings.Contains(out.String(), "Waiting for authorization") {
			t.Errorf("expected waiting message, got %q", out.String())
		}
	})

	t.Run("prints the URL when the browser cannot open", func(t *testing.T) {
		redirect := freeRedirect(t)
		var out bytes.Buffer

		flow := NewFlow(FlowOpts{
			RedirectURI: redirect,
			AuthURL:     func(state string) string { return "https://accounts.example/authorize?state=" + state },
			Exchanger:   &fakeExchanger{},
			Output:      &out,
			Timeout:     50 * time.Millisecond,
			OpenBrowser: func(string) error { return fmt.Errorf("no display") },
		})

		_, err := flow.Authorize(context.Background())
		if !errors.Is(err, shared.ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if !strings.Contains(out.String(), "https://accounts.example/authorize?state=") {
			t.Errorf("expected auth URL in output, got %q", out.String())
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		flow := NewFlow(FlowOpts{
			RedirectURI: freeRedirect(t),
			AuthURL:     func(string) string { return "" },
			Exchanger:   &fakeExchanger{},
			OpenBrowser: func(string) error { cancel(); return nil },
		})

		if _, err := flow.Authorize(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("rejects a redirect without host", func(t *testing.T) {
		flow := NewFlow(FlowOpts{RedirectURI: "/callback", AuthURL: func(string) string { return "" }})

		if _, err := flow.Authorize(context.Background()); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
