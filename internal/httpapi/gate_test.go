package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const testSessionID = "66666666-6666-6666-6666-666666666666"

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	server := NewServer(nil, Services{}, zerolog.Nop(), Options{SessionCookie: "polyglot_session"})
	server.authStore = newFakeAuthStore()
	e, err := server.router()
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return e
}

func serve(e *echo.Echo, method, target string, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "polyglot_session", Value: cookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPageGate_RedirectsAnonymousTranslatorToLogin(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodGet, "/translator?text=hola%20mundo", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusFound)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if location.Path != "/login" {
		t.Fatalf("unexpected redirect path: %q", location.Path)
	}
	if got := location.Query().Get("redirect"); got != "/translator?text=hola%20mundo" {
		t.Fatalf("unexpected redirect param: %q", got)
	}
}

func TestPageGate_AllowsTranslatorWithSessionCookie(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodGet, "/translator", testSessionID)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Multilingual Translator") {
		t.Fatalf("expected translator page body")
	}
	for _, control := range []string{`id="copy-target"`, `id="reset"`, `id="swap"`} {
		if !strings.Contains(rec.Body.String(), control) {
			t.Fatalf("expected translator page to contain %s", control)
		}
	}
}

func TestTranslatorScriptWiresCopyAndReset(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodGet, "/assets/app.js", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{`getElementById("copy-target")`, "navigator.clipboard.writeText", `getElementById("reset")`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected app.js to contain %s", want)
		}
	}
}

func TestPageGate_LoginWithSessionRedirectsToTranslator(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodGet, "/login", testSessionID)
	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusFound)
	}
	if got := rec.Header().Get("Location"); got != "/translator" {
		t.Fatalf("unexpected location: %q", got)
	}
}

func TestPageGate_MalformedCookieCountsAsAnonymous(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodGet, "/translator", "garbage")
	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusFound)
	}
}

func TestPageGate_PublicPathsPassThrough(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	for _, target := range []string{"/", "/login", "/assets/app.js", "/api/v1/health", "/api/v1/languages"} {
		rec := serve(e, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: unexpected status %d", target, rec.Code)
		}
	}
}

func TestPageGate_APIRoutesAnswerWithJSONNotRedirects(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodGet, "/api/v1/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, echo.MIMEApplicationJSON) {
		t.Fatalf("unexpected content type: %q", got)
	}
}

func TestPageGate_SignupRouteOnlyWhenAllowed(t *testing.T) {
	t.Parallel()

	rec := serve(newTestRouter(t), http.MethodPost, "/api/v1/auth/signup", "")
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected signup to be unrouted, got %d", rec.Code)
	}
}

func TestIsPublicPath(t *testing.T) {
	t.Parallel()

	public := []string{"/", "/login", "/assets/app.css", "/api/v1/translate", "/api"}
	for _, path := range public {
		if !isPublicPath(path) {
			t.Fatalf("expected %q to be public", path)
		}
	}
	private := []string{"/translator", "/loginx", "/assetsx", "/apix", "/settings"}
	for _, path := range private {
		if isPublicPath(path) {
			t.Fatalf("expected %q to be gated", path)
		}
	}
}
