package act

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/ukwa-discovery/title-export/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.ActBaseURL = "http://act.test/act"
	cfg.ActEmail = "curator@example.org"
	cfg.ActPassword = "secret"
	cfg.Timeout = 5 * time.Second

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func registerLogin(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, "http://act.test/act/login",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				t.Errorf("parse login form: %v", err)
			}
			if got := req.PostFormValue("email"); got != "curator@example.org" {
				t.Errorf("login email = %q", got)
			}
			resp := httpmock.NewStringResponse(http.StatusSeeOther, "")
			resp.Header.Set("Set-Cookie", "PLAY_SESSION=abc123; Path=/")
			resp.Header.Set("Location", "/act")
			return resp, nil
		},
	)
}

func TestLoginCapturesSessionCookie(t *testing.T) {
	client := newTestClient(t)
	registerLogin(t)

	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if client.cookie != "PLAY_SESSION=abc123; Path=/" {
		t.Fatalf("cookie = %q", client.cookie)
	}
}

func TestLoginWithoutCookieFails(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodPost, "http://act.test/act/login",
		httpmock.NewStringResponder(http.StatusOK, "login page"))

	err := client.Login(context.Background())
	var loginErr ErrLoginFailed
	if !errors.As(err, &loginErr) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

func TestTargetsSendsSessionCookie(t *testing.T) {
	client := newTestClient(t)
	registerLogin(t)

	httpmock.RegisterResponder(http.MethodGet, "http://act.test/act/ld/all",
		func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Cookie"); got != "PLAY_SESSION=abc123; Path=/" {
				t.Errorf("cookie header = %q", got)
			}
			return httpmock.NewStringResponse(http.StatusOK,
				`[{"id": 1, "title": "Example Site", "urls": ["http://example.co.uk/"], "crawl_frequency": "DAILY"}]`), nil
		},
	)

	ctx := context.Background()
	if err := client.Login(ctx); err != nil {
		t.Fatalf("login: %v", err)
	}
	targets, err := client.Targets(ctx)
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	if len(targets) != 1 || targets[0].Title != "Example Site" {
		t.Fatalf("targets = %+v", targets)
	}
}

func TestWatchedTargetsFilters(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, "http://act.test/act/ld/all",
		httpmock.NewStringResponder(http.StatusOK,
			`[{"id": 1, "title": "A", "watched": true}, {"id": 2, "title": "B", "watched": false}]`))

	watched, err := client.WatchedTargets(context.Background())
	if err != nil {
		t.Fatalf("watched targets: %v", err)
	}
	if len(watched) != 1 || watched[0].Title != "A" {
		t.Fatalf("watched = %+v", watched)
	}
}

func TestMalformedExportIsDistinctError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, "http://act.test/act/api/subjects",
		httpmock.NewStringResponder(http.StatusOK, `{"not": "an array"`))

	_, err := client.Subjects(context.Background())
	var malformed ErrMalformedExport
	if !errors.As(err, &malformed) {
		t.Fatalf("expected ErrMalformedExport, got %v", err)
	}
}

func TestServerErrorIsReported(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, "http://act.test/act/api/collections",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	_, err := client.Collections(context.Background())
	var status ErrStatus
	if !errors.As(err, &status) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	if status.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", status.Code)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ActEmail = ""
	if _, err := NewClient(cfg); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}
