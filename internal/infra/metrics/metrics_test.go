//go:build !integration

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesNamespacedMetrics(t *testing.T) {
	MustRegister()
	MustRegister() // second call is a no-op

	SetBuildInfo("1.2.3", "abc")
	IncAdminCommand(" /Scan ", "authorized")
	IncSearch("private")
	IncDuplicateRemoval(errors.New("forbidden"))
	AddDownloadsCleaned(2)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`drivebot_build_info{commit="abc",version="1.2.3"} 1`,
		`drivebot_admin_commands_total{command="/scan",status="authorized"} 1`,
		`drivebot_searches_total{source="private"} 1`,
		`drivebot_downloads_cleaned_total 2`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestResult(t *testing.T) {
	if result(nil) != "ok" || result(errors.New("x")) != "error" {
		t.Fatalf("result labels: %q %q", result(nil), result(errors.New("x")))
	}
}
