package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/campusguard-backend-go/internal/clock"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(2, time.Minute, fc)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two requests rejected")
	}
	if rl.Allow("a") {
		t.Fatalf("third request within window allowed")
	}
	if !rl.Allow("b") {
		t.Fatalf("other key limited by a's usage")
	}

	fc.Advance(61 * time.Second)
	if !rl.Allow("a") {
		t.Fatalf("request after window rejected")
	}
}

func TestRateLimiterSweepsIdleKeys(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(5, time.Minute, fc)
	rl.Allow("a")
	rl.Allow("b")

	fc.Advance(2 * time.Minute)
	rl.Allow("c")
	if got := rl.Tracked(); got != 1 {
		t.Fatalf("Tracked() = %d, want 1", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(1, time.Minute, nil)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 429]", codes)
	}
}

func authRouter(secret string) *gin.Engine {
	r := gin.New()
	r.Use(Auth(secret, logging.Discard()))
	r.POST("/op", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSubject))
	})
	return r
}

func doAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/op", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := authRouter("s3cret")

	if w := doAuth(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: code = %d, want 401", w.Code)
	}
	if w := doAuth(r, "Bearer not.a.jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: code = %d, want 401", w.Code)
	}

	wrong, _ := IssueToken("other", "ops", time.Hour)
	if w := doAuth(r, "Bearer "+wrong); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: code = %d, want 401", w.Code)
	}

	expired, _ := IssueToken("s3cret", "ops", -time.Minute)
	w := doAuth(r, "Bearer "+expired)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "expired") {
		t.Fatalf("expired token: code = %d body = %s", w.Code, w.Body.String())
	}

	good, err := IssueToken("s3cret", "ops", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	w = doAuth(r, "Bearer "+good)
	if w.Code != http.StatusOK || w.Body.String() != "ops" {
		t.Fatalf("valid token: code = %d body = %q", w.Code, w.Body.String())
	}
}

func TestAuthWithoutSecretRefusesEveryone(t *testing.T) {
	r := authRouter("")
	if w := doAuth(r, ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("no token: code = %d, want 503", w.Code)
	}
	// a token signed with the empty key must not get through either
	forged, _ := IssueToken("", "ops", time.Hour)
	if w := doAuth(r, "Bearer "+forged); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("empty-key token: code = %d, want 503", w.Code)
	}
}

func TestNoAuthLetsRequestsThrough(t *testing.T) {
	r := gin.New()
	r.Use(NoAuth(logging.Discard()))
	r.POST("/op", func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := doAuth(r, ""); w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
}

func TestLoggerWritesRequest(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(logging.NewWriter(&buf, logging.Config{Format: "json"})))
	r.GET("/zones", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/zones?x=1", nil))

	out := buf.String()
	for _, want := range []string{`"msg":"http_request"`, `"path":"/zones?x=1"`, `"status":404`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %s", out, want)
		}
	}
}
