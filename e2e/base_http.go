package e2e

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests.
// Without a target address the whole suite is skipped, so the package
// stays inert in unit-test runs.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BaseURL == "" {
		s.T().Skip("API_BASE_URL not set, skipping end to end scenarios")
	}
}

// Client builds an HTTP client that logs every exchange, with full
// bodies when E2E_DEBUG_BODIES is enabled.
func (s *BaseHTTPSuite) Client(t *testing.T, name string) *http.Client {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &loggingTransport{
			t:          t,
			debugBody:  s.Config.DebugBodies,
			underlying: http.DefaultTransport,
		},
	}
}

// Request performs one call against the configured instance and returns
// the status code and body.
func (s *BaseHTTPSuite) Request(t *testing.T, client *http.Client, method, path, user, body string) (int, []byte) {
	req, err := http.NewRequest(method, s.Config.BaseURL+path, strings.NewReader(body))
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("User", user)
	}

	resp, err := client.Do(req)
	s.Require().NoError(err, "Failed to reach API at "+s.Config.BaseURL)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, payload
}

type loggingTransport struct {
	t          *testing.T
	debugBody  bool
	underlying http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var reqBody []byte
	if l.debugBody && req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	start := time.Now()
	resp, err := l.underlying.RoundTrip(req)

	logBuilder := strings.Builder{}
	if err != nil {
		fmt.Fprintf(&logBuilder, "HTTP %s %s failed in %v: %v", req.Method, req.URL.Path, time.Since(start), err)
		l.t.Log(logBuilder.String())
		return resp, err
	}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if l.debugBody {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr == nil {
			resp.Body = io.NopCloser(bytes.NewReader(respBody))
			fmt.Fprintln(&logBuilder, "\nREQUEST:")
			fmt.Fprintln(&logBuilder, string(reqBody))
			fmt.Fprintln(&logBuilder, "RESPONSE:")
			fmt.Fprintln(&logBuilder, string(respBody))
		}
	}
	l.t.Log(logBuilder.String())
	return resp, nil
}
