package genai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestStripJSONFence(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", `[1,2]`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripJSONFence(tc.in); got != tc.want {
			t.Errorf("stripJSONFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenerateJSONUnwrapsFencedCandidate(t *testing.T) {
	var gotURL string
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(http.StatusOK, `{
			"candidates":[{"content":{"parts":[{"text":"`+"```json\\n{\\\"name\\\":\\\"x\\\"}\\n```"+`"}]}}]
		}`), nil
	})

	var out struct {
		Name string `json:"name"`
	}
	if err := client.GenerateJSON(context.Background(), "prompt", &out); err != nil {
		t.Fatalf("GenerateJSON returned error: %v", err)
	}
	if out.Name != "x" {
		t.Fatalf("decoded name = %q, want x", out.Name)
	}
	if !strings.Contains(gotURL, "key=test-key") {
		t.Fatalf("api key missing from request url: %s", gotURL)
	}
	if !strings.Contains(gotURL, ":generateContent") {
		t.Fatalf("unexpected endpoint: %s", gotURL)
	}
}

func TestErrorPayloadDecoding(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests,
			`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded"}}`), nil
	})

	err := client.GenerateJSON(context.Background(), "prompt", &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.HTTPStatus != 429 || apiErr.Status != "RESOURCE_EXHAUSTED" {
		t.Fatalf("decoded error = %+v", apiErr)
	}
	if !IsQuota(err) {
		t.Fatal("quota error not classified")
	}
	if IsInvalidCredential(err) {
		t.Fatal("quota error misclassified as credential failure")
	}
}

func TestInvalidCredentialClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"forbidden", &APIError{HTTPStatus: 403}, true},
		{"permission denied", &APIError{HTTPStatus: 400, Status: "PERMISSION_DENIED"}, true},
		{"bad key message", &APIError{HTTPStatus: 400, Message: "API key not valid. Please pass a valid API key."}, true},
		{"plain bad request", &APIError{HTTPStatus: 400, Message: "invalid argument"}, false},
		{"not an api error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsInvalidCredential(tc.err); got != tc.want {
			t.Errorf("%s: IsInvalidCredential = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDownloadAppendsCredential(t *testing.T) {
	var gotURL string
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"video/mp4"}},
			Body:       io.NopCloser(strings.NewReader("clip-bytes")),
		}, nil
	})

	blob, mime, err := client.Download(context.Background(), "https://example.com/files/clip.mp4")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if string(blob) != "clip-bytes" || mime != "video/mp4" {
		t.Fatalf("blob=%q mime=%q", blob, mime)
	}
	if !strings.Contains(gotURL, "key=test-key") {
		t.Fatalf("api key missing from download url: %s", gotURL)
	}
}

func TestOperationVideoURI(t *testing.T) {
	var op Operation
	if op.VideoURI() != "" {
		t.Fatal("empty operation must carry no artifact")
	}
	if op.Err() != nil {
		t.Fatal("empty operation must carry no error")
	}
}
