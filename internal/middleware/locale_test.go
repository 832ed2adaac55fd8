package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func resolveLocale(t *testing.T, fallback string, headers map[string]string) string {
	t.Helper()
	var got string
	handler := Locale(fallback)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestLocaleHeaderWins(t *testing.T) {
	got := resolveLocale(t, "en", map[string]string{
		"X-Locale":        "id",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if got != "id" {
		t.Fatalf("locale = %q, want id", got)
	}
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	got := resolveLocale(t, "en", map[string]string{
		"Accept-Language": "id-ID,id;q=0.9,en;q=0.5",
	})
	if got != "id" {
		t.Fatalf("locale = %q, want id", got)
	}
}

func TestLocaleFallsBackToDefault(t *testing.T) {
	if got := resolveLocale(t, "id", nil); got != "id" {
		t.Fatalf("locale = %q, want id", got)
	}
	if got := resolveLocale(t, "", nil); got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}
}

func TestLocaleUnsupportedValueNormalizesToEnglish(t *testing.T) {
	got := resolveLocale(t, "en", map[string]string{"X-Locale": "fr-FR"})
	if got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}
	if got := resolveLocale(t, "en", map[string]string{"X-Locale": "not-a-tag"}); got != "en" {
		t.Fatalf("garbage locale = %q, want en", got)
	}
}
