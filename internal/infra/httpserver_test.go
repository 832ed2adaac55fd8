package infra

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewHTTPServerWiresConfig(t *testing.T) {
	cfg := &Config{
		Port:             "9999",
		HTTPReadTimeout:  11 * time.Second,
		HTTPWriteTimeout: 22 * time.Second,
		HTTPIdleTimeout:  33 * time.Second,
	}
	srv := NewHTTPServer(cfg, http.NotFoundHandler(), zerolog.New(io.Discard))

	if srv.Addr() != ":9999" {
		t.Fatalf("addr = %q, want :9999", srv.Addr())
	}
	if srv.server.ReadTimeout != cfg.HTTPReadTimeout {
		t.Fatalf("read timeout = %v", srv.server.ReadTimeout)
	}
	if srv.server.WriteTimeout != cfg.HTTPWriteTimeout {
		t.Fatalf("write timeout = %v", srv.server.WriteTimeout)
	}
	if srv.server.IdleTimeout != cfg.HTTPIdleTimeout {
		t.Fatalf("idle timeout = %v", srv.server.IdleTimeout)
	}
}
