package credentials

import (
	"errors"
	"strings"
	"sync"
)

// Gate answers whether the hosting environment and the stored API credential
// permit video generation. The orchestrator reads it before submission and
// clears the credential when the remote API rejects the key, which forces the
// operator (or the UI) to supply a fresh one.
type Gate struct {
	mu        sync.Mutex
	supported bool
	apiKey    string
}

func NewGate(apiKey string, supported bool) *Gate {
	return &Gate{
		supported: supported,
		apiKey:    strings.TrimSpace(apiKey),
	}
}

// Supported reports whether video generation is enabled for this deployment.
func (g *Gate) Supported() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.supported
}

// HasCredential reports whether an API key is currently stored.
func (g *Gate) HasCredential() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiKey != ""
}

// Credential returns the stored API key, or the empty string when none is set.
func (g *Gate) Credential() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiKey
}

// SetCredential stores a new API key.
func (g *Gate) SetCredential(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.apiKey = key
	return nil
}

// ForgetCredential discards the stored API key. Called when the remote API
// reports the key as invalid.
func (g *Gate) ForgetCredential() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.apiKey = ""
}
