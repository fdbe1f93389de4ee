package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/clearpathhq/supportbot/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// GetPooledClient returns the shared HTTP client for the LLM edges.
// Groq and Gemini reuse the same connection pool, request timeouts stay
// with the callers' contexts.
func GetPooledClient() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return client
}
