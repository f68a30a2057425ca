package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
)

var once sync.Once
var pooledClient *http.Client

// GetPooledClient returns a shared http.Client with connection pooling for
// the hosted embedding/LLM providers, so bursts of ingestion batches reuse
// connections instead of re-handshaking per call.
func GetPooledClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooledClient
}
