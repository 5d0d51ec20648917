package pipeline

import (
	"time"

	"github.com/macrolabs/laborcast/internal/api/bea"
	"github.com/macrolabs/laborcast/internal/api/bls"
	"github.com/macrolabs/laborcast/internal/api/fred"
	"github.com/macrolabs/laborcast/internal/registry"
)

// APIClientOptions holds credentials and transport knobs for the standard
// provider set.
type APIClientOptions struct {
	FredAPIKey     string
	BLSAPIKey      string
	BEAAPIKey      string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewAPIClients builds clients for every known provider, each wrapped in a
// memoizing cache so repeated computations reuse fetched series.
func NewAPIClients(opts APIClientOptions) Clients {
	return Clients{
		registry.ProviderFRED: NewCachedClient(fred.NewClient(fred.ClientOptions{
			APIKey:         opts.FredAPIKey,
			RequestTimeout: opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		})),
		registry.ProviderBLS: NewCachedClient(bls.NewClient(bls.ClientOptions{
			APIKey:         opts.BLSAPIKey,
			RequestTimeout: opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		})),
		registry.ProviderBEA: NewCachedClient(bea.NewClient(bea.ClientOptions{
			APIKey:         opts.BEAAPIKey,
			RequestTimeout: opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
		})),
	}
}
