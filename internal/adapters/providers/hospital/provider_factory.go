package hospital

import (
	"log"

	"github.com/waitwell/edflow/backend/internal/domain/providers"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/hospitalapi"
	"github.com/waitwell/edflow/backend/pkg/config"
)

// NewProviderFromConfig selects the hospital provider matching the
// configured backend schema. An unconfigured base URL yields the mock
// provider so local development works without an upstream.
func NewProviderFromConfig(cfg config.HospitalConfig) providers.HospitalDataProvider {
	if cfg.BaseURL == "" {
		log.Println("No hospital base URL configured, using mock hospital provider")
		return NewMockProvider()
	}

	client := hospitalapi.NewClient(cfg.BaseURL)
	switch cfg.Schema {
	case config.HospitalSchemaSingle:
		return NewSingleEndpointProvider(client)
	default:
		return NewMultiEndpointProvider(client)
	}
}
