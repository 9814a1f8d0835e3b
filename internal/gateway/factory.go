package gateway

import (
	"fmt"

	"evidos/internal/config"
	"evidos/internal/port"
)

// ProviderFactory is a function that creates a CompletionGateway from a provider config.
type ProviderFactory func(cfg *config.AIProviderConfig) (port.CompletionGateway, error)

// registry of completion provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a completion provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGateway creates a CompletionGateway from a provider config using the registered factory.
func NewGateway(cfg *config.AIProviderConfig) (port.CompletionGateway, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
