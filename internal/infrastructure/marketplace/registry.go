package marketplace

import (
	"fmt"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StaticRegistry holds the configured channel adapters with a fixed
// reconciliation priority order
type StaticRegistry struct {
	adapters map[marketplace.ChannelCode]marketplace.Channel
	order    []marketplace.ChannelCode
	priority []marketplace.ChannelCode
}

// NewStaticRegistry creates a registry from the given adapters.
// The priority list decides sale attribution when multiple channels
// report a sale in the same reconciliation pass.
func NewStaticRegistry(adapters []marketplace.Channel, priority []marketplace.ChannelCode) *StaticRegistry {
	r := &StaticRegistry{
		adapters: make(map[marketplace.ChannelCode]marketplace.Channel, len(adapters)),
		order:    make([]marketplace.ChannelCode, 0, len(adapters)),
		priority: priority,
	}

	for _, a := range adapters {
		code := a.Code()
		if _, exists := r.adapters[code]; exists {
			continue
		}
		r.adapters[code] = a
		r.order = append(r.order, code)
	}

	return r
}

// Get returns the adapter for the specified channel code
func (r *StaticRegistry) Get(code marketplace.ChannelCode) (marketplace.Channel, error) {
	adapter, ok := r.adapters[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", marketplace.ErrChannelNotRegistered, code)
	}
	return adapter, nil
}

// List returns all registered adapters in registration order
func (r *StaticRegistry) List() []marketplace.Channel {
	result := make([]marketplace.Channel, 0, len(r.order))
	for _, code := range r.order {
		result = append(result, r.adapters[code])
	}
	return result
}

// Priority returns the configured reconciliation priority order
func (r *StaticRegistry) Priority() []marketplace.ChannelCode {
	return r.priority
}

// InPriorityOrder returns the given codes sorted by the configured
// priority; codes missing from the priority list keep their relative
// order after the prioritized ones
func (r *StaticRegistry) InPriorityOrder(codes []marketplace.ChannelCode) []marketplace.ChannelCode {
	present := make(map[marketplace.ChannelCode]bool, len(codes))
	for _, c := range codes {
		present[c] = true
	}

	result := make([]marketplace.ChannelCode, 0, len(codes))
	seen := make(map[marketplace.ChannelCode]bool, len(codes))

	for _, c := range r.priority {
		if present[c] && !seen[c] {
			result = append(result, c)
			seen[c] = true
		}
	}

	for _, c := range codes {
		if !seen[c] {
			result = append(result, c)
			seen[c] = true
		}
	}

	return result
}

var _ marketplace.Registry = (*StaticRegistry)(nil)

// BuildRegistry constructs adapters for every enabled marketplace in the
// configuration and returns a registry with the configured priority order.
// Channels without a concrete adapter implementation are skipped with a
// warning so a partial configuration still boots.
func BuildRegistry(cfg *config.Config, logger *zap.Logger) (*StaticRegistry, error) {
	adapters := make([]marketplace.Channel, 0, 4)

	if mc := cfg.Marketplaces.Ebay; mc.Enabled {
		adapter, err := NewEbayAdapter(&EbayConfig{
			APIKey:         mc.APIKey,
			APISecret:      mc.APISecret,
			BaseURL:        mc.BaseURL,
			TimeoutSeconds: mc.TimeoutSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build ebay adapter: %w", err)
		}
		adapters = append(adapters, adapter)
	}

	if mc := cfg.Marketplaces.Mercari; mc.Enabled {
		adapter, err := NewMercariAdapter(&MercariConfig{
			AccessToken:    mc.APIKey,
			BaseURL:        mc.BaseURL,
			TimeoutSeconds: mc.TimeoutSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build mercari adapter: %w", err)
		}
		adapters = append(adapters, adapter)
	}

	if cfg.Marketplaces.Etsy.Enabled {
		logger.Warn("etsy adapter not implemented, channel disabled")
	}
	if cfg.Marketplaces.Depop.Enabled {
		logger.Warn("depop adapter not implemented, channel disabled")
	}

	priority := make([]marketplace.ChannelCode, 0, len(cfg.Reconcile.Priority))
	for _, s := range cfg.Reconcile.Priority {
		code := marketplace.ChannelCode(s)
		if !code.IsValid() {
			return nil, fmt.Errorf("invalid channel code in priority list: %q", s)
		}
		priority = append(priority, code)
	}

	return NewStaticRegistry(adapters, priority), nil
}
