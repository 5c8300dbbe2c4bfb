package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/infrastructure/config"
)

func newTestRegistry(t *testing.T) *StaticRegistry {
	t.Helper()

	ebay, err := NewEbayAdapter(NewEbayConfig("key", "secret"))
	require.NoError(t, err)
	mercari, err := NewMercariAdapter(NewMercariConfig("token"))
	require.NoError(t, err)

	return NewStaticRegistry(
		[]marketplace.Channel{ebay, mercari},
		[]marketplace.ChannelCode{
			marketplace.ChannelCodeEbay,
			marketplace.ChannelCodeEtsy,
			marketplace.ChannelCodeDepop,
			marketplace.ChannelCodeMercari,
		},
	)
}

func TestStaticRegistry_Get(t *testing.T) {
	registry := newTestRegistry(t)

	adapter, err := registry.Get(marketplace.ChannelCodeEbay)
	require.NoError(t, err)
	assert.Equal(t, marketplace.ChannelCodeEbay, adapter.Code())

	_, err = registry.Get(marketplace.ChannelCodeEtsy)
	assert.ErrorIs(t, err, marketplace.ErrChannelNotRegistered)
}

func TestStaticRegistry_List(t *testing.T) {
	registry := newTestRegistry(t)

	adapters := registry.List()
	require.Len(t, adapters, 2)
	assert.Equal(t, marketplace.ChannelCodeEbay, adapters[0].Code())
	assert.Equal(t, marketplace.ChannelCodeMercari, adapters[1].Code())
}

func TestStaticRegistry_InPriorityOrder(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("sorts by configured priority", func(t *testing.T) {
		ordered := registry.InPriorityOrder([]marketplace.ChannelCode{
			marketplace.ChannelCodeMercari,
			marketplace.ChannelCodeEbay,
		})
		assert.Equal(t, []marketplace.ChannelCode{
			marketplace.ChannelCodeEbay,
			marketplace.ChannelCodeMercari,
		}, ordered)
	})

	t.Run("unknown codes keep relative order at the end", func(t *testing.T) {
		ordered := registry.InPriorityOrder([]marketplace.ChannelCode{
			"UNKNOWN",
			marketplace.ChannelCodeMercari,
		})
		assert.Equal(t, []marketplace.ChannelCode{
			marketplace.ChannelCodeMercari,
			"UNKNOWN",
		}, ordered)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, registry.InPriorityOrder(nil))
	})
}

func TestBuildRegistry(t *testing.T) {
	cfg := &config.Config{
		Reconcile: config.ReconcileConfig{
			Priority: []string{"EBAY", "MERCARI"},
		},
	}
	cfg.Marketplaces.Ebay = config.MarketplaceConfig{
		Enabled: true,
		BaseURL: "https://api.ebay.example.com",
		APIKey:  "key",
	}
	cfg.Marketplaces.Mercari = config.MarketplaceConfig{
		Enabled: true,
		BaseURL: "https://api.mercari.example.com",
		APIKey:  "token",
	}

	registry, err := BuildRegistry(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, registry.List(), 2)
	assert.Equal(t, []marketplace.ChannelCode{
		marketplace.ChannelCodeEbay,
		marketplace.ChannelCodeMercari,
	}, registry.Priority())
}

func TestBuildRegistry_InvalidPriorityCode(t *testing.T) {
	cfg := &config.Config{
		Reconcile: config.ReconcileConfig{
			Priority: []string{"AMAZON"},
		},
	}

	_, err := BuildRegistry(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid channel code")
}
