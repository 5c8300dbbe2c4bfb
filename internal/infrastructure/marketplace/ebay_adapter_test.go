package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslist/backend/internal/domain/marketplace"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestEbayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *EbayConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &EbayConfig{APIKey: "token"},
			wantErr: nil,
		},
		{
			name:    "missing api key",
			config:  &EbayConfig{},
			wantErr: ErrEbayConfigMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, tt.config.BaseURL)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestNewEbayConfig(t *testing.T) {
	config := NewEbayConfig("key", "secret")
	assert.Equal(t, "key", config.APIKey)
	assert.Equal(t, EbayProductionAPIURL, config.BaseURL)
	assert.False(t, config.IsSandbox)

	sandbox := NewSandboxEbayConfig("key", "secret")
	assert.Equal(t, EbaySandboxAPIURL, sandbox.BaseURL)
	assert.True(t, sandbox.IsSandbox)
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

func newEbayTestAdapter(t *testing.T, server *httptest.Server) *EbayAdapter {
	t.Helper()
	adapter, err := NewEbayAdapter(&EbayConfig{
		APIKey:  "test-token",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return adapter
}

func TestNewEbayAdapter_InvalidConfig(t *testing.T) {
	adapter, err := NewEbayAdapter(&EbayConfig{})
	assert.Error(t, err)
	assert.Nil(t, adapter)
}

func TestEbayAdapter_Code(t *testing.T) {
	adapter, err := NewEbayAdapter(NewEbayConfig("key", "secret"))
	require.NoError(t, err)
	assert.Equal(t, marketplace.ChannelCodeEbay, adapter.Code())
}

func TestEbayAdapter_Publish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/listings", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req ebayCreateListingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Vintage Camera", req.Title)
		assert.Equal(t, "120.00", req.Price.Value)
		assert.Equal(t, "USD", req.Price.Currency)

		_ = json.NewEncoder(w).Encode(ebayCreateListingResponse{
			ListingID: "ebay-123",
			Status:    ebayStatusActive,
		})
	}))
	defer server.Close()

	adapter := newEbayTestAdapter(t, server)

	result, err := adapter.Publish(context.Background(), marketplace.ListingDraft{
		Title: "Vintage Camera",
		Price: decimal.NewFromInt(120),
	})

	require.NoError(t, err)
	assert.Equal(t, "ebay-123", result.ExternalID)
	assert.Equal(t, ebayStatusActive, result.ExternalStatus)
	assert.False(t, result.PublishedAt.IsZero())
}

func TestEbayAdapter_Publish_MissingListingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	adapter := newEbayTestAdapter(t, server)

	_, err := adapter.Publish(context.Background(), marketplace.ListingDraft{
		Title: "Camera",
		Price: decimal.NewFromInt(50),
	})

	assert.ErrorIs(t, err, marketplace.ErrChannelInvalidResponse)
}

func TestEbayAdapter_UpdatePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/listings/ebay-123/price", r.URL.Path)

		var req ebayUpdatePriceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "90.00", req.Price.Value)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	adapter := newEbayTestAdapter(t, server)

	err := adapter.UpdatePrice(context.Background(), "ebay-123", decimal.NewFromInt(90))
	require.NoError(t, err)
}

func TestEbayAdapter_UpdatePrice_EmptyExternalID(t *testing.T) {
	adapter, err := NewEbayAdapter(NewEbayConfig("key", "secret"))
	require.NoError(t, err)

	err = adapter.UpdatePrice(context.Background(), "", decimal.NewFromInt(90))
	assert.ErrorIs(t, err, ErrInvalidExternalID)
}

func TestEbayAdapter_End(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/listings/ebay-123", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	adapter := newEbayTestAdapter(t, server)

	err := adapter.End(context.Background(), "ebay-123")
	require.NoError(t, err)
}

func TestEbayAdapter_CheckSold(t *testing.T) {
	tests := []struct {
		name     string
		response ebayListingStatusResponse
		wantSold bool
	}{
		{
			name:     "active listing",
			response: ebayListingStatusResponse{ListingID: "e1", Status: ebayStatusActive},
			wantSold: false,
		},
		{
			name:     "sold status",
			response: ebayListingStatusResponse{ListingID: "e1", Status: ebayStatusSold},
			wantSold: true,
		},
		{
			name:     "quantity sold on active listing",
			response: ebayListingStatusResponse{ListingID: "e1", Status: ebayStatusActive, QuantitySold: 1},
			wantSold: true,
		},
		{
			name:     "ended unsold",
			response: ebayListingStatusResponse{ListingID: "e1", Status: ebayStatusEnded},
			wantSold: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				_ = json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			adapter := newEbayTestAdapter(t, server)

			check, err := adapter.CheckSold(context.Background(), "e1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSold, check.Sold)
			assert.Equal(t, tt.response.Status, check.RawStatus)
		})
	}
}

func TestEbayAdapter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantErr: marketplace.ErrChannelAuthFailed},
		{name: "forbidden", statusCode: http.StatusForbidden, wantErr: marketplace.ErrChannelAuthFailed},
		{name: "not found", statusCode: http.StatusNotFound, wantErr: marketplace.ErrListingNotOnChannel},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, wantErr: marketplace.ErrChannelRateLimited},
		{name: "server error", statusCode: http.StatusInternalServerError, wantErr: marketplace.ErrChannelUnavailable},
		{name: "bad request", statusCode: http.StatusBadRequest, wantErr: marketplace.ErrChannelRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			adapter := newEbayTestAdapter(t, server)

			_, err := adapter.CheckSold(context.Background(), "e1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEbayAdapter_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Closed server refuses connections

	adapter, err := NewEbayAdapter(&EbayConfig{APIKey: "token", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = adapter.CheckSold(context.Background(), "e1")
	assert.ErrorIs(t, err, marketplace.ErrChannelUnavailable)
}

func TestExtractErrorMessage(t *testing.T) {
	ebayBody := []byte(`{"errors":[{"errorId":1,"message":"invalid price"}]}`)
	assert.Equal(t, "invalid price", extractErrorMessage(ebayBody))

	mercariBody := []byte(`{"error":{"code":"item_invalid","message":"item not editable"}}`)
	assert.Equal(t, "item not editable", extractErrorMessage(mercariBody))

	assert.Empty(t, extractErrorMessage([]byte(`not json`)))
}
