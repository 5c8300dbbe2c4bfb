package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/marketplace"
)

// MercariAdapter implements the Channel interface for Mercari
type MercariAdapter struct {
	config     *MercariConfig
	httpClient *http.Client
}

// NewMercariAdapter creates a new Mercari adapter with the given configuration
func NewMercariAdapter(config *MercariConfig) (*MercariAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MercariAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Code returns the channel code this adapter handles
func (a *MercariAdapter) Code() marketplace.ChannelCode {
	return marketplace.ChannelCodeMercari
}

// Publish lists an item on Mercari
func (a *MercariAdapter) Publish(ctx context.Context, draft marketplace.ListingDraft) (*marketplace.PublishResult, error) {
	payload := mercariCreateItemRequest{
		Name:        draft.Title,
		Description: draft.Description,
		Price:       draft.Price.StringFixed(2),
		Photos:      draft.ImageURLs,
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/items", payload)
	if err != nil {
		return nil, err
	}

	var resp mercariItemResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrChannelInvalidResponse, err)
	}

	if resp.Item.ID == "" {
		return nil, fmt.Errorf("%w: missing item ID", marketplace.ErrChannelInvalidResponse)
	}

	return &marketplace.PublishResult{
		ExternalID:     resp.Item.ID,
		ExternalStatus: resp.Item.Status,
		PublishedAt:    time.Now(),
	}, nil
}

// UpdatePrice edits the item price on Mercari
func (a *MercariAdapter) UpdatePrice(ctx context.Context, externalID string, price decimal.Decimal) error {
	if externalID == "" {
		return ErrInvalidExternalID
	}

	payload := mercariUpdatePriceRequest{
		Price: price.StringFixed(2),
	}

	path := "/items/" + url.PathEscape(externalID) + "/price"
	_, err := a.doRequest(ctx, http.MethodPut, path, payload)
	return err
}

// End stops the item listing on Mercari
func (a *MercariAdapter) End(ctx context.Context, externalID string) error {
	if externalID == "" {
		return ErrInvalidExternalID
	}

	path := "/items/" + url.PathEscape(externalID) + "/stop"
	_, err := a.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// CheckSold polls Mercari for the item's sale status
func (a *MercariAdapter) CheckSold(ctx context.Context, externalID string) (*marketplace.SoldCheck, error) {
	if externalID == "" {
		return nil, ErrInvalidExternalID
	}

	path := "/items/" + url.PathEscape(externalID)
	respBody, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp mercariItemResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrChannelInvalidResponse, err)
	}

	return &marketplace.SoldCheck{
		Sold:      resp.Item.IsSold(),
		RawStatus: resp.Item.Status,
		CheckedAt: time.Now(),
	}, nil
}

// doRequest performs an HTTP request against the Mercari API
func (a *MercariAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mercari: failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("mercari: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrChannelUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("mercari: failed to read response: %w", err)
	}

	if err := mapStatusError("mercari", resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

var _ marketplace.Channel = (*MercariAdapter)(nil)
