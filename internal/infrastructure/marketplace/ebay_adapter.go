package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/marketplace"
)

// maxResponseSize is the maximum allowed response size from a channel API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrInvalidExternalID indicates a missing or malformed external listing ID
var ErrInvalidExternalID = errors.New("marketplace: invalid external listing ID")

// EbayAdapter implements the Channel interface for eBay
type EbayAdapter struct {
	config     *EbayConfig
	httpClient *http.Client
}

// NewEbayAdapter creates a new eBay adapter with the given configuration
func NewEbayAdapter(config *EbayConfig) (*EbayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &EbayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Code returns the channel code this adapter handles
func (a *EbayAdapter) Code() marketplace.ChannelCode {
	return marketplace.ChannelCodeEbay
}

// Publish creates a fixed-price listing on eBay
func (a *EbayAdapter) Publish(ctx context.Context, draft marketplace.ListingDraft) (*marketplace.PublishResult, error) {
	payload := ebayCreateListingRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Price: ebayAmount{
			Value:    draft.Price.StringFixed(2),
			Currency: "USD",
		},
		Quantity:  1,
		ImageURLs: draft.ImageURLs,
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/listings", payload)
	if err != nil {
		return nil, err
	}

	var resp ebayCreateListingResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrChannelInvalidResponse, err)
	}

	if resp.ListingID == "" {
		return nil, fmt.Errorf("%w: missing listing ID", marketplace.ErrChannelInvalidResponse)
	}

	return &marketplace.PublishResult{
		ExternalID:     resp.ListingID,
		ExternalStatus: resp.Status,
		PublishedAt:    time.Now(),
	}, nil
}

// UpdatePrice revises the listing price on eBay
func (a *EbayAdapter) UpdatePrice(ctx context.Context, externalID string, price decimal.Decimal) error {
	if externalID == "" {
		return ErrInvalidExternalID
	}

	payload := ebayUpdatePriceRequest{
		Price: ebayAmount{
			Value:    price.StringFixed(2),
			Currency: "USD",
		},
	}

	path := "/listings/" + url.PathEscape(externalID) + "/price"
	_, err := a.doRequest(ctx, http.MethodPut, path, payload)
	return err
}

// End ends (delists) the listing on eBay
func (a *EbayAdapter) End(ctx context.Context, externalID string) error {
	if externalID == "" {
		return ErrInvalidExternalID
	}

	path := "/listings/" + url.PathEscape(externalID)
	_, err := a.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

// CheckSold polls eBay for the listing's sale status
func (a *EbayAdapter) CheckSold(ctx context.Context, externalID string) (*marketplace.SoldCheck, error) {
	if externalID == "" {
		return nil, ErrInvalidExternalID
	}

	path := "/listings/" + url.PathEscape(externalID)
	respBody, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp ebayListingStatusResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrChannelInvalidResponse, err)
	}

	return &marketplace.SoldCheck{
		Sold:      resp.IsSold(),
		RawStatus: resp.Status,
		CheckedAt: time.Now(),
	}, nil
}

// doRequest performs an HTTP request against the eBay API and maps
// transport and status errors to channel sentinels
func (a *EbayAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ebay: failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
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
		return nil, fmt.Errorf("ebay: failed to read response: %w", err)
	}

	if err := mapStatusError("ebay", resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// mapStatusError converts an HTTP status code to a channel sentinel error
func mapStatusError(channel string, statusCode int, body []byte) error {
	switch {
	case statusCode < 400:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s HTTP %d", marketplace.ErrChannelAuthFailed, channel, statusCode)
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", marketplace.ErrListingNotOnChannel, channel)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", marketplace.ErrChannelRateLimited, channel)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s HTTP %d", marketplace.ErrChannelUnavailable, channel, statusCode)
	default:
		if msg := extractErrorMessage(body); msg != "" {
			return fmt.Errorf("%w: %s: %s", marketplace.ErrChannelRequestFailed, channel, msg)
		}
		return fmt.Errorf("%w: %s HTTP %d", marketplace.ErrChannelRequestFailed, channel, statusCode)
	}
}

// extractErrorMessage pulls a human-readable message out of either
// error envelope shape the channels use
func extractErrorMessage(body []byte) string {
	var ebayResp ebayErrorResponse
	if err := json.Unmarshal(body, &ebayResp); err == nil && ebayResp.FirstMessage() != "" {
		return ebayResp.FirstMessage()
	}

	var mercariResp mercariErrorResponse
	if err := json.Unmarshal(body, &mercariResp); err == nil && mercariResp.Error.Message != "" {
		return mercariResp.Error.Message
	}

	return ""
}

var _ marketplace.Channel = (*EbayAdapter)(nil)
