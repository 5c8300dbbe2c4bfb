package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	listingapp "github.com/crosslist/backend/internal/application/listing"
	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/interfaces/http/dto"
	"github.com/crosslist/backend/internal/interfaces/http/middleware"
)

// ListingHandler handles listing-related API endpoints
type ListingHandler struct {
	BaseHandler
	listingService *listingapp.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *listingapp.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// RegisterRoutes registers listing routes
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	{
		listings.POST("", h.Create)
		listings.GET("", h.List)
		listings.GET(":id", h.Get)
		listings.POST(":id/publish", h.Publish)
		listings.PUT(":id/price", h.UpdatePrice)
		listings.GET(":id/price-history", h.GetPriceHistory)
		listings.POST(":id/end", h.End)
		listings.DELETE(":id", h.Remove)
	}
}

// Create creates a new listing for the acting seller
func (h *ListingHandler) Create(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	var req listingapp.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.listingService.Create(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a single listing owned by the acting seller
func (h *ListingHandler) Get(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	resp, err := h.listingService.Get(c.Request.Context(), sellerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns the acting seller's listings, newest first by default
func (h *ListingHandler) List(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	listReq.Normalize()

	filter := listing.ListingFilter{
		Filter: shared.Filter{
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if listReq.Status != "" {
		status := listing.ListingStatus(strings.ToUpper(listReq.Status))
		if !status.IsValid() {
			h.BadRequest(c, "Invalid listing status filter")
			return
		}
		filter.Status = &status
	}

	result, err := h.listingService.List(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Publish publishes a listing to one or more marketplace channels.
// Per-channel failures are reported in the outcomes, never fatal.
func (h *ListingHandler) Publish(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	var req listingapp.PublishListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.listingService.Publish(c.Request.Context(), sellerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdatePrice applies a manual price change
func (h *ListingHandler) UpdatePrice(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	var req listingapp.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.listingService.UpdatePrice(c.Request.Context(), sellerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetPriceHistory returns a listing's price changes, oldest first
func (h *ListingHandler) GetPriceHistory(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	history, err := h.listingService.GetPriceHistory(c.Request.Context(), sellerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// End ends an active listing on all channels
func (h *ListingHandler) End(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	resp, err := h.listingService.End(c.Request.Context(), sellerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Remove removes an active listing from the system
func (h *ListingHandler) Remove(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	resp, err := h.listingService.Remove(c.Request.Context(), sellerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
