package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	settlementapp "github.com/crosslist/backend/internal/application/settlement"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/interfaces/http/dto"
	"github.com/crosslist/backend/internal/interfaces/http/middleware"
)

// SettlementHandler handles balance, settlement and payout API endpoints
type SettlementHandler struct {
	BaseHandler
	payoutService *settlementapp.PayoutService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(payoutService *settlementapp.PayoutService) *SettlementHandler {
	return &SettlementHandler{
		payoutService: payoutService,
	}
}

// RegisterRoutes registers settlement and payout routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sellers := rg.Group("/sellers")
	{
		sellers.GET(":id/balance", h.GetBalance)
		sellers.GET(":id/payouts", h.ListPayouts)
		sellers.GET(":id/settlements", h.ListSettlements)
	}

	payouts := rg.Group("/payouts")
	{
		payouts.POST("", h.RequestPayout)
		payouts.POST(":id/complete", h.CompletePayout)
		payouts.POST(":id/reject", h.RejectPayout)
	}

	settlements := rg.Group("/settlements")
	{
		settlements.POST(":id/complete", h.CompleteSettlement)
	}
}

// GetBalance returns a seller's ledger position, recomputed from the
// settlement and payout tables
func (h *SettlementHandler) GetBalance(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	balance, err := h.payoutService.GetBalance(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// RequestPayout creates a payout request after threshold and balance checks
func (h *SettlementHandler) RequestPayout(c *gin.Context) {
	var req settlementapp.RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.payoutService.RequestPayout(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// CompletePayout marks a pending payout as paid
func (h *SettlementHandler) CompletePayout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	resp, err := h.payoutService.CompletePayout(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RejectPayout rejects a pending payout, releasing its reserved amount
func (h *SettlementHandler) RejectPayout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	var req settlementapp.RejectPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.payoutService.RejectPayout(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListPayouts returns a seller's payout requests
func (h *SettlementHandler) ListPayouts(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	listReq.Normalize()

	filter := settlement.PayoutFilter{
		Filter: shared.Filter{
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if listReq.Status != "" {
		status := settlement.PayoutStatus(strings.ToUpper(listReq.Status))
		if !status.IsValid() {
			h.BadRequest(c, "Invalid payout status filter")
			return
		}
		filter.Status = &status
	}

	result, err := h.payoutService.ListPayouts(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListSettlements returns a seller's settlements
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	listReq.Normalize()

	filter := settlement.SettlementFilter{
		Filter: shared.Filter{
			Page:     listReq.Page,
			PageSize: listReq.PageSize,
			OrderBy:  listReq.OrderBy,
			OrderDir: listReq.OrderDir,
		},
	}
	if listReq.Status != "" {
		status := settlement.SettlementStatus(strings.ToUpper(listReq.Status))
		if !status.IsValid() {
			h.BadRequest(c, "Invalid settlement status filter")
			return
		}
		filter.Status = &status
	}

	result, err := h.payoutService.ListSettlements(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// CompleteSettlement marks a pending settlement as completed, making its
// net amount spendable
func (h *SettlementHandler) CompleteSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID format")
		return
	}

	resp, err := h.payoutService.CompleteSettlement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
