package handler

import (
	"context"
	"net/http"

	"github.com/gdugdh24/bookswap-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/transfer"
	"github.com/gin-gonic/gin"
)

type TransferService interface {
	Transfer(ctx context.Context, receiverID, blid string) (*transfer.TransferResult, error)
}

type TransferHandler struct {
	transfers TransferService
}

func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// TransferRequest represents a scanned book code
type TransferRequest struct {
	Blid string `json:"blid" binding:"required"`
}

// Transfer handles POST /matches/transfer
// @Summary Receive a book
// @Description Record that the caller received the scanned copy from a match partner
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Scanned code"
// @Success 200 {object} transfer.TransferResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /matches/transfer [post]
func (h *TransferHandler) Transfer(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "blid is required",
			Code:  domain.CodeInvalidFormat,
		})
		return
	}

	result, err := h.transfers.Transfer(c.Request.Context(), principal.UserID, req.Blid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
