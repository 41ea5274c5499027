package handler

import (
	"context"
	"net/http"

	"github.com/gdugdh24/bookswap-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/match"
	"github.com/gin-gonic/gin"
)

type MatchService interface {
	Generate(ctx context.Context, req *match.GenerateRequest) (*match.GenerateResult, error)
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	GetForUser(ctx context.Context, userID string) ([]*domain.Match, error)
}

type MatchHandler struct {
	matches MatchService
}

func NewMatchHandler(matches MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// MatchView is a match as seen by one of its participants.
type MatchView struct {
	*domain.Match
	CounterpartID string `json:"counterpartId,omitempty"`
}

// Generate handles POST /matches/generate
// @Summary Generate matches
// @Description Pair holders of due books with customers waiting for them and schedule meetings
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body match.GenerateRequest true "Generation specification"
// @Success 201 {object} match.GenerateResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/generate [post]
func (h *MatchHandler) Generate(c *gin.Context) {
	var req match.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  domain.CodeInvalidSpec,
		})
		return
	}

	result, err := h.matches.Generate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetMyMatches handles GET /matches/me
// @Summary Get my matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {array} MatchView
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/me [get]
func (h *MatchHandler) GetMyMatches(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	matches, err := h.matches.GetForUser(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		other, _ := m.GetOtherUserID(principal.UserID)
		views = append(views, MatchView{Match: m, CounterpartID: other})
	}
	c.JSON(http.StatusOK, views)
}

// GetByID handles GET /matches/:id
// @Summary Get match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} domain.Match
// @Failure 404 {object} ErrorResponse
// @Router /matches/{id} [get]
func (h *MatchHandler) GetByID(c *gin.Context) {
	m, err := h.matches.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}
