package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
)

// CategoryLister returns the categories a ballot is checked against
type CategoryLister interface {
	List(ctx context.Context) ([]*models.Category, error)
}

// VoteHandler handles ballot submission and retrieval
type VoteHandler struct {
	gate       services.PhaseAuthorizer
	ledger     services.VoteLedger
	categories CategoryLister
	log        *slog.Logger
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(gate services.PhaseAuthorizer, ledger services.VoteLedger, categories CategoryLister, log *slog.Logger) *VoteHandler {
	return &VoteHandler{
		gate:       gate,
		ledger:     ledger,
		categories: categories,
		log:        log,
	}
}

// CastVotes handles POST /votes, replacing the caller's whole ballot
func (h *VoteHandler) CastVotes(c *gin.Context) {
	handle, userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.gate.AuthorizeWrite(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.CastVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Votes == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "votes is required"})
		return
	}

	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	votes, err := h.ledger.CastVotes(c.Request.Context(), userID, handle, req.Votes, categories)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.VoteMapResponse{Votes: votes})
}

// GetMyVotes handles GET /votes/me
func (h *VoteHandler) GetMyVotes(c *gin.Context) {
	_, userID, ok := currentUserID(c)
	if !ok {
		return
	}

	votes, err := h.ledger.VotesForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.VoteMapResponse{Votes: votes})
}
