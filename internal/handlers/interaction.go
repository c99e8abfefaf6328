package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sparkmatch/internal/config"
	"sparkmatch/internal/middleware"
	"sparkmatch/internal/models"
	"sparkmatch/internal/redis"
	"sparkmatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InteractionHandler struct {
	db           *gorm.DB
	redis        *redis.Client
	cfg          *config.Config
	interactions *services.InteractionService
	invitations  *services.InvitationService
}

type InteractRequest struct {
	ToUser uint   `json:"to_user" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type CreateInvitationRequest struct {
	ToUser       uint      `json:"to_user" binding:"required"`
	Message      string    `json:"message" binding:"required"`
	ProposedDate time.Time `json:"proposed_date" binding:"required,futuredate"`
}

type UpdateInvitationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ContactExchangeRequest struct {
	MatchID     uint   `json:"match" binding:"required"`
	ContactInfo string `json:"contact_info" binding:"required"`
}

// MatchResponse renders a match from the caller's perspective: the other
// participant plus the match metadata.
type MatchResponse struct {
	ID        uint        `json:"id"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewInteractionHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config, interactions *services.InteractionService, invitations *services.InvitationService) *InteractionHandler {
	return &InteractionHandler{
		db:           db,
		redis:        redis,
		cfg:          cfg,
		interactions: interactions,
		invitations:  invitations,
	}
}

func (h *InteractionHandler) Interact(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req InteractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interaction, match, err := h.interactions.RecordInteraction(c.Request.Context(), userID, req.ToUser, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfInteraction), errors.Is(err, services.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrDuplicateInteraction):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record interaction"})
		}
		return
	}

	response := gin.H{"interaction": interaction}
	if match != nil {
		response["message"] = "It's a match!"
		response["match"] = match
		h.cacheMatchData(c.Request.Context(), match)
	}

	c.JSON(http.StatusCreated, response)
}

func (h *InteractionHandler) GetMatches(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	matches, err := h.interactions.MatchesFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch matches"})
		return
	}

	matchResponses := make([]MatchResponse, 0, len(matches))
	for _, match := range matches {
		matchResponses = append(matchResponses, MatchResponse{
			ID:        match.ID,
			User:      match.Other(userID),
			CreatedAt: match.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"matches": matchResponses})
}

func (h *InteractionHandler) Unmatch(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid match ID"})
		return
	}

	if err := h.interactions.Unmatch(c.Request.Context(), userID, uint(matchID)); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unmatch"})
		return
	}

	h.redis.Del(c.Request.Context(), "match:"+c.Param("match_id"))
	c.JSON(http.StatusOK, gin.H{"message": "Unmatched successfully"})
}

func (h *InteractionHandler) LikedUsers(c *gin.Context) {
	users, err := h.interactions.LikedUsers(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch liked users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *InteractionHandler) DislikedUsers(c *gin.Context) {
	users, err := h.interactions.DislikedUsers(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch disliked users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *InteractionHandler) ReceivedLikes(c *gin.Context) {
	interactions, err := h.interactions.ReceivedLikes(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch received likes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": interactions})
}

func (h *InteractionHandler) ViewHistory(c *gin.Context) {
	history, err := h.interactions.ViewHistoryFor(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch view history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view_history": history})
}

func (h *InteractionHandler) CreateInvitation(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.invitations.CreateInvitation(c.Request.Context(), userID, req.ToUser, req.Message, req.ProposedDate)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveMatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invitations can only be sent to matched users"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}

func (h *InteractionHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.invitations.ListInvitations(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func (h *InteractionHandler) UpdateInvitationStatus(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return
	}

	var req UpdateInvitationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.invitations.UpdateInvitationStatus(c.Request.Context(), userID, uint(invitationID), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvitationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invitation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitation": invitation})
}

func (h *InteractionHandler) CreateContactExchange(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req ContactExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exchange, err := h.invitations.CreateContactExchange(c.Request.Context(), userID, req.MatchID, req.ContactInfo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotParticipant):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You are not a participant of this match"})
		case errors.Is(err, services.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact exchange"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contact_exchange": exchange})
}

// cacheMatchData keeps freshly formed matches in Redis for quick lookups.
func (h *InteractionHandler) cacheMatchData(ctx context.Context, match *models.Match) {
	matchKey := "match:" + strconv.FormatUint(uint64(match.ID), 10)
	matchData := map[string]interface{}{
		"id":         match.ID,
		"user1_id":   match.User1ID,
		"user2_id":   match.User2ID,
		"created_at": match.CreatedAt.Unix(),
	}

	if err := h.redis.HSet(ctx, matchKey, matchData); err != nil {
		logrus.WithError(err).Warn("failed to cache match data")
		return
	}
	h.redis.Expire(ctx, matchKey, 24*time.Hour)
}
