package realtime

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/pkg/apperrors"
)

// TopicAuthorizer answers whether a user may subscribe to entity-scoped
// topics. Implemented by the repository layer.
type TopicAuthorizer interface {
	IsMember(ctx context.Context, communityID, userID uuid.UUID) (bool, error)
	SurveyCommunity(ctx context.Context, surveyID uuid.UUID) (uuid.UUID, error)
	PostCommunity(ctx context.Context, postID uuid.UUID) (uuid.UUID, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub    *Hub
	authz  TopicAuthorizer
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authz TopicAuthorizer, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		authz:  authz,
		logger: logger,
	}
}

// HandleConnection upgrades the HTTP connection to a WebSocket and
// registers the client for the topics named in the comma-separated
// "topics" query parameter. Every topic must pass authorization or the
// whole connection is rejected.
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in context",
		})
		return
	}

	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	topicsParam := c.Query("topics")
	if topicsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least one topic is required",
		})
		return
	}

	topics := strings.Split(topicsParam, ",")
	for _, topic := range topics {
		allowed, err := h.authorizeTopic(c, topic, userID)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("topic", topic).
				Str("userID", userID.String()).
				Msg("Failed to authorize topic subscription")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to authorize subscription",
			})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not authorized for topic: " + topic,
			})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("userID", userID.String()).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		topics: topics,
		logger: h.logger,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("userID", userID.String()).
		Strs("topics", topics).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

// authorizeTopic applies per-topic access rules: a user may only read
// their own notification channel, and entity-scoped topics require
// membership in the owning community.
func (h *Handler) authorizeTopic(ctx context.Context, topic string, userID uuid.UUID) (bool, error) {
	kind, idStr, ok := strings.Cut(topic, ":")
	if !ok {
		return false, nil
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return false, nil
	}

	switch kind {
	case "notifications":
		return id == userID, nil

	case "messages", "community":
		return h.authz.IsMember(ctx, id, userID)

	case "survey":
		communityID, err := h.authz.SurveyCommunity(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) || errors.Is(err, apperrors.ErrSurveyNotFound) {
				return false, nil
			}
			return false, err
		}
		return h.authz.IsMember(ctx, communityID, userID)

	case "post":
		communityID, err := h.authz.PostCommunity(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return false, nil
			}
			return false, err
		}
		return h.authz.IsMember(ctx, communityID, userID)

	default:
		return false, nil
	}
}
