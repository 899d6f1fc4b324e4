package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cdeck95/dg-events-bot/internal/agg"
	"github.com/cdeck95/dg-events-bot/internal/discord"
	"github.com/cdeck95/dg-events-bot/internal/models"
)

// EventsHandler is the read-only ops surface: a health probe and a JSON dump
// of the aggregated event view. It exists for operators, not guild members.
type EventsHandler struct {
	Agg     *agg.Aggregator
	GuildID string
	Logger  *zap.Logger
}

func (h *EventsHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/api/events", h.events)
}

func (h *EventsHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *EventsHandler) events(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	var (
		events []*models.Event
		err    error
	)
	switch scope := c.DefaultQuery("scope", "all"); scope {
	case "all":
		events, err = h.Agg.Events(ctx, h.GuildID)
	case "today":
		events, err = h.Agg.Today(ctx, h.GuildID, now)
	case "future":
		events, err = h.Agg.Upcoming(ctx, h.GuildID, now)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scope " + scope})
		return
	}
	if err != nil {
		if errors.Is(err, discord.ErrSourceUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		h.Logger.Error("event listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
