// Package rankinghandler exposes the inbound hook the external ranking engine
// calls to push a finished snapshot into the gateway.
package rankinghandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
	"github.com/thanhkt275/RMS-BE-sub001/internal/rankings"
)

type Handler struct {
	relay *rankings.Relay
}

func New(relay *rankings.Relay) *Handler { return &Handler{relay: relay} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/internal/rankings", h.publish)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) publish(c *gin.Context) {
	var snapshot events.RankingSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if snapshot.TournamentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "tournamentId is required"})
		return
	}

	h.relay.Publish(snapshot)
	c.Status(http.StatusAccepted)
}
