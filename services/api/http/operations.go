package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trivia-trens/trivia-monitora/services/api/db"
	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

func (s *Server) handleListEquipment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := s.store.ElevatorRows(ctx)
	if err != nil {
		s.log.WithError(err).WithFields(logFields(c)).Warn("query elevators")
		rows = nil
	}

	c.JSON(http.StatusOK, gin.H{"items": s.pipeline.Elevators(rows, s.now())})
}

type stateRequest struct {
	State any `json:"estado"`
}

// handleSetEquipmentState sets the requested state, or toggles it when the
// body has none. Offline equipment cannot be switched.
func (s *Server) handleSetEquipmentState(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	eq, err := s.store.Equipment(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Equipamento não encontrado."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	zone := s.pipeline.Zone()
	fresh := levels.EvaluateFreshness(levels.ParseTimestamp(eq.UpdatedAt, zone), s.now(), zone)
	if !fresh.Online {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Equipamento offline. Estado não pode ser alterado."})
		return
	}

	var req stateRequest
	_ = c.ShouldBindJSON(&req)

	next := !levels.CoerceBool(eq.State)
	if req.State != nil {
		next = levels.CoerceBool(req.State)
	}

	if err := s.store.SetEquipmentState(ctx, id, next); err != nil {
		s.log.WithError(err).WithFields(logFields(c)).WithField("asset_id", id).Error("update equipment state")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Falha ao atualizar estado: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"id":           id,
		"estado":       next,
		"estado_label": levels.StateLabel(next),
	})
}
