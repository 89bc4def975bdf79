package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/trivia-trens/trivia-monitora/services/api/levels"
	"github.com/trivia-trens/trivia-monitora/services/api/usage"
)

func (s *Server) handleNumbers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	var (
		enabled    bool
		areas      []string
		timestamps []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enabled, err = s.store.AccessLogEnabled(gctx)
		if err != nil {
			s.log.WithError(err).WithFields(logFields(c)).Warn("read access log flag")
			enabled = false
		}
		return nil
	})
	g.Go(func() error {
		var err error
		areas, err = s.store.UserAreas(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		timestamps, err = s.store.AccessTimestamps(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byArea := usage.AreaCounts(areas)
	byDay := usage.DailyAccesses(timestamps, s.pipeline.Zone())

	c.JSON(http.StatusOK, gin.H{
		"total_usuarios":     len(areas),
		"area_labels":        byArea.Labels,
		"area_values":        byArea.Values,
		"total_acessos":      byDay.Total(),
		"acesso_labels":      byDay.Labels,
		"acesso_values":      byDay.Values,
		"log_acesso_enabled": enabled,
	})
}

type toggleRequest struct {
	Enabled any `json:"enabled"`
}

func (s *Server) handleToggleAccessLog(c *gin.Context) {
	var req toggleRequest
	_ = c.ShouldBindJSON(&req)
	enabled := levels.CoerceBool(req.Enabled)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := s.store.SetAccessLogEnabled(ctx, enabled); err != nil {
		s.log.WithError(err).WithFields(logFields(c)).Error("update access log flag")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	s.log.WithFields(logFields(c)).WithField("enabled", enabled).Info("access log toggled")
	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": enabled})
}
