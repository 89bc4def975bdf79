package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trivia-trens/trivia-monitora/services/api/db"
	"github.com/trivia-trens/trivia-monitora/services/api/levels"
	"github.com/trivia-trens/trivia-monitora/services/api/metrics"
)

const (
	sourceGenerators  = "generators"
	sourceLocomotives = "locomotives"
)

// levelsResponse is the envelope of the level endpoints.
type levelsResponse struct {
	Items           []levels.PublicRecord `json:"items"`
	LastRefresh     *string               `json:"last_refresh"`
	CivilNow        *string               `json:"brasilia_now"`
	IsAuthenticated bool                  `json:"is_authenticated"`
}

type fetchResult struct {
	records []levels.Record
	err     error
}

// fetchLevels runs fetch with the configured timeout in its own goroutine.
// On timeout, error or a missing backend it returns fallback instead.
func (s *Server) fetchLevels(
	ctx context.Context,
	source string,
	fetch func(ctx context.Context) ([]levels.Record, error),
	fallback func() []levels.Record,
) []levels.Record {
	entry := s.log.WithField("source", source)
	if s.cfg.ForceSampleData {
		metrics.IncLevelFallback(source, "forced")
		return fallback()
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan fetchResult, 1)
	go func() {
		records, err := fetch(ctx)
		done <- fetchResult{records: records, err: err}
	}()

	var reason string
	select {
	case res := <-done:
		elapsed := time.Since(start)
		switch {
		case res.err == nil:
			metrics.ObserveLevelFetch(source, metrics.ResultSuccess, elapsed)
			return res.records
		case errors.Is(res.err, db.ErrNotConfigured):
			reason = "not_configured"
		case errors.Is(res.err, context.DeadlineExceeded):
			metrics.ObserveLevelFetch(source, metrics.ResultTimeout, elapsed)
			reason = metrics.ResultTimeout
		default:
			metrics.ObserveLevelFetch(source, metrics.ResultError, elapsed)
			reason = metrics.ResultError
			entry = entry.WithError(res.err)
		}
	case <-ctx.Done():
		metrics.ObserveLevelFetch(source, metrics.ResultTimeout, time.Since(start))
		reason = metrics.ResultTimeout
	}

	metrics.IncLevelFallback(source, reason)
	entry.WithFields(logrus.Fields{"reason": reason, "timeout": s.cfg.FetchTimeout.String()}).
		Warn("level fetch degraded to fallback data")
	return fallback()
}

func (s *Server) sampleGenerators(now time.Time) func() []levels.Record {
	return func() []levels.Record {
		records, err := s.pipeline.SampleGenerators(now)
		if err != nil {
			s.log.WithError(err).Error("load sample generators")
			return []levels.Record{}
		}
		return records
	}
}

func noRecords() []levels.Record {
	return []levels.Record{}
}

func (s *Server) handleFuelLevels(c *gin.Context) {
	now := s.now()
	s.recordAccess(c)

	records := s.fetchLevels(c.Request.Context(), sourceGenerators, func(ctx context.Context) ([]levels.Record, error) {
		rows, err := s.store.GeneratorRows(ctx)
		if err != nil {
			return nil, err
		}
		return s.pipeline.Generators(rows, now), nil
	}, s.sampleGenerators(now))

	c.JSON(http.StatusOK, s.levelsEnvelope(c, records, now))
}

func (s *Server) handleLocomotiveLevels(c *gin.Context) {
	now := s.now()

	records := s.fetchLevels(c.Request.Context(), sourceLocomotives, func(ctx context.Context) ([]levels.Record, error) {
		rows, err := s.store.LocomotiveLevelRows(ctx)
		if err != nil {
			return nil, err
		}
		return s.pipeline.Locomotives(rows, now), nil
	}, noRecords)

	c.JSON(http.StatusOK, s.levelsEnvelope(c, records, now))
}

func (s *Server) levelsEnvelope(c *gin.Context, records []levels.Record, now time.Time) levelsResponse {
	items := make([]levels.PublicRecord, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Public())
	}

	resp := levelsResponse{
		Items:       items,
		LastRefresh: levels.FormatCivil(levels.LatestUpdate(records), s.pipeline.Zone()),
	}
	if len(items) > 0 {
		display := s.pipeline.NowDisplay(now)
		resp.CivilNow = &display
	}
	_, resp.IsAuthenticated = identityFrom(c)
	return resp
}

// recordAccess stores a dashboard visit when access logging is switched on.
// Failures are logged and never affect the response.
func (s *Server) recordAccess(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	enabled, err := s.store.AccessLogEnabled(ctx)
	if err != nil {
		if !errors.Is(err, db.ErrNotConfigured) {
			s.log.WithError(err).Warn("read access log flag")
		}
		return
	}
	if !enabled {
		return
	}

	entry := db.AccessEntry{}
	if id, ok := identityFrom(c); ok && id.Email != "" {
		entry = db.AccessEntry{LoggedIn: true, Email: id.Email, Name: id.Name}
	}
	if err := s.store.RecordAccess(ctx, entry); err != nil {
		s.log.WithError(err).Warn("record access")
	}
}
