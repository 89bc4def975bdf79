package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trivia-trens/trivia-monitora/services/api/auth"
	"github.com/trivia-trens/trivia-monitora/services/api/db"
)

func (s *Server) handleListUsers(c *gin.Context) {
	caller, _ := identityFrom(c)
	scope := auth.ScopeFor(caller)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := s.store.ListUsers(ctx, db.UserFilter{Company: scope.Company, Area: scope.Area})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	visible := make([]db.UserProfile, 0, len(users))
	for _, u := range users {
		if scope.Visible(u.Role, u.Company, u.Area) {
			visible = append(visible, u)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"usuarios": visible,
		"areas":    auth.Areas,
		"empresas": auth.Companies,
	})
}

// scopedTarget checks that the addressed user exists and is within the
// caller's scope. It writes the error response and returns false otherwise.
func (s *Server) scopedTarget(ctx context.Context, c *gin.Context, id string) bool {
	caller, _ := identityFrom(c)
	scope := auth.ScopeFor(caller)
	if !scope.Limited {
		return true
	}

	target, err := s.store.UserProfile(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	if !scope.Visible(target.Role, target.Company, target.Area) {
		c.JSON(http.StatusForbidden, gin.H{"error": msgForbidden})
		return false
	}
	return true
}

type statusRequest struct {
	Authorized bool `json:"autorizado"`
}

func (s *Server) handleSetUserStatus(c *gin.Context) {
	id := c.Param("id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if !s.scopedTarget(ctx, c, id) {
		return
	}
	if err := s.store.SetUserAuthorized(ctx, id, req.Authorized); err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleEditUser(c *gin.Context) {
	id := c.Param("id")
	caller, _ := identityFrom(c)

	var req auth.UserEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := auth.PlanEdit(caller.Role, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if !s.scopedTarget(ctx, c, id) {
		return
	}
	err = s.store.UpdateUser(ctx, id, db.UserUpdate{
		Name:    plan.Name,
		Company: plan.Company,
		Area:    plan.Area,
		Role:    plan.Role,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if !s.scopedTarget(ctx, c, id) {
		return
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		writeUserError(c, err)
		return
	}
	s.log.WithFields(logFields(c)).WithField("target_id", id).Info("user deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeUserError(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
