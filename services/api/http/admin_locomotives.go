package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trivia-trens/trivia-monitora/services/api/db"
	"github.com/trivia-trens/trivia-monitora/services/api/fleet"
	"github.com/trivia-trens/trivia-monitora/services/api/storage"
)

const maxPhotoBytes = 10 << 20

var errPhotoTooLarge = errors.New("A foto deve ter no máximo 10 MB.")

func (s *Server) handleListLocomotives(c *gin.Context) {
	page, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("page", "1")))
	if err != nil {
		page = 1
	}
	q := fleet.ListQuery{
		Search:  strings.TrimSpace(c.Query("q")),
		SortBy:  c.DefaultQuery("sort_by", "modelo"),
		SortDir: c.DefaultQuery("sort_dir", "asc"),
		Page:    page,
		PerPage: s.cfg.DefaultPageSize,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := s.store.LocomotiveRows(ctx)
	if err != nil {
		s.log.WithError(err).WithFields(logFields(c)).Warn("query locomotives")
		rows = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"result":       fleet.List(rows, q),
		"search_term":  q.Search,
		"bases":        fleet.Bases,
		"combustiveis": fleet.Fuels,
	})
}

func locomotiveForm(c *gin.Context) (fleet.LocomotiveForm, *multipart.FileHeader) {
	form := fleet.LocomotiveForm{
		Tag:        c.PostForm("tag"),
		Model:      c.PostForm("modelo"),
		Base:       c.PostForm("base"),
		Fuel:       c.PostForm("combustivel"),
		TankVolume: c.PostForm("volume_tanque"),
		Level:      c.PostForm("nivel_atual"),
	}
	fh, err := c.FormFile("foto")
	if err != nil || fh.Filename == "" {
		return form, nil
	}
	form.HasPhoto = true
	return form, fh
}

func readPhoto(fh *multipart.FileHeader) (storage.Photo, error) {
	p := storage.Photo{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type")}
	if !storage.AllowedExtension(p.Extension()) {
		return p, storage.ErrInvalidFormat
	}
	if fh.Size > maxPhotoBytes {
		return p, errPhotoTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return p, err
	}
	defer f.Close()

	p.Data, err = io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return p, err
	}
	if len(p.Data) > maxPhotoBytes {
		return p, errPhotoTooLarge
	}
	return p, nil
}

func photoErrorStatus(err error) int {
	if errors.Is(err, errPhotoTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// savePhoto uploads a photo and stores its URL on the locomotive.
func (s *Server) savePhoto(ctx context.Context, id string, photo storage.Photo) (string, error) {
	url, err := s.photos.ReplaceVehiclePhoto(ctx, id, photo)
	if err != nil || url == "" {
		return "", err
	}
	if err := s.store.SetLocomotivePhoto(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Server) handleCreateLocomotive(c *gin.Context) {
	form, fh := locomotiveForm(c)
	in, err := form.Validate(true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	photo, err := readPhoto(fh)
	if err != nil {
		c.JSON(photoErrorStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	id, err := s.store.CreateLocomotive(ctx, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fmt.Sprintf("Erro ao cadastrar locomotiva: %v", err)})
		return
	}

	resp := gin.H{"success": true, "id": id, "message": "Locomotiva cadastrada com sucesso."}
	url, err := s.savePhoto(ctx, id, photo)
	if err != nil {
		s.log.WithError(err).WithFields(logFields(c)).WithField("asset_id", id).Warn("upload locomotive photo")
		resp["warning"] = "Foto não enviada: " + err.Error()
	}
	if url != "" {
		resp["foto_url"] = url
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleEditLocomotive(c *gin.Context) {
	id := c.Param("id")
	form, fh := locomotiveForm(c)
	in, err := form.Validate(false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var photo storage.Photo
	if fh != nil {
		if photo, err = readPhoto(fh); err != nil {
			c.JSON(photoErrorStatus(err), gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := s.store.UpdateLocomotive(ctx, id, in); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Locomotiva não encontrada."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fmt.Sprintf("Erro ao editar locomotiva: %v", err)})
		return
	}

	resp := gin.H{"success": true, "id": id, "message": "Locomotiva atualizada com sucesso."}
	if fh != nil {
		url, err := s.savePhoto(ctx, id, photo)
		if err != nil {
			s.log.WithError(err).WithFields(logFields(c)).WithField("asset_id", id).Warn("upload locomotive photo")
			resp["warning"] = "Foto não enviada: " + err.Error()
		}
		if url != "" {
			resp["foto_url"] = url
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteLocomotive(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := s.store.DeleteLocomotive(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Locomotiva não encontrada."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fmt.Sprintf("Erro ao excluir locomotiva: %v", err)})
		return
	}

	if err := s.photos.DeletePrefix(ctx, id); err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		s.log.WithError(err).WithFields(logFields(c)).WithField("asset_id", id).Warn("remove locomotive photos")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Locomotiva excluída com sucesso."})
}
