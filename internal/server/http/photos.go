package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
)

func (s *Server) uploadPhoto(c *gin.Context) {
	var form photoForm
	if err := c.ShouldBind(&form); err != nil {
		s.abortUploadError(c, err)
		return
	}
	if err := form.Validate(); err != nil {
		abortInvalid(c, err)
		return
	}
	file, ok := s.readUpload(c, "file", true)
	if !ok {
		return
	}
	p, err := s.svc.Photos.Upload(c.Request.Context(), requester(c), model.NewPhoto{
		Title:       form.Title,
		Description: form.Description,
		Visibility:  model.Visibility(form.Visibility),
	}, *file)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPhoto(p))
}

func (s *Server) listMyPhotos(c *gin.Context) {
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := s.svc.Photos.ListMine(c.Request.Context(), requester(c), q.visibility(), q.page())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(page, toPhoto))
}

func (s *Server) getPhoto(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	p, err := s.svc.Photos.Get(c.Request.Context(), requester(c), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPhoto(p))
}

func (s *Server) deletePhoto(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.svc.Photos.Delete(c.Request.Context(), requester(c), id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResp)
}

func (s *Server) addToAlbum(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req addToAlbumRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := s.svc.Photos.AddToAlbum(c.Request.Context(), requester(c), id, uuid.FromStringOrNil(req.AlbumID))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMembership(m))
}

func (s *Server) removeFromAlbum(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.AlbumID == "" {
		s.abortWithError(c, fmt.Errorf("%w: album_id is required", errs.ErrValidation))
		return
	}
	if err := s.svc.Photos.RemoveFromAlbum(c.Request.Context(), requester(c), id, uuid.FromStringOrNil(q.AlbumID)); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResp)
}

func (s *Server) changeVisibility(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req visibilityRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.svc.Photos.ChangeVisibility(c.Request.Context(), requester(c), id, model.Visibility(req.Visibility))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPhoto(p))
}
