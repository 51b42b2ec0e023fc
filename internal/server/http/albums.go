package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourtogenic/photoshare/internal/model"
)

func (s *Server) createAlbum(c *gin.Context) {
	var req albumRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := s.svc.Albums.Create(c.Request.Context(), requester(c), model.NewAlbum{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  model.Visibility(req.Visibility),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAlbum(a))
}

func (s *Server) listMyAlbums(c *gin.Context) {
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := s.svc.Albums.ListMine(c.Request.Context(), requester(c), q.visibility(), q.page())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(page, toAlbum))
}

func (s *Server) getAlbum(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	a, err := s.svc.Albums.Get(c.Request.Context(), requester(c), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAlbum(a))
}

func (s *Server) deleteAlbum(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.svc.Albums.Delete(c.Request.Context(), requester(c), id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResp)
}

// albumPhotos answers {album, photos, nextCursor}; sort is recent (default) or oldest.
func (s *Server) albumPhotos(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	a, page, err := s.svc.Albums.GetWithPhotos(c.Request.Context(), requester(c), id, model.AlbumSort(q.Sort), q.page())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	photos := toPage(page, toAlbumPhoto)
	c.JSON(http.StatusOK, albumWithPhotosJSON{
		Album:      toAlbum(a),
		Photos:     photos.Items,
		NextCursor: photos.NextCursor,
	})
}
