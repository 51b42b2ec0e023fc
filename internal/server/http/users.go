package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourtogenic/photoshare/internal/model"
)

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, tok, err := s.svc.Auth.Register(c.Request.Context(), req.Email, req.Username, req.Password, req.DisplayName)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authJSON{User: toUser(u, true), AccessToken: tok.AccessToken})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	tok, u, err := s.svc.Auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, authJSON{User: toUser(u, true), AccessToken: tok.AccessToken})
}

func (s *Server) getMe(c *gin.Context) {
	p, err := s.svc.Profiles.GetMe(c.Request.Context(), requester(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(p, true))
}

// updateMe accepts JSON, or multipart with an optional "avatar" file next to the text fields.
func (s *Server) updateMe(c *gin.Context) {
	var req profileRequest
	var avatar *model.Upload
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			abortInvalid(c, err)
			return
		}
		if err := req.Validate(); err != nil {
			abortInvalid(c, err)
			return
		}
		up, ok := s.readUpload(c, "avatar", false)
		if !ok {
			return
		}
		avatar = up
	} else if !bindJSON(c, &req) {
		return
	}

	p, err := s.svc.Profiles.UpdateMe(c.Request.Context(), requester(c), req.update(), avatar)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(p, true))
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	p, err := s.svc.Profiles.GetPublic(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfile(p, false))
}
