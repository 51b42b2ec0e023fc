// Package httpserver exposes the photoshare REST API over gin.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofrs/uuid/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fourtogenic/photoshare/internal/errs"
	"github.com/fourtogenic/photoshare/internal/model"
	"github.com/fourtogenic/photoshare/internal/service"
)

// Services are the domain operations behind the routes.
type Services struct {
	Auth     service.AuthService
	Profiles service.ProfileService
	Photos   service.PhotoService
	Albums   service.AlbumService
	Likes    service.LikeService
	Feed     service.FeedService
}

// Options tune the transport.
type Options struct {
	MaxUpload int64                           // request body cap in bytes
	Metrics   *Metrics                        // nil disables request metrics
	Gatherer  prometheus.Gatherer             // served on /metrics when set
	Ready     func(ctx context.Context) error // /healthz probe; nil means always ready
}

// Server wires services into HTTP handlers.
type Server struct {
	svc      Services
	verifier TokenVerifier
	opts     Options
	log      *zap.Logger
	engine   *gin.Engine
}

// New builds the router.
func New(svc Services, opts Options, log *zap.Logger) *Server {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 10 << 20
	}
	s := &Server{svc: svc, verifier: svc.Auth, opts: opts, log: log}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.ContextWithFallback = true
	r.Use(recovery(s.log), logging(s.log))
	if s.opts.Metrics != nil {
		r.Use(s.opts.Metrics.middleware())
	}
	r.Use(limitBody(s.opts.MaxUpload))

	r.GET("/healthz", s.health)
	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := s.requireAuth()

	r.POST("/auth/register", s.register)
	r.POST("/auth/login", s.login)

	r.GET("/users/me", auth, s.getMe)
	r.PATCH("/users/me", auth, s.updateMe)
	r.GET("/users/:id", s.getUser)

	r.POST("/photos", auth, s.uploadPhoto)
	r.GET("/photos", auth, s.listMyPhotos)
	r.GET("/photos/:id", s.optionalAuth(), s.getPhoto)
	r.DELETE("/photos/:id", auth, s.deletePhoto)
	r.POST("/photos/:id/albums", auth, s.addToAlbum)
	r.DELETE("/photos/:id/albums", auth, s.removeFromAlbum)
	r.PATCH("/photos/:id/visibility", auth, s.changeVisibility)

	r.POST("/albums", auth, s.createAlbum)
	r.GET("/albums", auth, s.listMyAlbums)
	r.GET("/albums/:id", auth, s.getAlbum)
	r.DELETE("/albums/:id", auth, s.deleteAlbum)
	r.GET("/albums/:id/photos", auth, s.albumPhotos)

	r.POST("/likes", auth, s.addLike)
	r.DELETE("/likes", auth, s.removeLike)
	r.GET("/me/likes", auth, s.myLikes)

	r.GET("/feed/public", s.publicFeed)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "no such route"}})
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- request helpers ---

// bindJSON decodes and validates a JSON body. It answers the request on failure.
func bindJSON[T validation.Validatable](c *gin.Context, dst *T) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortInvalid(c, fmt.Errorf("malformed body: %w", err))
		return false
	}
	if err := (*dst).Validate(); err != nil {
		abortInvalid(c, err)
		return false
	}
	return true
}

// bindQuery decodes and validates the query string.
func bindQuery[T validation.Validatable](c *gin.Context, dst *T) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		abortInvalid(c, fmt.Errorf("malformed query: %w", err))
		return false
	}
	if err := (*dst).Validate(); err != nil {
		abortInvalid(c, err)
		return false
	}
	return true
}

// pathID parses the :id path parameter.
func (s *Server) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		s.abortWithError(c, fmt.Errorf("%w: malformed id", errs.ErrValidation))
		return uuid.Nil, false
	}
	return id, true
}

// readUpload reads a multipart file field fully into memory.
// A missing field yields (nil, nil) unless required.
func (s *Server) readUpload(c *gin.Context, field string, required bool) (*model.Upload, bool) {
	fh, err := c.FormFile(field)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		if required {
			s.abortWithError(c, fmt.Errorf("%w: %s file is required", errs.ErrValidation, field))
			return nil, false
		}
		return nil, true
	case err != nil:
		s.abortUploadError(c, err)
		return nil, false
	}
	up, err := readFile(fh)
	if err != nil {
		s.abortUploadError(c, err)
		return nil, false
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		s.abortWithError(c, fmt.Errorf("%w: %s must be an image, got %s", errs.ErrValidation, field, up.ContentType))
		return nil, false
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.uploadBytes.Observe(float64(len(up.Data)))
	}
	return up, true
}

func (s *Server) abortUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody{Error: errorDetail{
			Code: "TOO_LARGE", Message: fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit),
		}})
		return
	}
	s.abortWithError(c, fmt.Errorf("%w: bad multipart body: %v", errs.ErrValidation, err))
}

func readFile(fh *multipart.FileHeader) (*model.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return &model.Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}
