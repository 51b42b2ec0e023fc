package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/fourtogenic/photoshare/internal/model"
)

func (s *Server) addLike(c *gin.Context) {
	var req likeRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := model.NewLikeTarget(model.TargetType(req.TargetType), uuid.FromStringOrNil(req.TargetID))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	l, err := s.svc.Likes.AddLike(c.Request.Context(), requester(c), target)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.likesAdded.Inc()
	}
	c.JSON(http.StatusOK, toLike(l))
}

func (s *Server) removeLike(c *gin.Context) {
	var q unlikeQuery
	if !bindQuery(c, &q) {
		return
	}
	target, err := q.target()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := s.svc.Likes.RemoveLike(c.Request.Context(), requester(c), target); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResp)
}

func (s *Server) myLikes(c *gin.Context) {
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := s.svc.Likes.ListMyLikes(c.Request.Context(), requester(c), q.targetType(), q.page())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(page, toLikedItem))
}

func (s *Server) publicFeed(c *gin.Context) {
	var q listQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := s.svc.Feed.Public(c.Request.Context(), model.FeedSort(q.Sort), q.page())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(page, toFeedItem))
}
