package v1

import (
	"net/http"

	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type IdeaHandler struct {
	ideaUC domain.IdeaUsecase
}

// NewIdeaHandler registers the content routes. They are public; the optional
// auth middleware only widens premium content for entitled callers.
func NewIdeaHandler(public *gin.RouterGroup, ideaUC domain.IdeaUsecase, optionalAuth gin.HandlerFunc) {
	handler := &IdeaHandler{ideaUC: ideaUC}

	ideas := public.Group("/ideas", optionalAuth)
	{
		ideas.GET("", handler.List)
		ideas.GET("/:slug", handler.GetBySlug)
	}
}

func (h *IdeaHandler) List(c *gin.Context) {
	ideas, err := h.ideaUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", ideas)
}

func (h *IdeaHandler) GetBySlug(c *gin.Context) {
	idea, err := h.ideaUC.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "OK", idea)
}
