package v1

import (
	"net/http"

	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/internal/domain"
	"go-ideadaily-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type OnboardingHandler struct {
	sessionUC domain.SessionUsecase
}

func NewOnboardingHandler(protected *gin.RouterGroup, sessionUC domain.SessionUsecase) {
	handler := &OnboardingHandler{sessionUC: sessionUC}

	onboarding := protected.Group("/onboarding")
	{
		onboarding.POST("/complete", handler.Complete)
	}
}

type CompleteOnboardingRequest struct {
	PlanChoice string `json:"plan_choice" binding:"required,oneof=free premium researcher"`
}

func (h *OnboardingHandler) Complete(c *gin.Context) {
	var req CompleteOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	if err := h.sessionUC.CompleteOnboarding(c.Request.Context(), domain.PlanChoice(req.PlanChoice)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Onboarding completed", h.sessionUC.Snapshot())
}
