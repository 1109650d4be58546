package user

import (
	"net/http"

	"menuwise/internal/apperror"
	"menuwise/internal/respond"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) Update(c *gin.Context) {
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}

	u, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"user": u})
}

type updateHealthRequest struct {
	DishRating *float64 `json:"dishRating"`
}

func (h *Handler) UpdateHealth(c *gin.Context) {
	var req updateHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if req.DishRating == nil {
		respond.Error(c, apperror.ValidationFailed("dishRating", "dishRating is required"))
		return
	}

	u, err := h.service.UpdateHealth(c.Request.Context(), c.Param("id"), *req.DishRating)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"healthScore": u.HealthScore, "user": u})
}

func (h *Handler) BMI(c *gin.Context) {
	res, err := h.service.BMI(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"bmi": res.BMI, "category": res.Category})
}

type consumeRequest struct {
	Calories *int `json:"calories"`
}

func (h *Handler) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}
	if req.Calories == nil {
		respond.Error(c, apperror.ValidationFailed("calories", "calories is required"))
		return
	}

	u, err := h.service.LogConsumption(c.Request.Context(), c.Param("id"), *req.Calories)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{
		"consumedCaloriesToday": u.ConsumedCaloriesToday,
		"remainingCalories":     u.RemainingCalories(),
		"user":                  u,
	})
}
