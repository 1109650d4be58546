package dish

import (
	"net/http"
	"strconv"

	"menuwise/internal/apperror"
	"menuwise/internal/health"
	"menuwise/internal/middleware"
	"menuwise/internal/respond"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}

	d, err := h.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"dish": d})
}

func (h *Handler) List(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	dishes, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"count": len(dishes), "dishes": dishes})
}

func parseFilter(c *gin.Context) (Filter, error) {
	f := Filter{
		MenuID:   c.Query("menuId"),
		Category: Category(c.Query("category")),
		Tag:      health.DietaryTag(c.Query("tag")),
	}

	if f.Category != "" && !f.Category.Valid() {
		return f, apperror.ValidationFailed("category", "unknown category "+string(f.Category))
	}
	if f.Tag != "" && !f.Tag.Valid() {
		return f, apperror.ValidationFailed("tag", "unknown dietary tag "+string(f.Tag))
	}

	if v := c.Query("minScore"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < health.MinScore || n > health.MaxScore {
			return f, apperror.ValidationFailed("minScore", "minScore must be an integer between 0 and 100")
		}
		f.MinScore = &n
	}
	if v := c.Query("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperror.ValidationFailed("available", "available must be true or false")
		}
		f.Available = &b
	}

	var err error
	if f.Limit, err = nonNegative(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = nonNegative(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func nonNegative(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(key, key+" must be a non-negative integer")
	}
	return n, nil
}

func (h *Handler) Get(c *gin.Context) {
	d, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"dish": d})
}

func (h *Handler) Update(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}

	d, err := h.service.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"dish": d})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"message": "Dish deleted"})
}

func (h *Handler) Rate(c *gin.Context) {
	var in RateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "rating must be a whole number between 1 and 5")
		return
	}

	d, err := h.service.Rate(c.Request.Context(), c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"dish": d})
}

func (h *Handler) TasteProfile(c *gin.Context) {
	profile, err := h.service.TasteProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"tasteProfile": profile})
}

func (h *Handler) Suitability(c *gin.Context) {
	report, err := h.service.Suitability(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"suitability": report})
}
