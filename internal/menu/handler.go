package menu

import (
	"net/http"
	"strconv"
	"strings"

	"menuwise/internal/apperror"
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

	m, err := h.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"menu": m})
}

// Upload takes a multipart form with the image under "image" and the menu
// fields as plain form values.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respond.Error(c, apperror.ValidationFailed("image", "image file is required"))
		return
	}
	defer file.Close()

	in, err := formInput(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	m, err := h.service.Upload(c.Request.Context(), middleware.UserID(c), UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Menu:        in,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"menu": m})
}

func formInput(c *gin.Context) (Input, error) {
	var in Input

	name := c.PostForm("restaurantName")
	in.RestaurantName = &name

	if tags := c.PostForm("tags"); tags != "" {
		in.Tags = strings.Split(tags, ",")
	}
	if v := c.PostForm("isPublic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, apperror.ValidationFailed("isPublic", "isPublic must be true or false")
		}
		in.IsPublic = &b
	}

	lng, lat := c.PostForm("lng"), c.PostForm("lat")
	if lng != "" || lat != "" {
		p, err := parsePoint(lng, lat)
		if err != nil {
			return in, err
		}
		p.Address = c.PostForm("address")
		in.Location = &p
	}
	return in, nil
}

func parsePoint(lngRaw, latRaw string) (PointInput, error) {
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return PointInput{}, apperror.ValidationFailed("lng", "lng must be a number")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return PointInput{}, apperror.ValidationFailed("lat", "lat must be a number")
	}
	return PointInput{Lng: lng, Lat: lat}, nil
}

func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		UploadedBy: c.Query("uploadedBy"),
		Tag:        c.Query("tag"),
	}
	if v := c.Query("public"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respond.Error(c, apperror.ValidationFailed("public", "public must be true or false"))
			return
		}
		f.PublicOnly = b
	}

	var err error
	if f.Limit, err = nonNegative(c, "limit"); err != nil {
		respond.Error(c, err)
		return
	}
	if f.Offset, err = nonNegative(c, "offset"); err != nil {
		respond.Error(c, err)
		return
	}

	menus, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"count": len(menus), "menus": menus})
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
	m, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"menu": m})
}

func (h *Handler) Update(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid request body")
		return
	}

	m, err := h.service.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"menu": m})
}

type attachRequest struct {
	DishID string `json:"dishId" binding:"required"`
}

func (h *Handler) AttachDish(c *gin.Context) {
	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.ValidationFailed("dishId", "dishId is required"))
		return
	}

	m, err := h.service.AttachDish(c.Request.Context(), c.Param("id"), req.DishID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"menu": m})
}

func (h *Handler) Recalculate(c *gin.Context) {
	m, err := h.service.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{
		"averageHealthScore": m.AverageHealthScore,
		"menu":               m,
	})
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) Nearby(c *gin.Context) {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		respond.Error(c, apperror.ValidationFailed("lat", "lat and lng are required"))
		return
	}
	p, err := parsePoint(c.Query("lng"), c.Query("lat"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	radius := 0.0
	if v := c.Query("radius"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 || !finite(radius) {
			respond.Error(c, apperror.ValidationFailed("radius", "radius must be a positive number of meters"))
			return
		}
	}

	limit, err := nonNegative(c, "limit")
	if err != nil {
		respond.Error(c, err)
		return
	}

	menus, err := h.service.Nearby(c.Request.Context(), p.Lng, p.Lat, radius, limit)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"count": len(menus), "menus": menus})
}
