package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/honda-dealer/middlewares"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

type MotorcycleController struct {
	catalog *services.CatalogService
}

func NewMotorcycleController(catalog *services.CatalogService) *MotorcycleController {
	return &MotorcycleController{catalog: catalog}
}

// ListMotorcycles -> katalog motor
func (mc *MotorcycleController) ListMotorcycles(c *gin.Context) {
	list, err := mc.catalog.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of motorcycles", list)
}

func (mc *MotorcycleController) GetMotorcycle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := mc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Motorcycle detail", m)
}

// CreateMotorcycle accepts multipart form fields and an optional "image" file.
func (mc *MotorcycleController) CreateMotorcycle(c *gin.Context) {
	var in services.MotorcycleInput
	if err := c.ShouldBind(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	image, err := readUpload(c, "image")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	m, err := mc.catalog.Create(c.Request.Context(), middlewares.SessionFrom(c), in, image)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Motorcycle created", m)
}

func (mc *MotorcycleController) UpdateMotorcycle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.MotorcycleInput
	if err := c.ShouldBind(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	image, err := readUpload(c, "image")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	m, err := mc.catalog.Update(c.Request.Context(), middlewares.SessionFrom(c), id, in, image)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Motorcycle updated", m)
}

func (mc *MotorcycleController) DeleteMotorcycle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := mc.catalog.Delete(c.Request.Context(), middlewares.SessionFrom(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Motorcycle deleted", nil)
}
