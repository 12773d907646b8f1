package handlers

import (
	"net/http"
	"strconv"

	serviceRepo "winqroo/database/repository/service"
	shopRepo "winqroo/database/repository/shop"
	"winqroo/middleware"
	"winqroo/models"
	"winqroo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the shop directory and each shop's service catalog.
type CatalogHandler struct {
	Shops    shopRepo.ShopRepository
	Services serviceRepo.ServiceRepository
	Logger   *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(shops shopRepo.ShopRepository, services serviceRepo.ServiceRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Shops: shops, Services: services, Logger: logger}
}

// ListShopsHandler handles GET /api/shops. Optional lat/lng/radius query
// params restrict results to shops within radius km.
func (h *CatalogHandler) ListShopsHandler(c *gin.Context) {
	lat, _ := strconv.ParseFloat(c.Query("lat"), 64)
	lng, _ := strconv.ParseFloat(c.Query("lng"), 64)
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)

	shops, err := h.Shops.List(c.Request.Context(), lat, lng, radius)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load shops", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

// GetShopHandler handles GET /api/shops/:shopId.
func (h *CatalogHandler) GetShopHandler(c *gin.Context) {
	shop, err := h.Shops.GetByID(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "shop not found", c.Param("shopId"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

type createShopInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Address     models.Address `json:"address"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
}

// CreateShopHandler handles POST /api/shops (shop owner only, one shop per
// owner).
func (h *CatalogHandler) CreateShopHandler(c *gin.Context) {
	var input createShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ownerID := c.GetString(middleware.CtxUserID)
	if _, err := h.Shops.GetByOwner(c.Request.Context(), ownerID); err == nil {
		utils.JSONError(c, http.StatusBadRequest, "you already have a shop registered", "")
		return
	}

	shop := models.Shop{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		Location: models.GeoPoint{
			Type:        "Point",
			Coordinates: []float64{input.Longitude, input.Latitude},
		},
		Phone:    input.Phone,
		Email:    input.Email,
		IsActive: true,
	}

	id, err := h.Shops.Create(c.Request.Context(), shop)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create shop", err.Error())
		return
	}
	shop.ID = id
	c.JSON(http.StatusCreated, gin.H{"message": "Shop created successfully", "shop": shop})
}

// ListShopServicesHandler handles GET /api/shops/:shopId/services (public,
// active services only).
func (h *CatalogHandler) ListShopServicesHandler(c *gin.Context) {
	services, err := h.Services.ListByShop(c.Request.Context(), c.Param("shopId"), true)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load services", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

type serviceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Duration    int     `json:"duration" binding:"required,min=5"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category"`
}

// CreateServiceHandler handles POST /api/shops/:shopId/services (owner only,
// for their own shop).
func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var input serviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	shop, err := h.Shops.GetByOwner(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "you have no registered shop", "")
		return
	}

	svc := models.Service{
		ShopID:      shop.ID,
		Name:        input.Name,
		Description: input.Description,
		Duration:    input.Duration,
		Price:       input.Price,
		Category:    input.Category,
		IsActive:    true,
	}

	id, err := h.Services.Create(c.Request.Context(), svc)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create service", err.Error())
		return
	}
	svc.ID = id
	c.JSON(http.StatusCreated, gin.H{"message": "Service created successfully", "service": svc})
}

// UpdateServiceHandler handles PUT /api/shops/:shopId/services/:serviceId
// (owner only).
func (h *CatalogHandler) UpdateServiceHandler(c *gin.Context) {
	var input serviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	svc, ok := h.serviceOwnedByCaller(c)
	if !ok {
		return
	}

	svc.Name = input.Name
	svc.Description = input.Description
	svc.Duration = input.Duration
	svc.Price = input.Price
	svc.Category = input.Category

	if err := h.Services.Update(c.Request.Context(), *svc); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update service", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service updated successfully", "service": svc})
}

// DeleteServiceHandler handles DELETE /api/shops/:shopId/services/:serviceId
// (owner only). The service is deactivated, not removed, so history keeps
// resolving.
func (h *CatalogHandler) DeleteServiceHandler(c *gin.Context) {
	svc, ok := h.serviceOwnedByCaller(c)
	if !ok {
		return
	}

	if err := h.Services.Deactivate(c.Request.Context(), svc.ID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete service", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

func (h *CatalogHandler) serviceOwnedByCaller(c *gin.Context) (*models.Service, bool) {
	svc, err := h.Services.GetByID(c.Request.Context(), c.Param("serviceId"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "service not found", c.Param("serviceId"))
		return nil, false
	}

	shop, err := h.Shops.GetByID(c.Request.Context(), svc.ShopID)
	if err != nil || shop.OwnerID != c.GetString(middleware.CtxUserID) {
		utils.JSONError(c, http.StatusForbidden, "access denied", "you can only manage services for your own shop")
		return nil, false
	}
	return svc, true
}
