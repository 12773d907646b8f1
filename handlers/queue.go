package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	shopRepo "winqroo/database/repository/shop"
	userRepo "winqroo/database/repository/user"
	"winqroo/middleware"
	"winqroo/models"
	"winqroo/services/queue"
	"winqroo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// QueueHandler exposes the queue engine over HTTP.
type QueueHandler struct {
	Service queue.QueueService
	Shops   shopRepo.ShopRepository
	Users   userRepo.UserRepository
	// Cache holds short-lived public queue snapshots for polling clients.
	// Nil disables caching.
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewQueueHandler constructs a QueueHandler.
func NewQueueHandler(svc queue.QueueService, shops shopRepo.ShopRepository, users userRepo.UserRepository, cache *redis.Client, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{Service: svc, Shops: shops, Users: users, Cache: cache, Logger: logger}
}

type joinQueueInput struct {
	ShopID          string               `json:"shop_id" binding:"required"`
	ServiceIDs      []string             `json:"service_ids" binding:"required"`
	PaymentOption   models.PaymentOption `json:"payment_option"`
	IsEmergency     bool                 `json:"is_emergency"`
	EmergencyReason string               `json:"emergency_reason"`
	Notes           string               `json:"notes"`
}

// JoinQueueHandler handles POST /api/queues.
func (h *QueueHandler) JoinQueueHandler(c *gin.Context) {
	var input joinQueueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	customerType := models.CustomerType(c.GetString(middleware.CtxCustomerType))

	if _, err := h.Shops.GetByID(c.Request.Context(), input.ShopID); err != nil {
		utils.JSONError(c, http.StatusNotFound, "shop not found", input.ShopID)
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "customer not found", userID)
		return
	}

	if input.PaymentOption == "" {
		input.PaymentOption = models.PayAtShop
	}

	entry, err := h.Service.Join(c.Request.Context(), queue.JoinRequest{
		ShopID:          input.ShopID,
		ServiceIDs:      input.ServiceIDs,
		CustomerID:      userID,
		CustomerName:    user.Name,
		CustomerType:    customerType,
		IsEmergency:     input.IsEmergency,
		EmergencyReason: input.EmergencyReason,
		PaymentOption:   input.PaymentOption,
		Notes:           input.Notes,
	})
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	h.invalidateSnapshot(c.Request.Context(), input.ShopID)
	c.JSON(http.StatusCreated, gin.H{"message": "Joined queue successfully", "queue": entry})
}

// GetShopQueuesHandler handles GET /api/queues/shop/:shopId (owner dashboard,
// all statuses).
func (h *QueueHandler) GetShopQueuesHandler(c *gin.Context) {
	shopID := c.Param("shopId")
	if !h.requireShopOwnership(c, shopID) {
		return
	}

	queues, err := h.Service.ListShopQueues(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load queues", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"queues": queues})
}

// GetActiveQueueHandler handles GET /api/queues/shop/:shopId/active — the
// public snapshot polled by waiting customers. Served from a short-lived
// cache when available.
func (h *QueueHandler) GetActiveQueueHandler(c *gin.Context) {
	shopID := c.Param("shopId")
	ctx := c.Request.Context()

	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, snapshotKey(shopID)).Result(); err == nil {
			var entries []models.QueueEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				c.JSON(http.StatusOK, gin.H{"queues": entries})
				return
			}
		}
	}

	entries, err := h.Service.ListActive(ctx, shopID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load queue", err.Error())
		return
	}

	if h.Cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := h.Cache.Set(ctx, snapshotKey(shopID), data, utils.QueueSnapshotTTL()).Err(); err != nil {
				h.Logger.Warn("failed to cache queue snapshot", zap.String("shop", shopID), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"queues": entries})
}

// GetMyQueuesHandler handles GET /api/queues/my-queues.
func (h *QueueHandler) GetMyQueuesHandler(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	queues, err := h.Service.ListCustomerQueues(c.Request.Context(), userID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load queues", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"queues": queues})
}

type updateStatusInput struct {
	Status models.QueueStatus `json:"status" binding:"required"`
}

// UpdateQueueStatusHandler handles PUT /api/queues/:id/status (owner only).
func (h *QueueHandler) UpdateQueueStatusHandler(c *gin.Context) {
	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	entryID := c.Param("id")
	entry, err := h.Service.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}
	if !h.requireShopOwnership(c, entry.ShopID) {
		return
	}

	updated, err := h.Service.UpdateStatus(c.Request.Context(), entryID, input.Status)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	h.invalidateSnapshot(c.Request.Context(), updated.ShopID)
	c.JSON(http.StatusOK, gin.H{"message": "Queue status updated", "queue": updated})
}

type swapInput struct {
	EntryA string `json:"entry_a" binding:"required"`
	EntryB string `json:"entry_b" binding:"required"`
}

// SwapPositionsHandler handles PUT /api/queues/swap (owner manual reorder).
func (h *QueueHandler) SwapPositionsHandler(c *gin.Context) {
	var input swapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	entry, err := h.Service.GetEntry(c.Request.Context(), input.EntryA)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}
	if !h.requireShopOwnership(c, entry.ShopID) {
		return
	}

	if err := h.Service.Swap(c.Request.Context(), input.EntryA, input.EntryB); err != nil {
		h.respondQueueError(c, err)
		return
	}

	h.invalidateSnapshot(c.Request.Context(), entry.ShopID)
	c.JSON(http.StatusOK, gin.H{"message": "Queue positions updated"})
}

// LeaveQueueHandler handles DELETE /api/queues/:id — the customer (or the
// shop owner) cancels the entry.
func (h *QueueHandler) LeaveQueueHandler(c *gin.Context) {
	entryID := c.Param("id")
	entry, err := h.Service.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	if entry.CustomerID != userID && !h.ownsShop(c, entry.ShopID, userID) {
		utils.JSONError(c, http.StatusForbidden, "access denied", "")
		return
	}

	updated, err := h.Service.UpdateStatus(c.Request.Context(), entryID, models.QueueStatusCancelled)
	if err != nil {
		h.respondQueueError(c, err)
		return
	}

	h.invalidateSnapshot(c.Request.Context(), updated.ShopID)
	c.JSON(http.StatusOK, gin.H{"message": "Queue cancelled successfully", "queue": updated})
}

// requireShopOwnership aborts with 403/404 unless the caller owns the shop.
func (h *QueueHandler) requireShopOwnership(c *gin.Context, shopID string) bool {
	shop, err := h.Shops.GetByID(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "shop not found", shopID)
		return false
	}
	if shop.OwnerID != c.GetString(middleware.CtxUserID) {
		utils.JSONError(c, http.StatusForbidden, "access denied", "you can only manage queues for your own shop")
		return false
	}
	return true
}

func (h *QueueHandler) ownsShop(c *gin.Context, shopID, userID string) bool {
	shop, err := h.Shops.GetByID(c.Request.Context(), shopID)
	return err == nil && shop.OwnerID == userID
}

func (h *QueueHandler) invalidateSnapshot(ctx context.Context, shopID string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Del(ctx, snapshotKey(shopID)).Err(); err != nil {
		h.Logger.Warn("failed to invalidate queue snapshot", zap.String("shop", shopID), zap.Error(err))
	}
}

func snapshotKey(shopID string) string {
	return fmt.Sprintf("queue:snapshot:%s", shopID)
}

// respondQueueError maps the engine's validation failures to 4xx responses.
// Anything outside the taxonomy is a storage fault and reported as 500.
func (h *QueueHandler) respondQueueError(c *gin.Context, err error) {
	switch {
	case queue.IsCode(err, queue.CodeNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case queue.IsCode(err, queue.CodePaymentRequired):
		utils.JSONError(c, http.StatusPaymentRequired, "payment required", err.Error())
	case queue.IsCode(err, queue.CodeDuplicateActiveEntry):
		utils.JSONError(c, http.StatusConflict, "already in a queue", err.Error())
	case queue.IsCode(err, queue.CodeConflict):
		utils.JSONError(c, http.StatusConflict, "conflict", err.Error())
	case queue.IsCode(err, queue.CodeInvalidTransition), queue.IsCode(err, queue.CodeScopeMismatch):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	default:
		h.Logger.Error("queue operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "server error", err.Error())
	}
}
