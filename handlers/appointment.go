package handlers

import (
	"net/http"
	"time"

	shopRepo "winqroo/database/repository/shop"
	userRepo "winqroo/database/repository/user"
	"winqroo/middleware"
	"winqroo/models"
	"winqroo/services/appointment"
	"winqroo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes scheduled bookings over HTTP.
type AppointmentHandler struct {
	Service appointment.AppointmentService
	Shops   shopRepo.ShopRepository
	Users   userRepo.UserRepository
	Logger  *zap.Logger
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(svc appointment.AppointmentService, shops shopRepo.ShopRepository, users userRepo.UserRepository, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Shops: shops, Users: users, Logger: logger}
}

type bookAppointmentInput struct {
	ShopID          string               `json:"shop_id" binding:"required"`
	ServiceIDs      []string             `json:"service_ids" binding:"required"`
	ScheduledAt     time.Time            `json:"scheduled_at" binding:"required"`
	PaymentOption   models.PaymentOption `json:"payment_option"`
	IsEmergency     bool                 `json:"is_emergency"`
	EmergencyReason string               `json:"emergency_reason"`
	Notes           string               `json:"notes"`
}

// BookAppointmentHandler handles POST /api/appointments.
func (h *AppointmentHandler) BookAppointmentHandler(c *gin.Context) {
	var input bookAppointmentInput
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

	appt, err := h.Service.Book(c.Request.Context(), appointment.BookRequest{
		ShopID:          input.ShopID,
		ServiceIDs:      input.ServiceIDs,
		CustomerID:      userID,
		CustomerName:    user.Name,
		ScheduledAt:     input.ScheduledAt,
		CustomerType:    customerType,
		IsEmergency:     input.IsEmergency,
		EmergencyReason: input.EmergencyReason,
		PaymentOption:   input.PaymentOption,
		Notes:           input.Notes,
	})
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Appointment booked successfully", "appointment": appt})
}

// GetMyAppointmentsHandler handles GET /api/appointments/my-appointments.
func (h *AppointmentHandler) GetMyAppointmentsHandler(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	appts, err := h.Service.ListByCustomer(c.Request.Context(), userID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load appointments", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// GetShopAppointmentsHandler handles GET /api/appointments/shop/:shopId
// (owner only). Optional from/to query params bound as RFC 3339.
func (h *AppointmentHandler) GetShopAppointmentsHandler(c *gin.Context) {
	shopID := c.Param("shopId")

	shop, err := h.Shops.GetByID(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "shop not found", shopID)
		return
	}
	if shop.OwnerID != c.GetString(middleware.CtxUserID) {
		utils.JSONError(c, http.StatusForbidden, "access denied", "you can only view appointments for your own shop")
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid 'from' timestamp", v)
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid 'to' timestamp", v)
			return
		}
	}

	appts, err := h.Service.ListByShop(c.Request.Context(), shopID, from, to)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load appointments", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

type appointmentStatusInput struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatusHandler handles PUT /api/appointments/:id/status
// (owner only).
func (h *AppointmentHandler) UpdateAppointmentStatusHandler(c *gin.Context) {
	var input appointmentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	apptID := c.Param("id")
	appt, err := h.Service.GetByID(c.Request.Context(), apptID)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	shop, err := h.Shops.GetByID(c.Request.Context(), appt.ShopID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "shop not found", appt.ShopID)
		return
	}
	if shop.OwnerID != c.GetString(middleware.CtxUserID) {
		utils.JSONError(c, http.StatusForbidden, "access denied", "you can only update appointments in your own shop")
		return
	}

	updated, err := h.Service.UpdateStatus(c.Request.Context(), apptID, input.Status)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment status updated", "appointment": updated})
}

// CancelAppointmentHandler handles DELETE /api/appointments/:id — the
// customer (or the shop owner) cancels the appointment.
func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	apptID := c.Param("id")
	appt, err := h.Service.GetByID(c.Request.Context(), apptID)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	if appt.CustomerID != userID {
		shop, err := h.Shops.GetByID(c.Request.Context(), appt.ShopID)
		if err != nil || shop.OwnerID != userID {
			utils.JSONError(c, http.StatusForbidden, "access denied", "")
			return
		}
	}

	updated, err := h.Service.UpdateStatus(c.Request.Context(), apptID, models.AppointmentCancelled)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully", "appointment": updated})
}

func (h *AppointmentHandler) respondAppointmentError(c *gin.Context, err error) {
	switch {
	case appointment.IsCode(err, appointment.CodeNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case appointment.IsCode(err, appointment.CodePaymentRequired):
		utils.JSONError(c, http.StatusPaymentRequired, "payment required", err.Error())
	case appointment.IsCode(err, appointment.CodeSlotConflict):
		utils.JSONError(c, http.StatusConflict, "slot unavailable", err.Error())
	case appointment.IsCode(err, appointment.CodeInvalidTransition), appointment.IsCode(err, appointment.CodeInvalidSchedule):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	default:
		h.Logger.Error("appointment operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "server error", err.Error())
	}
}
