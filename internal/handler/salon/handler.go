package salon

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/service/salon"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
	"github.com/salonflow/salon-api/pkg/httputil"
	"github.com/salonflow/salon-api/pkg/validator"
)

type Handler struct {
	service  *salon.Service
	validate *validator.Validator
}

func NewHandler(service *salon.Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	salons := r.Group("/salons")
	{
		salons.POST("", h.CreateSalon)
		salons.GET("", h.ListSalons)
		salons.GET("/:id", h.GetSalon)
		salons.PUT("/:id", h.UpdateSalon)
		salons.DELETE("/:id", h.DeleteSalon)

		salons.POST("/:id/staff", h.CreateStaff)
		salons.GET("/:id/staff", h.ListStaff)
		salons.POST("/:id/services", h.CreateService)
		salons.GET("/:id/services", h.ListServices)
	}

	staff := r.Group("/staff")
	{
		staff.GET("/:id", h.GetStaff)
		staff.PUT("/:id", h.UpdateStaff)
		staff.DELETE("/:id", h.DeleteStaff)
		staff.POST("/:id/services/:serviceId", h.AssignService)
		staff.DELETE("/:id/services/:serviceId", h.UnassignService)
	}

	services := r.Group("/services")
	{
		services.GET("/:id", h.GetService)
		services.PUT("/:id", h.UpdateService)
		services.DELETE("/:id", h.DeleteService)
	}
}

func (h *Handler) CreateSalon(c *gin.Context) {
	var req model.CreateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	created, err := h.service.CreateSalon(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetSalon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	found, err := h.service.GetSalon(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateSalon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	var req model.UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateSalon(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteSalon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	if err := h.service.DeleteSalon(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ListSalons(c *gin.Context) {
	salons, err := h.service.ListSalons(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, salons)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	created, err := h.service.CreateStaff(c.Request.Context(), salonID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListStaff(c *gin.Context) {
	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	staff, err := h.service.ListStaff(c.Request.Context(), salonID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, staff)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	found, err := h.service.GetStaff(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	var req model.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateStaff(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	if err := h.service.DeleteStaff(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) CreateService(c *gin.Context) {
	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	created, err := h.service.CreateService(c.Request.Context(), salonID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListServices(c *gin.Context) {
	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), salonID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, services)
}

func (h *Handler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid service ID", err))
		return
	}

	found, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid service ID", err))
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid service ID", err))
		return
	}

	if err := h.service.DeleteService(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) AssignService(c *gin.Context) {
	staffID, serviceID, err := parseStaffService(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.AssignService(c.Request.Context(), staffID, serviceID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"assigned": true})
}

func (h *Handler) UnassignService(c *gin.Context) {
	staffID, serviceID, err := parseStaffService(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.UnassignService(c.Request.Context(), staffID, serviceID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"unassigned": true})
}

func parseStaffService(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.Validation("invalid staff ID", err)
	}
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.Validation("invalid service ID", err)
	}
	return staffID, serviceID, nil
}
