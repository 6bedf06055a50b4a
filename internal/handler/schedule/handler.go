package schedule

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/service/schedule"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
	"github.com/salonflow/salon-api/pkg/httputil"
	"github.com/salonflow/salon-api/pkg/validator"
)

type Handler struct {
	service  *schedule.Service
	validate *validator.Validator
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// RegisterRoutes mounts the schedule endpoints for both salons and
// staff. Salon entries apply to everyone working there; staff entries
// apply to one person.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	for _, owner := range []struct {
		prefix string
		typ    model.OwnerType
	}{
		{"/salons", model.OwnerSalon},
		{"/staff", model.OwnerStaff},
	} {
		typ := owner.typ
		g := r.Group(owner.prefix + "/:id")
		{
			g.GET("/hours", h.ownerHandler(typ, h.listWorkingHours))
			g.PUT("/hours", h.ownerHandler(typ, h.upsertWorkingHours))
			g.GET("/breaks", h.ownerHandler(typ, h.listBreaks))
			g.POST("/breaks", h.ownerHandler(typ, h.createBreak))
			g.GET("/vacations", h.ownerHandler(typ, h.listVacations))
			g.POST("/vacations", h.ownerHandler(typ, h.createVacation))
		}
	}

	r.PUT("/breaks/:id", h.UpdateBreak)
	r.DELETE("/breaks/:id", h.DeleteBreak)
	r.PUT("/vacations/:id", h.UpdateVacation)
	r.DELETE("/vacations/:id", h.DeleteVacation)
}

type ownerFunc func(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID)

func (h *Handler) ownerHandler(ownerType model.OwnerType, fn ownerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid owner ID", err))
			return
		}
		fn(c, ownerType, id)
	}
}

func (h *Handler) listWorkingHours(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID) {
	hours, err := h.service.GetWorkingHours(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, hours)
}

func (h *Handler) upsertWorkingHours(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID) {
	var req model.UpsertWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	hours, err := h.service.UpsertWorkingHours(c.Request.Context(), ownerType, ownerID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, hours)
}

func (h *Handler) listBreaks(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID) {
	breaks, err := h.service.ListBreaks(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, breaks)
}

func (h *Handler) createBreak(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID) {
	var req model.CreateBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	created, err := h.service.CreateBreak(c.Request.Context(), ownerType, ownerID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) UpdateBreak(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid break ID", err))
		return
	}

	var req model.CreateBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateBreak(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteBreak(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid break ID", err))
		return
	}

	if err := h.service.DeleteBreak(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) listVacations(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID) {
	vacations, err := h.service.ListVacations(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, vacations)
}

func (h *Handler) createVacation(c *gin.Context, ownerType model.OwnerType, ownerID uuid.UUID) {
	var req model.CreateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	created, err := h.service.CreateVacation(c.Request.Context(), ownerType, ownerID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) UpdateVacation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid vacation ID", err))
		return
	}

	var req model.CreateVacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	updated, err := h.service.UpdateVacation(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) DeleteVacation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid vacation ID", err))
		return
	}

	if err := h.service.DeleteVacation(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
