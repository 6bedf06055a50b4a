package availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/service/availability"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
	"github.com/salonflow/salon-api/pkg/httputil"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/staff/:id/slots", h.GetAvailableSlots)
	r.GET("/staff/:id/dates", h.GetAvailableDates)
	r.GET("/staff/:id/calendar", h.GetStaffCalendar)
	r.GET("/salons/availability", h.GetAvailableSalons)
	r.GET("/salons/:id/availability", h.GetSalonAvailability)
}

func (h *Handler) GetAvailableSlots(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid service ID", err))
		return
	}

	date, err := h.service.ParseDate(c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), staffID, serviceID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"date":  model.FormatDate(date),
		"slots": slots,
	})
}

func (h *Handler) GetAvailableDates(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid service ID", err))
		return
	}

	from := time.Now().In(h.service.Location())
	if v := c.Query("from"); v != "" {
		from, err = h.service.ParseDate(v)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	days := 0
	if v := c.Query("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 0 {
			httputil.RespondWithError(c, apperrors.Validation("invalid days parameter", err))
			return
		}
	}

	dates, err := h.service.GetAvailableDates(c.Request.Context(), staffID, serviceID, from, days)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"dates": dates})
}

func (h *Handler) GetStaffCalendar(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid staff ID", err))
		return
	}

	startDate, err := h.service.ParseDate(c.Query("start_date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	endDate, err := h.service.ParseDate(c.Query("end_date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if endDate.Before(startDate) {
		httputil.RespondWithError(c, apperrors.Validation("end_date must not precede start_date", nil))
		return
	}

	calendar, err := h.service.GetStaffCalendar(c.Request.Context(), staffID, startDate, endDate)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, calendar)
}

func (h *Handler) GetSalonAvailability(c *gin.Context) {
	salonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid salon ID", err))
		return
	}

	date, startMin, duration, err := h.parseWindow(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	available, err := h.service.IsSalonAvailable(c.Request.Context(), salonID, date, startMin, duration)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"available": available})
}

func (h *Handler) GetAvailableSalons(c *gin.Context) {
	date, startMin, duration, err := h.parseWindow(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var salonIDs []uuid.UUID
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid salon ID in ids", err))
			return
		}
		salonIDs = append(salonIDs, id)
	}
	if len(salonIDs) == 0 {
		httputil.RespondWithError(c, apperrors.Validation("ids parameter required", nil))
		return
	}

	available, err := h.service.AvailableSalonIDs(c.Request.Context(), salonIDs, date, startMin, duration)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"salon_ids": available})
}

// parseWindow reads the date plus the optional time and duration query
// parameters. A missing time yields startMin -1, meaning "any slot".
func (h *Handler) parseWindow(c *gin.Context) (time.Time, int, int, error) {
	date, err := h.service.ParseDate(c.Query("date"))
	if err != nil {
		return time.Time{}, 0, 0, err
	}

	startMin := -1
	if v := c.Query("time"); v != "" {
		startMin, err = model.ParseClock(v)
		if err != nil {
			return time.Time{}, 0, 0, apperrors.Validation(err.Error(), err)
		}
	}

	duration := 0
	if v := c.Query("duration"); v != "" {
		duration, err = strconv.Atoi(v)
		if err != nil || duration <= 0 {
			return time.Time{}, 0, 0, apperrors.Validation("invalid duration parameter", err)
		}
	}

	return date, startMin, duration, nil
}
