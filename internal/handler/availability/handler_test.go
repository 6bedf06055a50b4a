package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository/memory"
	availabilityService "github.com/salonflow/salon-api/internal/service/availability"
	"github.com/salonflow/salon-api/pkg/httputil"
)

type testEnv struct {
	engine  *gin.Engine
	staff   *model.Staff
	service *model.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	salon := &model.Salon{Name: "Main Street Salon", Status: "active", Timezone: "UTC"}
	require.NoError(t, store.Salons().Create(ctx, salon))
	staff := &model.Staff{SalonID: salon.ID, Name: "Alice", Status: "active"}
	require.NoError(t, store.Staff().Create(ctx, staff))
	service := &model.Service{SalonID: salon.ID, Name: "Haircut", Duration: 30, Status: "active"}
	require.NoError(t, store.Services().Create(ctx, service))
	require.NoError(t, store.Staff().AssignService(ctx, staff.ID, service.ID))

	for _, owner := range []struct {
		typ model.OwnerType
		id  uuid.UUID
	}{{model.OwnerStaff, staff.ID}, {model.OwnerSalon, salon.ID}} {
		err := store.Schedules().UpsertWorkingHours(ctx, &model.WorkingHours{
			OwnerType: owner.typ,
			OwnerID:   owner.id,
			Weekday:   model.Monday,
			OpensAt:   "09:00",
			ClosesAt:  "17:00",
			IsOpen:    true,
		})
		require.NoError(t, err)
	}

	svc := availabilityService.NewService(store.Staff(), store.Salons(), store.Services(), store.Schedules(), store.Appointments(), nil, availabilityService.Config{
		SlotIntervalMinutes: 30,
		Location:            time.UTC,
	})
	svc.SetNowFunc(func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	})

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))

	return &testEnv{engine: engine, staff: staff, service: service}
}

func (e *testEnv) get(t *testing.T, path string) (*httptest.ResponseRecorder, httputil.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	e.engine.ServeHTTP(w, req)

	var body httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetAvailableSlotsEndpoint(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/staff/"+env.staff.ID.String()+"/slots?service_id="+env.service.ID.String()+"&date=2026-03-16")
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, "2026-03-16", data["date"])
	slots := data["slots"].([]interface{})
	assert.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0])
}

func TestGetAvailableSlotsEndpointBadInput(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/staff/not-a-uuid/slots?service_id="+env.service.ID.String()+"&date=2026-03-16")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Error.Code)

	w, body = env.get(t, "/api/v1/staff/"+env.staff.ID.String()+"/slots?service_id="+env.service.ID.String()+"&date=tomorrow")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body.Error.Code)
}

func TestGetAvailableSlotsEndpointUnknownStaff(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/staff/00000000-0000-0000-0000-000000000001/slots?service_id="+env.service.ID.String()+"&date=2026-03-16")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body.Error.Code)
}

func TestGetAvailableDatesEndpoint(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/staff/"+env.staff.ID.String()+"/dates?service_id="+env.service.ID.String()+"&from=2026-03-16&days=7")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body.Data.(map[string]interface{})
	dates := data["dates"].([]interface{})
	assert.Equal(t, []interface{}{"2026-03-16"}, dates)
}

func TestGetStaffCalendarEndpoint(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/staff/"+env.staff.ID.String()+"/calendar?start_date=2026-03-16&end_date=2026-03-17")
	assert.Equal(t, http.StatusOK, w.Code)

	calendar := body.Data.(map[string]interface{})
	require.Len(t, calendar, 2)
	monday := calendar["2026-03-16"].(map[string]interface{})
	assert.Equal(t, true, monday["is_available"])

	// Inverted range is rejected.
	w, _ = env.get(t, "/api/v1/staff/"+env.staff.ID.String()+"/calendar?start_date=2026-03-17&end_date=2026-03-16")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalonAvailabilityEndpoint(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/salons/"+env.staff.SalonID.String()+"/availability?date=2026-03-16&time=10:00&duration=30")
	assert.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, true, data["available"])

	w, body = env.get(t, "/api/v1/salons/"+env.staff.SalonID.String()+"/availability?date=2026-03-17")
	assert.Equal(t, http.StatusOK, w.Code)
	data = body.Data.(map[string]interface{})
	assert.Equal(t, false, data["available"], "closed day")
}

func TestAvailableSalonsEndpoint(t *testing.T) {
	env := setup(t)

	w, body := env.get(t, "/api/v1/salons/availability?ids="+env.staff.SalonID.String()+"&date=2026-03-16")
	assert.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	ids := data["salon_ids"].([]interface{})
	assert.Equal(t, []interface{}{env.staff.SalonID.String()}, ids)

	w, _ = env.get(t, "/api/v1/salons/availability?date=2026-03-16")
	assert.Equal(t, http.StatusBadRequest, w.Code, "ids parameter required")
}