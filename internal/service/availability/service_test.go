package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository/memory"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
)

// monday is a fixed reference date, far enough ahead that "today"
// filtering never kicks in unless a test moves the clock there.
var monday = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	svc     *Service
	salon   *model.Salon
	staff   *model.Staff
	service *model.Service
}

func newFixture(t *testing.T) *fixture {
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

	svc := NewService(store.Staff(), store.Salons(), store.Services(), store.Schedules(), store.Appointments(), nil, Config{
		SlotIntervalMinutes: 30,
		Location:            time.UTC,
	})
	svc.SetNowFunc(func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	})

	return &fixture{store: store, svc: svc, salon: salon, staff: staff, service: service}
}

func (f *fixture) setHours(t *testing.T, ownerType model.OwnerType, ownerID uuid.UUID, weekday model.Weekday, opens, closes string) {
	t.Helper()
	err := f.store.Schedules().UpsertWorkingHours(context.Background(), &model.WorkingHours{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Weekday:   weekday,
		OpensAt:   opens,
		ClosesAt:  closes,
		IsOpen:    true,
	})
	require.NoError(t, err)
}

func (f *fixture) openMonday(t *testing.T) {
	f.setHours(t, model.OwnerStaff, f.staff.ID, model.Monday, "09:00", "17:00")
	f.setHours(t, model.OwnerSalon, f.salon.ID, model.Monday, "09:00", "17:00")
}

func (f *fixture) book(t *testing.T, start time.Time, duration int, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		SalonID:   f.salon.ID,
		StaffID:   f.staff.ID,
		ServiceID: f.service.ID,
		GuestName: "Bob",
		StartTime: start,
		EndTime:   start.Add(time.Duration(duration) * time.Minute),
		Status:    status,
	}
	require.NoError(t, f.store.Appointments().Create(context.Background(), apt))
	return apt
}

func TestGetAvailableSlots(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	// One confirmed appointment at 10:00-10:30.
	f.book(t, monday.Add(10*time.Hour), 30, model.AppointmentStatusConfirmed)

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)

	assert.Len(t, slots, 15)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "16:30", slots[len(slots)-1])
	assert.NotContains(t, slots, "10:00")
	assert.Contains(t, slots, "09:30")
	assert.Contains(t, slots, "10:30")
}

func TestGetAvailableSlotsClosedDay(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	tuesday := monday.AddDate(0, 0, 1)
	slots, err := f.svc.GetAvailableSlots(context.Background(), f.staff.ID, f.service.ID, tuesday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlotsSalonNarrowsStaff(t *testing.T) {
	f := newFixture(t)
	f.setHours(t, model.OwnerStaff, f.staff.ID, model.Monday, "09:00", "17:00")
	f.setHours(t, model.OwnerSalon, f.salon.ID, model.Monday, "08:00", "12:00")

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)

	// Effective window is 09:00-12:00; a 30-minute service fits up to 11:30.
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, slots)
}

func TestGetAvailableSlotsDurationMustFit(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	ctx := context.Background()
	long := &model.Service{SalonID: f.salon.ID, Name: "Color", Duration: 60, Status: "active"}
	require.NoError(t, f.store.Services().Create(ctx, long))
	require.NoError(t, f.store.Staff().AssignService(ctx, f.staff.ID, long.ID))

	slots, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, long.ID, monday)
	require.NoError(t, err)

	assert.Equal(t, "16:00", slots[len(slots)-1], "16:30 would run past closing")
	assert.NotContains(t, slots, "16:30")
}

func TestGetAvailableSlotsBreak(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	err := f.store.Schedules().CreateBreak(context.Background(), &model.Break{
		OwnerType: model.OwnerStaff,
		OwnerID:   f.staff.ID,
		Title:     "Lunch",
		Kind:      model.BreakDaily,
		StartsAt:  "12:00",
		EndsAt:    "13:00",
		IsActive:  true,
	})
	require.NoError(t, err)

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)

	assert.NotContains(t, slots, "12:00")
	assert.NotContains(t, slots, "12:30")
	assert.Contains(t, slots, "11:30", "ends exactly at break start")
	assert.Contains(t, slots, "13:00", "starts exactly at break end")
}

func TestGetAvailableSlotsVacationBlocksDay(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	err := f.store.Schedules().CreateVacation(context.Background(), &model.Vacation{
		OwnerType: model.OwnerStaff,
		OwnerID:   f.staff.ID,
		Title:     "Holiday",
		StartDate: monday,
		EndDate:   monday,
		Category:  model.VacationRegular,
		IsActive:  true,
	})
	require.NoError(t, err)

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlotsTodayCutoff(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	// It is 12:15 on the requested date.
	f.svc.SetNowFunc(func() time.Time {
		return monday.Add(12*time.Hour + 15*time.Minute)
	})

	slots, err := f.svc.GetAvailableSlots(context.Background(), f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	assert.Equal(t, "12:30", slots[0])
	assert.NotContains(t, slots, "12:00")
}

func TestGetAvailableSlotsInactiveStaff(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	ctx := context.Background()
	f.staff.Status = "inactive"
	require.NoError(t, f.store.Staff().Update(ctx, f.staff))

	slots, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlotsServiceNotOffered(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	ctx := context.Background()
	other := &model.Service{SalonID: f.salon.ID, Name: "Manicure", Duration: 45, Status: "active"}
	require.NoError(t, f.store.Services().Create(ctx, other))

	_, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, other.ID, monday)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetAvailableSlotsUnknownStaff(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetAvailableSlots(context.Background(), uuid.New(), f.service.ID, monday)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetAvailableSlotsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	ctx := context.Background()
	first, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	second, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIsAvailable(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)
	ctx := context.Background()

	ok, err := f.svc.IsAvailable(ctx, f.staff.ID, monday, 600, 30, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Outside the open window.
	ok, err = f.svc.IsAvailable(ctx, f.staff.ID, monday, 480, 30, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Runs past closing.
	ok, err = f.svc.IsAvailable(ctx, f.staff.ID, monday, 1000, 30, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Taken by an existing appointment.
	apt := f.book(t, monday.Add(10*time.Hour), 30, model.AppointmentStatusConfirmed)
	ok, err = f.svc.IsAvailable(ctx, f.staff.ID, monday, 600, 30, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Same window is free when the appointment's own row is excluded.
	ok, err = f.svc.IsAvailable(ctx, f.staff.ID, monday, 600, 30, &apt.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAvailableCancelledDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	f.book(t, monday.Add(10*time.Hour), 30, model.AppointmentStatusCancelled)

	ok, err := f.svc.IsAvailable(context.Background(), f.staff.ID, monday, 600, 30, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSalonAvailable(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)
	ctx := context.Background()

	ok, err := f.svc.IsSalonAvailable(ctx, f.salon.ID, monday, 600, 30)
	require.NoError(t, err)
	assert.True(t, ok)

	// No specific time: any open slot counts.
	ok, err = f.svc.IsSalonAvailable(ctx, f.salon.ID, monday, -1, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	tuesday := monday.AddDate(0, 0, 1)
	ok, err = f.svc.IsSalonAvailable(ctx, f.salon.ID, tuesday, -1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAvailableSalonIDs(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)
	ctx := context.Background()

	closed := &model.Salon{Name: "Closed Salon", Status: "active", Timezone: "UTC"}
	require.NoError(t, f.store.Salons().Create(ctx, closed))

	ids, err := f.svc.AvailableSalonIDs(ctx, []uuid.UUID{f.salon.ID, closed.ID, uuid.New()}, monday, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.salon.ID}, ids, "closed and unknown salons are filtered out")
}

func TestGetAvailableDates(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)

	dates, err := f.svc.GetAvailableDates(context.Background(), f.staff.ID, f.service.ID, monday, 7)
	require.NoError(t, err)

	// Only Mondays are open; the scan covers one week.
	assert.Equal(t, []string{"2026-03-16"}, dates)
}

func TestGetStaffCalendar(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)
	ctx := context.Background()

	err := f.store.Schedules().CreateVacation(ctx, &model.Vacation{
		OwnerType: model.OwnerStaff,
		OwnerID:   f.staff.ID,
		Title:     "Holiday",
		StartDate: monday.AddDate(0, 0, 7),
		EndDate:   monday.AddDate(0, 0, 7),
		Category:  model.VacationRegular,
		IsActive:  true,
	})
	require.NoError(t, err)

	calendar, err := f.svc.GetStaffCalendar(ctx, f.staff.ID, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, calendar, 8)

	open := calendar["2026-03-16"]
	assert.True(t, open.IsWorking)
	assert.True(t, open.IsAvailable)
	assert.False(t, open.IsOnVacation)
	assert.False(t, open.IsSalonClosed)

	closed := calendar["2026-03-17"]
	assert.False(t, closed.IsWorking)
	assert.False(t, closed.IsAvailable)
	assert.True(t, closed.IsSalonClosed)

	vacation := calendar["2026-03-23"]
	assert.True(t, vacation.IsWorking)
	assert.True(t, vacation.IsOnVacation)
	assert.False(t, vacation.IsAvailable)
}

func TestInvalidateSchedule(t *testing.T) {
	f := newFixture(t)
	f.openMonday(t)
	ctx := context.Background()

	first, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	require.Equal(t, "09:00", first[0])

	// Shift opening later; the cached snapshot still serves 09:00.
	f.setHours(t, model.OwnerStaff, f.staff.ID, model.Monday, "10:00", "17:00")
	cached, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, "09:00", cached[0])

	f.svc.InvalidateSchedule(model.OwnerStaff, f.staff.ID)
	fresh, err := f.svc.GetAvailableSlots(ctx, f.staff.ID, f.service.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, "10:00", fresh[0])
}

func TestParseDateFormats(t *testing.T) {
	f := newFixture(t)

	iso, err := f.svc.ParseDate("2026-03-16")
	require.NoError(t, err)
	display, err := f.svc.ParseDate("16.03.2026")
	require.NoError(t, err)
	assert.True(t, iso.Equal(display))

	_, err = f.svc.ParseDate("March 16")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
