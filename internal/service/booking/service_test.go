package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository/memory"
	"github.com/salonflow/salon-api/internal/service/availability"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
	"github.com/salonflow/salon-api/pkg/messaging"
)

var monday = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event, ok := message.(messaging.Event); ok {
		p.events = append(p.events, event)
	}
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store     *memory.Store
	svc       *Service
	publisher *capturePublisher
	salon     *model.Salon
	staff     *model.Staff
	service   *model.Service
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

	availSvc := availability.NewService(store.Staff(), store.Salons(), store.Services(), store.Schedules(), store.Appointments(), nil, availability.Config{
		SlotIntervalMinutes: 30,
		Location:            time.UTC,
	})
	now := func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	availSvc.SetNowFunc(now)

	publisher := &capturePublisher{}
	svc := NewService(store.Appointments(), store.Staff(), store.Salons(), store.Services(), availSvc, publisher, nil)
	svc.SetNowFunc(now)

	return &fixture{store: store, svc: svc, publisher: publisher, salon: salon, staff: staff, service: service}
}

func (f *fixture) bookRequest() *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		SalonID:    f.salon.ID.String(),
		StaffID:    f.staff.ID.String(),
		ServiceID:  f.service.ID.String(),
		GuestName:  "Bob",
		GuestPhone: "+15550100",
		Date:       "2026-03-16",
		Time:       "10:00",
	}
}

func TestBook(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.Book(context.Background(), f.bookRequest())
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, apt.PaymentStatus)
	assert.Equal(t, monday.Add(10*time.Hour), apt.StartTime)
	assert.Equal(t, monday.Add(10*time.Hour+30*time.Minute), apt.EndTime)
	assert.Equal(t, []string{"appointment.created"}, f.publisher.types())
}

func TestBookAutoConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.salon.AutoConfirm = true
	require.NoError(t, f.store.Salons().Update(ctx, f.salon))

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
}

func TestBookDisplayDateFormat(t *testing.T) {
	f := newFixture(t)

	req := f.bookRequest()
	req.Date = "16.03.2026"

	apt, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, monday.Add(10*time.Hour), apt.StartTime)
}

func TestBookGuestIdentityRequired(t *testing.T) {
	f := newFixture(t)

	req := f.bookRequest()
	req.GuestName = ""
	req.GuestPhone = ""

	_, err := f.svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBookClosedSlot(t *testing.T) {
	f := newFixture(t)

	req := f.bookRequest()
	req.Time = "08:00"

	_, err := f.svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsClosed(err))
}

func TestBookTakenSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, f.bookRequest())
	require.Error(t, err)
	// The advisory check catches it first on the sequential path.
	assert.True(t, apperrors.IsClosed(err) || apperrors.IsConflict(err))
}

func TestBookStaffFromOtherSalon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &model.Salon{Name: "Other", Status: "active", Timezone: "UTC"}
	require.NoError(t, f.store.Salons().Create(ctx, other))

	req := f.bookRequest()
	req.SalonID = other.ID.String()

	_, err := f.svc.Book(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBookConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), f.bookRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		require.True(t, apperrors.IsConflict(err) || apperrors.IsClosed(err),
			"losers must see a conflict or closed error, got %v", err)
		lost++
	}

	assert.Equal(t, 1, won, "exactly one booking wins the slot")
	assert.Equal(t, attempts-1, lost)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	moved, err := f.svc.Reschedule(ctx, apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-03-16",
		Time: "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, monday.Add(14*time.Hour), moved.StartTime)
	assert.Equal(t, monday.Add(14*time.Hour+30*time.Minute), moved.EndTime)

	// Rescheduling onto its own original window also works.
	moved, err = f.svc.Reschedule(ctx, apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-03-16",
		Time: "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, monday.Add(14*time.Hour), moved.StartTime)
}

func TestRescheduleTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, apt.ID, "client request")
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, apt.ID, &model.RescheduleAppointmentRequest{
		Date: "2026-03-16",
		Time: "14:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestStatusLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	apt, err = f.svc.Confirm(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)

	apt, err = f.svc.Start(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, apt.Status)

	apt, err = f.svc.Complete(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)

	// Terminal states are immutable.
	_, err = f.svc.Cancel(ctx, apt.ID, "too late")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	// pending cannot jump straight to in_progress or completed.
	_, err = f.svc.Start(ctx, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Complete(ctx, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCancelStoresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, apt.ID, "client request")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "client request", *cancelled.CancelReason)
}

func TestMarkNoShow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	apt, err = f.svc.MarkNoShow(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, apt.Status)
}

func TestCancelledSlotReopens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, apt.ID, "")
	require.NoError(t, err)

	again, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)
	assert.Equal(t, apt.StartTime, again.StartTime)
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)

	req := f.bookRequest()
	req.Time = "11:00"
	_, err = f.svc.Book(ctx, req)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, &model.AppointmentFilters{StaffID: f.staff.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID, "ordered by start time")

	none, err := f.svc.List(ctx, &model.AppointmentFilters{Status: model.AppointmentStatusCancelled})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Book(ctx, f.bookRequest())
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, apt.ID)
	require.NoError(t, err)

	req := f.bookRequest()
	req.Time = "11:00"
	pending, err := f.svc.Book(ctx, req)
	require.NoError(t, err)

	// Nothing has finished yet.
	swept, err := f.svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, swept)

	// Move the clock past both windows; only the confirmed one sweeps.
	f.svc.SetNowFunc(func() time.Time { return monday.AddDate(0, 0, 1) })
	swept, err = f.svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	completed, err := f.svc.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)

	stillPending, err := f.svc.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, stillPending.Status)
}
