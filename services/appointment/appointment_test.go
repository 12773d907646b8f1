package appointment

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	appointmentRepo "winqroo/database/repository/appointment"
	serviceRepo "winqroo/database/repository/service"
	"winqroo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogStub struct {
	services map[string]models.Service
}

func (c *catalogStub) Create(_ context.Context, svc models.Service) (string, error) {
	c.services[svc.ID] = svc
	return svc.ID, nil
}

func (c *catalogStub) GetByID(_ context.Context, id string) (*models.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return nil, serviceRepo.ErrNotFound
	}
	return &svc, nil
}

func (c *catalogStub) GetByIDs(_ context.Context, ids []string) ([]models.Service, error) {
	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := c.services[id]
		if !ok || !svc.IsActive {
			return nil, serviceRepo.ErrNotFound
		}
		out = append(out, svc)
	}
	return out, nil
}

func (c *catalogStub) ListByShop(_ context.Context, _ string, _ bool) ([]models.Service, error) {
	return nil, nil
}

func (c *catalogStub) Update(_ context.Context, svc models.Service) error {
	c.services[svc.ID] = svc
	return nil
}

func (c *catalogStub) Deactivate(_ context.Context, _ string) error { return nil }

// bookRepoStub keeps appointments in a map and checks overlap in Go, the same
// way the mongo repository does.
type bookRepoStub struct {
	appts map[string]models.Appointment
}

func newBookRepoStub() *bookRepoStub {
	return &bookRepoStub{appts: make(map[string]models.Appointment)}
}

func (r *bookRepoStub) Create(_ context.Context, appt models.Appointment) (string, error) {
	r.appts[appt.ID] = appt
	return appt.ID, nil
}

func (r *bookRepoStub) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	appt, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	return &appt, nil
}

func (r *bookRepoStub) ListByShop(_ context.Context, shopID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.ShopID == shopID && !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *bookRepoStub) ListByCustomer(_ context.Context, customerID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *bookRepoStub) CountOverlapping(_ context.Context, shopID string, start, end time.Time) (int64, error) {
	var n int64
	for _, a := range r.appts {
		if a.ShopID != shopID || a.Status.Terminal() {
			continue
		}
		aEnd := a.ScheduledAt.Add(time.Duration(a.Duration) * time.Minute)
		if a.ScheduledAt.Before(end) && start.Before(aEnd) {
			n++
		}
	}
	return n, nil
}

func (r *bookRepoStub) UpdateStatus(_ context.Context, id string, status models.AppointmentStatus) error {
	appt, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	appt.Status = status
	r.appts[id] = appt
	return nil
}

func (r *bookRepoStub) ListDueReminders(_ context.Context, horizon time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if !a.ReminderSent && !a.Status.Terminal() && a.ScheduledAt.Before(horizon) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *bookRepoStub) MarkReminderSent(_ context.Context, id string) error {
	appt, ok := r.appts[id]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	appt.ReminderSent = true
	r.appts[id] = appt
	return nil
}

type reminderRecorder struct {
	scheduled []models.Appointment
}

func (r *reminderRecorder) ScheduleReminder(appt models.Appointment) error {
	r.scheduled = append(r.scheduled, appt)
	return nil
}

func newTestService() (*DefaultAppointmentService, *bookRepoStub, *reminderRecorder) {
	repo := newBookRepoStub()
	reminders := &reminderRecorder{}
	svc := &DefaultAppointmentService{
		Repo: repo,
		Services: &catalogStub{services: map[string]models.Service{
			"cut":   {ID: "cut", ShopID: "shop-1", Duration: 30, Price: 150, IsActive: true},
			"beard": {ID: "beard", ShopID: "shop-1", Duration: 20, Price: 80, IsActive: true},
		}},
		Reminders: reminders,
	}
	return svc, repo, reminders
}

func bookReq(customer string, at time.Time) BookRequest {
	return BookRequest{
		ShopID:        "shop-1",
		ServiceIDs:    []string{"cut"},
		CustomerID:    customer,
		CustomerType:  models.CustomerStandard,
		PaymentOption: models.PayAtShop,
		ScheduledAt:   at,
	}
}

func TestBook_CreatesScheduledAppointment(t *testing.T) {
	svc, _, reminders := newTestService()
	at := time.Now().Add(2 * time.Hour)

	appt, err := svc.Book(context.Background(), bookReq("alice", at))
	require.NoError(t, err)

	assert.Equal(t, models.AppointmentScheduled, appt.Status)
	assert.Equal(t, 30, appt.Duration)
	assert.InDelta(t, 150.0, appt.Price, 1e-9)
	assert.False(t, appt.ReminderSent)

	require.Len(t, reminders.scheduled, 1)
	assert.Equal(t, appt.ID, reminders.scheduled[0].ID)
}

func TestBook_CombinesServiceDurations(t *testing.T) {
	svc, _, _ := newTestService()

	req := bookReq("alice", time.Now().Add(2*time.Hour))
	req.ServiceIDs = []string{"cut", "beard"}

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 50, appt.Duration)
	assert.InDelta(t, 230.0, appt.Price, 1e-9)
}

func TestBook_RejectsPastSchedule(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Book(context.Background(), bookReq("alice", time.Now().Add(-time.Minute)))
	assert.True(t, IsCode(err, CodeInvalidSchedule))
}

func TestBook_PriorityRequiresOnlinePayment(t *testing.T) {
	svc, _, _ := newTestService()

	req := bookReq("vera", time.Now().Add(2*time.Hour))
	req.CustomerType = models.CustomerVIP

	_, err := svc.Book(context.Background(), req)
	assert.True(t, IsCode(err, CodePaymentRequired))
}

func TestBook_VIPPaysSurcharge(t *testing.T) {
	svc, _, _ := newTestService()

	req := bookReq("vera", time.Now().Add(2*time.Hour))
	req.CustomerType = models.CustomerVIP
	req.PaymentOption = models.PayNow

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 375.0, appt.Price, 1e-9)
}

func TestBook_RejectsOverlappingSlot(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	at := time.Now().Add(2 * time.Hour)

	_, err := svc.Book(ctx, bookReq("alice", at))
	require.NoError(t, err)

	// Starts midway through the existing 30-minute booking.
	_, err = svc.Book(ctx, bookReq("bob", at.Add(15*time.Minute)))
	assert.True(t, IsCode(err, CodeSlotConflict))

	// Back to back is fine.
	appt, err := svc.Book(ctx, bookReq("carol", at.Add(30*time.Minute)))
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
}

func TestBook_ConcurrentBookingsForSameSlotAdmitOne(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	at := time.Now().Add(2 * time.Hour)

	customers := []string{"alice", "bob"}
	errs := make([]error, len(customers))
	var wg sync.WaitGroup
	for i := range customers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(ctx, bookReq(customers[i], at))
		}(i)
	}
	wg.Wait()

	booked := 0
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		case IsCode(err, CodeSlotConflict):
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	require.Equal(t, 1, booked, "racing bookings must not share a slot")

	day, err := svc.ListByShop(ctx, "shop-1", at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, day, 1)
}

func TestBook_CancelledSlotFreesTheWindow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	at := time.Now().Add(2 * time.Hour)

	first, err := svc.Book(ctx, bookReq("alice", at))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, models.AppointmentCancelled)
	require.NoError(t, err)

	_, err = svc.Book(ctx, bookReq("bob", at))
	require.NoError(t, err)
}

func TestUpdateStatus_FollowsStateMachine(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	appt, err := svc.Book(ctx, bookReq("alice", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, appt.ID, models.AppointmentCompleted)
	assert.True(t, IsCode(err, CodeInvalidTransition), "scheduled cannot complete directly")

	for _, next := range []models.AppointmentStatus{
		models.AppointmentConfirmed,
		models.AppointmentInProgress,
		models.AppointmentCompleted,
	} {
		updated, err := svc.UpdateStatus(ctx, appt.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = svc.UpdateStatus(ctx, appt.ID, models.AppointmentCancelled)
	assert.True(t, IsCode(err, CodeInvalidTransition), "completed is terminal")
}

func TestUpdateStatus_UnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpdateStatus(context.Background(), "missing", models.AppointmentConfirmed)
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestListByShop_WindowFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	base := time.Now().Add(24 * time.Hour)

	early, err := svc.Book(ctx, bookReq("alice", base))
	require.NoError(t, err)
	_, err = svc.Book(ctx, bookReq("bob", base.Add(6*time.Hour)))
	require.NoError(t, err)

	window, err := svc.ListByShop(ctx, "shop-1", base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, early.ID, window[0].ID)
}
