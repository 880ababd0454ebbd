package rsvp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/metrics"
)

// clock возвращает монотонно растущее время, чтобы порядок листа ожидания был детерминирован
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.Message
}

func (n *recordingNotifier) Dispatch(msg notifications.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

func (n *recordingNotifier) templatesFor(memberID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0)
	for _, m := range n.sent {
		if m.RecipientID == memberID {
			out = append(out, m.Template)
		}
	}
	return out
}

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, capacity int) (*memory.Store, *Service, *recordingNotifier, int64) {
	t.Helper()
	store := memory.NewStore()
	start := testNow.Add(7 * 24 * time.Hour)
	event, err := store.Events().Create(context.Background(), &domain.Event{
		Title: "Trail ride", StartTime: start, EndTime: start.Add(2 * time.Hour), Capacity: capacity,
	})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := NewService(store.Events(), store.RSVPs(), store.TxManager(), notifier,
		(*metrics.Metrics)(nil), &clock{now: testNow}, logger.NewNop())
	return store, svc, notifier, event.ID
}

func attend(eventID, memberID int64, guests int) *models.RespondRequest {
	return &models.RespondRequest{EventID: eventID, MemberID: memberID, Status: "attending", GuestCount: guests}
}

func TestRespond_WaitlistAdmission(t *testing.T) {
	ctx := context.Background()
	_, svc, notifier, eventID := newFixture(t, 1)

	first, err := svc.Respond(ctx, attend(eventID, 1, 0))
	require.NoError(t, err)
	assert.False(t, first.Waitlisted)
	assert.Equal(t, "attending", first.RSVP.Status)

	second, err := svc.Respond(ctx, attend(eventID, 2, 0))
	require.NoError(t, err)
	assert.True(t, second.Waitlisted)
	assert.Equal(t, "waitlist", second.RSVP.Status)
	assert.NotNil(t, second.RSVP.WaitlistedAt)

	count, err := svc.AttendeeCount(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, []string{notifications.TemplateRSVPConfirmation}, notifier.templatesFor(1))
	assert.Equal(t, []string{notifications.TemplateRSVPWaitlisted}, notifier.templatesFor(2))
}

func TestRespond_UpsertsAndCountsGuests(t *testing.T) {
	ctx := context.Background()
	store, svc, _, eventID := newFixture(t, 5)

	_, err := svc.Respond(ctx, attend(eventID, 1, 2))
	require.NoError(t, err)
	_, err = svc.Respond(ctx, &models.RespondRequest{EventID: eventID, MemberID: 2, Status: "maybe", GuestCount: 3})
	require.NoError(t, err)

	// обновление не учитывает прежние места самого участника
	resp, err := svc.Respond(ctx, attend(eventID, 1, 4))
	require.NoError(t, err)
	assert.False(t, resp.Waitlisted)

	list, err := store.RSVPs().ListByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	count, err := svc.AttendeeCount(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestCancel_PromotesFIFO(t *testing.T) {
	ctx := context.Background()
	_, svc, notifier, eventID := newFixture(t, 2)

	_, err := svc.Respond(ctx, attend(eventID, 1, 1)) // 2 места
	require.NoError(t, err)
	for _, member := range []int64{2, 3, 4} {
		resp, err := svc.Respond(ctx, attend(eventID, member, 0))
		require.NoError(t, err)
		require.True(t, resp.Waitlisted)
	}

	out, err := svc.Cancel(ctx, eventID, 1)
	require.NoError(t, err)
	require.Len(t, out.Promoted, 2)
	assert.Equal(t, int64(2), out.Promoted[0].MemberID)
	assert.Equal(t, int64(3), out.Promoted[1].MemberID)

	list, err := svc.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Attending)
	assert.Equal(t, []int64{4}, list.Waitlist)

	assert.Contains(t, notifier.templatesFor(2), notifications.TemplateRSVPPromoted)
	assert.NotContains(t, notifier.templatesFor(4), notifications.TemplateRSVPPromoted)

	_, err = svc.Cancel(ctx, eventID, 1)
	assert.ErrorIs(t, err, domain.ErrRSVPNotFound)
}

func TestPromotion_StopsAtHeadThatDoesNotFit(t *testing.T) {
	ctx := context.Background()
	_, svc, _, eventID := newFixture(t, 2)

	_, err := svc.Respond(ctx, attend(eventID, 1, 0))
	require.NoError(t, err)
	_, err = svc.Respond(ctx, attend(eventID, 2, 0))
	require.NoError(t, err)

	big, err := svc.Respond(ctx, attend(eventID, 3, 1)) // нужно 2 места
	require.NoError(t, err)
	require.True(t, big.Waitlisted)
	small, err := svc.Respond(ctx, attend(eventID, 4, 0))
	require.NoError(t, err)
	require.True(t, small.Waitlisted)

	// освободилось одно место: голова очереди (2 места) не помещается, следующий не обходит её
	out, err := svc.Cancel(ctx, eventID, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Promoted)

	// участник 2 переходит в maybe: теперь голова помещается
	resp, err := svc.Respond(ctx, &models.RespondRequest{EventID: eventID, MemberID: 2, Status: "maybe"})
	require.NoError(t, err)
	require.Len(t, resp.Promoted, 1)
	assert.Equal(t, int64(3), resp.Promoted[0].MemberID)
}

func TestRespond_WaitlistedKeepsQueuePosition(t *testing.T) {
	ctx := context.Background()
	_, svc, _, eventID := newFixture(t, 1)

	_, err := svc.Respond(ctx, attend(eventID, 1, 0))
	require.NoError(t, err)
	first, err := svc.Respond(ctx, attend(eventID, 2, 0))
	require.NoError(t, err)
	_, err = svc.Respond(ctx, attend(eventID, 3, 0))
	require.NoError(t, err)

	again, err := svc.Respond(ctx, &models.RespondRequest{EventID: eventID, MemberID: 2, Status: "attending", Notes: nil})
	require.NoError(t, err)
	assert.True(t, again.Waitlisted)
	assert.Equal(t, first.RSVP.WaitlistedAt, again.RSVP.WaitlistedAt)

	list, err := svc.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, list.Waitlist)
}

func TestPromoteWaitlist_AfterCapacityRaise(t *testing.T) {
	ctx := context.Background()
	store, svc, _, eventID := newFixture(t, 1)

	_, err := svc.Respond(ctx, attend(eventID, 1, 0))
	require.NoError(t, err)
	_, err = svc.Respond(ctx, attend(eventID, 2, 0))
	require.NoError(t, err)

	event, err := store.Events().GetByID(ctx, eventID)
	require.NoError(t, err)
	event.Capacity = 0 // без ограничения
	require.NoError(t, store.Events().Update(ctx, event))

	n, err := svc.PromoteWaitlist(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := svc.AttendeeCount(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRespond_Concurrent(t *testing.T) {
	ctx := context.Background()
	_, svc, _, eventID := newFixture(t, 5)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(member int64) {
			defer wg.Done()
			_, err := svc.Respond(ctx, attend(eventID, member, 0))
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	count, err := svc.AttendeeCount(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	list, err := svc.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, list.Waitlist, 15)
}

func TestRespond_Rejections(t *testing.T) {
	ctx := context.Background()
	_, svc, _, eventID := newFixture(t, 1)

	_, err := svc.Respond(ctx, &models.RespondRequest{EventID: eventID, MemberID: 1, Status: "waitlist"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Respond(ctx, attend(eventID, 1, domain.MaxGuestCount+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Respond(ctx, attend(404, 1, 0))
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
