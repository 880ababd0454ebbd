package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/metrics"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	fail bool
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestDispatcher_DeliversQueuedMessagesOnStop(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 3, 100, (*metrics.Metrics)(nil), logger.NewNop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		assert.True(t, d.Dispatch(Message{RecipientID: int64(i), Template: TemplateLessonReminder}))
	}
	d.Stop()

	assert.Len(t, sender.sent, 50)
	assert.False(t, d.Dispatch(Message{RecipientID: 1}))
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, 1, (*metrics.Metrics)(nil), logger.NewNop())

	assert.True(t, d.Dispatch(Message{RecipientID: 1}))
	assert.False(t, d.Dispatch(Message{RecipientID: 2}))
	d.Stop()
}

func TestDispatcher_FailuresAreNotPropagated(t *testing.T) {
	sender := &recordingSender{fail: true}
	d := NewDispatcher(sender, 1, 10, (*metrics.Metrics)(nil), logger.NewNop())
	d.Start(context.Background())

	assert.True(t, d.Dispatch(Message{RecipientID: 1, Template: TemplateRSVPConfirmation}))
	d.Stop()

	assert.Empty(t, sender.sent)
}

func TestNopSender(t *testing.T) {
	assert.NoError(t, NewNopSender(logger.NewNop()).Send(context.Background(), Message{RecipientID: 1}))
}
