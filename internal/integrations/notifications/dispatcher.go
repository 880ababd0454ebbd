package notifications

import (
	"context"
	"sync"
	"time"
)

const sendTimeout = 10 * time.Second

// Dispatcher асинхронно отправляет уведомления пулом воркеров.
// Dispatch никогда не блокирует вызывающего: при заполненной очереди уведомление отбрасывается
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	workers int
	metrics Metrics
	log     Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDispatcher создает диспетчер с очередью queueSize и workers воркерами
func NewDispatcher(sender Sender, workers, queueSize int, metrics Metrics, log Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, queueSize),
		workers: workers,
		metrics: metrics,
		log:     log,
	}
}

// Start запускает воркеров
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}

	d.log.Info("Notification dispatcher started: workers=%d, queue=%d", d.workers, cap(d.queue))
}

// Stop закрывает очередь и ждёт, пока воркеры отправят оставшиеся уведомления
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped || !d.started {
		d.stopped = true
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()

	d.log.Info("Notification dispatcher stopped")
}

// Dispatch ставит уведомление в очередь. Возвращает false, если уведомление отброшено
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		d.log.Warn("Dispatch: dispatcher stopped, drop template=%s recipient=%d", msg.Template, msg.RecipientID)
		d.metrics.ObserveNotification(msg.Template, "dropped")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn("Dispatch: queue is full, drop template=%s recipient=%d", msg.Template, msg.RecipientID)
		d.metrics.ObserveNotification(msg.Template, "dropped")
		return false
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for msg := range d.queue {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := d.sender.Send(sendCtx, msg)
		cancel()

		if err != nil {
			d.log.Error("Notification failed: template=%s, recipient=%d: %v", msg.Template, msg.RecipientID, err)
			d.metrics.ObserveNotification(msg.Template, "failed")
			continue
		}
		d.metrics.ObserveNotification(msg.Template, "sent")
	}
}
