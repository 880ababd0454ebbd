package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// Store хранилище в памяти с тем же набором операций, что и PostgreSQL-репозитории.
// Используется в режиме storage.driver = "memory" и в тестах
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state
	now  func() time.Time
}

type state struct {
	seq        int64
	slots      map[int64]domain.Slot
	bookings   map[int64]domain.Booking
	series     map[int64]domain.RecurrenceSeries
	exclusions map[int64]map[int64]time.Time // series_id -> UnixNano(original_start)
	events     map[int64]domain.Event
	rsvps      map[int64]domain.RSVP
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		data: state{
			slots:      make(map[int64]domain.Slot),
			bookings:   make(map[int64]domain.Booking),
			series:     make(map[int64]domain.RecurrenceSeries),
			exclusions: make(map[int64]map[int64]time.Time),
			events:     make(map[int64]domain.Event),
			rsvps:      make(map[int64]domain.RSVP),
		},
		now: time.Now,
	}
}

// Slots возвращает репозиторий слотов
func (s *Store) Slots() *SlotRepository { return &SlotRepository{s: s} }

// Bookings возвращает репозиторий бронирований
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// Series возвращает репозиторий серий
func (s *Store) Series() *SeriesRepository { return &SeriesRepository{s: s} }

// Events возвращает репозиторий мероприятий
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// RSVPs возвращает репозиторий ответов на мероприятия
func (s *Store) RSVPs() *RSVPRepository { return &RSVPRepository{s: s} }

// TxManager возвращает менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

func (s *Store) nextID() int64 {
	s.data.seq++
	return s.data.seq
}

func (st state) clone() state {
	c := state{
		seq:        st.seq,
		slots:      make(map[int64]domain.Slot, len(st.slots)),
		bookings:   make(map[int64]domain.Booking, len(st.bookings)),
		series:     make(map[int64]domain.RecurrenceSeries, len(st.series)),
		exclusions: make(map[int64]map[int64]time.Time, len(st.exclusions)),
		events:     make(map[int64]domain.Event, len(st.events)),
		rsvps:      make(map[int64]domain.RSVP, len(st.rsvps)),
	}
	for k, v := range st.slots {
		c.slots[k] = v
	}
	for k, v := range st.bookings {
		c.bookings[k] = v
	}
	for k, v := range st.series {
		v.DaysOfWeek = append([]int(nil), v.DaysOfWeek...)
		c.series[k] = v
	}
	for k, set := range st.exclusions {
		cs := make(map[int64]time.Time, len(set))
		for ek, ev := range set {
			cs[ek] = ev
		}
		c.exclusions[k] = cs
	}
	for k, v := range st.events {
		c.events[k] = v
	}
	for k, v := range st.rsvps {
		c.rsvps[k] = v
	}
	return c
}

type txKey struct{}

// TxManager выполняет функции под эксклюзивной блокировкой хранилища.
// При ошибке или панике состояние откатывается к снимку, сделанному перед началом
type TxManager struct {
	s *Store
}

// Do выполняет fn в транзакции
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции. Транзакции в памяти всегда последовательны
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.Lock()
	snapshot := m.s.data.clone()
	m.s.mu.Unlock()

	rollback := func() {
		m.s.mu.Lock()
		m.s.data = snapshot
		m.s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		rollback()
		return err
	}
	return nil
}
