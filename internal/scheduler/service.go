package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/reefkeep/tankd/internal/journal"
	"github.com/reefkeep/tankd/internal/model"
)

const (
	DefaultPollInterval   = 60 * time.Second
	DefaultSnoozeDuration = 15 * time.Minute
)

// Store is the slice of the persistence layer the service needs.
type Store interface {
	journal.Store
	GetTaskTemplate(ctx context.Context, id int64) (model.TaskTemplate, error)
	ListTemplatesDueOn(ctx context.Context, day time.Time) ([]model.TaskTemplate, error)
}

// DueEvent is raised when a due template's notification time passes.
// Delivery is the consumer's concern; the service only emits.
type DueEvent struct {
	TemplateID int64
	Title      string
	TankName   string
	Category   model.Category
	Due        time.Time
	RaisedAt   time.Time
}

type Options struct {
	PollInterval   time.Duration
	SnoozeDuration time.Duration
	BufferSize     int
	Now            func() time.Time
	Logger         zerolog.Logger
}

// Service owns the daily suppression set and runs the polling scan on a
// single goroutine. Construct one per process with injected dependencies;
// there is no shared instance.
type Service struct {
	store   Store
	journal *journal.Logger
	log     zerolog.Logger
	poll    time.Duration
	snooze  time.Duration
	now     func() time.Time

	mu       sync.Mutex
	suppress *suppression
	started  bool
	stopped  bool

	out     chan DueEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
	dropped uint64
}

func NewService(store Store, opts Options) *Service {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SnoozeDuration <= 0 {
		opts.SnoozeDuration = DefaultSnoozeDuration
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 16
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		journal:  journal.New(store, opts.Now),
		log:      opts.Logger,
		poll:     opts.PollInterval,
		snooze:   opts.SnoozeDuration,
		now:      opts.Now,
		suppress: newSuppression(),
		out:      make(chan DueEvent, opts.BufferSize),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// C is the stream of due events. Closed on Stop.
func (s *Service) C() <-chan DueEvent {
	return s.out
}

// Start launches the scan loop: one scan immediately, then one per poll
// interval. Safe to call once.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.loop()
}

func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Dropped counts events discarded because the consumer lagged behind the
// channel buffer.
func (s *Service) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

func (s *Service) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	s.Scan(context.Background())

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Scan(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Scan loads today's due templates and emits an event for each one whose
// notification time has passed and which has not fired today. A read failure
// is logged and skipped; the next tick retries naturally.
func (s *Service) Scan(ctx context.Context) {
	now := s.now()
	due, err := s.store.ListTemplatesDueOn(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("due-task scan failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	notified := s.suppress.snapshot(now)
	for _, tpl := range due {
		if !ShouldNotify(tpl, now, notified) {
			continue
		}
		ev := DueEvent{
			TemplateID: tpl.ID,
			Title:      tpl.Title,
			TankName:   tpl.TankName,
			Category:   tpl.Category,
			Due:        *tpl.NextDue,
			RaisedAt:   now,
		}
		select {
		case s.out <- ev:
			s.suppress.mark(tpl.ID, now)
			s.log.Info().Int64("template_id", tpl.ID).Str("title", tpl.Title).Msg("task due notification raised")
		default:
			atomic.AddUint64(&s.dropped, 1)
			s.log.Warn().Int64("template_id", tpl.ID).Msg("due event dropped, consumer lagging")
		}
	}
}

// HandleResponse applies a user's reaction to a due-task notification.
//
// Perform and Skip log an activity and advance the schedule. Snooze logs an
// activity, pushes the template's notification time forward by the snooze
// duration, and clears suppression so the reminder fires again. Ignore logs
// an activity and leaves the template suppressed for the rest of the day.
//
// A response to a template deleted since the notification was raised is a
// no-op reporting storage.ErrNotFound; notifications can outlive their data.
func (s *Service) HandleResponse(ctx context.Context, templateID int64, action model.Action, notes string) (model.TaskTemplate, error) {
	now := s.now()
	tpl, err := s.store.GetTaskTemplate(ctx, templateID)
	if err != nil {
		return model.TaskTemplate{}, fmt.Errorf("respond to template %d: %w", templateID, err)
	}

	_, updated, err := s.journal.Log(ctx, tpl, action, notes, now)
	if err != nil {
		return model.TaskTemplate{}, err
	}

	switch action {
	case model.ActionSnoozed:
		// A snooze that crosses midnight would wrap to an early clock time
		// and re-fire on the next scan; clamp it to the end of the day.
		shifted := now.Add(s.snooze)
		if model.SameDay(now, shifted) {
			updated.NotificationTime = model.ClockTimeOf(shifted)
		} else {
			updated.NotificationTime = "23:59"
		}
		if err := s.store.SaveTaskTemplate(ctx, &updated); err != nil {
			return model.TaskTemplate{}, fmt.Errorf("save snoozed template %d: %w", templateID, err)
		}
		s.mu.Lock()
		s.suppress.clear(templateID, now)
		s.mu.Unlock()
	case model.ActionIgnored:
		s.mu.Lock()
		s.suppress.mark(templateID, now)
		s.mu.Unlock()
	}

	s.log.Info().Int64("template_id", templateID).Str("action", string(action)).Msg("task response handled")
	return updated, nil
}
