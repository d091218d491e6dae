package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hray3182/diditakeit/internal/backoff"
	"github.com/hray3182/diditakeit/internal/clock"
	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/notify"
	"github.com/hray3182/diditakeit/internal/overdue"
	"github.com/hray3182/diditakeit/internal/recurrence"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/tasks"
)

type Config struct {
	Tasks         *tasks.Service
	Settings      *repository.SettingsRepository
	Notifier      notify.Notifier
	Alarm         overdue.Alarm
	Session       *Session
	Clock         clock.Clock
	NotifyTimeout time.Duration
}

type intervals struct {
	check    time.Duration
	rollover time.Duration
}

type Scheduler struct {
	tasks         *tasks.Service
	settings      *repository.SettingsRepository
	notifier      notify.Notifier
	alarm         overdue.Alarm
	session       *Session
	clock         clock.Clock
	notifyTimeout time.Duration
	initialDelay  time.Duration

	notifyCh   chan struct{}
	intervalCh chan intervals
	intervalMu sync.Mutex
	sends      sync.WaitGroup
}

// Report describes what one tick did.
type Report struct {
	RolledOver []string
	Reset      bool
	Overdue    []models.Task
	Trigger    *models.Task
	Message    string
	Dispatched bool
}

func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Session == nil {
		cfg.Session = NewSession()
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	return &Scheduler{
		tasks:         cfg.Tasks,
		settings:      cfg.Settings,
		notifier:      cfg.Notifier,
		alarm:         cfg.Alarm,
		session:       cfg.Session,
		clock:         cfg.Clock,
		notifyTimeout: cfg.NotifyTimeout,
		initialDelay:  2 * time.Second,
		notifyCh:      make(chan struct{}, 1),
		intervalCh:    make(chan intervals, 1),
	}
}

func (s *Scheduler) Session() *Session {
	return s.session
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

// SetIntervals re-arms both timers. A non-positive rollover period follows
// the check period. Only the latest pending request is kept.
func (s *Scheduler) SetIntervals(check, rollover time.Duration) {
	if check <= 0 {
		return
	}
	if rollover <= 0 {
		rollover = check
	}
	s.intervalMu.Lock()
	defer s.intervalMu.Unlock()
	select {
	case <-s.intervalCh:
	default:
	}
	s.intervalCh <- intervals{check: check, rollover: rollover}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")

	settings := s.loadSettings(ctx)
	checkTicker := time.NewTicker(settings.CheckInterval())
	rolloverTicker := time.NewTicker(settings.RolloverInterval())
	defer func() {
		checkTicker.Stop()
		rolloverTicker.Stop()
	}()

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.initialDelay):
	}

	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-checkTicker.C:
			s.Tick(ctx)
		case <-rolloverTicker.C:
			s.Rollover(ctx)
		case iv := <-s.intervalCh:
			checkTicker.Stop()
			rolloverTicker.Stop()
			checkTicker = time.NewTicker(iv.check)
			rolloverTicker = time.NewTicker(iv.rollover)
			log.Printf("Scheduler intervals set to check=%s rollover=%s", iv.check, iv.rollover)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.Tick(ctx)
		}
	}
}

// Wait blocks until every in-flight notification has finished.
func (s *Scheduler) Wait() {
	s.sends.Wait()
}

// Rollover runs the recurrence pass only.
func (s *Scheduler) Rollover(ctx context.Context) []string {
	now := s.clock.Now()
	var rolled []string
	err := s.tasks.Update(ctx, func(list []models.Task) ([]kv.Op, bool, error) {
		rolled = s.rollover(list, now)
		return s.clearStates(rolled), len(rolled) > 0, nil
	})
	if err != nil {
		log.Printf("Failed to roll over tasks: %v", err)
		return nil
	}
	return rolled
}

// Tick runs one full evaluation: daily reset, rollover, overdue detection,
// notification backoff, a single store write, then the side effects.
func (s *Scheduler) Tick(ctx context.Context) Report {
	now := s.clock.Now()
	settings := s.loadSettings(ctx)
	lastReset, err := s.settings.LastDailyReset(ctx)
	if err != nil {
		log.Printf("Failed to get last daily reset: %v", err)
	}
	creds, canSend := notify.Resolve(settings.Telegram, s.session.Credentials())

	var (
		report   Report
		result   overdue.Result
		decision backoff.Decision
		send     bool
	)
	err = s.tasks.Update(ctx, func(list []models.Task) ([]kv.Op, bool, error) {
		var ops []kv.Op
		changed := false

		if settings.ShouldDailyReset(now, lastReset) {
			for i := range list {
				list[i].Checked = false
				list[i].AlarmTriggered = false
				ops = append(ops, s.tasks.Notifications().DeleteOp(list[i].ID))
			}
			ops = append(ops, s.settings.LastDailyResetOp(now.Format("2006-01-02")))
			report.Reset = true
			changed = true
		}

		report.RolledOver = s.rollover(list, now)
		ops = append(ops, s.clearStates(report.RolledOver)...)
		changed = changed || len(report.RolledOver) > 0

		result = overdue.Evaluate(list, now)
		changed = changed || result.Changed

		if canSend && len(result.Overdue) > 0 {
			ids := make([]string, len(result.Overdue))
			for i, t := range result.Overdue {
				ids[i] = t.ID
			}
			states, err := s.tasks.Notifications().ForTasks(ctx, ids)
			if err != nil {
				return nil, false, err
			}
			// Deletes queued above are not visible to ForTasks yet.
			if report.Reset {
				clear(states)
			}
			for _, id := range report.RolledOver {
				delete(states, id)
			}
			if decision, send = backoff.Plan(result.Overdue, states, now); send {
				op, err := s.tasks.Notifications().PutOp(decision.Trigger.ID, decision.NextState)
				if err != nil {
					return nil, false, err
				}
				ops = append(ops, op)
				trigger := *decision.Trigger
				report.Trigger = &trigger
				report.Message = decision.Message
			}
		}

		for _, t := range result.Overdue {
			report.Overdue = append(report.Overdue, *t)
		}
		return ops, changed, nil
	})
	if err != nil {
		log.Printf("Failed to evaluate tasks: %v", err)
		return Report{}
	}

	overdue.Signal(result, s.alarm)

	if send && s.notifier != nil {
		s.deliver(ctx, creds, report.Message, len(report.Overdue))
		report.Dispatched = true
	}
	return report
}

func (s *Scheduler) rollover(list []models.Task, now time.Time) []string {
	var rolled []string
	for i := range list {
		if recurrence.Normalize(&list[i], now) {
			rolled = append(rolled, list[i].ID)
		}
	}
	return rolled
}

// clearStates ends the notification streak of tasks that started a new
// occurrence.
func (s *Scheduler) clearStates(ids []string) []kv.Op {
	ops := make([]kv.Op, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, s.tasks.Notifications().DeleteOp(id))
	}
	return ops
}

func (s *Scheduler) deliver(ctx context.Context, creds notify.Credentials, text string, count int) {
	s.sends.Add(1)
	go func() {
		defer s.sends.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Send(sendCtx, creds, text); err != nil {
			log.Printf("Failed to send overdue notification: %v", err)
			return
		}
		log.Printf("Sent overdue notification for %d task(s)", count)
	}()
}

func (s *Scheduler) loadSettings(ctx context.Context) models.Settings {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
	}
	return settings
}
