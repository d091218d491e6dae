// Package tasks is the task store: every read-modify-write of the task
// list goes through Service so that edits and scheduler ticks never overlap.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hray3182/diditakeit/internal/clock"
	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/repository"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrInvalidTime   = errors.New("invalid time of day, expected HH:MM")
	ErrUnknownPreset = errors.New("unknown preset")
	ErrEmptyName     = errors.New("task name is empty")
)

// ClearPreset removes preset tasks without inserting a new bundle.
const ClearPreset = "clear"

type Service struct {
	mu            sync.Mutex
	store         kv.Store
	tasks         *repository.TaskRepository
	notifications *repository.NotificationRepository
	clock         clock.Clock
	newID         func() string
	onChange      func()
}

func NewService(store kv.Store, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		store:         store,
		tasks:         repository.NewTaskRepository(store),
		notifications: repository.NewNotificationRepository(store),
		clock:         clk,
		newID:         uuid.NewString,
	}
}

// OnChange registers a hook called after every user edit that was
// persisted. It must not call back into the Service synchronously.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Service) Notifications() *repository.NotificationRepository {
	return s.notifications
}

func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// List returns the tasks sorted by due time.
func (s *Service) List(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.tasks.Load(ctx)
	if err != nil {
		return nil, err
	}
	models.SortByDue(list)
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.tasks.Load(ctx)
	if err != nil {
		return models.Task{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return list[i], nil
}

// Add creates a task due today at the given time of day.
func (s *Service) Add(ctx context.Context, name, timeOfDay string, days []int) (models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Task{}, ErrEmptyName
	}
	due, err := s.todayAt(timeOfDay)
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:         s.newID(),
		Name:       name,
		DueTime:    due,
		ActiveDays: models.NormalizeDays(days),
	}

	err = s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		return append(list, task), nil, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// SetChecked marks the current occurrence done or not done. Checking also
// ends the task's notification streak in the same store transaction.
func (s *Service) SetChecked(ctx context.Context, id string, checked bool) (models.Task, error) {
	var out models.Task
	err := s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		list[i].SetChecked(checked)
		out = list[i]
		if checked {
			return list, []kv.Op{s.notifications.DeleteOp(id)}, nil
		}
		return list, nil, nil
	})
	return out, err
}

// Edit renames and/or reschedules a task. An empty argument keeps the
// current value. An edited task no longer belongs to its preset.
func (s *Service) Edit(ctx context.Context, id, name, timeOfDay string) (models.Task, error) {
	name = strings.TrimSpace(name)
	var due time.Time
	if timeOfDay != "" {
		var err error
		if due, err = s.todayAt(timeOfDay); err != nil {
			return models.Task{}, err
		}
	}

	var out models.Task
	err := s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		if name != "" {
			list[i].Name = name
		}
		if !due.IsZero() {
			list[i].DueTime = due
			list[i].AlarmTriggered = false
		}
		list[i].IsPreset = false
		list[i].PresetType = ""
		out = list[i]
		return list, nil, nil
	})
	return out, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		list = append(list[:i], list[i+1:]...)
		return list, []kv.Op{s.notifications.DeleteOp(id)}, nil
	})
}

// SetActiveDays replaces the weekdays a task recurs on.
func (s *Service) SetActiveDays(ctx context.Context, id string, days []int) (models.Task, error) {
	var out models.Task
	err := s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		list[i].ActiveDays = models.NormalizeDays(days)
		list[i].AlarmTriggered = false
		out = list[i]
		return list, nil, nil
	})
	return out, err
}

// ApplyPreset replaces every preset task with the named bundle, due today.
// An empty name or ClearPreset only removes preset tasks.
func (s *Service) ApplyPreset(ctx context.Context, name string) ([]models.Task, error) {
	var preset Preset
	if name != "" && name != ClearPreset {
		var ok bool
		if preset, ok = findPreset(name); !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
		}
	}

	added := make([]models.Task, 0, len(preset.Items))
	for _, item := range preset.Items {
		due, err := s.todayAt(item.Time)
		if err != nil {
			return nil, err
		}
		added = append(added, models.Task{
			ID:         s.newID(),
			Name:       item.Name,
			DueTime:    due,
			IsPreset:   true,
			PresetType: preset.Name,
			ActiveDays: append([]int(nil), models.AllDays...),
		})
	}

	err := s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		kept := list[:0]
		var ops []kv.Op
		for _, t := range list {
			if t.IsPreset {
				ops = append(ops, s.notifications.DeleteOp(t.ID))
				continue
			}
			kept = append(kept, t)
		}
		return append(kept, added...), ops, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Replace overwrites the whole list, as received from a bridge peer. It
// reports whether the stored list actually changed.
func (s *Service) Replace(ctx context.Context, incoming []models.Task) (bool, error) {
	incoming = repository.Clean(incoming)
	changed := false
	err := s.mutate(ctx, func(list []models.Task) ([]models.Task, []kv.Op, error) {
		same, err := sameTasks(list, incoming)
		if err != nil {
			return nil, nil, err
		}
		if same {
			return nil, nil, nil
		}
		changed = true

		// A task the peer checked or removed ends its notification streak.
		kept := make(map[string]bool, len(incoming))
		for _, t := range incoming {
			kept[t.ID] = t.Checked
		}
		var ops []kv.Op
		for _, t := range list {
			checked, ok := kept[t.ID]
			if !ok || (checked && !t.Checked) {
				ops = append(ops, s.notifications.DeleteOp(t.ID))
			}
		}
		return incoming, ops, nil
	})
	return changed, err
}

// Update runs fn on the current list while holding the store lock. When fn
// reports a change the list and the extra ops are written atomically. The
// change hook is not called.
func (s *Service) Update(ctx context.Context, fn func(list []models.Task) (ops []kv.Op, changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.tasks.Load(ctx)
	if err != nil {
		return err
	}
	ops, changed, err := fn(list)
	if err != nil {
		return err
	}
	if !changed && len(ops) == 0 {
		return nil
	}
	if changed {
		put, err := s.tasks.PutOp(list)
		if err != nil {
			return err
		}
		ops = append([]kv.Op{put}, ops...)
	}
	if err := s.store.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// mutate is the edit path: a nil list from fn means nothing to write.
func (s *Service) mutate(ctx context.Context, fn func(list []models.Task) ([]models.Task, []kv.Op, error)) error {
	s.mu.Lock()
	list, err := s.tasks.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, ops, err := fn(list)
	if err != nil || next == nil {
		s.mu.Unlock()
		return err
	}
	put, err := s.tasks.PutOp(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.Apply(ctx, append([]kv.Op{put}, ops...)...); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (s *Service) todayAt(timeOfDay string) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

// ParseTimeOfDay parses "HH:MM" (or "H:MM") in 24-hour form.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, 0, fmt.Errorf("%q: %w", s, ErrInvalidTime)
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%q: %w", s, ErrInvalidTime)
	}
	return hour, minute, nil
}

func indexOf(list []models.Task, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func sameTasks(a, b []models.Task) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	ja, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return string(ja) == string(jb), nil
}
