package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/models"
)

const notificationPrefix = "notification:"

func NotificationKey(taskID string) string {
	return notificationPrefix + taskID
}

type NotificationRepository struct {
	store kv.Store
}

func NewNotificationRepository(store kv.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Get returns nil when the task has no notification streak.
func (r *NotificationRepository) Get(ctx context.Context, taskID string) (*models.NotificationState, error) {
	raw, found, err := r.store.Get(ctx, NotificationKey(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to load notification state: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}
	var state models.NotificationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Printf("Failed to parse notification state for %s: %v", taskID, err)
		return nil, nil
	}
	return &state, nil
}

// ForTasks loads the state of every listed task id that has one.
func (r *NotificationRepository) ForTasks(ctx context.Context, ids []string) (models.NotificationStates, error) {
	states := make(models.NotificationStates, len(ids))
	for _, id := range ids {
		state, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if state != nil {
			states[id] = state
		}
	}
	return states, nil
}

func (r *NotificationRepository) PutOp(taskID string, state *models.NotificationState) (kv.Op, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return kv.Op{}, fmt.Errorf("failed to encode notification state: %w", err)
	}
	return kv.Put(NotificationKey(taskID), string(data)), nil
}

func (r *NotificationRepository) DeleteOp(taskID string) kv.Op {
	return kv.Remove(NotificationKey(taskID))
}
