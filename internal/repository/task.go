package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/models"
)

const TasksKey = "tasks"

type TaskRepository struct {
	store kv.Store
}

func NewTaskRepository(store kv.Store) *TaskRepository {
	return &TaskRepository{store: store}
}

// Load returns the stored task list. An absent key yields an empty list and
// a malformed blob is logged and treated as empty. Every task is normalized
// and duplicate ids are dropped, first occurrence wins.
func (r *TaskRepository) Load(ctx context.Context) ([]models.Task, error) {
	raw, found, err := r.store.Get(ctx, TasksKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	if !found || raw == "" {
		return []models.Task{}, nil
	}

	var list []models.Task
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("Failed to parse stored tasks, starting empty: %v", err)
		return []models.Task{}, nil
	}
	return Clean(list), nil
}

// Clean normalizes every task and drops later duplicates of an id.
func Clean(list []models.Task) []models.Task {
	seen := make(map[string]bool, len(list))
	out := make([]models.Task, 0, len(list))
	for _, t := range list {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		t.Normalize()
		out = append(out, t)
	}
	return out
}

// PutOp encodes the whole list as one store write.
func (r *TaskRepository) PutOp(list []models.Task) (kv.Op, error) {
	if list == nil {
		list = []models.Task{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return kv.Op{}, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return kv.Put(TasksKey, string(data)), nil
}

func (r *TaskRepository) Save(ctx context.Context, list []models.Task) error {
	op, err := r.PutOp(list)
	if err != nil {
		return err
	}
	return r.store.Apply(ctx, op)
}
