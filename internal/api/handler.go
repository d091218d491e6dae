package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/notify"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/rrule"
	"github.com/hray3182/diditakeit/internal/scheduler"
	"github.com/hray3182/diditakeit/internal/tasks"
)

// Handler serves the task, preset, settings and sync endpoints.
type Handler struct {
	tasks      *tasks.Service
	settings   *repository.SettingsRepository
	sched      *scheduler.Scheduler
	onSettings func(models.Settings)
}

func NewHandler(svc *tasks.Service, settings *repository.SettingsRepository, sched *scheduler.Scheduler) *Handler {
	return &Handler{tasks: svc, settings: settings, sched: sched}
}

// OnSettingsChange registers a hook called after settings were saved. It
// replaces the default of only re-arming the scheduler timers.
func (h *Handler) OnSettingsChange(fn func(models.Settings)) {
	h.onSettings = fn
}

type CreateTaskRequest struct {
	Name       string `json:"name" binding:"required"`
	Time       string `json:"time" binding:"required"`
	ActiveDays []int  `json:"activeDays"`
}

type UpdateTaskRequest struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

type CheckedRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

type ActiveDaysRequest struct {
	ActiveDays []int `json:"activeDays"`
}

// ListTasks returns all tasks sorted by due time
// GET /api/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	list, err := h.tasks.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

// CreateTask adds a task due today at the given time
// POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Add(c.Request.Context(), req.Name, req.Time, req.ActiveDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask renames or reschedules a task
// PUT /api/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Edit(c.Request.Context(), c.Param("id"), req.Name, req.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/tasks/:id/checked
func (h *Handler) SetChecked(c *gin.Context) {
	var req CheckedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.SetChecked(c.Request.Context(), c.Param("id"), *req.Checked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PUT /api/tasks/:id/days
func (h *Handler) SetActiveDays(c *gin.Context) {
	var req ActiveDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.SetActiveDays(c.Request.Context(), c.Param("id"), req.ActiveDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetSchedule describes a task's recurrence and its next occurrences
// GET /api/tasks/:id/schedule?count=5
func (h *Handler) GetSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	task, err := h.tasks.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", "5"))
	if err != nil || count < 1 || count > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 50"})
		return
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	upcoming, err := rrule.Upcoming(&task, h.tasks.Now(), count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rrule":       rrule.ForTask(&task),
		"description": rrule.Describe(task.ActiveDays, settings.DayLabel),
		"upcoming":    upcoming,
	})
}

// GET /api/presets
func (h *Handler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": tasks.Presets()})
}

// ApplyPreset replaces preset tasks with the named bundle
// PUT /api/presets/:name
func (h *Handler) ApplyPreset(c *gin.Context) {
	added, err := h.tasks.ApplyPreset(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": added})
}

// DELETE /api/presets
func (h *Handler) ClearPresets(c *gin.Context) {
	if _, err := h.tasks.ApplyPreset(c.Request.Context(), tasks.ClearPreset); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings stores the settings and applies them to the running process
// PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings.Sanitize()
	if err := h.settings.Save(ctx, settings); err != nil {
		respondError(c, err)
		return
	}
	switch {
	case h.onSettings != nil:
		h.onSettings(settings)
	case h.sched != nil:
		h.sched.SetIntervals(settings.CheckInterval(), settings.RolloverInterval())
	}
	c.JSON(http.StatusOK, settings)
}

// SetSessionCredentials keeps delivery credentials for this process only
// PUT /api/session/credentials
func (h *Handler) SetSessionCredentials(c *gin.Context) {
	var req struct {
		BotToken string `json:"botToken"`
		ChatID   string `json:"chatId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}
	h.sched.Session().SetCredentials(notify.Credentials{Token: req.BotToken, ChatID: req.ChatID})
	c.Status(http.StatusNoContent)
}

// ExportTasks returns the raw task list for a bridge peer
// GET /api/sync/tasks
func (h *Handler) ExportTasks(c *gin.Context) {
	list, err := h.tasks.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ImportTasks overwrites the local list with a peer's list
// PUT /api/sync/tasks
func (h *Handler) ImportTasks(c *gin.Context) {
	var list []models.Task
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.sched != nil {
		session := h.sched.Session()
		if session.BeginSync() {
			defer session.EndSync()
		}
	}
	changed, err := h.tasks.Replace(c.Request.Context(), list)
	if err != nil {
		respondError(c, err)
		return
	}
	if changed && h.sched != nil {
		h.sched.Notify()
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// RunCheck runs one scheduler tick synchronously
// POST /api/check
func (h *Handler) RunCheck(c *gin.Context) {
	if h.sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}
	report := h.sched.Tick(c.Request.Context())
	overdue := report.Overdue
	if overdue == nil {
		overdue = []models.Task{}
	}
	c.JSON(http.StatusOK, gin.H{
		"overdue":    overdue,
		"rolledOver": len(report.RolledOver),
		"reset":      report.Reset,
		"notified":   report.Dispatched,
	})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, tasks.ErrInvalidTime),
		errors.Is(err, tasks.ErrEmptyName),
		errors.Is(err, tasks.ErrUnknownPreset):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
