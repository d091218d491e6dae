package models

import "time"

// NotificationState tracks outbound notifications for one overdue streak
// of a task. It is deleted when the task is checked.
type NotificationState struct {
	FirstSent time.Time `json:"firstSent"`
	LastSent  time.Time `json:"lastSent"`
	SendCount int       `json:"sendCount"`
}

// NotificationStates maps task id to its streak state.
type NotificationStates map[string]*NotificationState
