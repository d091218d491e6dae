package models

import "time"

// TelegramSettings holds persisted delivery credentials and the on/off toggle.
type TelegramSettings struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
	Enabled  bool   `json:"enabled"`
}

// Settings represents user-editable preferences read by the scheduler
type Settings struct {
	CheckFrequency    int              `json:"checkFrequency"`    // minutes
	RolloverFrequency int              `json:"rolloverFrequency"` // minutes, 0 = same as CheckFrequency
	AlarmSound        string           `json:"alarmSound"`
	Volume            float64          `json:"volume"`
	TitleBlink        bool             `json:"titleBlink"`
	DayLabels         [7]string        `json:"dayLabels"`
	Telegram          TelegramSettings `json:"telegram"`
	DailyResetHour    *int             `json:"dailyResetHour,omitempty"`
}

// DefaultSettings returns the settings used when nothing is stored
func DefaultSettings() Settings {
	return Settings{
		CheckFrequency:    1,
		RolloverFrequency: 0,
		AlarmSound:        "beep",
		Volume:            0.8,
		TitleBlink:        true,
		DayLabels:         [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}
}

// Sanitize replaces out-of-range values with defaults.
func (s *Settings) Sanitize() {
	def := DefaultSettings()
	if s.CheckFrequency <= 0 {
		s.CheckFrequency = def.CheckFrequency
	}
	if s.RolloverFrequency < 0 {
		s.RolloverFrequency = 0
	}
	if s.Volume < 0 || s.Volume > 1 {
		s.Volume = def.Volume
	}
	if s.AlarmSound == "" {
		s.AlarmSound = def.AlarmSound
	}
	for i, label := range s.DayLabels {
		if label == "" {
			s.DayLabels[i] = def.DayLabels[i]
		}
	}
	if s.DailyResetHour != nil && (*s.DailyResetHour < 0 || *s.DailyResetHour > 23) {
		s.DailyResetHour = nil
	}
}

// CheckInterval is the overdue-evaluation period.
func (s Settings) CheckInterval() time.Duration {
	return time.Duration(s.CheckFrequency) * time.Minute
}

// RolloverInterval is the recurrence period; it shares CheckInterval unless set.
func (s Settings) RolloverInterval() time.Duration {
	if s.RolloverFrequency <= 0 {
		return s.CheckInterval()
	}
	return time.Duration(s.RolloverFrequency) * time.Minute
}

// ShouldDailyReset checks if the optional daily reset is due at now.
// lastReset is the local date ("2006-01-02") of the previous reset, or "".
func (s Settings) ShouldDailyReset(now time.Time, lastReset string) bool {
	if s.DailyResetHour == nil {
		return false
	}
	if lastReset == now.Format("2006-01-02") {
		return false
	}
	return now.Hour() == *s.DailyResetHour
}

// DayLabel returns the configured label for a weekday index.
func (s Settings) DayLabel(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return s.DayLabels[day]
}
