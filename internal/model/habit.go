package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const (
	HabitStatusPending = "pending"
	HabitStatusDone    = "done"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

type Habit struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	TitleNorm string    `db:"title_norm" json:"-"`
	Status    string    `db:"status" json:"status"`
	Category  string    `db:"category" json:"category"`
	Progress  int       `db:"progress" json:"progress"`
	Target    int       `db:"target" json:"target"`
	Frequency string    `db:"frequency" json:"frequency"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (h *Habit) IsDone() bool {
	return h.Status == HabitStatusDone
}

// NormalizeTitle trims surrounding whitespace and applies Unicode case
// folding. Two titles are considered duplicates when their normalized
// forms are equal. The Caser is built per call; a cases.Caser may hold
// state and is not safe to share across goroutines.
func NormalizeTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

func ValidStatus(status string) bool {
	return status == HabitStatusPending || status == HabitStatusDone
}

func ValidFrequency(frequency string) bool {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}
