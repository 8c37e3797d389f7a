package model

import (
	"errors"
	"fmt"
)

// Priority ranks a plan.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities are the allowed priority levels.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// Rank orders priorities for sorting. Unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Plan is a future plan with a countdown target.
type Plan struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	TargetDate  string   `json:"targetDate"`
	IsPinned    bool     `json:"isPinned"`
	Completed   bool     `json:"completed"`
	// ReminderTime is an exact timestamp, used only when ReminderEnabled.
	ReminderEnabled bool   `json:"reminderEnabled,omitempty"`
	ReminderTime    string `json:"reminderTime,omitempty"`
}

// Validate checks the fields the store relies on.
func (p *Plan) Validate() error {
	if p.ID == "" {
		return errors.New("plan id is required")
	}
	if p.Priority != "" && !ValidPriorities[p.Priority] {
		return fmt.Errorf("invalid priority %q (valid: low, medium, high)", p.Priority)
	}
	return nil
}
