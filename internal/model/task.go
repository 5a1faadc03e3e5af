package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCategory = errors.New("model: invalid task category")
	ErrInvalidDuration = errors.New("model: task duration must be a positive number of minutes")
	ErrEmptyName       = errors.New("model: task name is required")
)

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryStudy    Category = "Study"
	CategoryHealth   Category = "Health"
	CategoryPersonal Category = "Personal"
	CategorySocial   Category = "Social"
)

// Categories lists the closed category set in display order.
var Categories = []Category{CategoryWork, CategoryStudy, CategoryHealth, CategoryPersonal, CategorySocial}

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryStudy, CategoryHealth, CategoryPersonal, CategorySocial:
		return true
	default:
		return false
	}
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Icon() string {
	switch c {
	case CategoryWork:
		return "💼"
	case CategoryStudy:
		return "📚"
	case CategoryHealth:
		return "💪"
	case CategoryPersonal:
		return "🌟"
	case CategorySocial:
		return "👥"
	default:
		return "📋"
	}
}

type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	Category    Category   `json:"category"`
	Completed   bool       `json:"completed"`
	Deleted     bool       `json:"deleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// ValidateFields checks the user-editable fields only.
func ValidateFields(name string, duration int, category Category) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if duration <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}
	if !category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if err := ValidateFields(t.Name, t.Duration, t.Category); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task createdAt is required")
	}
	if t.Completed && t.CompletedAt == nil {
		return errors.New("model: completedAt is required when task is completed")
	}
	if !t.Completed && t.CompletedAt != nil {
		return errors.New("model: completedAt must be empty when task is not completed")
	}
	return nil
}

// Active reports whether the task shows in active views.
func (t Task) Active() bool {
	return !t.Deleted
}
