package model

import (
	"errors"
	"strings"
)

// Mission is one daily challenge instantiated from a template.
type Mission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Reward    int    `json:"reward"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
}

func (m Mission) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("model: mission id is required")
	}
	if m.Reward < 0 {
		return errors.New("model: mission reward must be non-negative")
	}
	if strings.TrimSpace(m.Date) == "" {
		return errors.New("model: mission date is required")
	}
	return nil
}
