package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleTutor   Role = "tutor"
	RoleLearner Role = "learner"
)

func (r Role) Valid() bool {
	return r == RoleTutor || r == RoleLearner
}

// Participant участник реестра; после регистрации не меняется
type Participant struct {
	Role         Role      `json:"role"`
	Address      string    `json:"address"`
	Subjects     []string  `json:"subjects"`
	Availability string    `json:"availability"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Teaches возвращает true, если пересечение предметов непустое
func (p Participant) Teaches(subjects []string) bool {
	for _, want := range subjects {
		for _, have := range p.Subjects {
			if have == want {
				return true
			}
		}
	}
	return false
}

// SplitSubjects разбирает список предметов через запятую
func SplitSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	subjects := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			subjects = append(subjects, part)
		}
	}
	return subjects
}
