package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/Freeeeeet/tutorchain/internal/repository/base"
)

type ParticipantRepository struct {
	*base.Repository
}

func NewParticipantRepository(db base.DB) *ParticipantRepository {
	return &ParticipantRepository{Repository: base.NewRepository(db)}
}

// Save добавляет участника в журнал регистраций
func (r *ParticipantRepository) Save(ctx context.Context, p *model.Participant) error {
	query := `
		INSERT INTO participants (role, address, subjects, availability, registered_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.ExecAffected(
		ctx, query,
		string(p.Role),
		p.Address,
		p.Subjects,
		p.Availability,
		p.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("save participant: %w", err)
	}

	return nil
}

// ListAll возвращает всех участников в порядке регистрации
func (r *ParticipantRepository) ListAll(ctx context.Context) ([]model.Participant, error) {
	query := `
		SELECT role, address, subjects, availability, registered_at
		FROM participants
		ORDER BY id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var (
			p    model.Participant
			role string
		)
		if err := rows.Scan(&role, &p.Address, &p.Subjects, &p.Availability, &p.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Role = model.Role(role)
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
