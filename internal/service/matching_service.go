package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"go.uber.org/zap"
)

// Roster упорядоченный реестр участников. Записи после добавления не меняются.
type Roster struct {
	mu      sync.RWMutex
	entries []model.Participant
}

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) Append(p model.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, p)
}

// Scan обходит реестр в порядке регистрации, пока fn возвращает true
func (r *Roster) Scan(fn func(p model.Participant) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.entries {
		if !fn(p) {
			return
		}
	}
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

const participantStoreTimeout = 5 * time.Second

// ParticipantStore журнал регистраций. Реестр в памяти остаётся источником правды.
type ParticipantStore interface {
	Save(ctx context.Context, p *model.Participant) error
	ListAll(ctx context.Context) ([]model.Participant, error)
}

type MatchingOption func(*MatchingService)

// WithParticipantStore дублирует регистрации в store
func WithParticipantStore(store ParticipantStore) MatchingOption {
	return func(s *MatchingService) { s.store = store }
}

type MatchingService struct {
	roster *Roster
	store  ParticipantStore
	logger *zap.Logger
	now    func() time.Time
}

func NewMatchingService(roster *Roster, logger *zap.Logger, opts ...MatchingOption) *MatchingService {
	if roster == nil {
		roster = NewRoster()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MatchingService{
		roster: roster,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore загружает сохранённых участников в реестр. Вызывается один раз при старте.
func (s *MatchingService) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	participants, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, apperr.New(apperr.KindUnavailable, "restore roster", err)
	}
	for _, p := range participants {
		s.roster.Append(p)
	}

	s.logger.Info("Roster restored", zap.Int("participants", len(participants)))
	return len(participants), nil
}

// Register добавляет участника. Уникальность не проверяется.
func (s *MatchingService) Register(ctx context.Context, p model.Participant) (model.Participant, error) {
	const op = "register participant"

	if err := ctx.Err(); err != nil {
		return model.Participant{}, err
	}

	if !p.Role.Valid() {
		return model.Participant{}, apperr.Validation(op, "role must be %q or %q, got %q", model.RoleTutor, model.RoleLearner, p.Role)
	}
	p.Address = strings.TrimSpace(p.Address)
	if p.Address == "" {
		return model.Participant{}, apperr.Validation(op, "address is required")
	}
	if len(p.Subjects) == 0 {
		return model.Participant{}, apperr.Validation(op, "at least one subject is required")
	}
	if strings.TrimSpace(p.Availability) == "" {
		return model.Participant{}, apperr.Validation(op, "availability is required")
	}

	// Копия, чтобы вызывающий не мог изменить запись в реестре
	p.Subjects = append([]string(nil), p.Subjects...)
	p.RegisteredAt = s.now()
	s.roster.Append(p)
	s.persist(ctx, p)

	s.logger.Info("Participant registered",
		zap.String("role", string(p.Role)),
		zap.String("address", p.Address),
		zap.Strings("subjects", p.Subjects),
		zap.String("availability", p.Availability),
	)

	return p, nil
}

// Match возвращает первого по порядку регистрации репетитора, у которого есть
// общий предмет и точно совпадает доступность. Ранжирования нет.
func (s *MatchingService) Match(ctx context.Context, subjects []string, availability string) (model.Participant, error) {
	if err := ctx.Err(); err != nil {
		return model.Participant{}, err
	}
	if len(subjects) == 0 {
		return model.Participant{}, apperr.Validation("match tutor", "at least one subject is required")
	}

	var found *model.Participant
	s.roster.Scan(func(p model.Participant) bool {
		if p.Role == model.RoleTutor && p.Availability == availability && p.Teaches(subjects) {
			found = &p
			return false
		}
		return true
	})

	if found == nil {
		return model.Participant{}, apperr.New(apperr.KindNotFound, "match tutor", errors.New("no matching tutor found"))
	}

	s.logger.Info("Tutor matched",
		zap.String("tutor", found.Address),
		zap.Strings("subjects", subjects),
		zap.String("availability", availability),
	)

	return *found, nil
}

// Participants снимок реестра
func (s *MatchingService) Participants() []model.Participant {
	out := make([]model.Participant, 0, s.roster.Len())
	s.roster.Scan(func(p model.Participant) bool {
		out = append(out, p)
		return true
	})
	return out
}

func (s *MatchingService) persist(ctx context.Context, p model.Participant) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), participantStoreTimeout)
	defer cancel()
	if err := s.store.Save(ctx, &p); err != nil {
		s.logger.Error("Failed to persist participant", zap.String("address", p.Address), zap.Error(err))
	}
}
