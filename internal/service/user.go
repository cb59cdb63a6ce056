package service

import (
	"context"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"
	"showdown-vote/internal/metrics"
	"showdown-vote/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type UserService struct {
	users   *repository.UserRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewUserService(users *repository.UserRepository, m *metrics.Metrics, logger zerolog.Logger) *UserService {
	return &UserService{users: users, metrics: m, logger: logger}
}

// Register returns the user id bound to the normalized email, creating the
// user on first sight. Repeat calls refresh the display name.
func (s *UserService) Register(ctx context.Context, name, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	name, email, derr := validateRegistration(name, email)
	if derr != nil {
		return "", derr
	}

	id, err := s.users.Upsert(ctx, &domain.AudienceUser{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	})
	if err != nil {
		return "", err
	}

	s.metrics.RecordRegistration()
	s.logger.Debug().Str("user_id", id).Msg("audience user registered")
	return id, nil
}
