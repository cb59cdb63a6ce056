package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"
	"showdown-vote/internal/metrics"
	"showdown-vote/internal/repository"

	"github.com/rs/zerolog"
)

const statusAlreadyVoted = "ALREADY_VOTED"

// VoteResult is the success-shaped answer to a vote, including repeats.
type VoteResult struct {
	OK             bool          `json:"ok"`
	Status         string        `json:"status,omitempty"`
	ExistingChoice domain.Choice `json:"existingChoice,omitempty"`
}

type VoteService struct {
	showdowns *repository.ShowdownRepository
	users     *repository.UserRepository
	votes     *repository.VoteRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewVoteService(
	showdowns *repository.ShowdownRepository,
	users *repository.UserRepository,
	votes *repository.VoteRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *VoteService {
	return &VoteService{
		showdowns: showdowns,
		users:     users,
		votes:     votes,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// CastVote records the first vote of a user for a showdown. Later attempts
// succeed with ALREADY_VOTED and the stored choice.
func (s *VoteService) CastVote(ctx context.Context, userID, showdownID, rawChoice string) (*VoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	result, err := s.castVote(ctx, userID, showdownID, rawChoice)
	switch {
	case err == nil && result.Status == statusAlreadyVoted:
		s.metrics.RecordVote(metrics.OutcomeAlreadyVoted)
	case err == nil:
		s.metrics.RecordVote(metrics.OutcomeCast)
	default:
		var derr *DomainError
		if errors.As(err, &derr) {
			s.metrics.RecordVote(metrics.OutcomeRejected)
		} else {
			s.metrics.RecordVote(metrics.OutcomeError)
			s.logger.Error().Err(err).Str("showdown_id", showdownID).Msg("failed to cast vote")
		}
	}
	return result, err
}

func (s *VoteService) castVote(ctx context.Context, userID, showdownID, rawChoice string) (*VoteResult, error) {
	choice, ok := parseChoice(rawChoice)
	if !ok {
		return nil, InvalidInput("choice must be RED or BLUE")
	}
	if !validUserID(userID) {
		return nil, InvalidInput("userId must be a UUID")
	}
	if !ValidExternalID(showdownID) {
		return nil, InvalidInput("showdownId is malformed")
	}

	showdown, err := s.showdowns.Get(ctx, showdownID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalidShowdown()
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if admission := showdown.Admission(now); admission != domain.Admitted {
		s.logger.Debug().
			Str("showdown_id", showdownID).
			Str("reason", string(admission)).
			Time("now", now).
			Msg("vote rejected by admission gate")
		return nil, votingClosed(string(admission))
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, invalidUser()
	}

	inserted, err := s.votes.TryInsert(ctx, &domain.Vote{
		ShowdownID: showdownID,
		UserID:     userID,
		Choice:     choice,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		return &VoteResult{OK: true}, nil
	}

	existing, err := s.votes.GetChoice(ctx, showdownID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing vote: %w", err)
	}
	s.logger.Debug().
		Str("showdown_id", showdownID).
		Str("existing_choice", string(existing)).
		Msg("duplicate vote")
	return &VoteResult{OK: true, Status: statusAlreadyVoted, ExistingChoice: existing}, nil
}

// Tally counts committed votes for the showdown. Unknown showdowns tally zero.
func (s *VoteService) Tally(ctx context.Context, showdownID string) (domain.Tally, error) {
	if !ValidExternalID(showdownID) {
		return domain.Tally{}, invalidShowdown()
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.votes.Tally(ctx, showdownID)
}
