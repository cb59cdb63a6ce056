package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"
	"showdown-vote/internal/metrics"
	"showdown-vote/internal/normalize"
	"showdown-vote/internal/repository"

	"github.com/rs/zerolog"
)

type IngestService struct {
	contests  *repository.ContestRepository
	showdowns *repository.ShowdownRepository
	couples   *repository.CoupleRepository
	dancers   *repository.DancerRepository
	appState  *repository.AppStateRepository
	snapshots *repository.SnapshotRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewIngestService(
	contests *repository.ContestRepository,
	showdowns *repository.ShowdownRepository,
	couples *repository.CoupleRepository,
	dancers *repository.DancerRepository,
	appState *repository.AppStateRepository,
	snapshots *repository.SnapshotRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		contests:  contests,
		showdowns: showdowns,
		couples:   couples,
		dancers:   dancers,
		appState:  appState,
		snapshots: snapshots,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// IngestResult summarizes what one snapshot contributed to the store.
type IngestResult struct {
	SnapshotID string
	ContestID  string
	Showdowns  int
	Couples    int
	Dancers    int
	Skipped    int
}

// Ingest archives a raw snapshot and upserts every entity it can recognize.
// Unrecognizable items and ids that votes could never address are skipped; only a non-object payload or a storage
// failure fails the call.
func (s *IngestService) Ingest(ctx context.Context, raw []byte) (*IngestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	snapshot, derr := decodeSnapshot(raw)
	if derr != nil {
		s.metrics.RecordSnapshot(metrics.OutcomeRejected)
		return nil, derr
	}

	result, err := s.ingest(ctx, raw, snapshot)
	if err != nil {
		s.metrics.RecordSnapshot(metrics.OutcomeError)
		s.logger.Error().Err(err).Msg("failed to ingest snapshot")
		return nil, err
	}

	s.metrics.RecordSnapshot(metrics.OutcomeOK)
	s.metrics.RecordIngestedItems("showdown", result.Showdowns)
	s.metrics.RecordIngestedItems("couple", result.Couples)
	s.metrics.RecordIngestedItems("dancer", result.Dancers)

	s.logger.Info().
		Str("snapshot_id", result.SnapshotID).
		Str("contest_id", result.ContestID).
		Int("showdowns", result.Showdowns).
		Int("couples", result.Couples).
		Int("dancers", result.Dancers).
		Int("skipped", result.Skipped).
		Msg("snapshot ingested")

	return result, nil
}

func decodeSnapshot(raw []byte) (map[string]any, *DomainError) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, InvalidInput("snapshot is not valid JSON")
	}
	if dec.More() {
		return nil, InvalidInput("snapshot must be a single JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, InvalidInput("snapshot must be a JSON object")
	}
	return obj, nil
}

func (s *IngestService) ingest(ctx context.Context, raw []byte, snapshot map[string]any) (*IngestResult, error) {
	contestID := normalize.ContestID(snapshot)
	if !ValidExternalID(contestID) {
		contestID = ""
	}

	snapshotID, err := s.snapshots.Append(ctx, contestID, json.RawMessage(raw), s.now())
	if err != nil {
		return nil, err
	}
	result := &IngestResult{SnapshotID: snapshotID, ContestID: contestID}

	sections := normalize.Split(snapshot)
	active := normalize.Showdown(sections.ActiveShowdown)
	if active != nil && !ValidExternalID(active.ID) {
		active = nil
	}

	contest := normalize.Contest(sections.Contest)
	if contest != nil && !ValidExternalID(contest.ID) {
		result.Skipped++
		contest = nil
	}
	if contest != nil {
		if contest.ActiveShowdownID == nil && active != nil {
			id := active.ID
			contest.ActiveShowdownID = &id
		}
		if err := s.contests.Upsert(ctx, contest); err != nil {
			return nil, err
		}
		if err := s.appState.SetActiveContest(ctx, contest.ID); err != nil {
			return nil, err
		}
		s.metrics.RecordIngestedItems("contest", 1)
	}

	if contestID == "" {
		state, err := s.appState.Get(ctx)
		if err != nil {
			return nil, err
		}
		if state.ActiveContestID != nil {
			contestID = *state.ActiveContestID
		}
	}

	var (
		showdowns []domain.Showdown
		couples   []domain.Couple
		dancers   []domain.Dancer
	)

	addCouple := func(v any, fallbackContest *string) {
		c := normalize.Couple(v)
		if c == nil || !ValidExternalID(c.ID) {
			result.Skipped++
			return
		}
		if c.ContestID == nil {
			c.ContestID = fallbackContest
		}
		couples = append(couples, *c)
		for _, d := range normalize.EmbeddedDancers(v) {
			if ValidExternalID(d.ID) {
				dancers = append(dancers, d)
			}
		}
	}

	showdownItems := sections.Bracket
	if sections.ActiveShowdown != nil {
		showdownItems = append([]any{sections.ActiveShowdown}, sections.Bracket...)
	}
	for _, item := range showdownItems {
		sd := normalize.Showdown(item)
		if sd == nil || !ValidExternalID(sd.ID) {
			result.Skipped++
			continue
		}
		if sd.ContestID == nil && contestID != "" {
			id := contestID
			sd.ContestID = &id
		}
		showdowns = append(showdowns, *sd)
		for _, embedded := range normalize.EmbeddedCouples(item) {
			addCouple(embedded, sd.ContestID)
		}
	}

	var pairingContest *string
	if contestID != "" {
		pairingContest = &contestID
	}
	for _, item := range sections.Pairings {
		addCouple(item, pairingContest)
	}

	for _, item := range sections.Dancers {
		d := normalize.Dancer(item)
		if d == nil || !ValidExternalID(d.ID) {
			result.Skipped++
			continue
		}
		dancers = append(dancers, *d)
	}

	if err := s.showdowns.UpsertBatch(ctx, showdowns); err != nil {
		return nil, err
	}
	if err := s.couples.UpsertBatch(ctx, couples); err != nil {
		return nil, err
	}
	if err := s.dancers.UpsertBatch(ctx, dancers); err != nil {
		return nil, err
	}

	if result.Skipped > 0 {
		s.logger.Debug().Int("skipped", result.Skipped).Msg("skipped unrecognized snapshot items")
	}

	result.ContestID = contestID
	result.Showdowns = len(showdowns)
	result.Couples = len(couples)
	result.Dancers = len(dancers)
	return result, nil
}
