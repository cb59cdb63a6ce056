package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"
	"showdown-vote/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const statusClosed = "CLOSED"

type ContestView struct {
	ID                string  `json:"id"`
	Name              *string `json:"name"`
	Status            *string `json:"status"`
	CurrentRound      *string `json:"currentRound"`
	ActiveShowdownID  *string `json:"activeShowdownId"`
	JudgingModel      *string `json:"judgingModel"`
	JudgePanelSize    *int    `json:"judgePanelSize"`
	EventID           *string `json:"eventId"`
	ResultsVisibility *string `json:"resultsVisibility"`
}

type SideView struct {
	CoupleID   string  `json:"coupleId"`
	LeadName   *string `json:"leadName"`
	FollowName *string `json:"followName"`
}

// Label renders "Lead & Follow", or whichever name is known.
func (v *SideView) Label() *string {
	if v == nil {
		return nil
	}
	var names []string
	for _, n := range []*string{v.LeadName, v.FollowName} {
		if n != nil && *n != "" {
			names = append(names, *n)
		}
	}
	if len(names) == 0 {
		return nil
	}
	label := strings.Join(names, " & ")
	return &label
}

// ShowdownView is one bracket entry. Winner and audience counts are only
// populated when the contest publishes results.
type ShowdownView struct {
	ID                string         `json:"id"`
	Name              *string        `json:"name"`
	Status            *string        `json:"status"`
	Round             *string        `json:"round"`
	MatchNumber       *int           `json:"matchNumber"`
	VoteOpenTime      *time.Time     `json:"voteOpenTime"`
	VoteCloseTime     *time.Time     `json:"voteCloseTime"`
	Red               *SideView      `json:"red"`
	Blue              *SideView      `json:"blue"`
	Winner            *domain.Choice `json:"winner,omitempty"`
	RedAudienceVotes  *int           `json:"redAudienceVotes,omitempty"`
	BlueAudienceVotes *int           `json:"blueAudienceVotes,omitempty"`
}

type RoundView struct {
	Round     *string         `json:"round"`
	Showdowns []*ShowdownView `json:"showdowns"`
}

type PublicView struct {
	Contest        *ContestView    `json:"contest"`
	ContestStatus  *string         `json:"contestStatus"`
	CurrentRound   *string         `json:"currentRound"`
	ActiveShowdown *ShowdownView   `json:"activeShowdown"`
	Pairings       []SideView      `json:"pairings"`
	Bracket        []*ShowdownView `json:"bracket"`
	Rounds         []RoundView     `json:"rounds"`
	LastPayload    json.RawMessage `json:"lastPayload"`
}

// CurrentShowdown is the single-matchup projection served to older clients.
type CurrentShowdown struct {
	ShowdownID *string `json:"showdownId"`
	Red        *string `json:"red"`
	Blue       *string `json:"blue"`
	Status     string  `json:"status"`
}

func emptyView() *PublicView {
	return &PublicView{
		Pairings: []SideView{},
		Bracket:  []*ShowdownView{},
		Rounds:   []RoundView{},
	}
}

type ViewService struct {
	contests  *repository.ContestRepository
	showdowns *repository.ShowdownRepository
	couples   *repository.CoupleRepository
	dancers   *repository.DancerRepository
	appState  *repository.AppStateRepository
	snapshots *repository.SnapshotRepository
	logger    zerolog.Logger
}

func NewViewService(
	contests *repository.ContestRepository,
	showdowns *repository.ShowdownRepository,
	couples *repository.CoupleRepository,
	dancers *repository.DancerRepository,
	appState *repository.AppStateRepository,
	snapshots *repository.SnapshotRepository,
	logger zerolog.Logger,
) *ViewService {
	return &ViewService{
		contests:  contests,
		showdowns: showdowns,
		couples:   couples,
		dancers:   dancers,
		appState:  appState,
		snapshots: snapshots,
		logger:    logger,
	}
}

// ActiveView composes the view of the process-wide active contest.
func (s *ViewService) ActiveView(ctx context.Context) (*PublicView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	state, err := s.appState.Get(ctx)
	if err != nil {
		return nil, err
	}
	if state.ActiveContestID == nil {
		return emptyView(), nil
	}
	return s.ComposePublicView(ctx, *state.ActiveContestID)
}

// ComposePublicView builds the contest's bracket, pairings and active matchup
// from stored rows. A contest that is not stored yields the empty view.
func (s *ViewService) ComposePublicView(ctx context.Context, contestID string) (*PublicView, error) {
	var (
		contest   *domain.Contest
		showdowns []domain.Showdown
		pairings  []domain.Couple
		last      *domain.RawSnapshot
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		contest, err = s.contests.Get(gCtx, contestID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		var err error
		showdowns, err = s.showdowns.ListByContest(gCtx, contestID)
		return err
	})

	g.Go(func() error {
		var err error
		pairings, err = s.couples.ListByContest(gCtx, contestID)
		return err
	})

	g.Go(func() error {
		var err error
		last, err = s.snapshots.Latest(gCtx, contestID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("contest_id", contestID).Msg("failed to load public view")
		return nil, err
	}

	if contest == nil {
		return emptyView(), nil
	}

	couples, err := s.resolveCouples(ctx, showdowns, pairings)
	if err != nil {
		return nil, err
	}

	view := emptyView()
	view.Contest = contestView(contest)
	view.ContestStatus = contest.Status
	view.CurrentRound = contest.CurrentRound
	// the raw payload carries winners and audience counts under upstream keys
	if last != nil && contest.ResultsPublic() {
		view.LastPayload = last.Payload
	}

	for _, c := range pairings {
		view.Pairings = append(view.Pairings, *couples[c.ID])
	}

	public := contest.ResultsPublic()

	roundIndex := make(map[string]int)
	for i := range showdowns {
		sv := showdownView(&showdowns[i], couples, public)
		view.Bracket = append(view.Bracket, sv)

		if contest.ActiveShowdownID != nil && sv.ID == *contest.ActiveShowdownID {
			view.ActiveShowdown = sv
		}

		key := ""
		if sv.Round != nil {
			key = *sv.Round
		}
		idx, ok := roundIndex[key]
		if !ok {
			idx = len(view.Rounds)
			roundIndex[key] = idx
			view.Rounds = append(view.Rounds, RoundView{Round: sv.Round})
		}
		view.Rounds[idx].Showdowns = append(view.Rounds[idx].Showdowns, sv)
	}

	s.logger.Debug().
		Str("contest_id", contestID).
		Int("showdowns", len(view.Bracket)).
		Int("pairings", len(view.Pairings)).
		Bool("results_public", public).
		Msg("public view composed")

	return view, nil
}

// resolveCouples returns side views keyed by couple id for every couple the
// view references. A couple's own names win over the dancer table.
func (s *ViewService) resolveCouples(ctx context.Context, showdowns []domain.Showdown, pairings []domain.Couple) (map[string]*SideView, error) {
	known := make(map[string]domain.Couple, len(pairings))
	for _, c := range pairings {
		known[c.ID] = c
	}

	var missing []string
	for _, sd := range showdowns {
		for _, id := range []*string{sd.RedCoupleID, sd.BlueCoupleID} {
			if id == nil {
				continue
			}
			if _, ok := known[*id]; !ok {
				missing = append(missing, *id)
			}
		}
	}

	if len(missing) > 0 {
		extra, err := s.couples.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, c := range extra {
			known[c.ID] = c
		}
	}

	var dancerIDs []string
	for _, c := range known {
		if c.LeadName == nil && c.LeadID != nil {
			dancerIDs = append(dancerIDs, *c.LeadID)
		}
		if c.FollowName == nil && c.FollowID != nil {
			dancerIDs = append(dancerIDs, *c.FollowID)
		}
	}
	names, err := s.dancers.Names(ctx, dancerIDs)
	if err != nil {
		return nil, err
	}

	sides := make(map[string]*SideView, len(known))
	for id, c := range known {
		sides[id] = &SideView{
			CoupleID:   id,
			LeadName:   displayName(c.LeadName, c.LeadID, names),
			FollowName: displayName(c.FollowName, c.FollowID, names),
		}
	}
	return sides, nil
}

func displayName(own, dancerID *string, names map[string]string) *string {
	if own != nil {
		return own
	}
	if dancerID == nil {
		return nil
	}
	if name, ok := names[*dancerID]; ok {
		return &name
	}
	return nil
}

func side(id *string, couples map[string]*SideView) *SideView {
	if id == nil {
		return nil
	}
	if v, ok := couples[*id]; ok {
		return v
	}
	// referenced but never ingested
	return &SideView{CoupleID: *id}
}

func showdownView(sd *domain.Showdown, couples map[string]*SideView, resultsPublic bool) *ShowdownView {
	v := &ShowdownView{
		ID:            sd.ID,
		Name:          sd.Name,
		Status:        sd.Status,
		Round:         sd.Round,
		MatchNumber:   sd.MatchNumber,
		VoteOpenTime:  sd.VoteOpenTime,
		VoteCloseTime: sd.VoteCloseTime,
		Red:           side(sd.RedCoupleID, couples),
		Blue:          side(sd.BlueCoupleID, couples),
	}
	if resultsPublic {
		v.Winner = sd.Winner
		v.RedAudienceVotes = sd.RedAudienceVotes
		v.BlueAudienceVotes = sd.BlueAudienceVotes
	}
	return v
}

func contestView(c *domain.Contest) *ContestView {
	return &ContestView{
		ID:                c.ID,
		Name:              c.Name,
		Status:            c.Status,
		CurrentRound:      c.CurrentRound,
		ActiveShowdownID:  c.ActiveShowdownID,
		JudgingModel:      c.JudgingModel,
		JudgePanelSize:    c.JudgePanelSize,
		EventID:           c.EventID,
		ResultsVisibility: c.ResultsVisibility,
	}
}

// CurrentShowdown projects the active matchup of the active contest.
func (s *ViewService) CurrentShowdown(ctx context.Context) (*CurrentShowdown, error) {
	view, err := s.ActiveView(ctx)
	if err != nil {
		return nil, err
	}
	return currentShowdown(view), nil
}

func currentShowdown(view *PublicView) *CurrentShowdown {
	active := view.ActiveShowdown
	if active == nil {
		return &CurrentShowdown{Status: statusClosed}
	}

	status := statusClosed
	if active.Status != nil && *active.Status != "" {
		status = *active.Status
	}
	id := active.ID
	return &CurrentShowdown{
		ShowdownID: &id,
		Red:        active.Red.Label(),
		Blue:       active.Blue.Label(),
		Status:     status,
	}
}
