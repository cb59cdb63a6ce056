// Package normalize maps upstream snapshot objects of drifting shape onto the
// canonical domain entities. Every function is pure and never fails: unknown
// keys are ignored, malformed values become nil fields, and an object without
// a resolvable id yields nil.
package normalize

import (
	"strings"

	"showdown-vote/internal/domain"
)

// Sections are the parts of a snapshot the ingestion steps consume.
type Sections struct {
	Contest        any
	ActiveShowdown any
	Bracket        []any
	Pairings       []any
	Dancers        []any
}

func Split(snapshot map[string]any) Sections {
	obj, ok := asObject(snapshot)
	if !ok {
		return Sections{}
	}

	var s Sections
	if v, ok := obj.lookup(snapshotContest); ok {
		s.Contest = v
	}
	if v, ok := obj.lookup(snapshotActiveShowdown); ok {
		s.ActiveShowdown = v
	}
	if v, ok := obj.lookup(snapshotBracket); ok {
		s.Bracket = list(v)
	}
	if v, ok := obj.lookup(snapshotPairings); ok {
		s.Pairings = list(v)
	}
	if v, ok := obj.lookup(snapshotDancers); ok {
		s.Dancers = list(v)
	}
	return s
}

// ContestID extracts a contest id from anywhere it can be found, for archiving.
func ContestID(snapshot map[string]any) string {
	obj, ok := asObject(snapshot)
	if !ok {
		return ""
	}

	sections := Split(snapshot)
	if c := Contest(sections.Contest); c != nil {
		return c.ID
	}
	if id := obj.str(snapshotContestID); id != nil {
		return *id
	}
	if s, ok := asObject(sections.ActiveShowdown); ok {
		if id := s.ref(showdownContestID, fieldID); id != nil {
			return *id
		}
	}
	return ""
}

func Contest(v any) *domain.Contest {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}
	id := obj.str(fieldID)
	if id == nil {
		return nil
	}

	return &domain.Contest{
		ID:                *id,
		Name:              obj.str(contestName),
		Status:            obj.str(contestStatus),
		CurrentRound:      obj.str(contestCurrentRound),
		ActiveShowdownID:  obj.ref(contestActiveShowdown, fieldID),
		JudgingModel:      obj.str(contestJudgingModel),
		JudgePanelSize:    obj.integer(contestJudgePanelSize),
		EventID:           obj.ref(contestEventID, fieldID),
		ResultsVisibility: obj.str(contestResultsVisibility),
	}
}

func Showdown(v any) *domain.Showdown {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}
	id := obj.str(fieldID)
	if id == nil {
		return nil
	}

	return &domain.Showdown{
		ID:                *id,
		ContestID:         obj.ref(showdownContestID, fieldID),
		Name:              obj.str(showdownName),
		Status:            obj.str(showdownStatus),
		Round:             obj.str(showdownRound),
		MatchNumber:       obj.integer(showdownMatchNumber),
		VoteOpenTime:      obj.timestamp(showdownVoteOpen),
		VoteCloseTime:     obj.timestamp(showdownVoteClose),
		RedCoupleID:       obj.ref(showdownRedCouple, coupleID),
		BlueCoupleID:      obj.ref(showdownBlueCouple, coupleID),
		RedAudienceVotes:  obj.integer(showdownRedVotes),
		BlueAudienceVotes: obj.integer(showdownBlueVotes),
		Winner:            choice(obj.str(showdownWinner)),
	}
}

// EmbeddedCouples returns the side objects of a showdown that carry a full
// couple instead of a bare id.
func EmbeddedCouples(v any) []any {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}

	var out []any
	for _, aliases := range [][]string{showdownRedCouple, showdownBlueCouple} {
		if side, ok := obj.embedded(aliases); ok {
			out = append(out, side.raw)
		}
	}
	return out
}

func Couple(v any) *domain.Couple {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}
	id := obj.str(coupleID)
	if id == nil {
		return nil
	}

	return &domain.Couple{
		ID:         *id,
		ContestID:  obj.ref(coupleContestID, fieldID),
		LeadID:     obj.ref(coupleLead, dancerID),
		FollowID:   obj.ref(coupleFollow, dancerID),
		LeadName:   obj.str(coupleLeadName),
		FollowName: obj.str(coupleFollowName),
	}
}

// EmbeddedDancers returns dancer records nested in a couple's lead/follow fields.
func EmbeddedDancers(v any) []domain.Dancer {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}

	var out []domain.Dancer
	for _, aliases := range [][]string{coupleLead, coupleFollow} {
		side, ok := obj.embedded(aliases)
		if !ok {
			continue
		}
		if d := Dancer(side.raw); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func Dancer(v any) *domain.Dancer {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}
	id := obj.str(dancerID)
	if id == nil {
		return nil
	}
	return &domain.Dancer{ID: *id, Name: obj.str(dancerName)}
}

func choice(s *string) *domain.Choice {
	if s == nil {
		return nil
	}
	c := domain.Choice(strings.ToUpper(*s))
	if !c.Valid() {
		return nil
	}
	return &c
}
