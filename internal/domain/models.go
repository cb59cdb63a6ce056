package domain

import (
	"encoding/json"
	"time"
)

type Choice string

const (
	ChoiceRed  Choice = "RED"
	ChoiceBlue Choice = "BLUE"
)

func (c Choice) Valid() bool {
	return c == ChoiceRed || c == ChoiceBlue
}

const ResultsVisibilityPublic = "PUBLIC"

type Contest struct {
	ID                string
	Name              *string
	Status            *string
	CurrentRound      *string
	ActiveShowdownID  *string
	JudgingModel      *string
	JudgePanelSize    *int
	EventID           *string
	ResultsVisibility *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ResultsPublic reports whether winners and audience breakdowns may leave the server.
func (c *Contest) ResultsPublic() bool {
	return c != nil && c.ResultsVisibility != nil && *c.ResultsVisibility == ResultsVisibilityPublic
}

type Showdown struct {
	ID                string
	ContestID         *string
	Name              *string
	Status            *string
	Round             *string
	MatchNumber       *int
	VoteOpenTime      *time.Time
	VoteCloseTime     *time.Time
	RedCoupleID       *string
	BlueCoupleID      *string
	RedAudienceVotes  *int
	BlueAudienceVotes *int
	Winner            *Choice
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Couple struct {
	ID         string
	ContestID  *string
	LeadID     *string
	FollowID   *string
	LeadName   *string
	FollowName *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Dancer struct {
	ID        string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AudienceUser struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Vote struct {
	ShowdownID string
	UserID     string
	Choice     Choice
	CreatedAt  time.Time
}

type Tally struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

type AppState struct {
	ActiveContestID *string
	UpdatedAt       time.Time
}

// RawSnapshot is an archived upstream payload, stored verbatim.
type RawSnapshot struct {
	ID         string // nanoid
	ContestID  *string
	ReceivedAt time.Time
	Payload    json.RawMessage
}
