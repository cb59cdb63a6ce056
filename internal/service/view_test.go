package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveViewWithoutContest(t *testing.T) {
	f := newFixture(t)

	view, err := f.view.ActiveView(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.Contest)
	assert.Nil(t, view.ActiveShowdown)
	assert.Empty(t, view.Bracket)
	assert.Empty(t, view.Pairings)

	body := mustJSON(t, view)
	assert.Equal(t, []any{}, body["bracket"])
	assert.Equal(t, []any{}, body["pairings"])
	assert.Nil(t, body["lastPayload"])

	current, err := f.view.CurrentShowdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CurrentShowdown{Status: "CLOSED"}, current)
}

func TestComposeUnknownContestIsEmpty(t *testing.T) {
	f := newFixture(t)

	view, err := f.view.ComposePublicView(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, view.Contest)
	assert.NotNil(t, view.Bracket)
}

func TestActiveViewScenario(t *testing.T) {
	f := newFixture(t)
	f.mustIngest(t, scenarioSnapshot)

	view, err := f.view.ActiveView(context.Background())
	require.NoError(t, err)

	require.NotNil(t, view.Contest)
	assert.Equal(t, "C1", view.Contest.ID)
	assert.Equal(t, "ROUND_ACTIVE", *view.ContestStatus)
	assert.Equal(t, "Finals", *view.CurrentRound)
	require.Len(t, view.Bracket, 1)
	require.Len(t, view.Pairings, 2)
	assert.Nil(t, view.LastPayload, "raw payload is withheld while results are private")

	active := view.ActiveShowdown
	require.NotNil(t, active)
	assert.Same(t, view.Bracket[0], active, "active showdown is the bracket entry itself")
	assert.Equal(t, "Alex & Sam", *active.Red.Label())
	assert.Equal(t, "Lee & Joe", *active.Blue.Label())

	require.Len(t, view.Rounds, 1)
	assert.Equal(t, "Finals", *view.Rounds[0].Round)
	assert.Same(t, active, view.Rounds[0].Showdowns[0])

	current, err := f.view.CurrentShowdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "S1", *current.ShowdownID)
	assert.Equal(t, "Alex & Sam", *current.Red)
	assert.Equal(t, "Lee & Joe", *current.Blue)
	assert.Equal(t, "VOTING_OPEN", current.Status)
}

func TestViewRedactsResultsUnlessPublic(t *testing.T) {
	f := newFixture(t)
	f.mustIngest(t, `{
		"contest": {"Id": "C1", "Results_Visibility__c": "HIDDEN", "Active_Showdown__c": "S1"},
		"activeShowdown": {"Id": "S1", "Winner__c": "BLUE", "Red_Audience_Votes__c": 3, "Blue_Audience_Votes__c": 9}
	}`)

	view, err := f.view.ActiveView(context.Background())
	require.NoError(t, err)
	require.NotNil(t, view.ActiveShowdown)
	assert.Nil(t, view.ActiveShowdown.Winner)

	entry := mustJSON(t, view)["bracket"].([]any)[0].(map[string]any)
	assert.NotContains(t, entry, "winner")
	assert.NotContains(t, entry, "redAudienceVotes")
	assert.NotContains(t, entry, "blueAudienceVotes")

	f.mustIngest(t, `{"contest": {"Id": "C1", "Results_Visibility__c": "PUBLIC", "Active_Showdown__c": "S1"}}`)

	view, err = f.view.ActiveView(context.Background())
	require.NoError(t, err)
	entry = mustJSON(t, view)["bracket"].([]any)[0].(map[string]any)
	assert.Equal(t, "BLUE", entry["winner"])
	assert.Equal(t, 3.0, entry["redAudienceVotes"])
	assert.Equal(t, 9.0, entry["blueAudienceVotes"])
	assert.JSONEq(t, `{"contest": {"Id": "C1", "Results_Visibility__c": "PUBLIC", "Active_Showdown__c": "S1"}}`, string(view.LastPayload))
}

func TestPrivateResultsNeverLeaveTheServer(t *testing.T) {
	f := newFixture(t)
	f.mustIngest(t, `{
		"contest": {"Id": "C1", "Results_Visibility__c": "PRIVATE", "Active_Showdown__c": "S1"},
		"activeShowdown": {"Id": "S1", "Status__c": "RESULT_READY", "Winner__c": "RED",
			"Red_Audience_Votes__c": 41, "Blue_Audience_Votes__c": 7}
	}`)

	view, err := f.view.ActiveView(context.Background())
	require.NoError(t, err)
	require.NotNil(t, view.ActiveShowdown)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	body := strings.ToLower(string(raw))
	for _, key := range []string{"winner", "audience_votes", "audiencevotes", "winningside"} {
		assert.NotContains(t, body, key)
	}
	assert.NotContains(t, string(raw), "41")
}

func TestViewFallsBackToDancerNames(t *testing.T) {
	f := newFixture(t)
	f.mustIngest(t, `{
		"contest": {"Id": "C1"},
		"bracket": [{"Id": "S1", "Red_Couple__c": "K1", "Blue_Couple__c": "K-unknown"}],
		"pairings": [{"Id": "K1", "Lead__c": "D1", "Follow__c": "D2", "Follow_Name__c": "Sammy"}],
		"dancers": [{"Id": "D1", "Name": "Alex"}, {"Id": "D2", "Name": "Samantha"}]
	}`)

	view, err := f.view.ActiveView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Bracket, 1)

	red := view.Bracket[0].Red
	assert.Equal(t, "Alex", *red.LeadName, "dancer table fills a missing couple name")
	assert.Equal(t, "Sammy", *red.FollowName, "couple name wins over the dancer table")

	blue := view.Bracket[0].Blue
	require.NotNil(t, blue)
	assert.Equal(t, "K-unknown", blue.CoupleID)
	assert.Nil(t, blue.Label())
	assert.Nil(t, view.ActiveShowdown)
}

func TestViewResolvesCouplesOutsideContest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustIngest(t, `{"contest": {"Id": "C1"}, "bracket": [{"Id": "S1", "Red_Couple__c": "K9"}]}`)
	f.mustIngest(t, `{"contest": {"Id": "C2"}, "pairings": [{"Id": "K9", "Lead_Name__c": "Kim"}]}`)

	view, err := f.view.ComposePublicView(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, view.Bracket, 1)
	assert.Equal(t, "Kim", *view.Bracket[0].Red.LeadName)
	assert.Empty(t, view.Pairings)
}

func TestViewGroupsRoundsInBracketOrder(t *testing.T) {
	f := newFixture(t)
	f.mustIngest(t, `{
		"contest": {"Id": "C1"},
		"bracket": [
			{"Id": "S4", "Round__c": "Final", "Match_Number__c": 4},
			{"Id": "S1", "Round__c": "Quarter", "Match_Number__c": 1},
			{"Id": "S3", "Round__c": "Semi", "Match_Number__c": 3},
			{"Id": "S2", "Round__c": "Quarter", "Match_Number__c": 2},
			{"Id": "S5"}
		]
	}`)

	view, err := f.view.ActiveView(context.Background())
	require.NoError(t, err)

	var rounds []any
	for _, r := range view.Rounds {
		var ids []string
		for _, s := range r.Showdowns {
			ids = append(ids, s.ID)
		}
		var name any
		if r.Round != nil {
			name = *r.Round
		}
		rounds = append(rounds, []any{name, ids})
	}
	assert.Equal(t, []any{
		[]any{"Quarter", []string{"S1", "S2"}},
		[]any{"Semi", []string{"S3"}},
		[]any{"Final", []string{"S4"}},
		[]any{nil, []string{"S5"}},
	}, rounds)
}

func TestCurrentShowdownLabels(t *testing.T) {
	lead := "Alex"
	closed := currentShowdown(&PublicView{ActiveShowdown: &ShowdownView{
		ID:  "S1",
		Red: &SideView{CoupleID: "K1", LeadName: &lead},
	}})
	assert.Equal(t, "S1", *closed.ShowdownID)
	assert.Equal(t, "Alex", *closed.Red)
	assert.Nil(t, closed.Blue)
	assert.Equal(t, "CLOSED", closed.Status)
}
