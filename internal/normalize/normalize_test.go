package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"showdown-vote/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func decodeNumbers(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestContestAcrossPayloadShapes(t *testing.T) {
	variants := []string{
		`{"Id": "a03C1", "Name": "Spring Jam", "Status__c": "ROUND_ACTIVE", "Current_Round__c": "Finals",
		  "Active_Showdown__c": "a07S1", "Judging_Model__c": "Judges_And_Audience", "Judge_Panel_Size__c": 3,
		  "Results_Visibility__c": "PUBLIC", "attributes": {"type": "Contest__c"}}`,
		`{"id": "a03C1", "name": "Spring Jam", "status": "ROUND_ACTIVE", "currentRound": "Finals",
		  "activeShowdownId": "a07S1", "judgingModel": "Judges_And_Audience", "judgePanelSize": "3",
		  "resultsVisibility": "PUBLIC", "somethingNew": [1, 2, 3]}`,
		`{"ID": "a03C1", "NAME": "Spring Jam", "status__c": "ROUND_ACTIVE", "current_round": "Finals",
		  "Active_Showdown__r": {"Id": "a07S1", "Name": "Match 1"}, "judging_model": "Judges_And_Audience",
		  "judge_panel_size": 3.0, "results_visibility": "PUBLIC"}`,
	}

	var results []*domain.Contest
	for _, v := range variants {
		c := Contest(decode(t, v))
		require.NotNil(t, c)
		results = append(results, c)
	}

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i], "variant %d differs", i)
	}

	c := results[0]
	assert.Equal(t, "a03C1", c.ID)
	assert.Equal(t, "Spring Jam", *c.Name)
	assert.Equal(t, "ROUND_ACTIVE", *c.Status)
	assert.Equal(t, "Finals", *c.CurrentRound)
	assert.Equal(t, "a07S1", *c.ActiveShowdownID)
	assert.Equal(t, 3, *c.JudgePanelSize)
	assert.True(t, c.ResultsPublic())
}

func TestContestPrefersFirstAlias(t *testing.T) {
	c := Contest(decode(t, `{"Id": "C1", "Status__c": "SIGNUP_OPEN", "status": "ABORTED"}`))
	require.NotNil(t, c)
	assert.Equal(t, "SIGNUP_OPEN", *c.Status)

	c = Contest(decode(t, `{"Id": "C1", "Status__c": null, "status": "ABORTED"}`))
	require.NotNil(t, c)
	assert.Equal(t, "ABORTED", *c.Status, "null values are treated as absent")
}

func TestContestWithoutIDIsNil(t *testing.T) {
	assert.Nil(t, Contest(decode(t, `{"Name": "No id"}`)))
	assert.Nil(t, Contest(decode(t, `{"Id": "   "}`)))
	assert.Nil(t, Contest(decode(t, `{"Id": {"nested": true}}`)))
	assert.Nil(t, Contest(decode(t, `{"Id": true}`)))
	assert.Nil(t, Contest(decode(t, `{"Id": false, "id": "   "}`)))
	assert.Nil(t, Showdown(decode(t, `{"Id": true}`)))
	assert.Nil(t, Couple(decode(t, `{"coupleId": false}`)))
	assert.Nil(t, Contest("not an object"))
	assert.Nil(t, Contest(nil))
	assert.Nil(t, Contest([]any{"a"}))
}

func TestShowdownFields(t *testing.T) {
	s := Showdown(decode(t, `{
		"Id": "S1", "Contest__c": "C1", "Name": "Match 1", "Status__c": "VOTING_OPEN",
		"Round__c": "Finals", "Match_Number__c": 2,
		"Vote_Open_Time__c": "2026-05-01T20:00:00.000+0000",
		"Vote_Close_Time__c": "2026-05-01T20:02:00Z",
		"Red_Couple__c": "K1", "Blue_Couple__r": {"Id": "K2", "Lead_Name__c": "Lee"},
		"Red_Audience_Votes__c": 10, "Blue_Audience_Votes__c": "4", "Winner__c": "red"
	}`))
	require.NotNil(t, s)

	assert.Equal(t, "S1", s.ID)
	assert.Equal(t, "C1", *s.ContestID)
	assert.Equal(t, "VOTING_OPEN", *s.Status)
	assert.Equal(t, 2, *s.MatchNumber)
	assert.Equal(t, time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), *s.VoteOpenTime)
	assert.Equal(t, time.Date(2026, 5, 1, 20, 2, 0, 0, time.UTC), *s.VoteCloseTime)
	assert.Equal(t, "K1", *s.RedCoupleID)
	assert.Equal(t, "K2", *s.BlueCoupleID)
	assert.Equal(t, 10, *s.RedAudienceVotes)
	assert.Equal(t, 4, *s.BlueAudienceVotes)
	assert.Equal(t, domain.ChoiceRed, *s.Winner)
}

func TestShowdownMalformedValuesBecomeNil(t *testing.T) {
	s := Showdown(decode(t, `{
		"id": "S1", "matchNumber": "first", "voteOpenTime": "yesterday",
		"voteCloseTime": {"when": "later"}, "redCouple": {"noId": true},
		"winner": "GREEN", "redAudienceVotes": 2.5
	}`))
	require.NotNil(t, s)

	assert.Nil(t, s.MatchNumber)
	assert.Nil(t, s.VoteOpenTime)
	assert.Nil(t, s.VoteCloseTime)
	assert.Nil(t, s.RedCoupleID)
	assert.Nil(t, s.Winner)
	assert.Nil(t, s.RedAudienceVotes)
	assert.Nil(t, s.Status)
}

func TestShowdownEpochTimes(t *testing.T) {
	s := Showdown(decodeNumbers(t, `{"id": "S1", "voteOpenTime": 1777665600000, "voteCloseTime": 1777665720}`))
	require.NotNil(t, s)
	assert.Equal(t, time.UnixMilli(1777665600000).UTC(), *s.VoteOpenTime)
	assert.Equal(t, time.Unix(1777665720, 0).UTC(), *s.VoteCloseTime)
}

func TestEmbeddedCouples(t *testing.T) {
	raw := decode(t, `{"Id": "S1",
		"red": {"id": "K1", "leadName": "Alex", "followName": "Sam"},
		"Blue_Couple__c": "K2"}`)

	embedded := EmbeddedCouples(raw)
	require.Len(t, embedded, 1)

	c := Couple(embedded[0])
	require.NotNil(t, c)
	assert.Equal(t, "K1", c.ID)
	assert.Equal(t, "Alex", *c.LeadName)

	s := Showdown(raw)
	require.NotNil(t, s)
	assert.Equal(t, "K1", *s.RedCoupleID)
	assert.Equal(t, "K2", *s.BlueCoupleID)
}

func TestCoupleAndEmbeddedDancers(t *testing.T) {
	raw := decode(t, `{
		"Id": "K1", "Contest__c": "C1",
		"Lead__r": {"Id": "D1", "Name": "Alex"},
		"Follow__c": "D2", "Follow_Name__c": "Sam"
	}`)

	c := Couple(raw)
	require.NotNil(t, c)
	assert.Equal(t, "C1", *c.ContestID)
	assert.Equal(t, "D1", *c.LeadID)
	assert.Equal(t, "D2", *c.FollowID)
	assert.Nil(t, c.LeadName, "embedded dancer names are not the couple's own name")
	assert.Equal(t, "Sam", *c.FollowName)

	dancers := EmbeddedDancers(raw)
	require.Len(t, dancers, 1)
	assert.Equal(t, "D1", dancers[0].ID)
	assert.Equal(t, "Alex", *dancers[0].Name)
}

func TestCoupleAcceptsPairingShape(t *testing.T) {
	c := Couple(decode(t, `{"coupleId": "K9", "leadName": "Lee", "followName": "Joe"}`))
	require.NotNil(t, c)
	assert.Equal(t, "K9", c.ID)
	assert.Equal(t, "Lee", *c.LeadName)
	assert.Equal(t, "Joe", *c.FollowName)
}

func TestDancer(t *testing.T) {
	d := Dancer(decode(t, `{"dancerId": "D1", "fullName": "Alex Smith"}`))
	require.NotNil(t, d)
	assert.Equal(t, "D1", d.ID)
	assert.Equal(t, "Alex Smith", *d.Name)

	assert.Nil(t, Dancer(decode(t, `{"name": "anonymous"}`)))
}

func TestSplit(t *testing.T) {
	raw := decode(t, `{
		"contest": {"Id": "C1"},
		"activeShowdown": {"Id": "S1"},
		"bracket": [{"Id": "S1"}, {"Id": "S2"}, "garbage"],
		"pairings": {"totalSize": 1, "done": true, "records": [{"Id": "K1"}]},
		"dancers": "not a list"
	}`)

	s := Split(raw)
	assert.NotNil(t, s.Contest)
	assert.NotNil(t, s.ActiveShowdown)
	assert.Len(t, s.Bracket, 3)
	assert.Len(t, s.Pairings, 1)
	assert.Nil(t, s.Dancers)
}

func TestSplitLegacyShape(t *testing.T) {
	s := Split(decode(t, `{"contest": {"Id": "C1"}, "showdown": {"Id": "S1"}}`))
	assert.NotNil(t, s.Contest)
	require.NotNil(t, s.ActiveShowdown)
	assert.Equal(t, "S1", Showdown(s.ActiveShowdown).ID)
}

func TestContestID(t *testing.T) {
	assert.Equal(t, "C1", ContestID(decode(t, `{"contest": {"Id": "C1"}}`)))
	assert.Equal(t, "C2", ContestID(decode(t, `{"contestId": "C2", "bracket": []}`)))
	assert.Equal(t, "C3", ContestID(decode(t, `{"showdown": {"Id": "S1", "Contest__c": "C3"}}`)))
	assert.Equal(t, "", ContestID(decode(t, `{"hello": "world"}`)))
	assert.Equal(t, "", ContestID(nil))
}

func TestNeverPanicsOnOddValues(t *testing.T) {
	odd := []any{
		nil, true, 1.5, "x", []any{nil}, map[string]any{},
		map[string]any{"Id": []any{}}, map[string]any{"Id": true, "red": []any{1}},
		map[string]any{"id": "X", "lead": map[string]any{"id": nil}},
	}
	for _, v := range odd {
		assert.NotPanics(t, func() {
			Contest(v)
			Showdown(v)
			Couple(v)
			Dancer(v)
			EmbeddedCouples(v)
			EmbeddedDancers(v)
			if m, ok := v.(map[string]any); ok {
				Split(m)
				ContestID(m)
			}
		})
	}
}
