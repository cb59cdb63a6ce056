package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"showdown-vote/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestRejectsNonObjects(t *testing.T) {
	f := newFixture(t)

	for _, raw := range []string{`[]`, `"text"`, `42`, `null`, `{`, ``, `{} {}`} {
		_, err := f.ingest.Ingest(context.Background(), []byte(raw))
		requireCode(t, err, CodeInvalidInput)
	}

	state, err := f.repos.appState.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state.ActiveContestID)
}

func TestIngestScenarioSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result := f.mustIngest(t, scenarioSnapshot)
	assert.Equal(t, "C1", result.ContestID)
	assert.Equal(t, 1, result.Showdowns)
	assert.Equal(t, 2, result.Couples)
	assert.Zero(t, result.Skipped)
	assert.NotEmpty(t, result.SnapshotID)

	state, err := f.repos.appState.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C1", *state.ActiveContestID)

	contest, err := f.repos.contests.Get(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "ROUND_ACTIVE", *contest.Status)

	couples, err := f.repos.couples.ListByContest(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, couples, 2, "pairings inherit the snapshot contest")

	last, err := f.repos.snapshots.Latest(ctx, "C1")
	require.NoError(t, err)
	assert.JSONEq(t, scenarioSnapshot, string(last.Payload))
}

func TestIngestWithoutContestKeepsActivePointer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mustIngest(t, scenarioSnapshot)
	result := f.mustIngest(t, `{"bracket": [{"id": "S9", "status": "INTRO", "matchNumber": 9}]}`)
	assert.Equal(t, "C1", result.ContestID)

	state, err := f.repos.appState.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C1", *state.ActiveContestID)

	s9, err := f.repos.showdowns.Get(ctx, "S9")
	require.NoError(t, err)
	assert.Equal(t, "C1", *s9.ContestID, "showdowns without a contest join the active one")

	_, err = f.repos.snapshots.Latest(ctx, "C1")
	require.NoError(t, err)
}

func TestIngestSkipsMalformedItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result := f.mustIngest(t, `{
		"contest": {"Id": "C1"},
		"bracket": [{"Id": "S1"}, {"Name": "no id"}, "garbage", null, {"Id": "S2", "Match_Number__c": "x"}],
		"pairings": [{"Id": "K1"}, 7],
		"dancers": [{"Id": "D1", "Name": "Alex"}, {"Name": "nobody"}]
	}`)

	assert.Equal(t, 2, result.Showdowns)
	assert.Equal(t, 1, result.Couples)
	assert.Equal(t, 1, result.Dancers)
	assert.Equal(t, 5, result.Skipped)

	s2, err := f.repos.showdowns.Get(ctx, "S2")
	require.NoError(t, err)
	assert.Nil(t, s2.MatchNumber)
}

func TestIngestBooleanIDsDoNotMoveActiveContest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mustIngest(t, `{"contest": {"Id": "C1"}}`)
	result := f.mustIngest(t, `{"contest": {"Id": true}, "bracket": [{"Id": false}]}`)
	assert.Equal(t, 0, result.Showdowns)

	state, err := f.repos.appState.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C1", *state.ActiveContestID)

	_, err = f.repos.contests.Get(ctx, "true")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIngestSkipsIDsVotesCannotAddress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result := f.mustIngest(t, `{
		"contest": {"Id": "C.1"},
		"bracket": [{"Id": "S1"}, {"Id": "S.2"}],
		"pairings": [{"Id": "K 1"}, {"Id": "K2", "Lead__r": {"Id": "D/1", "Name": "Alex"}}]
	}`)

	assert.Equal(t, "", result.ContestID)
	assert.Equal(t, 1, result.Showdowns)
	assert.Equal(t, 1, result.Couples)
	assert.Equal(t, 0, result.Dancers)
	assert.Equal(t, 3, result.Skipped)

	_, err := f.repos.showdowns.Get(ctx, "S.2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	state, err := f.repos.appState.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.ActiveContestID)
}

func TestIngestFillsActiveShowdownFromObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mustIngest(t, `{"contest": {"Id": "C1"}, "showdown": {"Id": "S7", "Status__c": "INTRO"}}`)

	contest, err := f.repos.contests.Get(ctx, "C1")
	require.NoError(t, err)
	require.NotNil(t, contest.ActiveShowdownID)
	assert.Equal(t, "S7", *contest.ActiveShowdownID)

	s7, err := f.repos.showdowns.Get(ctx, "S7")
	require.NoError(t, err)
	assert.Equal(t, "C1", *s7.ContestID)
}

func TestIngestEmbeddedCouplesAndDancers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mustIngest(t, `{
		"contest": {"id": "C1"},
		"activeShowdown": {
			"id": "S1",
			"red": {"id": "K1", "lead": {"id": "D1", "name": "Alex"}, "follow": {"id": "D2", "name": "Sam"}},
			"blue": {"id": "K2", "leadName": "Lee", "followName": "Joe"}
		}
	}`)

	s1, err := f.repos.showdowns.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "K1", *s1.RedCoupleID)
	assert.Equal(t, "K2", *s1.BlueCoupleID)

	couples, err := f.repos.couples.ListByIDs(ctx, []string{"K1", "K2"})
	require.NoError(t, err)
	assert.Len(t, couples, 2)

	names, err := f.repos.dancers.Names(ctx, []string{"D1", "D2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"D1": "Alex", "D2": "Sam"}, names)
}

func TestIngestPartialSnapshotKeepsCoupleNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mustIngest(t, scenarioSnapshot)
	f.mustIngest(t, `{"contest": {"Id": "C1", "Status__c": "ROUND_ACTIVE"}, "pairings": [{"Id": "K1"}]}`)

	couples, err := f.repos.couples.ListByIDs(ctx, []string{"K1"})
	require.NoError(t, err)
	require.Len(t, couples, 1)
	assert.Equal(t, "Alex", *couples[0].LeadName)
	assert.Equal(t, "Sam", *couples[0].FollowName)
}

func TestIngestArchivesEverySnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	base := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	f.setClock(base)
	f.mustIngest(t, `{"contest": {"Id": "C1", "Name": "first"}}`)
	f.setClock(base.Add(time.Second))
	f.mustIngest(t, `{"contest": {"Id": "C1", "Name": "second"}}`)

	last, err := f.repos.snapshots.Latest(ctx, "C1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"contest": {"Id": "C1", "Name": "second"}}`, string(last.Payload))
}

func TestIngestStorageFailure(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ingest.Ingest(ctx, []byte(scenarioSnapshot))
	require.Error(t, err)
	var derr *DomainError
	assert.False(t, errors.As(err, &derr), "storage failures are not rejections")
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
