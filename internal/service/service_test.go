package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"showdown-vote/internal/database/dbtest"
	"showdown-vote/internal/metrics"
	"showdown-vote/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ingest *IngestService
	view   *ViewService
	votes  *VoteService
	users  *UserService
	repos  repos
}

type repos struct {
	contests  *repository.ContestRepository
	showdowns *repository.ShowdownRepository
	couples   *repository.CoupleRepository
	dancers   *repository.DancerRepository
	users     *repository.UserRepository
	votes     *repository.VoteRepository
	appState  *repository.AppStateRepository
	snapshots *repository.SnapshotRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	log := zerolog.Nop()
	m, err := metrics.NewMetrics(metrics.NewRegistry())
	require.NoError(t, err)

	r := repos{
		contests:  repository.NewContestRepository(db, log),
		showdowns: repository.NewShowdownRepository(db, log),
		couples:   repository.NewCoupleRepository(db, log),
		dancers:   repository.NewDancerRepository(db, log),
		users:     repository.NewUserRepository(db, log),
		votes:     repository.NewVoteRepository(db, log),
		appState:  repository.NewAppStateRepository(db, log),
		snapshots: repository.NewSnapshotRepository(db, log),
	}

	return &fixture{
		ingest: NewIngestService(r.contests, r.showdowns, r.couples, r.dancers, r.appState, r.snapshots, m, log),
		view:   NewViewService(r.contests, r.showdowns, r.couples, r.dancers, r.appState, r.snapshots, log),
		votes:  NewVoteService(r.showdowns, r.users, r.votes, m, log),
		users:  NewUserService(r.users, m, log),
		repos:  r,
	}
}

// setClock pins the clock of every time-aware service.
func (f *fixture) setClock(now time.Time) {
	clock := func() time.Time { return now }
	f.ingest.now = clock
	f.votes.now = clock
}

func (f *fixture) mustIngest(t *testing.T, snapshot string) *IngestResult {
	t.Helper()
	result, err := f.ingest.Ingest(context.Background(), []byte(snapshot))
	require.NoError(t, err)
	return result
}

func (f *fixture) mustRegister(t *testing.T, name, email string) string {
	t.Helper()
	id, err := f.users.Register(context.Background(), name, email)
	require.NoError(t, err)
	return id
}

func requireCode(t *testing.T, err error, code string) *DomainError {
	t.Helper()
	require.Error(t, err)
	var derr *DomainError
	require.True(t, errors.As(err, &derr), "expected *DomainError, got %T: %v", err, err)
	require.Equal(t, code, derr.Code)
	return derr
}

func mustJSON(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

const scenarioSnapshot = `{
	"contest": {"Id": "C1", "Name": "Spring Jam", "Status__c": "ROUND_ACTIVE",
		"Current_Round__c": "Finals", "Active_Showdown__c": "S1"},
	"activeShowdown": {"Id": "S1", "Contest__c": "C1", "Status__c": "VOTING_OPEN",
		"Round__c": "Finals", "Match_Number__c": 1,
		"Red_Couple__c": "K1", "Blue_Couple__c": "K2", "Winner__c": "RED"},
	"pairings": [
		{"Id": "K1", "Lead_Name__c": "Alex", "Follow_Name__c": "Sam"},
		{"Id": "K2", "Lead_Name__c": "Lee", "Follow_Name__c": "Joe"}
	]
}`
