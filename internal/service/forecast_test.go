package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstarr7/power-rankings/internal/lineup"
	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/repository/memory"
)

type countingSource struct {
	loads int
	err   error
	build func() *models.League
}

func (s *countingSource) Load(context.Context) (*models.League, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.build(), nil
}

type fakeHistory struct {
	saved   []*models.Forecast
	entries []models.HistoryEntry
	queried string
}

func (h *fakeHistory) SaveForecast(_ context.Context, f *models.Forecast) (int64, error) {
	h.saved = append(h.saved, f)
	return int64(len(h.saved)), nil
}

func (h *fakeHistory) History(_ context.Context, teamID string, _ int) ([]models.HistoryEntry, error) {
	h.queried = teamID
	return h.entries, nil
}

var testSlots = []lineup.Slot{
	{Name: "QB", Eligible: []models.Position{models.QB}},
	{Name: "WR", Eligible: []models.Position{models.WR}},
}

func fourTeamLeague() *models.League {
	league := &models.League{
		Name:           "Four",
		SeasonLength:   3,
		WeeksCompleted: 1,
		PlayoffSlots:   2,
		ProSchedule:    models.ProSchedule{"P": {"X", "X", "X"}},
		Teams: []models.Team{
			{ID: "A", Name: "Alpha", Wins: 1, PointsFor: 120, Schedule: []string{"B", "C", "D"}},
			{ID: "B", Name: "Bravo", Losses: 1, PointsFor: 100, Schedule: []string{"A", "D", "C"}},
			{ID: "C", Name: "Charlie", Wins: 1, PointsFor: 110, Schedule: []string{"D", "A", "B"}},
			{ID: "D", Name: "Delta", Losses: 1, PointsFor: 90, Schedule: []string{"C", "B", "A"}},
		},
	}
	for i := range league.Teams {
		t := &league.Teams[i]
		qb, wr := "qb"+t.ID, "wr"+t.ID
		t.Roster = []string{qb, wr}
		edge := float64(i)
		league.Players = append(league.Players,
			models.Player{ID: qb, Name: "QB " + t.ID, Position: models.QB, ProTeam: "P", Scores: []float64{20 + edge, 22, 18 - edge}},
			models.Player{ID: wr, Name: "WR " + t.ID, Position: models.WR, ProTeam: "P", Scores: []float64{12, 15 - edge, 9}},
		)
	}
	return league
}

func newService(source *countingSource, history HistoryStore, opts Options) (*ForecastService, *memory.Repository) {
	seed := uint64(99)
	if opts.Seed == nil {
		opts.Seed = &seed
	}
	if opts.LookbackWindow == 0 {
		opts.LookbackWindow = 3
	}
	if opts.SimCount == 0 {
		opts.SimCount = 400
	}
	opts.Workers = 2
	opts.Slots = testSlots
	repo := memory.NewRepository()
	svc := NewForecastService(source, repo, history, opts)
	svc.now = func() time.Time { return time.Date(2024, 10, 8, 7, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestRefresh(t *testing.T) {
	source := &countingSource{build: fourTeamLeague}
	history := &fakeHistory{}
	svc, repo := newService(source, history, Options{})

	f, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Four", f.League)
	assert.Equal(t, uint64(99), f.Seed)
	assert.Equal(t, 400, f.SimCount)
	assert.Equal(t, 2, f.Playoffs)
	require.Len(t, f.Teams, 4)

	var odds float64
	for i, team := range f.Teams {
		assert.Equal(t, i+1, team.CurrentRank)
		var total float64
		for _, pct := range team.RankOdds {
			total += pct
		}
		assert.InDelta(t, 100, total, 1e-9)
		odds += team.PlayoffOdds
	}
	assert.InDelta(t, 200, odds, 1e-9)
	assert.Equal(t, []string{"Alpha", "Charlie", "Bravo", "Delta"},
		[]string{f.Teams[0].TeamName, f.Teams[1].TeamName, f.Teams[2].TeamName, f.Teams[3].TeamName})
	assert.Equal(t, 1, f.Teams[0].PointsRank)
	assert.Equal(t, 4, f.Teams[3].PointsRank)

	assert.Same(t, f, repo.GetForecast())
	require.Len(t, history.saved, 1)
	assert.Same(t, f, history.saved[0])
}

func TestRefresh_SameSeedSameForecast(t *testing.T) {
	a, _ := newService(&countingSource{build: fourTeamLeague}, nil, Options{})
	b, _ := newService(&countingSource{build: fourTeamLeague}, nil, Options{})

	fa, err := a.Refresh(context.Background())
	require.NoError(t, err)
	fb, err := b.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fa.Teams, fb.Teams)
}

func TestRefresh_SeasonOver(t *testing.T) {
	svc, _ := newService(&countingSource{build: fourTeamLeague}, nil, Options{WeeksCompleted: 3})

	f, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	for _, team := range f.Teams {
		assert.Equal(t, float64(team.CurrentWins), team.MeanWins, team.TeamName)
		assert.Equal(t, team.CurrentPoints, team.MeanPoints, team.TeamName)
	}
	assert.Equal(t, 100.0, f.Teams[0].PlayoffOdds)
	assert.Equal(t, 100.0, f.Teams[1].PlayoffOdds)
	assert.Equal(t, 0.0, f.Teams[2].PlayoffOdds)
}

func TestRefresh_DefaultPlayoffSlots(t *testing.T) {
	source := &countingSource{build: func() *models.League {
		l := fourTeamLeague()
		l.PlayoffSlots = 0
		return l
	}}
	svc, _ := newService(source, nil, Options{})

	f, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, f.Playoffs, "six default slots are capped at the league size")
	for _, team := range f.Teams {
		assert.Equal(t, 100.0, team.PlayoffOdds)
	}
}

func TestRefresh_SourceError(t *testing.T) {
	svc, repo := newService(&countingSource{err: errors.New("espn down")}, nil, Options{})

	_, err := svc.Refresh(context.Background())
	assert.ErrorContains(t, err, "espn down")
	assert.Nil(t, repo.GetForecast())
}

func TestLatest_UsesCache(t *testing.T) {
	source := &countingSource{build: fourTeamLeague}
	svc, _ := newService(source, nil, Options{})

	_, err := svc.GetPlayoffOdds(context.Background())
	require.NoError(t, err)
	_, err = svc.GetSummary(context.Background())
	require.NoError(t, err)
	_, err = svc.GetRankTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.loads)
}

func TestGetTeamRanks(t *testing.T) {
	svc, _ := newService(&countingSource{build: fourTeamLeague}, nil, Options{})

	report, err := svc.GetTeamRanks(context.Background(), "charly")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(report, "🎯 *Charlie* (1-0)"), report)
	assert.Contains(t, report, "Playoff odds:")

	_, err = svc.GetTeamRanks(context.Background(), "zzzzzz")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestGetHistory(t *testing.T) {
	history := &fakeHistory{entries: []models.HistoryEntry{
		{RunID: 2, CreatedAt: time.Date(2024, 10, 8, 7, 30, 0, 0, time.UTC), TeamID: "B", PlayoffOdds: 41.5, MeanWins: 1.4, MeanPoints: 300},
	}}
	svc, _ := newService(&countingSource{build: fourTeamLeague}, history, Options{})

	report, err := svc.GetHistory(context.Background(), "brav", 5)
	require.NoError(t, err)
	assert.Equal(t, "B", history.queried)
	assert.Contains(t, report, "*Bravo* forecast history")
	assert.Contains(t, report, "Oct 8 07:30: 41.5%")

	disabled, _ := newService(&countingSource{build: fourTeamLeague}, nil, Options{})
	_, err = disabled.GetHistory(context.Background(), "Bravo", 5)
	assert.ErrorContains(t, err, "disabled")
}

func TestFindTeam(t *testing.T) {
	f := &models.Forecast{Teams: []models.TeamForecast{
		{TeamID: "1", TeamName: "Stairway to Evans"},
		{TeamID: "2", TeamName: "Beyond Cursed"},
	}}

	team, err := FindTeam(f, "2")
	require.NoError(t, err)
	assert.Equal(t, "Beyond Cursed", team.TeamName)

	team, err = FindTeam(f, "stairway")
	require.NoError(t, err)
	assert.Equal(t, "1", team.TeamID)

	team, err = FindTeam(f, "Beyond Cursd")
	require.NoError(t, err)
	assert.Equal(t, "2", team.TeamID)

	_, err = FindTeam(f, " ")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestFormatConsole(t *testing.T) {
	svc, _ := newService(&countingSource{build: fourTeamLeague}, nil, Options{})
	f, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	out := FormatConsole(f)
	assert.Contains(t, out, "Playoff Odds")
	assert.Contains(t, out, "Proj Record")
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "400 sims, seed 99, top 2 make the playoffs")
}
