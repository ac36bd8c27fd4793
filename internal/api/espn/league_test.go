package espn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cstarr7/power-rankings/internal/config"
	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, position, proTeam, slot int, name string, stats ...models.Stat) models.RosterEntry {
	return models.RosterEntry{
		LineupSlotID: slot,
		PlayerPoolEntry: models.PlayerPoolEntry{
			ID: id,
			Player: models.ESPNPlayer{
				ID:                id,
				FullName:          name,
				DefaultPositionID: position,
				ProTeamID:         proTeam,
				Stats:             stats,
			},
		},
	}
}

func actual(period int, points float64) models.Stat {
	return models.Stat{ScoringPeriodID: period, StatSourceID: 0, AppliedTotal: points}
}

func projected(period int, points float64) models.Stat {
	return models.Stat{ScoringPeriodID: period, StatSourceID: 1, AppliedTotal: points}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	league := "/seasons/2024/segments/0/leagues/99"
	mux := http.NewServeMux()
	mux.HandleFunc(league, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SWID={abc}; espn_s2=s2", r.Header.Get("Cookie"))

		var resp models.LeagueResponse
		switch r.URL.Query().Get("view") {
		case "mSettings":
			resp.Settings.Name = "Test League"
			resp.Settings.ScheduleSettings = models.ScheduleSettings{MatchupPeriodCount: 3, PlayoffTeamCount: 2}
			resp.Status.CurrentMatchupPeriod = 3
		case "mTeam":
			resp.Teams = []models.ESPNTeam{
				{ID: 1, Location: "Team", Nickname: "One", PlayoffSeed: 2, Record: models.Record{Overall: models.RecordDetails{Wins: 1, Losses: 1, PointsFor: 210}}},
				{ID: 2, Name: "Two", PlayoffSeed: 1, Record: models.Record{Overall: models.RecordDetails{Wins: 2, PointsFor: 250}}},
				{ID: 3, Name: "Three", PlayoffSeed: 3, Record: models.Record{Overall: models.RecordDetails{Losses: 1, PointsFor: 90}}},
			}
		case "mMatchupScore":
			resp.Schedule = []models.MatchupScore{
				{ID: 1, MatchupPeriodID: 1, Home: models.TeamScore{TeamID: 1}, Away: &models.TeamScore{TeamID: 2}},
				{ID: 2, MatchupPeriodID: 1, Home: models.TeamScore{TeamID: 3}},
				{ID: 3, MatchupPeriodID: 2, Home: models.TeamScore{TeamID: 3}, Away: &models.TeamScore{TeamID: 1}},
				{ID: 4, MatchupPeriodID: 2, Home: models.TeamScore{TeamID: 2}},
				{ID: 5, MatchupPeriodID: 3, Home: models.TeamScore{TeamID: 2}, Away: &models.TeamScore{TeamID: 3}},
				{ID: 6, MatchupPeriodID: 3, Home: models.TeamScore{TeamID: 1}},
				{ID: 7, MatchupPeriodID: 4, Home: models.TeamScore{TeamID: 1}, Away: &models.TeamScore{TeamID: 2}},
			}
		case "mRoster":
			switch r.URL.Query().Get("scoringPeriodId") {
			case "":
				resp.Teams = []models.ESPNTeam{
					{ID: 1, Roster: models.Roster{Entries: []models.RosterEntry{
						entry(10, 1, 2, 0, "Josh Allen"),
						entry(11, 2, 0, 21, "Hurt Back"),
					}}},
					{ID: 2, Roster: models.Roster{Entries: []models.RosterEntry{
						entry(20, 16, 12, 16, "Chiefs D/ST"),
						entry(21, 9, 12, 20, "Mystery Man"),
					}}},
					{ID: 3, Roster: models.Roster{Entries: []models.RosterEntry{
						entry(30, 3, 99, 4, "Loose Receiver"),
					}}},
				}
			case "1":
				resp.Teams = []models.ESPNTeam{
					{ID: 1, Roster: models.Roster{Entries: []models.RosterEntry{
						entry(10, 1, 2, 0, "Josh Allen", actual(1, 24.5), projected(1, 20)),
						entry(20, 16, 12, 16, "Chiefs D/ST", actual(1, 8)),
					}}},
				}
			case "2":
				resp.Teams = []models.ESPNTeam{
					{ID: 1, Roster: models.Roster{Entries: []models.RosterEntry{
						entry(10, 1, 2, 0, "Josh Allen", projected(2, 21)),
					}}},
					{ID: 2, Roster: models.Roster{Entries: []models.RosterEntry{
						entry(20, 16, 12, 16, "Chiefs D/ST", actual(2, 11)),
					}}},
				}
			default:
				t.Errorf("unexpected scoring period %q", r.URL.Query().Get("scoringPeriodId"))
			}
		default:
			t.Errorf("unexpected view %q", r.URL.Query().Get("view"))
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/seasons/2024", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "proTeamSchedules_wl", r.URL.Query().Get("view"))
		var resp models.ProScheduleResponse
		resp.Settings.ProTeams = []models.ProTeamInfo{
			{ID: 0, Abbrev: "FA"},
			{ID: 2, Abbrev: "Buf", ProGamesByScoringPeriod: map[string][]models.ProGame{
				"1": {{HomeProTeamID: 2, AwayProTeamID: 12}},
				"3": {{HomeProTeamID: 12, AwayProTeamID: 2}},
			}},
			{ID: 12, Abbrev: "KC", ProGamesByScoringPeriod: map[string][]models.ProGame{
				"1": {{HomeProTeamID: 2, AwayProTeamID: 12}},
				"3": {{HomeProTeamID: 12, AwayProTeamID: 2}},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

func TestGetLeague(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	cfg := config.ESPNAPI{Year: "2024", LeagueID: "99", SWID: "{abc}", ESPNS2: "s2"}
	api := NewAPI(NewClient(cfg, WithBaseURL(srv.URL)), nil)

	league, err := api.GetLeague(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Test League", league.Name)
	assert.Equal(t, 3, league.SeasonLength)
	assert.Equal(t, 2, league.WeeksCompleted)
	assert.Equal(t, 2, league.PlayoffSlots)

	require.Len(t, league.Teams, 3)
	assert.Equal(t, []string{"2", "1", "3"}, []string{league.Teams[0].ID, league.Teams[1].ID, league.Teams[2].ID})

	one, ok := league.Team("1")
	require.True(t, ok)
	assert.Equal(t, "Team One", one.Name)
	assert.Equal(t, 1, one.Wins)
	assert.Equal(t, 210.0, one.PointsFor)
	assert.Equal(t, []string{"2", "3", models.Bye}, one.Schedule)
	assert.Equal(t, []string{"10"}, one.Roster, "injured reserve is skipped")

	two, _ := league.Team("2")
	assert.Equal(t, []string{"1", models.Bye, "3"}, two.Schedule)
	assert.Equal(t, []string{"20"}, two.Roster, "unknown positions are skipped")

	three, _ := league.Team("3")
	assert.Equal(t, []string{models.Bye, "1", "2"}, three.Schedule)

	index := league.PlayerIndex()
	allen := league.Players[index["10"]]
	assert.Equal(t, models.QB, allen.Position)
	assert.Equal(t, "BUF", allen.ProTeam)
	assert.Equal(t, []float64{24.5}, allen.Scores, "projections are not game logs")

	dst := league.Players[index["20"]]
	assert.Equal(t, models.DST, dst.Position)
	assert.Equal(t, []float64{8, 11}, dst.Scores)

	loose := league.Players[index["30"]]
	assert.True(t, loose.IsFreeAgent())

	assert.Equal(t, []string{"KC", "", "KC"}, league.ProSchedule["BUF"])
	assert.Equal(t, []string{"BUF", "", "BUF"}, league.ProSchedule["KC"])
	_, hasFA := league.ProSchedule["FA"]
	assert.False(t, hasFA)
}

func TestGetLeague_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	api := NewAPI(NewClient(config.ESPNAPI{Year: "2024", LeagueID: "1"}, WithBaseURL(srv.URL)), nil)
	_, err := api.GetLeague(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching league settings")
	assert.Contains(t, err.Error(), "401")
}

func TestClient_NoCookieWithoutCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Cookie"))
		assert.Equal(t, []string{"a", "b"}, r.URL.Query()["view"])
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(config.ESPNAPI{}, WithBaseURL(srv.URL+"/"))
	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/x", map[string]string{"view": "a, b"}, nil, &out))
}
