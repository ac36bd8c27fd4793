package espn

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cstarr7/power-rankings/internal/models"
)

// Lineup slot id ESPN uses for injured reserve.
const injuredReserveSlot = 21

type API struct {
	client *Client
	logger *slog.Logger
}

func NewAPI(client *Client, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{client: client, logger: logger}
}

func (a *API) leagueEndpoint() string {
	return fmt.Sprintf("/seasons/%s/segments/0/leagues/%s", a.client.Config.Year, a.client.Config.LeagueID)
}

// GetLeague assembles the league settings, standings, matchup schedule,
// rosters with weekly game logs and the pro schedule. Defense tables are
// not published by ESPN and are left nil.
func (a *API) GetLeague(ctx context.Context) (*models.League, error) {
	settings, err := a.getSettings(ctx)
	if err != nil {
		return nil, err
	}

	seasonLength := settings.Settings.ScheduleSettings.MatchupPeriodCount
	if seasonLength <= 0 {
		return nil, fmt.Errorf("league %s reports no regular season weeks", a.client.Config.LeagueID)
	}
	weeksCompleted := min(max(settings.Status.CurrentMatchupPeriod-1, 0), seasonLength)

	league := &models.League{
		Name:           settings.Settings.Name,
		SeasonLength:   seasonLength,
		WeeksCompleted: weeksCompleted,
		PlayoffSlots:   settings.Settings.ScheduleSettings.PlayoffTeamCount,
	}

	proSchedule, proTeams, err := a.GetProSchedule(ctx, seasonLength)
	if err != nil {
		return nil, err
	}
	league.ProSchedule = proSchedule

	teams, err := a.GetTeams(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.fillSchedule(ctx, teams, seasonLength); err != nil {
		return nil, err
	}

	players, err := a.fillRosters(ctx, teams, proTeams)
	if err != nil {
		return nil, err
	}

	if err := a.fillGameLogs(ctx, players, weeksCompleted); err != nil {
		return nil, err
	}

	league.Teams = teams
	for _, p := range players {
		league.Players = append(league.Players, *p)
	}
	slices.SortFunc(league.Players, func(x, y models.Player) int {
		return cmp.Compare(x.ID, y.ID)
	})

	a.logger.Info("ESPN league loaded",
		"league", league.Name,
		"teams", len(league.Teams),
		"players", len(league.Players),
		"weeks_completed", weeksCompleted,
	)
	return league, nil
}

func (a *API) getSettings(ctx context.Context) (*models.LeagueResponse, error) {
	var resp models.LeagueResponse
	params := map[string]string{"view": "mSettings"}
	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching league settings: %w", err)
	}
	return &resp, nil
}

// GetTeams returns the fantasy teams with their records, ordered by
// playoff seed when ESPN reports one.
func (a *API) GetTeams(ctx context.Context) ([]models.Team, error) {
	var resp models.LeagueResponse
	params := map[string]string{"view": "mTeam"}
	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching standings: %w", err)
	}

	espnTeams := slices.Clone(resp.Teams)
	slices.SortStableFunc(espnTeams, func(x, y models.ESPNTeam) int {
		if c := cmp.Compare(seedKey(x.PlayoffSeed), seedKey(y.PlayoffSeed)); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	teams := make([]models.Team, len(espnTeams))
	for i, t := range espnTeams {
		overall := t.Record.Overall
		teams[i] = models.Team{
			ID:        strconv.Itoa(t.ID),
			Name:      teamName(t),
			Wins:      overall.Wins,
			Losses:    overall.Losses,
			PointsFor: overall.PointsFor,
		}
	}
	return teams, nil
}

func seedKey(seed int) int {
	if seed <= 0 {
		return math.MaxInt
	}
	return seed
}

func teamName(t models.ESPNTeam) string {
	if t.Name != "" {
		return t.Name
	}
	if name := strings.TrimSpace(t.Location + " " + t.Nickname); name != "" {
		return name
	}
	return t.Abbreviation
}

func (a *API) fillSchedule(ctx context.Context, teams []models.Team, seasonLength int) error {
	var resp models.LeagueResponse
	params := map[string]string{"view": "mMatchupScore"}
	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &resp); err != nil {
		return fmt.Errorf("fetching matchup schedule: %w", err)
	}

	index := make(map[string]int, len(teams))
	for i := range teams {
		teams[i].Schedule = make([]string, seasonLength)
		index[teams[i].ID] = i
	}

	for _, m := range resp.Schedule {
		week := m.MatchupPeriodID
		if week < 1 || week > seasonLength {
			continue
		}
		home := strconv.Itoa(m.Home.TeamID)
		hi, ok := index[home]
		if !ok {
			return fmt.Errorf("matchup %d references unknown team %s", m.ID, home)
		}
		if m.Away == nil {
			teams[hi].Schedule[week-1] = models.Bye
			continue
		}
		away := strconv.Itoa(m.Away.TeamID)
		ai, ok := index[away]
		if !ok {
			return fmt.Errorf("matchup %d references unknown team %s", m.ID, away)
		}
		teams[hi].Schedule[week-1] = away
		teams[ai].Schedule[week-1] = home
	}
	return nil
}

// fillRosters sets each team's roster from the current rosters and returns
// the rostered players keyed by id. Injured reserve is skipped.
func (a *API) fillRosters(ctx context.Context, teams []models.Team, proTeams map[int]string) (map[string]*models.Player, error) {
	var resp models.LeagueResponse
	params := map[string]string{"view": "mRoster"}
	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching league rosters: %w", err)
	}

	index := make(map[string]int, len(teams))
	for i := range teams {
		index[teams[i].ID] = i
	}

	players := make(map[string]*models.Player)
	for _, et := range resp.Teams {
		ti, ok := index[strconv.Itoa(et.ID)]
		if !ok {
			return nil, fmt.Errorf("roster for unknown team %d", et.ID)
		}
		for _, entry := range et.Roster.Entries {
			if entry.LineupSlotID == injuredReserveSlot {
				continue
			}
			p := entry.PlayerPoolEntry.Player
			pos, ok := positionFor(p.DefaultPositionID)
			if !ok {
				a.logger.Warn("Skipping player with unknown position",
					"player", p.FullName,
					"position_id", p.DefaultPositionID,
				)
				continue
			}
			id := strconv.Itoa(p.ID)
			players[id] = &models.Player{
				ID:       id,
				Name:     p.FullName,
				Position: pos,
				ProTeam:  proTeamFor(p.ProTeamID, proTeams),
			}
			teams[ti].Roster = append(teams[ti].Roster, id)
		}
	}
	return players, nil
}

// fillGameLogs collects the actual score of every completed scoring period.
// A player without an actual stat line for a period did not play.
func (a *API) fillGameLogs(ctx context.Context, players map[string]*models.Player, weeksCompleted int) error {
	for period := 1; period <= weeksCompleted; period++ {
		var resp models.LeagueResponse
		params := map[string]string{
			"view":            "mRoster",
			"scoringPeriodId": strconv.Itoa(period),
		}
		if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &resp); err != nil {
			return fmt.Errorf("fetching rosters for week %d: %w", period, err)
		}

		for _, team := range resp.Teams {
			for _, entry := range team.Roster.Entries {
				p, ok := players[strconv.Itoa(entry.PlayerPoolEntry.Player.ID)]
				if !ok {
					continue
				}
				if points, ok := actualPoints(entry.PlayerPoolEntry.Player, period); ok {
					p.Scores = append(p.Scores, points)
				}
			}
		}
	}
	return nil
}

func actualPoints(p models.ESPNPlayer, period int) (float64, bool) {
	for _, stat := range p.Stats {
		if stat.ScoringPeriodID == period && stat.StatSourceID == 0 {
			return stat.AppliedTotal, true
		}
	}
	return 0, false
}

// GetProSchedule returns the pro opponents per week keyed by team
// abbreviation, and the abbreviation of every pro team id.
func (a *API) GetProSchedule(ctx context.Context, seasonLength int) (models.ProSchedule, map[int]string, error) {
	var resp models.ProScheduleResponse
	endpoint := fmt.Sprintf("/seasons/%s", a.client.Config.Year)
	params := map[string]string{"view": "proTeamSchedules_wl"}
	if err := a.client.Get(ctx, endpoint, params, nil, &resp); err != nil {
		return nil, nil, fmt.Errorf("fetching pro schedule: %w", err)
	}

	abbrevs := make(map[int]string, len(resp.Settings.ProTeams))
	for _, t := range resp.Settings.ProTeams {
		if t.ID == 0 {
			continue
		}
		abbrevs[t.ID] = strings.ToUpper(t.Abbrev)
	}

	schedule := make(models.ProSchedule, len(abbrevs))
	for _, t := range resp.Settings.ProTeams {
		abbrev, ok := abbrevs[t.ID]
		if !ok {
			continue
		}
		weeks := make([]string, seasonLength)
		for key, games := range t.ProGamesByScoringPeriod {
			week, err := strconv.Atoi(key)
			if err != nil || week < 1 || week > seasonLength {
				continue
			}
			for _, g := range games {
				opponent := g.HomeProTeamID
				if opponent == t.ID {
					opponent = g.AwayProTeamID
				}
				weeks[week-1] = abbrevs[opponent]
			}
		}
		schedule[abbrev] = weeks
	}
	return schedule, abbrevs, nil
}

func positionFor(positionID int) (models.Position, bool) {
	positions := map[int]models.Position{
		1: models.QB, 2: models.RB, 3: models.WR, 4: models.TE, 5: models.K, 16: models.DST,
	}
	pos, ok := positions[positionID]
	return pos, ok
}

func proTeamFor(proTeamID int, known map[int]string) string {
	if abbrev, ok := known[proTeamID]; ok {
		return abbrev
	}

	teams := map[int]string{
		1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN", 8: "DET",
		9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "LV", 14: "LAR", 15: "MIA", 16: "MIN",
		17: "NE", 18: "NO", 19: "NYG", 20: "NYJ", 21: "PHI", 22: "ARI", 23: "PIT", 24: "LAC",
		25: "SF", 26: "SEA", 27: "TB", 28: "WSH", 29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
	}
	if team, ok := teams[proTeamID]; ok {
		return team
	}
	return models.FreeAgent
}

// Load implements fantasy.Source.
func (a *API) Load(ctx context.Context) (*models.League, error) {
	return a.GetLeague(ctx)
}
