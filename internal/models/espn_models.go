package models

type LeagueResponse struct {
	ID              int            `json:"id"`
	ScoringPeriodID int            `json:"scoringPeriodId"`
	SeasonID        int            `json:"seasonId"`
	SegmentID       int            `json:"segmentId"`
	Status          Status         `json:"status"`
	Teams           []ESPNTeam     `json:"teams"`
	Settings        Settings       `json:"settings"`
	Schedule        []MatchupScore `json:"schedule"`
}

type Settings struct {
	Name             string           `json:"name"`
	Size             int              `json:"size"`
	ScheduleSettings ScheduleSettings `json:"scheduleSettings"`
}

type ScheduleSettings struct {
	MatchupPeriodCount int `json:"matchupPeriodCount"`
	PlayoffTeamCount   int `json:"playoffTeamCount"`
}

type Status struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	LatestScoringPeriod  int  `json:"latestScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type ESPNTeam struct {
	ID           int     `json:"id"`
	Abbreviation string  `json:"abbrev"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Nickname     string  `json:"nickname"`
	PlayoffSeed  int     `json:"playoffSeed"`
	Points       float64 `json:"points"`
	Roster       Roster  `json:"roster"`
	Record       Record  `json:"record"`
}

type Roster struct {
	Entries []RosterEntry `json:"entries"`
}

type Record struct {
	Overall RecordDetails `json:"overall"`
}

type RecordDetails struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Percentage    float64 `json:"percentage"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}

type MatchupScore struct {
	ID              int        `json:"id"`
	MatchupPeriodID int        `json:"matchupPeriodId"`
	Away            *TeamScore `json:"away,omitempty"`
	Home            TeamScore  `json:"home"`
	Winner          string     `json:"winner"`
}

type TeamScore struct {
	TeamID      int     `json:"teamId"`
	TotalPoints float64 `json:"totalPoints"`
}

type RosterEntry struct {
	PlayerPoolEntry PlayerPoolEntry `json:"playerPoolEntry"`
	LineupSlotID    int             `json:"lineupSlotId"`
}

type PlayerPoolEntry struct {
	ID               int        `json:"id"`
	OnTeamID         int        `json:"onTeamId"`
	Player           ESPNPlayer `json:"player"`
	AppliedStatTotal float64    `json:"appliedStatTotal"`
}

type ESPNPlayer struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
	ProTeamID         int    `json:"proTeamId"`
	Stats             []Stat `json:"stats"`
	InjuryStatus      string `json:"injuryStatus"`
}

type Stat struct {
	SeasonID        int     `json:"seasonId"`
	StatSourceID    int     `json:"statSourceId"`
	StatSplitTypeID int     `json:"statSplitTypeId"`
	ScoringPeriodID int     `json:"scoringPeriodId"`
	AppliedTotal    float64 `json:"appliedTotal"`
}

type ProScheduleResponse struct {
	Settings struct {
		ProTeams []ProTeamInfo `json:"proTeams"`
	} `json:"settings"`
}

type ProTeamInfo struct {
	ID                      int                  `json:"id"`
	Abbrev                  string               `json:"abbrev"`
	ByeWeek                 int                  `json:"byeWeek"`
	Name                    string               `json:"name"`
	ProGamesByScoringPeriod map[string][]ProGame `json:"proGamesByScoringPeriod"`
}

type ProGame struct {
	HomeProTeamID   int `json:"homeProTeamId"`
	AwayProTeamID   int `json:"awayProTeamId"`
	ScoringPeriodID int `json:"scoringPeriodId"`
}
