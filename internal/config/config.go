package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	ModeOnce  = "once"
	ModeServe = "serve"

	SourceFile = "file"
	SourceESPN = "espn"

	HistoryESPN    = "espn"
	HistoryFFToday = "fftoday"
)

type Config struct {
	Mode       string `envconfig:"MODE" default:"once"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	FormatFile string `envconfig:"LEAGUE_FORMAT_FILE"`

	Simulation  Simulation
	Source      Source
	ESPNAPI     ESPNAPI
	TelegramBot TelegramBot
	Schedule    Schedule
	Storage     Storage
}

type Simulation struct {
	LookbackWindow int `envconfig:"LOOKBACK_WINDOW" default:"12"`
	// Zero means derive from the league.
	WeeksCompleted int     `envconfig:"WEEKS_COMPLETED" default:"0"`
	SimCount       int     `envconfig:"SIM_COUNT" default:"10000"`
	PlayoffSlots   int     `envconfig:"PLAYOFF_SLOTS" default:"0"`
	RandomSeed     *uint64 `envconfig:"RANDOM_SEED"`
	Workers        int     `envconfig:"SIM_WORKERS" default:"0"`
}

type Source struct {
	Kind            string `envconfig:"LEAGUE_SOURCE" default:"file"`
	LeagueFile      string `envconfig:"LEAGUE_FILE" default:"league.yaml"`
	DefenseFile     string `envconfig:"DEFENSE_FILE"`
	History         string `envconfig:"HISTORY_SOURCE" default:"espn"`
	FFTodayLeagueID string `envconfig:"FFTODAY_LEAGUE_ID"`
}

type ESPNAPI struct {
	Year     string `envconfig:"YEAR"`
	LeagueID string `envconfig:"LEAGUE_ID"`
	SWID     string `envconfig:"SWID"`
	ESPNS2   string `envconfig:"ESPN_S2"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type Schedule struct {
	Cron     string `envconfig:"FORECAST_CRON" default:"30 7 * * 2"`
	Timezone string `envconfig:"TIMEZONE" default:"America/Chicago"`
}

type Storage struct {
	HistoryDB string `envconfig:"HISTORY_DB" default:"data/history.db"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	s := c.Simulation
	if s.LookbackWindow <= 0 {
		add("LOOKBACK_WINDOW must be positive, got %d", s.LookbackWindow)
	}
	if s.WeeksCompleted < 0 {
		add("WEEKS_COMPLETED must not be negative, got %d", s.WeeksCompleted)
	}
	if s.SimCount <= 0 {
		add("SIM_COUNT must be positive, got %d", s.SimCount)
	}
	if s.PlayoffSlots < 0 {
		add("PLAYOFF_SLOTS must not be negative, got %d", s.PlayoffSlots)
	}
	if s.Workers < 0 {
		add("SIM_WORKERS must not be negative, got %d", s.Workers)
	}

	switch c.Mode {
	case ModeOnce:
	case ModeServe:
		if c.TelegramBot.Token == "" || c.TelegramBot.ChatID == 0 {
			add("TELEGRAM_TOKEN and CHAT_ID are required in %s mode", ModeServe)
		}
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			add("FORECAST_CRON %q: %v", c.Schedule.Cron, err)
		}
	default:
		add("MODE must be %q or %q, got %q", ModeOnce, ModeServe, c.Mode)
	}

	switch c.Source.Kind {
	case SourceFile:
		if c.Source.LeagueFile == "" {
			add("LEAGUE_FILE is required for the %s source", SourceFile)
		}
	case SourceESPN:
		e := c.ESPNAPI
		if e.Year == "" || e.LeagueID == "" {
			add("YEAR and LEAGUE_ID are required for the %s source", SourceESPN)
		}
	default:
		add("LEAGUE_SOURCE must be %q or %q, got %q", SourceFile, SourceESPN, c.Source.Kind)
	}

	switch c.Source.History {
	case HistoryESPN, HistoryFFToday:
	default:
		add("HISTORY_SOURCE must be %q or %q, got %q", HistoryESPN, HistoryFFToday, c.Source.History)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ParseLogLevel converts a level name to slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
