package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cstarr7/power-rankings/internal/models"
	"github.com/cstarr7/power-rankings/internal/service"
)

const historyLimit = 8

// Forecasts is the part of service.ForecastService the bot needs.
type Forecasts interface {
	Refresh(ctx context.Context) (*models.Forecast, error)
	GetPlayoffOdds(ctx context.Context) (string, error)
	GetSummary(ctx context.Context) (string, error)
	GetRankTable(ctx context.Context) (string, error)
	GetTeamRanks(ctx context.Context, teamName string) (string, error)
	GetHistory(ctx context.Context, teamName string, limit int) (string, error)
}

var _ Forecasts = (*service.ForecastService)(nil)

type Handler struct {
	forecasts Forecasts
}

func NewHandler(forecasts Forecasts) *Handler {
	return &Handler{forecasts: forecasts}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to Power Rankings! Use /help to see available commands."
	case "help":
		msg.Text = "Available commands:\n/odds - Playoff odds for every team\n/summary - Records, points and projections\n/ranks - Final rank odds table\n/ranks <team> - Final rank odds for one team\n/history <team> - Playoff odds over past forecasts\n/refresh - Rerun the forecast with the latest results"
	case "odds":
		h.reply(&msg, "fetching playoff odds", func() (string, error) {
			return h.forecasts.GetPlayoffOdds(ctx)
		})
	case "summary":
		h.reply(&msg, "fetching summary", func() (string, error) {
			return h.forecasts.GetSummary(ctx)
		})
	case "ranks":
		h.reply(&msg, "fetching rank odds", func() (string, error) {
			if args == "" {
				return h.forecasts.GetRankTable(ctx)
			}
			return h.forecasts.GetTeamRanks(ctx, args)
		})
	case "history":
		if args == "" {
			msg.Text = "Please provide a team name. Usage: /history <team name>"
			break
		}
		h.reply(&msg, "fetching history", func() (string, error) {
			return h.forecasts.GetHistory(ctx, args, historyLimit)
		})
	case "refresh":
		h.reply(&msg, "refreshing forecast", func() (string, error) {
			f, err := h.forecasts.Refresh(ctx)
			if err != nil {
				return "", err
			}
			return service.FormatPlayoffOdds(f), nil
		})
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) reply(msg *tgbotapi.MessageConfig, action string, fn func() (string, error)) {
	text, err := fn()
	if err != nil {
		msg.Text = fmt.Sprintf("Error %s: %v", action, err)
		msg.ParseMode = ""
		return
	}
	msg.Text = text
}
