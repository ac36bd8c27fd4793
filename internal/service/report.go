package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/cstarr7/power-rankings/internal/models"
)

func FormatPlayoffOdds(f *models.Forecast) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏈 *Playoff Odds* (top %d, %d sims)\n\n", f.Playoffs, f.SimCount))
	for _, t := range byOdds(f.Teams) {
		sb.WriteString(fmt.Sprintf("*%s*: %.1f%%\n", t.TeamName, t.PlayoffOdds))
		sb.WriteString(fmt.Sprintf("   Projected: %.1f-%.1f, %.1f pts\n", t.MeanWins, t.MeanLosses, t.MeanPoints))
	}
	return sb.String()
}

func FormatSummary(f *models.Forecast) string {
	var sb strings.Builder
	sb.WriteString("📊 *Season Forecast*\n\n")
	for _, t := range f.Teams {
		sb.WriteString(fmt.Sprintf("%d. *%s* (%d-%d)\n", t.CurrentRank, t.TeamName, t.CurrentWins, t.CurrentLosses))
		sb.WriteString(fmt.Sprintf("   Points: %.2f (rank %d)\n", t.CurrentPoints, t.PointsRank))
		sb.WriteString(fmt.Sprintf("   Projected: %.1f-%.1f, %.2f pts\n", t.MeanWins, t.MeanLosses, t.MeanPoints))
		sb.WriteString(fmt.Sprintf("   Playoff odds: %.1f%%\n\n", t.PlayoffOdds))
	}
	sb.WriteString(fmt.Sprintf("_%d sims, seed %d_", f.SimCount, f.Seed))
	return sb.String()
}

// FormatRankTable renders the rank probability table as a monospace block.
func FormatRankTable(f *models.Forecast) string {
	var sb strings.Builder
	sb.WriteString("🎲 *Final Rank Odds*\n```\n")
	writeRankTable(&sb, f)
	sb.WriteString("```")
	return sb.String()
}

func FormatTeamRanks(f *models.Forecast, t models.TeamForecast) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎯 *%s* (%d-%d)\n\n", t.TeamName, t.CurrentWins, t.CurrentLosses))
	for i, pct := range t.RankOdds {
		if pct == 0 {
			continue
		}
		marker := ""
		if i < f.Playoffs {
			marker = " 🏆"
		}
		sb.WriteString(fmt.Sprintf("%d. %.1f%%%s\n", i+1, pct, marker))
	}
	sb.WriteString(fmt.Sprintf("\nPlayoff odds: %.1f%%", t.PlayoffOdds))
	return sb.String()
}

func FormatHistory(t models.TeamForecast, entries []models.HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📈 *%s* forecast history\n\n", t.TeamName))
	if len(entries) == 0 {
		sb.WriteString("No saved forecasts yet.")
		return sb.String()
	}
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s: %.1f%% (%.1f wins, %.1f pts)\n",
			e.CreatedAt.Format("Jan 2 15:04"), e.PlayoffOdds, e.MeanWins, e.MeanPoints))
	}
	return sb.String()
}

// FormatConsole renders the summary and rank tables for a terminal.
func FormatConsole(f *models.Forecast) string {
	var sb strings.Builder
	if f.League != "" {
		sb.WriteString(f.League + "\n\n")
	}

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Team\tRecord\tRank\tPoints\tPts Rank\tProj Record\tProj Points\tPlayoff Odds")
	for _, t := range f.Teams {
		fmt.Fprintf(w, "%s\t%d-%d\t%d\t%.2f\t%d\t%.1f-%.1f\t%.2f\t%.1f%%\n",
			t.TeamName, t.CurrentWins, t.CurrentLosses, t.CurrentRank, t.CurrentPoints,
			t.PointsRank, t.MeanWins, t.MeanLosses, t.MeanPoints, t.PlayoffOdds)
	}
	w.Flush()

	sb.WriteString("\n")
	writeRankTable(&sb, f)
	sb.WriteString(fmt.Sprintf("\n%d sims, seed %d, top %d make the playoffs\n", f.SimCount, f.Seed, f.Playoffs))
	return sb.String()
}

func writeRankTable(sb *strings.Builder, f *models.Forecast) {
	w := tabwriter.NewWriter(sb, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "Team\t")
	for i := range f.Teams {
		fmt.Fprintf(w, "%d\t", i+1)
	}
	fmt.Fprintln(w)
	for _, t := range f.Teams {
		fmt.Fprintf(w, "%s\t", t.TeamName)
		for _, pct := range t.RankOdds {
			fmt.Fprintf(w, "%.1f\t", pct)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

// byOdds orders teams by playoff odds, keeping current rank order on ties.
func byOdds(teams []models.TeamForecast) []models.TeamForecast {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, func(a, b models.TeamForecast) int {
		return cmp.Compare(b.PlayoffOdds, a.PlayoffOdds)
	})
	return sorted
}
