package models

import "time"

type Forecast struct {
	League    string
	CreatedAt time.Time
	Seed      uint64
	SimCount  int
	Playoffs  int
	Teams     []TeamForecast
}

type TeamForecast struct {
	TeamID        string
	TeamName      string
	CurrentWins   int
	CurrentLosses int
	CurrentRank   int
	CurrentPoints float64
	PointsRank    int
	MeanWins      float64
	MeanLosses    float64
	MeanPoints    float64
	PlayoffOdds   float64
	// RankOdds[i] is the percentage of trials finishing at rank i+1.
	RankOdds []float64
}

type HistoryEntry struct {
	RunID       int64
	CreatedAt   time.Time
	TeamID      string
	TeamName    string
	PlayoffOdds float64
	MeanWins    float64
	MeanPoints  float64
	Seed        uint64
	SimCount    int
}
