// Package fftoday scrapes multi-season fantasy game logs from fftoday.com.
package fftoday

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/cstarr7/power-rankings/internal/models"
)

const (
	defaultBaseURL = "https://fftoday.com"
	searchPath     = "/stats/players"
)

var ErrPlayerNotFound = errors.New("player not found")

type Client struct {
	httpClient *http.Client
	baseURL    string
	leagueID   string
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a scraper that scores game logs with the scoring
// profile of the given fftoday league id. An empty id uses fftoday's
// default scoring.
func NewClient(leagueID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		leagueID:   leagueID,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TrimName drops a trailing generational suffix, which fftoday omits.
func TrimName(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range []string{" Jr.", " Sr."} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			return strings.TrimSpace(trimmed)
		}
	}
	return name
}

// GameLog returns a player's fantasy scores across every season listed on
// the player page, each season in chronological order.
func (c *Client) GameLog(ctx context.Context, name string, pos models.Position) ([]float64, error) {
	name = TrimName(name)
	first, last, ok := strings.Cut(name, " ")
	if !ok {
		last = name
	}

	search := c.baseURL + searchPath + "?Search=" + url.QueryEscape(last)
	doc, final, err := c.fetch(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("searching for %s: %w", name, err)
	}

	if final.Path == searchPath {
		href, err := pickResult(doc, first, pos)
		if err != nil {
			return nil, fmt.Errorf("%s, %s: %w", name, pos, err)
		}
		doc, _, err = c.fetch(ctx, c.playerURL(c.baseURL+href))
		if err != nil {
			return nil, fmt.Errorf("fetching player page for %s: %w", name, err)
		}
	} else if c.leagueID != "" {
		// A single hit redirects straight to the player page.
		doc, _, err = c.fetch(ctx, c.playerURL(final.String()))
		if err != nil {
			return nil, fmt.Errorf("fetching player page for %s: %w", name, err)
		}
	}

	scores := ParseGameLogs(doc)
	c.logger.Debug("Game log scraped", "player", name, "games", len(scores))
	return scores, nil
}

func (c *Client) playerURL(raw string) string {
	if c.leagueID == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("LeagueID", c.leagueID)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) fetch(ctx context.Context, target string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing page: %w", err)
	}
	return doc, resp.Request.URL, nil
}

// pickResult chooses the search result naming the position whose text is
// the closest fuzzy match for the first name.
func pickResult(doc *goquery.Document, first string, pos models.Position) (string, error) {
	best, bestRank := "", -1
	doc.Find("span.bodycontent").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		text := strings.TrimSpace(link.Text())
		if !strings.Contains(text, string(pos)) {
			return
		}
		rank := fuzzy.RankMatchFold(first, text)
		if rank < 0 {
			return
		}
		if bestRank == -1 || rank < bestRank {
			best, bestRank = href, rank
		}
	})
	if bestRank == -1 {
		return "", ErrPlayerNotFound
	}
	return best, nil
}

// ParseGameLogs reads every table following a "Gamelog" heading. Rows
// whose first sort1 cell is a week number contribute their last sort1 cell.
func ParseGameLogs(doc *goquery.Document) []float64 {
	var scores []float64
	awaiting := false
	doc.Find("span, table").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "span" {
			if strings.Contains(s.Text(), "Gamelog") {
				awaiting = true
			}
			return
		}
		if !awaiting {
			return
		}
		awaiting = false
		season := parseSeason(s)
		slices.Reverse(season)
		scores = append(scores, season...)
	})
	return scores
}

func parseSeason(table *goquery.Selection) []float64 {
	var games []float64
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td.sort1")
		if cells.Length() == 0 {
			return
		}
		if _, err := strconv.Atoi(strings.TrimSpace(cells.First().Text())); err != nil {
			return
		}
		points, err := strconv.ParseFloat(strings.TrimSpace(cells.Last().Text()), 64)
		if err != nil {
			return
		}
		games = append(games, points)
	})
	return games
}
