package fftoday

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstarr7/power-rankings/internal/models"
)

const searchPage = `<html><body>
<span class="bodycontent"><a href="/stats/players/100/Allen_Keenan">Allen, Keenan  WR  CHI</a></span>
<span class="bodycontent"><a href="/stats/players/200/Allen_Josh">Allen, Josh  QB  BUF</a></span>
<span class="bodycontent"><a href="/stats/players/300/Allen_Kyle">Allen, Kyle  QB  PIT</a></span>
</body></html>`

const playerPage = `<html><body>
<table><tr><td><span class="headerstats">2024 Gamelog</span></td></tr></table>
<table>
  <tr><td class="sort1">Wk</td><td class="sort1">Opp</td><td class="sort1">FPts</td></tr>
  <tr><td class="sort1">3</td><td class="sort1">JAX</td><td class="sort1">30.5</td></tr>
  <tr><td class="sort1">2</td><td class="sort1">MIA</td><td class="sort1">12</td></tr>
  <tr><td class="sort1">1</td><td class="sort1">ARI</td><td class="sort1">24.1</td></tr>
  <tr><td>Totals</td><td class="sort1">66.6</td></tr>
</table>
<span>2023 Gamelog</span>
<table>
  <tr><td class="sort1">18</td><td class="sort1">MIA</td><td class="sort1">20</td></tr>
  <tr><td class="sort1">17</td><td class="sort1">NE</td><td class="sort1">-1.5</td></tr>
</table>
<table><tr><td class="sort1">1</td><td class="sort1">99</td></tr></table>
</body></html>`

func newServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var requests []string
	mux := http.NewServeMux()
	mux.HandleFunc("/stats/players", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		switch r.URL.Query().Get("Search") {
		case "Allen":
			w.Write([]byte(searchPage))
		case "Kelce":
			http.Redirect(w, r, "/stats/players/555/Travis_Kelce", http.StatusFound)
		default:
			w.Write([]byte(`<html><body>No results</body></html>`))
		}
	})
	mux.HandleFunc("/stats/players/", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		w.Write([]byte(playerPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestGameLog_SearchResults(t *testing.T) {
	srv, requests := newServer(t)
	c := NewClient("17", WithBaseURL(srv.URL))

	scores, err := c.GameLog(context.Background(), "Josh Allen", models.QB)
	require.NoError(t, err)
	assert.Equal(t, []float64{24.1, 12, 30.5, -1.5, 20}, scores)
	assert.Equal(t, []string{
		"/stats/players?Search=Allen",
		"/stats/players/200/Allen_Josh?LeagueID=17",
	}, *requests)
}

func TestGameLog_Redirect(t *testing.T) {
	srv, requests := newServer(t)
	c := NewClient("", WithBaseURL(srv.URL))

	scores, err := c.GameLog(context.Background(), "Travis Kelce", models.TE)
	require.NoError(t, err)
	assert.Len(t, scores, 5)
	assert.Equal(t, "/stats/players/555/Travis_Kelce", (*requests)[len(*requests)-1])
}

func TestGameLog_NotFound(t *testing.T) {
	srv, _ := newServer(t)
	c := NewClient("", WithBaseURL(srv.URL))

	_, err := c.GameLog(context.Background(), "Nobody Special", models.RB)
	assert.True(t, errors.Is(err, ErrPlayerNotFound))

	_, err = c.GameLog(context.Background(), "Josh Allen", models.TE)
	assert.True(t, errors.Is(err, ErrPlayerNotFound), "position must appear in the result")
}

func TestTrimName(t *testing.T) {
	assert.Equal(t, "Odell Beckham", TrimName("Odell Beckham Jr."))
	assert.Equal(t, "Ken Griffey", TrimName(" Ken Griffey Sr. "))
	assert.Equal(t, "Josh Allen", TrimName("Josh Allen"))
}

func TestParseGameLogs_IgnoresTablesWithoutHeading(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tr><td class="sort1">1</td><td class="sort1">5</td></tr></table>`))
	require.NoError(t, err)
	assert.Empty(t, ParseGameLogs(doc))
}
