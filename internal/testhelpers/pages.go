package testhelpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Page holds the values rendered into a fixture weather page.
type Page struct {
	Town      string
	State     string
	Zip       string
	Temp      string
	Sky       string
	Rain      string
	Humidity  string
	FeelsLike string
}

// Princeton is the default fixture: 72°F, clear, dry.
var Princeton = Page{
	Town:      "Princeton",
	State:     "NJ",
	Zip:       "08540",
	Temp:      "72.0",
	Sky:       "Clear",
	Rain:      "0.00",
	Humidity:  "54",
	FeelsLike: "72.0",
}

// Seattle is a rainy fixture.
var Seattle = Page{
	Town:      "Seattle",
	State:     "WA",
	Zip:       "98101",
	Temp:      "51.3",
	Sky:       "Light Rain",
	Rain:      "0.12",
	Humidity:  "93",
	FeelsLike: "49.8",
}

// HTML renders p in the layout of the legacy wunderground forecast page.
func (p Page) HTML() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<title>%[1]s, %[2]s Weather</title>
<meta property="og:title" content="%[1]s, %[2]s (%[3]s) | %[4]s&deg;F | %[5]s" />
<meta property="og:type" content="website" />
</head>
<body>
<div id="curCond"><span class="wx-value">%[5]s</span></div>
<table>
<tr><td>Precipitation</td><td><span data-variable="precip_today"><span class="wx-value">%[6]s</span> in</span></td></tr>
</table>
<script>
var wui = {"current_observation": {"temperature": %[4]s, "humidity":%[7]s, "feelslike": %[8]s, "station": "KNJPRINC"}};
</script>
</body>
</html>
`, p.Town, p.State, p.Zip, p.Temp, p.Sky, p.Rain, p.Humidity, p.FeelsLike)
}

// PageServer serves fixture pages keyed by the "query" parameter and counts requests.
type PageServer struct {
	*httptest.Server

	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

// NewPageServer starts a PageServer closed automatically at test cleanup.
// Unknown queries get 404.
func NewPageServer(t *testing.T, pages ...Page) *PageServer {
	t.Helper()
	ps := &PageServer{
		pages: make(map[string]string),
		hits:  make(map[string]int),
	}
	for _, p := range pages {
		ps.pages[p.Zip] = p.HTML()
	}
	ps.Server = httptest.NewServer(http.HandlerFunc(ps.serve))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *PageServer) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	ps.mu.Lock()
	ps.hits[q]++
	body, ok := ps.pages[q]
	ps.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// SetPage replaces the page served for zip.
func (ps *PageServer) SetPage(zip, html string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.pages[zip] = html
}

// Hits returns how many times zip was requested.
func (ps *PageServer) Hits(zip string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.hits[zip]
}
