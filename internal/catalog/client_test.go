package catalog_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asmb/a64browse/internal/catalog"
	"github.com/asmb/a64browse/internal/uci"
	"github.com/asmb/a64browse/internal/uci/ucitest"
)

func newTestClient(t *testing.T) (*catalog.Client, *ucitest.FakePort, *ucitest.Server) {
	t.Helper()
	fp := ucitest.NewFakePort()
	srv := ucitest.NewServer()
	fp.Handler = srv.Handle
	d := uci.NewDriver(fp, uci.WithPollTimeout(50*time.Millisecond), uci.WithRetries(3, time.Millisecond))
	c := catalog.NewClient(uci.NewNetwork(d), nil)
	require.NoError(t, c.Connect("a64.example.org", 6464))
	return c, fp, srv
}

func TestConnectGreeting(t *testing.T) {
	c, _, _ := newTestClient(t)
	require.True(t, c.Connected())
	require.Equal(t, "OK Assembly64 Browser", c.Greeting())
}

func TestConnectRefused(t *testing.T) {
	fp := ucitest.NewFakePort()
	fp.ConnectStatus = "83,CONNECTION REFUSED"
	d := uci.NewDriver(fp, uci.WithPollTimeout(50*time.Millisecond))
	c := catalog.NewClient(uci.NewNetwork(d), nil)

	err := c.Connect("a64.example.org", 6464)
	var cErr *catalog.ConnectError
	require.ErrorAs(t, err, &cErr)
	require.False(t, c.Connected())
}

func TestCategories(t *testing.T) {
	c, fp, _ := newTestClient(t)

	cats, err := c.Categories()
	require.NoError(t, err)
	require.Equal(t, []catalog.Category{
		{Name: "Games", Count: 3},
		{Name: "Demos", Count: 2},
		{Name: "Music", Count: 2},
	}, cats)
	require.Equal(t, []string{"CATS"}, fp.Lines)
}

func TestCategoriesScenario(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.Handler = func(string) string {
		return "OK 2\nGames|1200\nDemos|451\n.\n"
	}

	cats, err := c.Categories()
	require.NoError(t, err)
	require.Equal(t, []catalog.Category{{Name: "Games", Count: 1200}, {Name: "Demos", Count: 451}}, cats)
}

func TestEntries(t *testing.T) {
	c, fp, srv := newTestClient(t)

	page, err := c.Entries("Games", 0)
	require.NoError(t, err)
	require.Equal(t, "LIST Games 0 20", fp.Lines[len(fp.Lines)-1])
	require.Len(t, page.Items, 3)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 0, page.Offset)
	require.LessOrEqual(t, page.Offset+len(page.Items), page.Total)
	require.Equal(t, srv.Entries[0].Name, page.Items[0].Name)
	require.Equal(t, catalog.QueryCategory, page.Query.Kind)
	require.Equal(t, "Games", page.Query.Category)
}

func TestEntriesOffsetPastTotal(t *testing.T) {
	c, _, _ := newTestClient(t)

	page, err := c.Entries("Games", 40)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, 3, page.Total)
}

func TestEntriesUnknownCategory(t *testing.T) {
	c, _, _ := newTestClient(t)

	_, err := c.Entries("Warez", 0)
	var sErr *catalog.ServerError
	require.ErrorAs(t, err, &sErr)
}

func TestSearch(t *testing.T) {
	c, fp, _ := newTestClient(t)

	page, err := c.Search("rock", catalog.CatAll, 0)
	require.NoError(t, err)
	require.Equal(t, "SEARCH 0 20 rock", fp.Lines[len(fp.Lines)-1])
	require.Len(t, page.Items, 2)

	page, err = c.Search("rock", catalog.CatMusic, 0)
	require.NoError(t, err)
	require.Equal(t, "SEARCH 0 20 Music rock", fp.Lines[len(fp.Lines)-1])
	require.Empty(t, page.Items)
}

func TestSearchIdempotent(t *testing.T) {
	c, _, _ := newTestClient(t)

	first, err := c.Search("a", catalog.CatAll, 0)
	require.NoError(t, err)
	second, err := c.Search("a", catalog.CatAll, 0)
	require.NoError(t, err)
	require.Equal(t, first.Items, second.Items)
	require.Equal(t, first.Total, second.Total)
}

func TestAdvancedSearchNoFilters(t *testing.T) {
	c, fp, srv := newTestClient(t)

	page, err := c.AdvancedSearch(catalog.Filters{}, 0)
	require.NoError(t, err)
	require.Equal(t, "ADVSEARCH 0 20", fp.Lines[len(fp.Lines)-1])
	require.Equal(t, len(srv.Entries), page.Total)
}

func TestAdvancedSearchClauses(t *testing.T) {
	c, fp, _ := newTestClient(t)

	f := catalog.Filters{
		Category: catalog.CatGames,
		Title:    "cave story",
		Type:     catalog.TypeCRT,
		Top200:   true,
	}
	page, err := c.AdvancedSearch(f, 0)
	require.NoError(t, err)
	require.Equal(t, "ADVSEARCH 0 20 cat=Games title=cave_story type=crt top200=1", fp.Lines[len(fp.Lines)-1])
	require.Len(t, page.Items, 1)
	require.Equal(t, "Cave Story 64", page.Items[0].Name)
}

func TestInfoGameHasTrainer(t *testing.T) {
	c, _, _ := newTestClient(t)

	rec, err := c.Info(0)
	require.NoError(t, err)
	labels := make([]string, len(rec))
	for i, f := range rec {
		labels[i] = f.Label
	}
	require.Equal(t, []string{"NAME", "GROUP", "YEAR", "CAT", "TYPE", "TRAINER"}, labels)
	require.Equal(t, "3", rec[len(rec)-1].Value)
}

func TestInfoNonGameHasNoTrainer(t *testing.T) {
	c, _, _ := newTestClient(t)

	rec, err := c.Info(5)
	require.NoError(t, err)
	for _, f := range rec {
		require.NotEqual(t, "TRAINER", f.Label)
	}
}

func TestInfoEmptyValuesDropped(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.Handler = func(string) string {
		return "OK\nNAME|\nGROUP|\n.\n"
	}

	rec, err := c.Info(1)
	require.ErrorIs(t, err, catalog.ErrNoInfo)
	require.Empty(t, rec)
}

func TestInfoInvalidID(t *testing.T) {
	c, _, _ := newTestClient(t)

	_, err := c.Info(999)
	var sErr *catalog.ServerError
	require.ErrorAs(t, err, &sErr)
}

func TestRunVerbatimLine(t *testing.T) {
	c, _, _ := newTestClient(t)

	line, err := c.Run(0)
	require.NoError(t, err)
	require.Equal(t, "OK Running Boulder Crash", line)

	line, err = c.Run(999)
	require.NoError(t, err)
	require.Equal(t, "ERR Invalid ID", line)
}

func TestMalformedHeader(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.Handler = func(string) string { return "WHAT 3\n" }

	_, err := c.Categories()
	var pErr *catalog.ProtocolError
	require.ErrorAs(t, err, &pErr)
}

func TestOverlongBodyCappedAndDrained(t *testing.T) {
	c, fp, srv := newTestClient(t)
	fp.Handler = func(line string) string {
		if strings.HasPrefix(line, "LIST") {
			var b strings.Builder
			b.WriteString("OK 25 100\n")
			for i := 0; i < 25; i++ {
				fmt.Fprintf(&b, "%d|Entry %d|Grp|1990|prg\n", i, i)
			}
			b.WriteString(".\n")
			return b.String()
		}
		return srv.Handle(line)
	}

	page, err := c.Entries("Games", 0)
	require.NoError(t, err)
	require.Len(t, page.Items, catalog.PageSize)

	// The extra rows were drained, not left for the next command.
	cats, err := c.Categories()
	require.NoError(t, err)
	require.Len(t, cats, 3)
}

func TestOverlongCategoryListCappedAndDrained(t *testing.T) {
	c, fp, srv := newTestClient(t)
	fp.Handler = func(line string) string {
		if line == "CATS" {
			var b strings.Builder
			b.WriteString("OK 25\n")
			for i := 0; i < 25; i++ {
				fmt.Fprintf(&b, "Cat%02d|%d\n", i, i)
			}
			b.WriteString(".\n")
			return b.String()
		}
		return srv.Handle(line)
	}

	cats, err := c.Categories()
	require.NoError(t, err)
	require.Len(t, cats, catalog.PageSize)
	require.Equal(t, "Cat00", cats[0].Name)

	// The extra rows were drained, not left for the next command.
	page, err := c.Entries("Games", 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
}

func TestMalformedBodyLinesDropped(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.Handler = func(string) string {
		return "OK 3 3\n1|Only Name\n2|Good|Grp|1999|prg\nnot a row\n.\n"
	}

	page, err := c.Entries("Games", 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 2, page.Items[0].ID)
}

func TestDotBodyLineTerminates(t *testing.T) {
	c, fp, _ := newTestClient(t)
	fp.Handler = func(string) string {
		return "OK 2 2\n.\n"
	}

	page, err := c.Entries("Games", 0)
	require.NoError(t, err)
	require.Empty(t, page.Items)
}

func TestQuitClosesSocket(t *testing.T) {
	c, fp, _ := newTestClient(t)

	require.NoError(t, c.Quit())
	require.False(t, c.Connected())
	require.Len(t, fp.Closed, 1)
	require.Contains(t, fp.Lines, "QUIT")

	_, err := c.Categories()
	require.ErrorIs(t, err, catalog.ErrNotConnected)
}
