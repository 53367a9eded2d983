package browse

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asmb/a64browse/internal/catalog"
	"github.com/asmb/a64browse/internal/config"
)

// ---------------------------------------------------------------------------
// Async protocol calls and their result messages
// ---------------------------------------------------------------------------

type categoriesMsg struct {
	cats []catalog.Category
	err  error
}

type pageMsg struct {
	page catalog.Page
	err  error
}

type infoMsg struct {
	record catalog.InfoRecord
	err    error
}

type runMsg struct {
	line string
	err  error
}

type savedMsg struct{ err error }

type quitDoneMsg struct{ err error }

func (m Model) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		cats, err := m.svc.Categories()
		return categoriesMsg{cats: cats, err: err}
	}
}

func (m Model) loadEntriesCmd(category string, offset int) tea.Cmd {
	return func() tea.Msg {
		page, err := m.svc.Entries(category, offset)
		return pageMsg{page: page, err: err}
	}
}

func (m Model) searchCmd(query string, filter catalog.FilterCategory, offset int) tea.Cmd {
	return func() tea.Msg {
		page, err := m.svc.Search(query, filter, offset)
		return pageMsg{page: page, err: err}
	}
}

func (m Model) advSearchCmd(f catalog.Filters, offset int) tea.Cmd {
	return func() tea.Msg {
		page, err := m.svc.AdvancedSearch(f, offset)
		return pageMsg{page: page, err: err}
	}
}

func (m Model) infoCmd(id int) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.svc.Info(id)
		return infoMsg{record: rec, err: err}
	}
}

func (m Model) runCmd(id int) tea.Cmd {
	return func() tea.Msg {
		line, err := m.svc.Run(id)
		return runMsg{line: line, err: err}
	}
}

func (m Model) saveConfigCmd(cfg config.Config) tea.Cmd {
	save := m.saveConfig
	return func() tea.Msg {
		return savedMsg{err: save(cfg)}
	}
}

func (m Model) quitCmd() tea.Cmd {
	return func() tea.Msg {
		return quitDoneMsg{err: m.svc.Quit()}
	}
}

// requeryCmd reissues the query that produced the active page at a new
// offset, preserving its parameters.
func (m Model) requeryCmd(q catalog.Query, offset int) tea.Cmd {
	switch q.Kind {
	case catalog.QueryCategory:
		return m.loadEntriesCmd(q.Category, offset)
	case catalog.QueryText:
		return m.searchCmd(q.Text, q.Filter, offset)
	default:
		return m.advSearchCmd(q.Filters, offset)
	}
}
