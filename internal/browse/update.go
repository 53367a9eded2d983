package browse

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asmb/a64browse/internal/catalog"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.busy = true
			return m, m.quitCmd()
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)

	case categoriesMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.cats = msg.cats
		if m.catCursor >= len(m.cats) {
			m.catCursor = 0
		}
		return m, nil

	case pageMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.result = msg.page
		m.cursor = landingCursor(m.nextCursor, len(msg.page.Items))
		return m, nil

	case infoMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.page = infoPage{record: msg.record, prev: m.page, result: m.result, cursor: m.cursor}
		return m, nil

	case runMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus(msg.line)
		return m, nil

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("settings saved")
		return m, nil

	case quitDoneMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// landingCursor applies the page-flip cursor rules: a fresh page starts at
// the top, a backwards flip lands on the last visible row.
func landingCursor(rule cursorRule, count int) int {
	if count == 0 {
		return 0
	}
	if rule == cursorToEnd {
		if count > visibleRows {
			return visibleRows - 1
		}
		return count - 1
	}
	return 0
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch page := m.page.(type) {
	case categoriesPage:
		return m.updateCategories(msg)
	case listPage:
		return m.updateList(msg)
	case searchPage:
		return m.updateSearch(msg, page)
	case advFormPage:
		return m.updateAdvForm(msg, page)
	case advResultsPage:
		return m.updateAdvResults(msg)
	case settingsPage:
		return m.updateSettings(msg, page)
	case infoPage:
		return m.updateInfo(msg, page)
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

func (m Model) updateCategories(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Action(msg, scopeCategories) {
	case actionUp:
		if m.catCursor > 0 {
			m.catCursor--
		}
	case actionDown:
		if m.catCursor < len(m.cats)-1 {
			m.catCursor++
		}
	case actionSelect:
		if m.catCursor < len(m.cats) {
			cat := m.cats[m.catCursor].Name
			m.page = listPage{category: cat}
			m.result = catalog.Page{}
			m.cursor = 0
			m.busy = true
			m.nextCursor = cursorToTop
			return m, m.loadEntriesCmd(cat, 0)
		}
	case actionSearch:
		return m.openSearch()
	case actionAdvanced:
		return m.openAdvForm()
	case actionSettings:
		m.page = settingsPage{}
		m.hostInput.SetValue(m.cfg.Server.Host)
		m.setStatus("")
	case actionQuit:
		m.busy = true
		return m, m.quitCmd()
	}
	return m, nil
}

func (m Model) openSearch() (tea.Model, tea.Cmd) {
	m.page = searchPage{filter: catalog.CatAll}
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.result = catalog.Page{}
	m.cursor = 0
	m.setStatus("")
	return m, nil
}

func (m Model) openAdvForm() (tea.Model, tea.Cmd) {
	m.page = advFormPage{focus: advCategory}
	m.advFilters = catalog.Filters{}
	m.titleInput.SetValue("")
	m.groupInput.SetValue("")
	m.setStatus("")
	return m, nil
}

func (m Model) backToCategories() (tea.Model, tea.Cmd) {
	m.page = categoriesPage{}
	m.result = catalog.Page{}
	m.cursor = 0
	m.setStatus("")
	return m, nil
}

// ---------------------------------------------------------------------------
// Result pages (list, search results, advanced results)
// ---------------------------------------------------------------------------

func (m Model) moveUp() (tea.Model, tea.Cmd) {
	if m.cursor > 0 {
		m.cursor--
		return m, nil
	}
	if m.result.Offset > 0 {
		offset := m.result.Offset - catalog.PageSize
		if offset < 0 {
			offset = 0
		}
		m.busy = true
		m.nextCursor = cursorToEnd
		return m, m.requeryCmd(m.result.Query, offset)
	}
	return m, nil
}

func (m Model) moveDown() (tea.Model, tea.Cmd) {
	if m.cursor < len(m.result.Items)-1 {
		m.cursor++
		return m, nil
	}
	if m.result.Offset+len(m.result.Items) < m.result.Total {
		m.busy = true
		m.nextCursor = cursorToTop
		return m, m.requeryCmd(m.result.Query, m.result.Offset+catalog.PageSize)
	}
	return m, nil
}

func (m Model) flipPage(back bool) (tea.Model, tea.Cmd) {
	if back {
		if m.result.Offset == 0 {
			return m, nil
		}
		offset := m.result.Offset - catalog.PageSize
		if offset < 0 {
			offset = 0
		}
		m.busy = true
		m.nextCursor = cursorToTop
		return m, m.requeryCmd(m.result.Query, offset)
	}
	if m.result.Offset+len(m.result.Items) >= m.result.Total {
		return m, nil
	}
	m.busy = true
	m.nextCursor = cursorToTop
	return m, m.requeryCmd(m.result.Query, m.result.Offset+catalog.PageSize)
}

func (m Model) runSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	m.busy = true
	return m, m.runCmd(item.ID)
}

func (m Model) infoSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	m.busy = true
	return m, m.infoCmd(item.ID)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Action(msg, scopeList) {
	case actionUp:
		return m.moveUp()
	case actionDown:
		return m.moveDown()
	case actionPrevPage:
		return m.flipPage(true)
	case actionNextPage:
		return m.flipPage(false)
	case actionSelect:
		return m.runSelected()
	case actionInfo:
		return m.infoSelected()
	case actionSearch:
		return m.openSearch()
	case actionAdvanced:
		return m.openAdvForm()
	case actionBack:
		return m.backToCategories()
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Free-text search
// ---------------------------------------------------------------------------

func (m Model) updateSearch(msg tea.KeyMsg, page searchPage) (tea.Model, tea.Cmd) {
	// Typing has priority: plain runes never reach the key registry here.
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace || msg.Type == tea.KeySpace {
		m.searchInput, _ = m.searchInput.Update(msg)
		return m.requerySearch(page)
	}

	switch m.keys.Action(msg, scopeSearch) {
	case actionUp:
		return m.moveUp()
	case actionDown:
		return m.moveDown()
	case actionPrevPage:
		return m.flipPage(true)
	case actionNextPage:
		return m.flipPage(false)
	case actionCycle:
		page.filter = page.filter.Next()
		m.page = page
		return m.requerySearch(page)
	case actionSelect:
		return m.runSelected()
	case actionBack:
		return m.backToCategories()
	}
	return m, nil
}

// requerySearch re-runs the query on every edit once it has at least two
// characters; below that the results clear instead.
func (m Model) requerySearch(page searchPage) (tea.Model, tea.Cmd) {
	query := m.searchInput.Value()
	if len(query) < 2 {
		m.result = catalog.Page{}
		m.cursor = 0
		return m, nil
	}
	m.busy = true
	m.nextCursor = cursorToTop
	return m, m.searchCmd(query, page.filter, 0)
}

// ---------------------------------------------------------------------------
// Advanced search form
// ---------------------------------------------------------------------------

func (m Model) updateAdvForm(msg tea.KeyMsg, page advFormPage) (tea.Model, tea.Cmd) {
	if page.editing {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEscape:
			page.editing = false
			m.page = page
			m.advFilters.Title = m.titleInput.Value()
			m.advFilters.Group = m.groupInput.Value()
		default:
			if page.focus == advTitle {
				m.titleInput, _ = m.titleInput.Update(msg)
			} else {
				m.groupInput, _ = m.groupInput.Update(msg)
			}
		}
		return m, nil
	}

	switch m.keys.Action(msg, scopeAdvForm) {
	case actionUp:
		if page.focus > 0 {
			page.focus--
		}
		m.page = page
	case actionDown, actionCycle:
		page.focus = (page.focus + 1) % advFieldCount
		m.page = page
	case actionSelect:
		return m.advFormSelect(page)
	case actionBack:
		return m.backToCategories()
	}
	return m, nil
}

func (m Model) advFormSelect(page advFormPage) (tea.Model, tea.Cmd) {
	switch page.focus {
	case advCategory:
		m.advFilters.Category = m.advFilters.Category.Next()
	case advType:
		m.advFilters.Type = m.advFilters.Type.Next()
	case advTop200:
		m.advFilters.Top200 = !m.advFilters.Top200
	case advTitle:
		page.editing = true
		m.page = page
		m.titleInput.Focus()
		m.titleInput.CursorEnd()
	case advGroup:
		page.editing = true
		m.page = page
		m.groupInput.Focus()
		m.groupInput.CursorEnd()
	case advSubmit:
		m.page = advResultsPage{filters: m.advFilters}
		m.result = catalog.Page{}
		m.cursor = 0
		m.busy = true
		m.nextCursor = cursorToTop
		return m, m.advSearchCmd(m.advFilters, 0)
	}
	return m, nil
}

func (m Model) updateAdvResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Action(msg, scopeAdvResults) {
	case actionUp:
		return m.moveUp()
	case actionDown:
		return m.moveDown()
	case actionPrevPage:
		return m.flipPage(true)
	case actionNextPage:
		return m.flipPage(false)
	case actionSelect:
		return m.runSelected()
	case actionInfo:
		return m.infoSelected()
	case actionSearch:
		return m.openSearch()
	case actionAdvanced:
		return m.openAdvForm()
	case actionBack:
		m.page = advFormPage{focus: advSubmit}
		m.result = catalog.Page{}
		m.cursor = 0
		m.setStatus("")
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func (m Model) updateSettings(msg tea.KeyMsg, page settingsPage) (tea.Model, tea.Cmd) {
	if page.editing {
		switch msg.Type {
		case tea.KeyEnter:
			page.editing = false
			m.page = page
			m.cfg.Server.Host = m.hostInput.Value()
			m.busy = true
			return m, m.saveConfigCmd(m.cfg)
		case tea.KeyEscape:
			page.editing = false
			m.page = page
			m.hostInput.SetValue(m.cfg.Server.Host)
		default:
			m.hostInput, _ = m.hostInput.Update(msg)
		}
		return m, nil
	}

	switch m.keys.Action(msg, scopeSettings) {
	case actionSelect:
		page.editing = true
		m.page = page
		m.hostInput.Focus()
		m.hostInput.CursorEnd()
	case actionBack:
		return m.backToCategories()
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Detail view
// ---------------------------------------------------------------------------

func (m Model) updateInfo(msg tea.KeyMsg, page infoPage) (tea.Model, tea.Cmd) {
	switch m.keys.Action(msg, scopeInfo) {
	case actionBack, actionSelect:
		m.page = page.prev
		m.result = page.result
		m.cursor = page.cursor
	}
	return m, nil
}
