package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const nameColumn = 34

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Assembly64 Browser"))
	b.WriteString("  ")
	b.WriteString(headerStyle.Render(m.pageTitle()))
	b.WriteString("\n\n")

	switch page := m.page.(type) {
	case categoriesPage:
		b.WriteString(m.viewCategories())
	case listPage:
		b.WriteString(m.viewResults())
	case searchPage:
		b.WriteString(m.viewSearch(page))
	case advFormPage:
		b.WriteString(m.viewAdvForm(page))
	case advResultsPage:
		b.WriteString(m.viewResults())
	case settingsPage:
		b.WriteString(m.viewSettings(page))
	case infoPage:
		b.WriteString(m.viewInfo(page))
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.viewHelp())
	return b.String()
}

func (m Model) pageTitle() string {
	switch page := m.page.(type) {
	case categoriesPage:
		return "Categories"
	case listPage:
		return page.category
	case searchPage:
		return "Search"
	case advFormPage:
		return "Advanced Search"
	case advResultsPage:
		return "Results"
	case settingsPage:
		return "Settings"
	case infoPage:
		return "Details"
	}
	return ""
}

func (m Model) viewCategories() string {
	if len(m.cats) == 0 {
		return helpStyle.Render("no categories") + "\n"
	}
	var b strings.Builder
	for i, cat := range m.cats {
		row := fmt.Sprintf("%s %s", padRight(cat.Name, nameColumn), countStyle.Render(fmt.Sprintf("%d", cat.Count)))
		if i == m.catCursor {
			b.WriteString(cursorRowStyle.Render("> " + row))
		} else {
			b.WriteString(rowStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.rangeLine()))
	b.WriteString("\n")
	start, end := m.resultWindow()
	for i := start; i < end; i++ {
		name := padRight(m.result.Items[i].Name, nameColumn)
		if i == m.cursor {
			b.WriteString(cursorRowStyle.Render("> " + name))
		} else {
			b.WriteString(rowStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}
	if len(m.result.Items) == 0 && !m.busy {
		b.WriteString(helpStyle.Render("  no entries"))
		b.WriteString("\n")
	}
	return b.String()
}

// resultWindow returns the bounds of the rows on screen. A page holds up to
// catalog.PageSize items but only visibleRows fit, so the window slides to
// keep the cursor row visible.
func (m Model) resultWindow() (start, end int) {
	if m.cursor >= visibleRows {
		start = m.cursor - visibleRows + 1
	}
	end = start + visibleRows
	if n := len(m.result.Items); end > n {
		end = n
	}
	return start, end
}

func (m Model) rangeLine() string {
	if m.result.Total == 0 {
		return "0 of 0"
	}
	first := m.result.Offset + 1
	last := m.result.Offset + len(m.result.Items)
	return fmt.Sprintf("%d-%d of %d", first, last, m.result.Total)
}

func (m Model) viewSearch(page searchPage) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Search: "))
	b.WriteString(m.searchInput.View())
	b.WriteString("   ")
	b.WriteString(headerStyle.Render("Filter: "))
	b.WriteString(fieldStyle.Render(page.filter.String()))
	b.WriteString("\n\n")
	if len(m.searchInput.Value()) < 2 {
		b.WriteString(helpStyle.Render("type at least 2 characters"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.viewResults())
	return b.String()
}

func (m Model) viewAdvForm(page advFormPage) string {
	f := m.advFilters
	title := m.titleInput.Value()
	group := m.groupInput.Value()
	if page.editing && page.focus == advTitle {
		title = m.titleInput.View()
	}
	if page.editing && page.focus == advGroup {
		group = m.groupInput.View()
	}
	top200 := "no"
	if f.Top200 {
		top200 = "yes"
	}

	rows := []struct {
		field advField
		label string
		value string
	}{
		{advCategory, "Category", f.Category.String()},
		{advTitle, "Title", title},
		{advGroup, "Group", group},
		{advType, "Type", f.Type.String()},
		{advTop200, "Top 200", top200},
		{advSubmit, "", "[ Search ]"},
	}

	var b strings.Builder
	for _, row := range rows {
		style := fieldStyle
		marker := "  "
		if row.field == page.focus {
			style = focusedFieldStyle
			marker = "> "
		}
		if row.label != "" {
			b.WriteString(marker + labelStyle.Render(padRight(row.label, 10)) + style.Render(row.value))
		} else {
			b.WriteString(marker + style.Render(row.value))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewSettings(page settingsPage) string {
	host := m.cfg.Server.Host
	if page.editing {
		host = m.hostInput.View()
	}
	var b strings.Builder
	b.WriteString("> " + labelStyle.Render(padRight("Host", 10)) + fieldStyle.Render(host))
	b.WriteString("\n")
	b.WriteString("  " + labelStyle.Render(padRight("Port", 10)) + fieldStyle.Render(fmt.Sprintf("%d", m.cfg.Server.Port)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewInfo(page infoPage) string {
	var b strings.Builder
	for _, f := range page.record {
		b.WriteString(labelStyle.Render(padRight(f.Label, 9)))
		b.WriteString(fieldStyle.Render(f.Value))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewStatus() string {
	if m.busy {
		return helpStyle.Render("working...")
	}
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return statusErrStyle.Render(m.status)
	}
	return statusOKStyle.Render(m.status)
}

func (m Model) viewHelp() string {
	bindings := m.keys.BindingsForScope(m.page.scope())
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if len(b.Keys) == 0 || b.Description == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", b.Keys[0], b.Description))
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}

// padRight pads or truncates s to width terminal cells.
func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}
