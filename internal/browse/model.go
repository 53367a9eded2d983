// Package browse is the navigation state machine of the catalog browser:
// a tagged union of page states driven by abstract intents, one protocol
// call per transition, hosted in a bubbletea model.
package browse

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asmb/a64browse/internal/catalog"
	"github.com/asmb/a64browse/internal/config"
)

// visibleRows is the number of result rows shown per screen. Pages hold up
// to catalog.PageSize items; the cursor-at-end rule clamps to this.
const visibleRows = 18

// Service is the catalog surface the state machine drives. *catalog.Client
// implements it; tests substitute stubs.
type Service interface {
	Categories() ([]catalog.Category, error)
	Entries(category string, offset int) (catalog.Page, error)
	Search(query string, filter catalog.FilterCategory, offset int) (catalog.Page, error)
	AdvancedSearch(f catalog.Filters, offset int) (catalog.Page, error)
	Info(id int) (catalog.InfoRecord, error)
	Run(id int) (string, error)
	Quit() error
}

// ---------------------------------------------------------------------------
// Page states
// ---------------------------------------------------------------------------

// pageState tags which page is active. Every transition is total over
// (state, action): unhandled pairs leave the model unchanged.
type pageState interface{ scope() string }

type categoriesPage struct{}

type listPage struct{ category string }

type searchPage struct{ filter catalog.FilterCategory }

// advField is the focus position on the advanced search form.
type advField int

const (
	advCategory advField = iota
	advTitle
	advGroup
	advType
	advTop200
	advSubmit
	advFieldCount
)

type advFormPage struct {
	focus   advField
	editing bool
}

type advResultsPage struct{ filters catalog.Filters }

type settingsPage struct{ editing bool }

// infoPage remembers the page it came from; the record dies on return.
type infoPage struct {
	record catalog.InfoRecord
	prev   pageState
	result catalog.Page
	cursor int
}

func (categoriesPage) scope() string { return scopeCategories }
func (listPage) scope() string       { return scopeList }
func (searchPage) scope() string     { return scopeSearch }
func (advFormPage) scope() string    { return scopeAdvForm }
func (advResultsPage) scope() string { return scopeAdvResults }
func (settingsPage) scope() string   { return scopeSettings }
func (infoPage) scope() string       { return scopeInfo }

// cursorRule says where the cursor lands when a fetched page arrives.
type cursorRule int

const (
	cursorToTop cursorRule = iota
	cursorToEnd
)

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is the bubbletea model for the whole browser session.
type Model struct {
	svc  Service
	keys *KeyRegistry
	cfg  config.Config
	log  *slog.Logger

	// saveConfig persists the settings page; swappable in tests.
	saveConfig func(config.Config) error

	page      pageState
	cats      []catalog.Category
	catCursor int
	result    catalog.Page
	cursor    int

	// busy enforces strict request/response alternation: while a protocol
	// call is in flight all input is dropped.
	busy       bool
	nextCursor cursorRule

	searchInput textinput.Model
	hostInput   textinput.Model
	titleInput  textinput.Model
	groupInput  textinput.Model
	advFilters  catalog.Filters

	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

// New builds the model; the session socket is already connected.
func New(svc Service, keys *KeyRegistry, cfg config.Config, log *slog.Logger) Model {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	search := textinput.New()
	search.Prompt = ""
	search.CharLimit = 64
	host := textinput.New()
	host.Prompt = ""
	host.CharLimit = 64
	title := textinput.New()
	title.Prompt = ""
	title.CharLimit = 31
	group := textinput.New()
	group.Prompt = ""
	group.CharLimit = 31

	return Model{
		svc:         svc,
		keys:        keys,
		cfg:         cfg,
		log:         log,
		saveConfig:  config.Save,
		page:        categoriesPage{},
		searchInput: search,
		hostInput:   host,
		titleInput:  title,
		groupInput:  group,
	}
}

// Init fetches the category list.
func (m Model) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.log.Error("page error", "err", err)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

// selectedItem returns the item under the cursor, if any.
func (m Model) selectedItem() (catalog.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.result.Items) {
		return catalog.Item{}, false
	}
	return m.result.Items[m.cursor], true
}
