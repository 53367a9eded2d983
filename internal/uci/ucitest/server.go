package ucitest

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one catalog row served by the in-memory server.
type Entry struct {
	Name     string
	Group    string
	Year     string
	Category string
	FileType string
	Trainers int
	Top200   bool
}

// Server answers catalog protocol lines from an in-memory dataset. Entry
// ids are indexes into Entries, matching how the real indexer assigns them.
type Server struct {
	Categories []string
	Entries    []Entry
}

// NewServer seeds a small dataset spanning every category and file type.
func NewServer() *Server {
	return &Server{
		Categories: []string{"Games", "Demos", "Music"},
		Entries: []Entry{
			{Name: "Boulder Crash", Group: "Rockers", Year: "1986", Category: "Games", FileType: "prg", Trainers: 3, Top200: true},
			{Name: "Pixel Raid", Group: "Bitlords", Year: "1988", Category: "Games", FileType: "d64", Trainers: 0},
			{Name: "Cave Story 64", Group: "Rockers", Year: "1991", Category: "Games", FileType: "crt", Trainers: 1, Top200: true},
			{Name: "Desert Dream", Group: "Kefrens", Year: "1993", Category: "Demos", FileType: "d64", Top200: true},
			{Name: "Edge of Disgrace", Group: "Booze Design", Year: "2008", Category: "Demos", FileType: "d64"},
			{Name: "Ocean Loader 3", Group: "Galway", Year: "1987", Category: "Music", FileType: "sid"},
			{Name: "Last Ninja Theme", Group: "Follin", Year: "1987", Category: "Music", FileType: "sid"},
		},
	}
}

// Handle answers one protocol line; responses keep their trailing newline so
// they can be streamed straight into a socket buffer.
func (s *Server) Handle(line string) string {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "ERR Empty command\n"
	}
	switch strings.ToUpper(parts[0]) {
	case "CATS":
		return s.cats()
	case "LIST":
		if len(parts) < 4 {
			return "ERR Usage: LIST <category> <offset> <count>\n"
		}
		offset, _ := strconv.Atoi(parts[2])
		count, _ := strconv.Atoi(parts[3])
		return s.list(parts[1], offset, count)
	case "SEARCH":
		if len(parts) < 4 {
			return "ERR Usage: SEARCH <offset> <count> [category] <query>\n"
		}
		offset, _ := strconv.Atoi(parts[1])
		count, _ := strconv.Atoi(parts[2])
		category, queryStart := "", 3
		for _, cat := range s.Categories {
			if strings.EqualFold(cat, parts[3]) {
				category, queryStart = cat, 4
				break
			}
		}
		query := strings.Join(parts[queryStart:], " ")
		return s.search(query, category, offset, count)
	case "ADVSEARCH":
		if len(parts) < 3 {
			return "ERR Usage: ADVSEARCH <offset> <count> [key=value ...]\n"
		}
		offset, _ := strconv.Atoi(parts[1])
		count, _ := strconv.Atoi(parts[2])
		params := map[string]string{}
		for _, p := range parts[3:] {
			if i := strings.Index(p, "="); i > 0 {
				params[strings.ToLower(p[:i])] = p[i+1:]
			}
		}
		return s.advSearch(params, offset, count)
	case "INFO":
		if len(parts) < 2 {
			return "ERR Usage: INFO <id>\n"
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return "ERR Invalid ID\n"
		}
		return s.info(id)
	case "RUN":
		if len(parts) < 2 {
			return "ERR Usage: RUN <id>\n"
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil || id < 0 || id >= len(s.Entries) {
			return "ERR Invalid ID\n"
		}
		return fmt.Sprintf("OK Running %s\n", s.Entries[id].Name)
	case "QUIT":
		return "OK Goodbye\n"
	default:
		return fmt.Sprintf("ERR Unknown command: %s\n", parts[0])
	}
}

func (s *Server) cats() string {
	var b strings.Builder
	fmt.Fprintf(&b, "OK %d\n", len(s.Categories))
	for _, cat := range s.Categories {
		n := 0
		for _, e := range s.Entries {
			if e.Category == cat {
				n++
			}
		}
		fmt.Fprintf(&b, "%s|%d\n", cat, n)
	}
	b.WriteString(".\n")
	return b.String()
}

func (s *Server) list(category string, offset, count int) string {
	known := false
	for _, cat := range s.Categories {
		if strings.EqualFold(cat, category) {
			category, known = cat, true
			break
		}
	}
	if !known {
		return fmt.Sprintf("ERR Unknown category: %s\n", category)
	}
	var ids []int
	for i, e := range s.Entries {
		if e.Category == category {
			ids = append(ids, i)
		}
	}
	return s.page(ids, offset, count)
}

func (s *Server) search(query, category string, offset, count int) string {
	query = strings.ToLower(query)
	byCat := category != "" && !strings.EqualFold(category, "All")
	var ids []int
	for i, e := range s.Entries {
		if byCat && !strings.EqualFold(e.Category, category) {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), query) ||
			strings.Contains(strings.ToLower(e.Group), query) {
			ids = append(ids, i)
		}
	}
	return s.page(ids, offset, count)
}

func (s *Server) advSearch(params map[string]string, offset, count int) string {
	category := params["cat"]
	title := strings.ToLower(strings.ReplaceAll(params["title"], "_", " "))
	group := strings.ToLower(strings.ReplaceAll(params["group"], "_", " "))
	fileType := strings.ToLower(params["type"])
	top200 := params["top200"] == "1"

	var ids []int
	for i, e := range s.Entries {
		if category != "" && !strings.EqualFold(category, "All") && !strings.EqualFold(e.Category, category) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(e.Name), title) {
			continue
		}
		if group != "" && !strings.Contains(strings.ToLower(e.Group), group) {
			continue
		}
		if fileType != "" && !strings.EqualFold(e.FileType, fileType) {
			continue
		}
		if top200 && !e.Top200 {
			continue
		}
		ids = append(ids, i)
	}
	return s.page(ids, offset, count)
}

func (s *Server) page(ids []int, offset, count int) string {
	total := len(ids)
	if offset >= total {
		return fmt.Sprintf("OK 0 %d\n.\n", total)
	}
	end := offset + count
	if count == 0 || end > total {
		end = total
	}
	var b strings.Builder
	fmt.Fprintf(&b, "OK %d %d\n", end-offset, total)
	for _, id := range ids[offset:end] {
		e := s.Entries[id]
		fmt.Fprintf(&b, "%d|%s|%s|%s|%s\n", id, e.Name, e.Group, e.Year, e.FileType)
	}
	b.WriteString(".\n")
	return b.String()
}

func (s *Server) info(id int) string {
	if id < 0 || id >= len(s.Entries) {
		return "ERR Invalid ID\n"
	}
	e := s.Entries[id]
	var b strings.Builder
	b.WriteString("OK\n")
	fmt.Fprintf(&b, "NAME|%s\n", e.Name)
	fmt.Fprintf(&b, "GROUP|%s\n", e.Group)
	fmt.Fprintf(&b, "YEAR|%s\n", e.Year)
	fmt.Fprintf(&b, "CAT|%s\n", e.Category)
	fmt.Fprintf(&b, "TYPE|%s\n", e.FileType)
	if strings.EqualFold(e.Category, "Games") {
		fmt.Fprintf(&b, "TRAINER|%d\n", e.Trainers)
	}
	b.WriteString(".\n")
	return b.String()
}
