package catalog

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/asmb/a64browse/internal/uci"
)

// Client runs one catalog session over a single controller socket. Commands
// and responses strictly alternate; the caller serializes access.
type Client struct {
	net *uci.Network
	log *slog.Logger

	sock      uci.Socket
	r         *uci.LineReader
	connected bool
	greeting  string
}

// NewClient builds a client on the controller's network service.
func NewClient(n *uci.Network, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{net: n, log: log}
}

// Connect opens the session socket and consumes the greeting line. A
// non-success connect status is terminal for the session.
func (c *Client) Connect(host string, port uint16) error {
	sock, st, err := c.net.Connect(host, port, uci.TCP)
	if err != nil {
		return err
	}
	if !st.OK() {
		return &ConnectError{Host: host, Status: st}
	}
	c.sock = sock
	c.r = uci.NewLineReader(c.net, sock)
	c.connected = true

	line, ok, err := c.r.NextLine()
	if err != nil {
		c.drop()
		return err
	}
	if !ok {
		c.drop()
		return &ProtocolError{Reason: "connection closed before greeting"}
	}
	c.greeting = line
	c.log.Debug("session open", "host", host, "port", port, "greeting", line)
	return nil
}

// Greeting returns the server's banner line.
func (c *Client) Greeting() string { return c.greeting }

// Connected reports whether the session socket is open.
func (c *Client) Connected() bool { return c.connected }

// Quit ends the session: QUIT, best-effort goodbye, socket close.
func (c *Client) Quit() error {
	if !c.connected {
		return nil
	}
	if err := c.send("QUIT"); err != nil {
		c.drop()
		return err
	}
	if line, ok, _ := c.r.NextLine(); ok {
		c.log.Debug("session end", "reply", line)
	}
	return c.drop()
}

func (c *Client) drop() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	c.r = nil
	return c.net.Close(c.sock)
}

func (c *Client) send(cmd string) error {
	if !c.connected {
		return ErrNotConnected
	}
	c.log.Debug("send", "cmd", cmd)
	return c.net.Write(c.sock, []byte(cmd+"\n"))
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// Categories fetches the category list.
func (c *Client) Categories() ([]Category, error) {
	if err := c.send("CATS"); err != nil {
		return nil, err
	}
	count, _, err := c.readCountHeader(false)
	if err != nil {
		return nil, err
	}
	var cats []Category
	err = c.drainBody(func(line string) {
		if cat, ok := parseCategoryLine(line); ok && len(cats) < PageSize && len(cats) < count {
			cats = append(cats, cat)
		}
	})
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// Entries fetches one page of a category listing.
func (c *Client) Entries(category string, offset int) (Page, error) {
	cmd := fmt.Sprintf("LIST %s %d %d", category, offset, PageSize)
	q := Query{Kind: QueryCategory, Category: category}
	return c.fetchPage(cmd, q, offset)
}

// Search fetches one page of free-text results, optionally narrowed to a
// category.
func (c *Client) Search(query string, filter FilterCategory, offset int) (Page, error) {
	parts := []string{"SEARCH", strconv.Itoa(offset), strconv.Itoa(PageSize)}
	if filter != CatAll {
		parts = append(parts, filter.String())
	}
	parts = append(parts, query)
	q := Query{Kind: QueryText, Text: query, Filter: filter}
	return c.fetchPage(strings.Join(parts, " "), q, offset)
}

// AdvancedSearch fetches one page of filtered results. With every filter
// unset the command carries no clauses at all and matches everything.
func (c *Client) AdvancedSearch(f Filters, offset int) (Page, error) {
	parts := []string{"ADVSEARCH", strconv.Itoa(offset), strconv.Itoa(PageSize)}
	parts = append(parts, f.Clauses()...)
	q := Query{Kind: QueryAdvanced, Filters: f}
	return c.fetchPage(strings.Join(parts, " "), q, offset)
}

// Info fetches the detail record for an entry. Fields with empty values are
// dropped; a record with no usable fields is ErrNoInfo.
func (c *Client) Info(id int) (InfoRecord, error) {
	if err := c.send(fmt.Sprintf("INFO %d", id)); err != nil {
		return nil, err
	}
	line, err := c.readResponseLine()
	if err != nil {
		return nil, err
	}
	if isServerError(line) {
		return nil, &ServerError{Message: line}
	}
	if fields := strings.Fields(line); len(fields) == 0 || !strings.EqualFold(fields[0], "OK") {
		return nil, &ProtocolError{Line: line, Reason: "malformed response header"}
	}
	var rec InfoRecord
	err = c.drainBody(func(line string) {
		if f, ok := parseInfoLine(line); ok && f.Value != "" {
			rec = append(rec, f)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, ErrNoInfo
	}
	return rec, nil
}

// Run asks the server to launch an entry and returns the single reply line
// verbatim.
func (c *Client) Run(id int) (string, error) {
	if err := c.send(fmt.Sprintf("RUN %d", id)); err != nil {
		return "", err
	}
	return c.readResponseLine()
}

// ---------------------------------------------------------------------------
// Response plumbing
// ---------------------------------------------------------------------------

func (c *Client) fetchPage(cmd string, q Query, offset int) (Page, error) {
	if err := c.send(cmd); err != nil {
		return Page{}, err
	}
	count, total, err := c.readCountHeader(true)
	if err != nil {
		return Page{}, err
	}
	page := Page{Offset: offset, Total: total, Query: q}
	err = c.drainBody(func(line string) {
		if item, ok := parseItemLine(line); ok && len(page.Items) < PageSize && len(page.Items) < count {
			page.Items = append(page.Items, item)
		}
	})
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

func (c *Client) readResponseLine() (string, error) {
	line, ok, err := c.r.NextLine()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ProtocolError{Reason: "connection closed mid-response"}
	}
	return line, nil
}

func (c *Client) readCountHeader(wantTotal bool) (count, total int, err error) {
	line, err := c.readResponseLine()
	if err != nil {
		return 0, 0, err
	}
	if isServerError(line) {
		return 0, 0, &ServerError{Message: line}
	}
	return parseCountHeader(line, wantTotal)
}

// drainBody feeds body lines to fn and always consumes up to the
// terminator, so over-long responses cannot leak into the next command.
func (c *Client) drainBody(fn func(line string)) error {
	for {
		line, err := c.readResponseLine()
		if err != nil {
			return err
		}
		if isTerminator(line) {
			return nil
		}
		fn(line)
	}
}
