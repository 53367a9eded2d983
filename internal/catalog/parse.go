package catalog

import (
	"strconv"
	"strings"
)

// isTerminator reports the end-of-response line. Only the first byte
// matters, which also means an entry literally named "." would end the
// response early; that ambiguity is part of the protocol.
func isTerminator(line string) bool {
	return len(line) > 0 && line[0] == '.'
}

// isServerError reports an explicit error line. The server spells errors
// "ERR ..."; anything starting with E is treated the same way.
func isServerError(line string) bool {
	if strings.HasPrefix(strings.ToUpper(line), "OK") {
		return false
	}
	return len(line) > 0 && (line[0] == 'E' || line[0] == 'e')
}

// parseCountHeader validates an "OK <count>" or "OK <count> <total>" header.
// When wantTotal is set the total falls back to the count for servers that
// omit it.
func parseCountHeader(line string, wantTotal bool) (count, total int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "OK") {
		return 0, 0, &ProtocolError{Line: line, Reason: "malformed response header"}
	}
	count, err = strconv.Atoi(fields[1])
	if err != nil || count < 0 {
		return 0, 0, &ProtocolError{Line: line, Reason: "bad count in header"}
	}
	total = count
	if wantTotal && len(fields) >= 3 {
		total, err = strconv.Atoi(fields[2])
		if err != nil || total < 0 {
			return 0, 0, &ProtocolError{Line: line, Reason: "bad total in header"}
		}
	}
	return count, total, nil
}

// parseItemLine parses "id|name|group|year|type". Lines with the wrong
// field count are dropped by the caller.
func parseItemLine(line string) (Item, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 5 {
		return Item{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Item{}, false
	}
	return Item{ID: id, Name: parts[1]}, true
}

// parseCategoryLine parses "name|count".
func parseCategoryLine(line string) (Category, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 2 {
		return Category{}, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return Category{}, false
	}
	return Category{Name: parts[0], Count: n}, true
}

// parseInfoLine parses "LABEL|value".
func parseInfoLine(line string) (InfoField, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 2 {
		return InfoField{}, false
	}
	return InfoField{Label: parts[0], Value: parts[1]}, true
}
