package model

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseCSV reads policy lines in the conventional comma-separated form
//
//	p, alice, data1, read
//	g, alice, admin
//
// into a model. Blank lines and lines starting with '#' are skipped. The
// format is a plain comma split with whitespace trimming, not RFC 4180:
// fields cannot contain commas.
func ParseCSV(r io.Reader) (*Model, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		ptype := fields[0]
		if ptype == "" {
			return nil, fmt.Errorf("line %d: missing rule-set name", lineNo)
		}
		m.AddRule("", ptype, fields[1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read policy lines: %w", err)
	}
	return m, nil
}

// WriteCSV writes the model back out as policy lines, sections in p-then-g
// order and rule sets sorted by name.
func WriteCSV(w io.Writer, m *Model) error {
	return m.Walk(func(sec, ptype string, params []string) error {
		line := ptype
		if len(params) > 0 {
			line += ", " + strings.Join(params, ", ")
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
}
