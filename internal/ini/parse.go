package ini

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed profiles.ini.
type ParseError struct {
	// Line is the 1-based line number the problem was found at.
	Line int
	// Section is the name of the enclosing section, if any.
	Section string
	Msg     string
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("profiles.ini:%d: section [%s]: %s", e.Line, e.Section, e.Msg)
	}
	return fmt.Sprintf("profiles.ini:%d: %s", e.Line, e.Msg)
}

// rawSection is a section before its body has been interpreted.
type rawSection struct {
	header string
	name   string
	line   int
	body   []string
}

// Parse decodes a profiles.ini document.
//
// A profile section missing its Name or Path is a hard error; no section is
// ever skipped.
func Parse(data []byte) (*Document, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	doc := &Document{}
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	text = strings.TrimSuffix(text, "\n")

	var cur *rawSection
	flush := func() error {
		if cur == nil {
			return nil
		}
		s, err := decodeSection(cur)
		if err != nil {
			return err
		}
		doc.Sections = append(doc.Sections, s)
		return nil
	}

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			// Text after the closing bracket is ignored, as Firefox does.
			end := strings.IndexByte(trimmed, ']')
			if end < 0 {
				sectionName := ""
				if cur != nil {
					sectionName = cur.name
				}
				return nil, &ParseError{Line: i + 1, Section: sectionName, Msg: "unterminated section header"}
			}
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &rawSection{
				header: line,
				name:   strings.TrimSpace(trimmed[1:end]),
				line:   i + 1,
			}
			continue
		}

		if cur == nil {
			doc.Preamble = append(doc.Preamble, line)
			continue
		}
		cur.body = append(cur.body, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	doc.Preamble = trimTrailingBlank(doc.Preamble)
	return doc, nil
}

func decodeSection(raw *rawSection) (Section, error) {
	body := trimTrailingBlank(raw.body)
	if !IsProfileHeader(raw.name) {
		return &OpaqueSection{Header: raw.header, Lines: body}, nil
	}

	p := &ProfileSection{}
	var hasName, hasPath bool
	for _, line := range body {
		key, value, ok := splitKeyValue(line)
		if !ok {
			p.Extra = append(p.Extra, line)
			continue
		}
		switch key {
		case KeyName:
			p.Name = value
			hasName = value != ""
		case KeyIsRelative:
			p.IsRelative = value == "1"
		case KeyPath:
			p.Path = value
			hasPath = value != ""
		case KeyDefault:
			p.Default = value == "1"
		default:
			p.Extra = append(p.Extra, line)
		}
	}

	if !hasName {
		return nil, &ParseError{Line: raw.line, Section: raw.name, Msg: "missing Name"}
	}
	if !hasPath {
		return nil, &ParseError{Line: raw.line, Section: raw.name, Msg: "missing Path"}
	}
	return p, nil
}

// splitKeyValue splits a "key=value" line. Comments and lines without an
// equals sign are not key lines.
func splitKeyValue(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
		return "", "", false
	}
	idx := strings.IndexByte(trimmed, '=')
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:]), true
}

func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end == 0 {
		return nil
	}
	return lines[:end]
}
