package ini

import (
	"bytes"
	"strconv"
)

// Encode serializes a document.
//
// Profile sections are renumbered contiguously from 0 in document order and
// written as Name, IsRelative, Path, Default (only when set), then any extra
// lines. Opaque sections and the preamble are written back verbatim. Every
// section is followed by one blank line, the way Firefox writes the file.
func Encode(doc *Document) []byte {
	var b bytes.Buffer

	if len(doc.Preamble) > 0 {
		writeLines(&b, doc.Preamble)
		b.WriteByte('\n')
	}

	index := 0
	for _, s := range doc.Sections {
		switch s := s.(type) {
		case *ProfileSection:
			b.WriteString("[Profile" + strconv.Itoa(index) + "]\n")
			index++

			writeKey(&b, KeyName, s.Name)
			if s.IsRelative {
				writeKey(&b, KeyIsRelative, "1")
			} else {
				writeKey(&b, KeyIsRelative, "0")
			}
			writeKey(&b, KeyPath, s.Path)
			if s.Default {
				writeKey(&b, KeyDefault, "1")
			}
			writeLines(&b, s.Extra)
		case *OpaqueSection:
			b.WriteString(s.Header)
			b.WriteByte('\n')
			writeLines(&b, s.Lines)
		}
		b.WriteByte('\n')
	}

	return b.Bytes()
}

func writeKey(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

func writeLines(b *bytes.Buffer, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
