package mbox

import (
	"net/mail"
	"strings"
	"time"
)

// FieldType identifies a header tracked by Message.
type FieldType int

const (
	FieldDate FieldType = iota
	FieldFrom
	FieldSubject
	FieldStatus
	numFields
)

var fieldPrefixes = [numFields]string{
	FieldDate:    "Date: ",
	FieldFrom:    "From: ",
	FieldSubject: "Subject: ",
	FieldStatus:  "Status: ",
}

// Prefix returns the header prefix, including the trailing ": ".
func (f FieldType) Prefix() string {
	return fieldPrefixes[f]
}

// Status is a flag character stored in a message's Status header.
type Status byte

const (
	StatusRead      Status = 'R'
	StatusNonRecent Status = 'O'
	StatusDeleted   Status = 'D'
)

// Message is one message of an mbox, kept as its raw lines so it can be
// written back unchanged apart from its status flags.
type Message struct {
	lines  []string
	fields [numFields]int // line index per field, -1 when absent
	body   int            // index of the first body line, -1 when there is no blank line
}

func newMessage(lines []string) *Message {
	m := &Message{lines: lines}
	m.index()
	return m
}

// index records header positions. Only lines before the first blank line are
// headers; when a header repeats the last one wins.
func (m *Message) index() {
	for f := range m.fields {
		m.fields[f] = -1
	}
	m.body = -1
	for i, line := range m.lines {
		if text, _ := cutCR(line); text == "" {
			m.body = i + 1
			return
		}
		for f, prefix := range fieldPrefixes {
			if strings.HasPrefix(line, prefix) {
				m.fields[f] = i
				break
			}
		}
	}
}

// Field returns the full header line for f.
func (m *Message) Field(f FieldType) (string, bool) {
	idx := m.fields[f]
	if idx < 0 {
		return "", false
	}
	return m.lines[idx], true
}

// FieldValue returns the header text after its prefix.
func (m *Message) FieldValue(f FieldType) (string, bool) {
	line, ok := m.Field(f)
	if !ok {
		return "", false
	}
	text, _ := cutCR(line)
	return strings.TrimPrefix(text, f.Prefix()), true
}

// cutCR splits a trailing carriage return off a line from a CRLF mbox.
func cutCR(line string) (text, cr string) {
	if text, ok := strings.CutSuffix(line, "\r"); ok {
		return text, "\r"
	}
	return line, ""
}

// Subject returns the Subject header value, or "".
func (m *Message) Subject() string {
	v, _ := m.FieldValue(FieldSubject)
	return v
}

// From returns the From header value, or "".
func (m *Message) From() string {
	v, _ := m.FieldValue(FieldFrom)
	return v
}

// Separator returns the "From " line that opened the message, or "" for a
// leading group of lines with no separator.
func (m *Message) Separator() string {
	if len(m.lines) > 0 && strings.HasPrefix(m.lines[0], "From ") {
		return m.lines[0]
	}
	return ""
}

// Date parses the Date header.
func (m *Message) Date() (time.Time, bool) {
	v, ok := m.FieldValue(FieldDate)
	if !ok {
		return time.Time{}, false
	}
	t, err := mail.ParseDate(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateLabel is the Date header shortened for the header list: the parsed
// date without its zone, or the raw value cut at " +".
func (m *Message) DateLabel() string {
	if t, ok := m.Date(); ok {
		return t.Format("Mon, 2 Jan 2006 15:04:05")
	}
	v, _ := m.FieldValue(FieldDate)
	before, _, _ := strings.Cut(v, " +")
	return before
}

// HasStatus reports whether the Status header carries s.
func (m *Message) HasStatus(s Status) bool {
	line, ok := m.Field(FieldStatus)
	return ok && strings.IndexByte(strings.TrimPrefix(line, FieldStatus.Prefix()), byte(s)) >= 0
}

// SetStatus adds s to the Status header. A missing header is inserted just
// before the blank line ending the headers; a message without that blank
// line is left unchanged.
func (m *Message) SetStatus(s Status) {
	if idx := m.fields[FieldStatus]; idx >= 0 {
		if !m.HasStatus(s) {
			text, cr := cutCR(m.lines[idx])
			m.lines[idx] = text + string(rune(s)) + cr
		}
		return
	}
	if m.body < 0 {
		return
	}
	at := m.body - 1
	_, cr := cutCR(m.lines[at])
	m.lines = append(m.lines, "")
	copy(m.lines[at+1:], m.lines[at:])
	m.lines[at] = FieldStatus.Prefix() + string(rune(s)) + cr
	m.fields[FieldStatus] = at
	m.body++
}

// UnsetStatus removes s from the Status header.
func (m *Message) UnsetStatus(s Status) {
	idx := m.fields[FieldStatus]
	if idx < 0 {
		return
	}
	text, cr := cutCR(m.lines[idx])
	value := strings.TrimPrefix(text, FieldStatus.Prefix())
	m.lines[idx] = FieldStatus.Prefix() + strings.ReplaceAll(value, string(rune(s)), "") + cr
}

// ToggleStatus flips s and returns the new state.
func (m *Message) ToggleStatus(s Status) bool {
	if m.HasStatus(s) {
		m.UnsetStatus(s)
		return false
	}
	m.SetStatus(s)
	return m.HasStatus(s)
}

// Lines returns every line of the message, separator included.
func (m *Message) Lines() []string {
	return m.lines
}

// BodyLines returns the lines after the header block.
func (m *Message) BodyLines() ([]string, bool) {
	if m.body < 0 {
		return nil, false
	}
	return m.lines[m.body:], true
}

// String returns the message as it would be written to the mbox.
func (m *Message) String() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Clone returns a deep copy.
func (m *Message) Clone() *Message {
	c := *m
	c.lines = append([]string(nil), m.lines...)
	return &c
}
