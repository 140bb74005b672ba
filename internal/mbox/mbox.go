// Package mbox reads and rewrites mbox mail spools.
//
// Messages are kept as raw lines. Only the Date, From, Subject and Status
// headers are indexed; everything else passes through untouched, so writing
// an mbox back changes nothing but status flags and purged messages.
package mbox

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mbox is an ordered list of messages.
type Mbox struct {
	messages []*Message
}

// Parse splits r into messages. Every line starting with "From " begins a
// new message. Lines before the first separator form a message of their own
// when there are any.
func Parse(r io.Reader) (*Mbox, error) {
	var (
		box     Mbox
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			box.messages = append(box.messages, newMessage(current))
		}
		current = nil
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			if strings.HasPrefix(line, "From ") {
				flush()
			}
			current = append(current, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading mbox: %w", err)
		}
	}
	flush()
	return &box, nil
}

// ParseString is Parse over a string.
func ParseString(s string) *Mbox {
	box, _ := Parse(strings.NewReader(s))
	return box
}

// Len returns the number of messages.
func (b *Mbox) Len() int {
	return len(b.messages)
}

// At returns message i, or nil when i is out of range.
func (b *Mbox) At(i int) *Message {
	if i < 0 || i >= len(b.messages) {
		return nil
	}
	return b.messages[i]
}

// Messages returns the messages in file order.
func (b *Mbox) Messages() []*Message {
	return b.messages
}

// Append adds messages to the end of the mbox.
func (b *Mbox) Append(msgs ...*Message) {
	b.messages = append(b.messages, msgs...)
}

// Purge removes every message flagged Deleted and returns them.
func (b *Mbox) Purge() []*Message {
	var purged []*Message
	kept := b.messages[:0]
	for _, m := range b.messages {
		if m.HasStatus(StatusDeleted) {
			purged = append(purged, m)
			continue
		}
		kept = append(kept, m)
	}
	clear(b.messages[len(kept):])
	b.messages = kept
	return purged
}

// SetStatusAll sets s on every message.
func (b *Mbox) SetStatusAll(s Status) {
	for _, m := range b.messages {
		m.SetStatus(s)
	}
}

// Finish prepares the mbox for writing at the end of a session: deleted
// messages are purged and returned, and the rest are marked non-recent.
func (b *Mbox) Finish() []*Message {
	purged := b.Purge()
	b.SetStatusAll(StatusNonRecent)
	return purged
}

// CarryStatus copies the Read and Deleted flags from prev onto messages of
// b that have the same separator line and subject. It is used after a reload
// so marks made in the viewer survive new mail arriving.
func (b *Mbox) CarryStatus(prev *Mbox) {
	type key struct{ separator, subject string }
	pending := make(map[key][]*Message)
	for _, m := range prev.messages {
		k := key{m.Separator(), m.Subject()}
		pending[k] = append(pending[k], m)
	}

	for _, m := range b.messages {
		k := key{m.Separator(), m.Subject()}
		queue := pending[k]
		if len(queue) == 0 {
			continue
		}
		old := queue[0]
		pending[k] = queue[1:]
		for _, s := range []Status{StatusRead, StatusDeleted} {
			if old.HasStatus(s) {
				m.SetStatus(s)
			} else {
				m.UnsetStatus(s)
			}
		}
	}
}

// WriteTo writes every message in mbox format.
func (b *Mbox) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, m := range b.messages {
		for _, line := range m.lines {
			written, err := bw.WriteString(line)
			n += int64(written)
			if err != nil {
				return n, err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, bw.Flush()
}

// String returns the whole mbox as text.
func (b *Mbox) String() string {
	var sb strings.Builder
	_, _ = b.WriteTo(&sb)
	return sb.String()
}

// Clone returns a deep copy.
func (b *Mbox) Clone() *Mbox {
	c := &Mbox{messages: make([]*Message, len(b.messages))}
	for i, m := range b.messages {
		c.messages[i] = m.Clone()
	}
	return c
}
