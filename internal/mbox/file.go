package mbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/tracing"
)

// Load reads and parses the mbox at path. A missing file is an empty mbox.
func Load(ctx context.Context, path string) (box *Mbox, err error) {
	_, span := tracing.Start(ctx, tracing.SpanMboxLoad, attribute.String(tracing.AttrMboxPath, path))
	defer func() { tracing.End(span, err) }()

	f, err := os.Open(path) // #nosec G304 -- path is chosen by the user
	if os.IsNotExist(err) {
		log.Info(log.CatMbox, "Mbox does not exist, starting empty", "path", path)
		return &Mbox{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening mbox: %w", err)
	}
	defer func() { _ = f.Close() }()

	box, err = Parse(f)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrMessageCount, box.Len()))
	log.Debug(log.CatMbox, "Loaded mbox", "path", path, "messages", box.Len())
	return box, nil
}

// WriteFile atomically replaces path with the contents of b: the mbox is
// written to a temp file in the same directory, which is then renamed over
// path. The original file mode is kept.
func (b *Mbox) WriteFile(ctx context.Context, path string) (err error) {
	_, span := tracing.Start(ctx, tracing.SpanMboxWrite,
		attribute.String(tracing.AttrMboxPath, path),
		attribute.Int(tracing.AttrMessageCount, b.Len()))
	defer func() { tracing.End(span, err) }()

	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding mbox: %w", err)
	}

	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".smbox.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Chmod(mode); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("setting mode: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	log.Info(log.CatMbox, "Wrote mbox", "path", path, "messages", b.Len())
	return nil
}

// Commit finishes the session on b and writes it to path. beforeWrite, when
// non-nil, receives the purged messages first; if it fails nothing is
// written, so purged mail is never lost to a failed archive.
func (b *Mbox) Commit(ctx context.Context, path string, beforeWrite func([]*Message) error) (_ []*Message, err error) {
	purged := b.Finish()
	ctx, span := tracing.Start(ctx, tracing.SpanMboxCommit,
		attribute.String(tracing.AttrMboxPath, path),
		attribute.Int(tracing.AttrPurgedCount, len(purged)))
	defer func() { tracing.End(span, err) }()

	if beforeWrite != nil && len(purged) > 0 {
		if err := beforeWrite(purged); err != nil {
			return nil, err
		}
	}
	if err := b.WriteFile(ctx, path); err != nil {
		return nil, err
	}
	if len(purged) > 0 {
		log.Info(log.CatMbox, "Purged deleted messages", "path", path, "count", len(purged))
	}
	return purged, nil
}
