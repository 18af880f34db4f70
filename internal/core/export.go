package core

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"quizbank/internal/blob"
	"quizbank/internal/export"
	"quizbank/pkg/domain"
)

// archivePrefix roots every published export in the archive.
const archivePrefix = "exports"

// ExportResult describes a written document.
type ExportResult struct {
	Format export.Format
	Target string
	Items  int
	// Artifact is set when the document was also published to the archive.
	Artifact *blob.Info
}

// ExportSource resolves what Export would print: the selection with
// stale identities dropped, or the whole store when the selection is
// empty or fully stale. Stale identities are pruned from the selection.
func (b *Bank) ExportSource() domain.View {
	if len(b.selection) > 0 {
		live := b.positions()
		kept := b.selection[:0:0]
		out := make(domain.View, 0, len(b.selection))
		for _, id := range b.selection {
			i, ok := live[id]
			if !ok {
				continue
			}
			kept = append(kept, id)
			out = append(out, b.entries[i])
		}
		if dropped := len(b.selection) - len(kept); dropped > 0 {
			b.logger.Debug("dropped stale selection ids", zap.Int("dropped", dropped))
		}
		b.selection = kept
		if len(out) > 0 {
			return out
		}
	}
	return b.List()
}

// Export renders the export source into target using format. The core
// does not add an extension to target. Any failure is an ExportError; a
// partially written target is left in place.
func (b *Bank) Export(ctx context.Context, format export.Format, target string) (res ExportResult, err error) {
	start := b.now()
	defer func() { b.observe(ctx, "export", start, err) }()

	fail := func(cause error) (ExportResult, error) {
		err := &domain.ExportError{Format: string(format), Target: target, Err: cause}
		b.logger.Error("export failed", zap.String("format", string(format)), zap.String("target", target), zap.Error(cause))
		return ExportResult{}, err
	}

	renderer, err := b.renderers.Lookup(format)
	if err != nil {
		return fail(err)
	}
	items := export.Layout(b.ExportSource().Records())

	var buf bytes.Buffer
	if err := renderer.Render(&buf, items); err != nil {
		return fail(err)
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(err)
		}
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fail(err)
	}
	res = ExportResult{Format: format, Target: target, Items: len(items)}

	if b.archive != nil {
		info, err := b.publish(ctx, renderer, target, buf.Bytes(), len(items))
		if err != nil {
			return fail(err)
		}
		res.Artifact = &info
	}

	b.logger.Info("export written",
		zap.String("format", string(format)),
		zap.String("target", target),
		zap.Int("items", len(items)),
		zap.Bool("archived", res.Artifact != nil))
	return res, nil
}

func (b *Bank) publish(ctx context.Context, renderer export.Renderer, target string, data []byte, items int) (blob.Info, error) {
	key := path.Join(archivePrefix, b.newKey(), filepath.Base(target))
	return b.archive.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: renderer.ContentType(),
		Metadata: map[string]string{
			"format":     string(renderer.Format()),
			"items":      strconv.Itoa(items),
			"created_at": b.now().UTC().Format(time.RFC3339),
		},
	})
}
