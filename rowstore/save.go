package rowstore

import (
	"cmp"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mtmstats/blobstore"
	"github.com/hupe1980/mtmstats/internal/blockcompress"
	"github.com/hupe1980/mtmstats/internal/hash"
	"github.com/hupe1980/mtmstats/resource"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/sba"
)

const ctxCheckInterval = 1024

// Save writes tbl to store under name, replacing any table of that name.
//
// The keys and rows blobs are written concurrently; the manifest follows
// once both are complete.
func Save[A, B cmp.Ordered](ctx context.Context, store blobstore.Store, name string, tbl *rows.Table[A, B], optFns ...Option) (*Manifest, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	r := tbl.Rows
	m := &Manifest{
		FormatVersion: FormatVersion,
		Kind:          r.Kind().String(),
		ChunkLength64: r.ChunkLength64(),
		BitLength:     r.BitLength(),
		Rows:          r.Len(),
		KeyTypeA:      fmt.Sprintf("%T", *new(A)),
		KeyTypeB:      fmt.Sprintf("%T", *new(B)),
		Compression:   o.compression.String(),
	}

	// A stale manifest must not describe the blobs being replaced.
	if err := store.Delete(ctx, blobName(name, manifestBlob)); err != nil {
		return nil, fmt.Errorf("delete manifest %s: %w", name, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := o.codec.Marshal(keysDoc[A, B]{A: tbl.SetA, B: tbl.SetB})
		if err != nil {
			return fmt.Errorf("encode keys: %w", err)
		}
		if err := writeBlob(gctx, store, blobName(name, keysBlob), o.controller, func(w io.Writer) error {
			_, err := w.Write(keys)
			return err
		}, &m.KeysSize, &m.KeysCRC); err != nil {
			return fmt.Errorf("write keys: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := writeBlob(gctx, store, blobName(name, rowsBlob), o.controller, func(w io.Writer) error {
			bw := blockcompress.NewWriter(w, o.compression.blockType(), o.blockSize)
			if err := encodeRows(gctx, bw, r); err != nil {
				return err
			}
			return bw.Close()
		}, &m.RowsSize, &m.RowsCRC); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		o.logger.Error("save failed", "table", name, "error", err)
		return nil, err
	}

	data, err := encodeManifest(o.codec, m)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, blobName(name, manifestBlob), data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	o.logger.Debug("saved table",
		"table", name,
		"rows", m.Rows,
		"kind", m.Kind,
		"compression", m.Compression,
		"rows_bytes", m.RowsSize,
		"duration", time.Since(start),
	)
	return m, nil
}

// writeBlob streams fill into a new blob, recording the stored size and CRC32C.
func writeBlob(ctx context.Context, store blobstore.Store, name string, rc *resource.Controller, fill func(io.Writer) error, size *int64, crc *uint32) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	h := hash.NewCRC32C()
	cw := &countingWriter{w: io.MultiWriter(resource.NewRateLimitedWriter(ctx, blob, rc), h)}
	if err := fill(cw); err != nil {
		_ = blob.Close()
		_ = store.Delete(ctx, name)
		return err
	}
	if err := blob.Sync(); err != nil {
		_ = blob.Close()
		return err
	}
	if err := blob.Close(); err != nil {
		return err
	}

	*size = cw.n
	*crc = h.Sum32()
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func encodeRows(ctx context.Context, w io.Writer, r *rows.Rows) error {
	var buf []byte
	for i := range r.Len() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		buf = buf[:0]
		switch r.Kind() {
		case rows.KindDense:
			for _, word := range r.Dense(i) {
				buf = binary.LittleEndian.AppendUint64(buf, word)
			}
		case rows.KindRoaring:
			b, err := r.Roaring(i).ToBytes()
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			buf = binary.AppendUvarint(buf, uint64(len(b)))
			buf = append(buf, b...)
		default:
			buf = sba.AppendBinary(buf, r.Sparse(i))
		}

		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
