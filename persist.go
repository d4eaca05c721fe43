package mtmstats

import (
	"cmp"
	"context"

	"github.com/hupe1980/mtmstats/blobstore"
	"github.com/hupe1980/mtmstats/rowstore"
)

func (o *options) rowstoreOptions() []rowstore.Option {
	return []rowstore.Option{
		rowstore.WithCodec(o.codec),
		rowstore.WithCompression(o.compression),
		rowstore.WithResourceController(o.controller),
		rowstore.WithLogger(o.logger.Logger),
	}
}

// Save persists the built sets and rows under name so that Load can skip
// the build. Degrees are recomputed on load.
func (p *Prepared[A, B]) Save(ctx context.Context, store blobstore.Store, name string) error {
	_, err := rowstore.Save(ctx, store, name, p.table, p.opts.rowstoreOptions()...)
	p.opts.logger.LogSave(ctx, name, err)
	return translateError(err)
}

// Load restores a relation saved with Prepared.Save.
//
// The row representation and chunk length are the saved ones; WithKind and
// WithChunkLength are ignored. All enumeration options apply as in Prepare.
// A missing table yields an error matching ErrNotFound.
func Load[A, B cmp.Ordered](ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Prepared[A, B], error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	tbl, err := rowstore.Load[A, B](ctx, store, name, o.rowstoreOptions()...)
	if err != nil {
		o.logger.LogLoad(ctx, name, 0, err)
		return nil, translateError(err)
	}
	o.logger.LogLoad(ctx, name, tbl.Rows.Len(), nil)

	o.kind = tbl.Rows.Kind()
	o.chunkLength = tbl.Rows.ChunkLength64()
	return newPrepared(tbl, o)
}
