package rowstore

import (
	"context"
	"errors"
	"strings"

	"github.com/hupe1980/mtmstats/blobstore"
)

// List returns the names of complete tables whose name starts with prefix.
func List(ctx context.Context, store blobstore.Store, prefix string) ([]string, error) {
	blobs, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, b := range blobs {
		if name, ok := strings.CutSuffix(b, "/"+manifestBlob); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Delete removes the table saved under name. The manifest goes first so
// a partially deleted table is never loadable.
func Delete(ctx context.Context, store blobstore.Store, name string) error {
	var errs []error
	for _, b := range []string{manifestBlob, keysBlob, rowsBlob} {
		if err := store.Delete(ctx, blobName(name, b)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
