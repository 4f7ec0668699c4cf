// Package storage abstracts where pipeline artifacts are kept. Keys are slash
// separated paths relative to the store root.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotExist is returned by Get for keys that are not stored
var ErrNotExist = errors.New("storage: object does not exist")

// Store is a flat key value store of artifacts
type Store interface {
	// Put writes the object, replacing any previous one
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the object, failing with ErrNotExist if missing
	Get(ctx context.Context, key string) ([]byte, error)

	Exists(ctx context.Context, key string) (bool, error)

	// List returns every key under the prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Location describes where the key lives, for humans
	Location(key string) string
}

// Join joins key elements with slashes
func Join(elem ...string) string {
	return path.Join(elem...)
}

// cleanKey normalizes the key and rejects ones escaping the root
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))[1:]
	if k == "" {
		return "", errors.New("storage: empty key")
	}
	return k, nil
}

// Open returns the store for the backend name, file or minio
func Open(ctx context.Context, backend, root string, m MinioConfig) (Store, error) {
	switch backend {
	case "file", "":
		return NewFileStore(osFs(), root), nil
	case "minio":
		return NewMinioStore(ctx, m)
	}
	return nil, errors.New("storage: unknown backend " + backend)
}
