// Package storage wraps the embedded key-value store used for vault metadata.
package storage

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned when a key is absent.
var ErrNotFound = errors.New("not found")

// LevelDB is a thin prefix-aware wrapper around goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %q", path)
	}
	return &LevelDB{db: db}, nil
}

// OpenMemLevelDB opens a LevelDB database kept entirely in memory.
func OpenMemLevelDB() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory leveldb")
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	val, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

// Set writes value with fsync so a successful return survives a crash.
func (l *LevelDB) Set(key, value []byte) error {
	return l.db.Put(key, value, &opt.WriteOptions{Sync: true})
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, &opt.WriteOptions{Sync: true})
}

// Batch collects writes that Write applies atomically.
type Batch struct {
	b leveldb.Batch
}

func (b *Batch) Set(key, value []byte) {
	b.b.Put(key, value)
}

func (b *Batch) Delete(key []byte) {
	b.b.Delete(key)
}

func (b *Batch) Len() int {
	return b.b.Len()
}

// Write applies every write of b or none of them, with fsync.
func (l *LevelDB) Write(b *Batch) error {
	return l.db.Write(&b.b, &opt.WriteOptions{Sync: true})
}

// Scan calls fn for every pair whose key starts with prefix, in key order.
func (l *LevelDB) Scan(prefix []byte, fn func(key, value []byte) error) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
