package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const seqLen = 8

// splitValue separates the sequence prefix from the JSON body. ok is false for
// a value too short to carry the prefix.
func splitValue(v []byte) (seq uint64, body []byte, ok bool) {
	if len(v) < seqLen {
		return 0, nil, false
	}
	// bbolt values are only valid inside the transaction.
	return binary.BigEndian.Uint64(v[:seqLen]), append([]byte(nil), v[seqLen:]...), true
}

// BoltStore is the bbolt backend. Each collection is a bucket keyed by id.
// Values carry an 8-byte sequence prefix because bbolt iterates in key
// order, not insertion order.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates a bbolt file at path. timeout bounds the
// wait for the file lock held by another process.
func NewBoltStore(path string, timeout time.Duration) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, c := range Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (b *BoltStore) name() string { return DriverBolt }

func (b *BoltStore) get(ctx context.Context, c Collection, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(c)).Get([]byte(id))
		if v == nil {
			return nil
		}
		var ok bool
		if _, body, ok = splitValue(v); !ok {
			// Corrupt: an empty body fails to decode instead of reading as missing.
			body = []byte{}
		}
		return nil
	})
	return body, err
}

func (b *BoltStore) all(ctx context.Context, c Collection) ([]record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type seqRecord struct {
		seq uint64
		record
	}
	var rows []seqRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(c)).ForEach(func(k, v []byte) error {
			// A short value keeps an empty body, which decoding skips.
			seq, body, _ := splitValue(v)
			rows = append(rows, seqRecord{
				seq:    seq,
				record: record{ID: string(k), Body: body},
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]record, len(rows))
	for i, r := range rows {
		out[i] = r.record
	}
	return out, nil
}

// putTx keeps an existing key's sequence so replacing a record does not move
// it in the listing order.
func putTx(bkt *bbolt.Bucket, id string, body []byte) error {
	seq, _, ok := splitValue(bkt.Get([]byte(id)))
	if !ok {
		var err error
		if seq, err = bkt.NextSequence(); err != nil {
			return err
		}
	}
	v := make([]byte, seqLen+len(body))
	binary.BigEndian.PutUint64(v, seq)
	copy(v[seqLen:], body)
	return bkt.Put([]byte(id), v)
}

func (b *BoltStore) put(ctx context.Context, c Collection, id string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return putTx(tx.Bucket([]byte(c)), id, body)
	})
}

func (b *BoltStore) del(ctx context.Context, c Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(c)).Delete([]byte(id))
	})
}

func (b *BoltStore) replace(ctx context.Context, data map[Collection][]record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		for _, c := range Collections {
			if tx.Bucket([]byte(c)) != nil {
				if err := tx.DeleteBucket([]byte(c)); err != nil {
					return fmt.Errorf("clear %s: %w", c, err)
				}
			}
			bkt, err := tx.CreateBucket([]byte(c))
			if err != nil {
				return err
			}
			for _, r := range data[c] {
				if err := putTx(bkt, r.ID, r.Body); err != nil {
					return fmt.Errorf("insert %s %s: %w", c, r.ID, err)
				}
			}
		}
		return nil
	})
}

func (b *BoltStore) close() error {
	return b.db.Close()
}
