package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// BoltPageCache persists pages in a single bbolt bucket.
type BoltPageCache struct {
	db     *bbolt.DB
	bucket []byte
}

func OpenBoltPageCache(path, bucket string) (*BoltPageCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt page cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}

	return &BoltPageCache{db: db, bucket: []byte(bucket)}, nil
}

func (b *BoltPageCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var page []byte
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		k, v := tx.Bucket(b.bucket).Cursor().Seek([]byte(key))
		if k != nil && bytes.Equal(k, []byte(key)) {
			found = true
			// v is only valid for the life of the transaction
			page = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return page, found, nil
}

func (b *BoltPageCache) Set(_ context.Context, key string, page []byte) error {
	if page == nil {
		page = []byte{}
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), page)
	})
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (b *BoltPageCache) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (b *BoltPageCache) Close() error {
	return b.db.Close()
}
