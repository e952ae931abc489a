package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/brendan.keane/callout/internal/errors"
	bolt "go.etcd.io/bbolt"
)

const recordBucket = "records"

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (*boltStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeStorage, "create storage directory").
				WithContext("path", dir)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "open bbolt db").
			WithContext("path", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "init bucket")
	}

	return &boltStore{db: db, now: time.Now}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) Get(id string) (Record, error) {
	var rec Record
	err := b.db.View(func(tx *bolt.Tx) error {
		value := bucket(tx).Get([]byte(id))
		if value == nil {
			return notFound(id)
		}
		return json.Unmarshal(value, &rec)
	})
	return rec, err
}

func (b *boltStore) Put(rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return b.put(bucket(tx), rec)
	})
}

func (b *boltStore) put(bkt *bolt.Bucket, rec Record) error {
	rec.UpdatedAt = b.now().UTC()
	value, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, "encode record").WithContext("id", rec.ID)
	}
	if err := bkt.Put([]byte(rec.ID), value); err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, "write record").WithContext("id", rec.ID)
	}
	return nil
}

// List returns every record ordered by ID.
func (b *boltStore) List() ([]Record, error) {
	var recs []Record
	err := b.db.View(func(tx *bolt.Tx) error {
		return bucket(tx).ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return errors.Wrap(err, errors.ErrorTypeStorage, "decode record")
			}
			recs = append(recs, rec)
			return nil
		})
	})
	return recs, err
}

// SaveAll writes valid records in one transaction. Invalid records are
// reported individually and skipped.
func (b *boltStore) SaveAll(recs []Record) []SaveResult {
	results := make([]SaveResult, len(recs))
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := bucket(tx)
		for i, rec := range recs {
			results[i].ID = rec.ID
			if err := validateRecord(rec); err != nil {
				results[i].Err = err
				continue
			}
			results[i].Err = b.put(bkt, rec)
		}
		return nil
	})
	if err != nil {
		for i := range results {
			if results[i].Err == nil {
				results[i].Err = errors.Wrap(err, errors.ErrorTypeStorage, "bulk save failed")
			}
		}
	}
	return results
}

func bucket(tx *bolt.Tx) *bolt.Bucket {
	return tx.Bucket([]byte(recordBucket))
}
