// Package storage keeps the records that the callout jobs read and update.
package storage

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/brendan.keane/callout/internal/errors"
)

// Record is one stored row.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveResult reports the outcome of one record in a bulk save.
type SaveResult struct {
	ID  string
	Err error
}

// OK reports whether the record was saved.
func (r SaveResult) OK() bool {
	return r.Err == nil
}

// Store persists records.
type Store interface {
	Close() error
	Get(id string) (Record, error)
	Put(rec Record) error
	List() ([]Record, error)
	// SaveAll saves each record independently: one failure does not stop
	// the others. Results are in input order.
	SaveAll(recs []Record) []SaveResult
}

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = stderrors.New("record not found")

func notFound(id string) error {
	return errors.Wrap(ErrNotFound, errors.ErrorTypeStorage, "lookup failed").WithContext("id", id)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, errors.New(errors.ErrorTypeConfig, "bbolt storage requires a path")
		}
		return openBolt(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "unsupported storage type").
			WithContext("type", typ)
	}
}

func validateRecord(rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New(errors.ErrorTypeValidation, "record id is required").
			WithContext("field", "id")
	}
	return nil
}
