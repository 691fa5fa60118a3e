// Package audit appends security-relevant events to a durable log and
// serves the read-side projections security tooling queries.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	dbinit "inkwell/cms/db/init"
	"inkwell/cms/internal/metrics"
	"inkwell/cms/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrValidation is returned when a required field is missing. Callers
// log and continue; a bad audit record never blocks the action it was
// meant to record.
var ErrValidation = errors.New("audit: action is required")

// Store is the persistence surface the writer needs. *sqlite.SQLiteDB
// satisfies it.
type Store interface {
	InsertAuditEntry(entry *dbinit.AuditEntry) error
	ListAuditForUser(userID string) ([]*dbinit.AuditEntry, error)
	ListAuditForResource(resourceType, resourceID string) ([]*dbinit.AuditEntry, error)
	ListAuditRecent(limit int) ([]*dbinit.AuditEntry, error)
}

// Options carries the optional fields of an audit entry.
type Options struct {
	IPAddress    string
	ResourceType string
	ResourceID   string
	Metadata     map[string]interface{}
}

// Writer appends entries to the store. LogAction writes synchronously;
// Record queues the write onto a background worker so handlers stay off
// the storage path. Start the worker before using Record.
type Writer struct {
	store    Store
	queue    chan *dbinit.AuditEntry
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWriter creates a Writer over store.
func NewWriter(store Store) *Writer {
	return &Writer{
		store:    store,
		queue:    make(chan *dbinit.AuditEntry, 256),
		stopChan: make(chan struct{}),
	}
}

// Start launches the background worker consumed by Record.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case entry := <-w.queue:
				w.persist(entry)
			case <-w.stopChan:
				// Drain what is already queued before exiting.
				for {
					select {
					case entry := <-w.queue:
						w.persist(entry)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop flushes the queue and stops the worker.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}

func (w *Writer) persist(entry *dbinit.AuditEntry) {
	if err := w.store.InsertAuditEntry(entry); err != nil {
		// Best effort: the guarded action already happened.
		logger.Error("audit write failed",
			zap.String("action", entry.Action),
			zap.String("actor_user_id", entry.ActorUserID),
			zap.Error(err))
		return
	}
	metrics.AuditEntriesWritten.Inc()
}

func buildEntry(action, actorUserID string, opts Options) (*dbinit.AuditEntry, error) {
	if action == "" {
		return nil, ErrValidation
	}

	metadata := "{}"
	if opts.Metadata != nil {
		normalized := NormalizeMetadata(opts.Metadata)
		data, err := json.Marshal(normalized)
		if err != nil {
			return nil, fmt.Errorf("audit: failed to encode metadata: %w", err)
		}
		metadata = string(data)
	}

	return &dbinit.AuditEntry{
		ID:           uuid.New().String(),
		Action:       action,
		ActorUserID:  actorUserID,
		ResourceType: opts.ResourceType,
		ResourceID:   opts.ResourceID,
		Metadata:     metadata,
		IPAddress:    opts.IPAddress,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// LogAction validates, builds and synchronously persists one entry.
func (w *Writer) LogAction(action, actorUserID string, opts Options) (*dbinit.AuditEntry, error) {
	entry, err := buildEntry(action, actorUserID, opts)
	if err != nil {
		return nil, err
	}
	if err := w.store.InsertAuditEntry(entry); err != nil {
		return nil, fmt.Errorf("audit: failed to insert entry: %w", err)
	}
	metrics.AuditEntriesWritten.Inc()
	return entry, nil
}

// Record queues an entry for the background worker. Validation failures
// are logged and dropped; they must not surface to the guarded action.
func (w *Writer) Record(action, actorUserID string, opts Options) {
	entry, err := buildEntry(action, actorUserID, opts)
	if err != nil {
		logger.Warn("audit record dropped", zap.Error(err))
		return
	}
	select {
	case w.queue <- entry:
	default:
		logger.Warn("audit queue full, entry dropped", zap.String("action", action))
	}
}

// ListForUser returns a user's entries, newest first.
func (w *Writer) ListForUser(userID string) ([]*dbinit.AuditEntry, error) {
	return w.store.ListAuditForUser(userID)
}

// ListForResource returns a resource's entries, newest first.
func (w *Writer) ListForResource(resourceType, resourceID string) ([]*dbinit.AuditEntry, error) {
	return w.store.ListAuditForResource(resourceType, resourceID)
}

// ListRecent returns up to limit entries, newest first.
func (w *Writer) ListRecent(limit int) ([]*dbinit.AuditEntry, error) {
	return w.store.ListAuditRecent(limit)
}

// NormalizeMetadata walks an arbitrary nested structure and rewrites
// every map to string keys, so the stored JSON has one consistent key
// representation. Maps inside slices are normalized too.
func NormalizeMetadata(metadata map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(metadata))
	for key, value := range metadata {
		normalized[key] = normalizeValue(value)
	}
	return normalized
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return NormalizeMetadata(v)
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, val := range v {
			normalized[fmt.Sprintf("%v", key)] = normalizeValue(val)
		}
		return normalized
	case []interface{}:
		normalized := make([]interface{}, len(v))
		for i, item := range v {
			normalized[i] = normalizeValue(item)
		}
		return normalized
	default:
		return value
	}
}
