// Package store persists ledgers to an opaque key-value blob store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
)

// DefaultKey is the blob key the gateway reads and writes.
const DefaultKey = "codetime.stats"

// ErrClosed is returned by blob stores used after Close.
var ErrClosed = errors.New("store closed")

// BlobStore is an externally atomic, externally persistent key-value store.
type BlobStore interface {
	// Get returns the blob for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the blob for key.
	Set(ctx context.Context, key string, blob []byte) error
	Close() error
}

// statsFile is the persisted shape of a ledger. Pointer and nil-able fields
// let a missing field be told apart from an empty one.
type statsFile struct {
	Version   int                         `json:"version"`
	Languages map[string]statsLanguage    `json:"languages,omitempty"`
	Daily     map[string]map[string]int64 `json:"daily,omitempty"`
	Hourly    []int64                     `json:"hourly,omitempty"`
	SavedAt   *time.Time                  `json:"savedAt,omitempty"`
}

type statsLanguage struct {
	TotalTime  int64      `json:"totalTime"`
	LastActive *time.Time `json:"lastActive,omitempty"`
	FileCount  int64      `json:"fileCount"`
}

// Gateway loads and saves ledgers through a BlobStore.
type Gateway struct {
	blobs BlobStore
	key   string
	now   func() time.Time
}

// NewGateway creates a gateway over blobs. An empty key uses DefaultKey.
func NewGateway(blobs BlobStore, key string) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	return &Gateway{blobs: blobs, key: key, now: time.Now}
}

// Key returns the blob key used by the gateway.
func (g *Gateway) Key() string {
	return g.key
}

// Load reads the stored ledger. A missing blob yields an empty ledger and an
// undecodable one keeps whatever fields were readable. Only a failing read
// is reported as an error; the returned ledger must then not be saved over
// the stored one.
func (g *Gateway) Load(ctx context.Context) (*ledger.Ledger, error) {
	blob, ok, err := g.blobs.Get(ctx, g.key)
	if err != nil {
		return ledger.New(), fmt.Errorf("load stats: %w", err)
	}
	if !ok || len(blob) == 0 {
		return ledger.New(), nil
	}

	snap, err := Decode(blob)
	if err != nil {
		logger.Warn("stored stats partly unreadable, keeping readable fields", "key", g.key, "error", err)
	}
	return ledger.FromSnapshot(snap), nil
}

// Save writes snapshot under the gateway key.
func (g *Gateway) Save(ctx context.Context, snap ledger.Snapshot) error {
	blob, err := encode(snap, g.now())
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	if err := g.blobs.Set(ctx, g.key, blob); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// Encode serializes a snapshot with the current schema version.
func Encode(snap ledger.Snapshot) ([]byte, error) {
	return encode(snap, time.Time{})
}

func encode(snap ledger.Snapshot, savedAt time.Time) ([]byte, error) {
	file := statsFile{
		Version:   ledger.SchemaVersion,
		Languages: make(map[string]statsLanguage, len(snap.Categories)),
		Daily:     snap.Daily,
		Hourly:    snap.Hourly[:],
	}
	if file.Daily == nil {
		file.Daily = map[string]map[string]int64{}
	}
	if !savedAt.IsZero() {
		file.SavedAt = &savedAt
	}
	for id, stat := range snap.Categories {
		lang := statsLanguage{TotalTime: stat.TotalTime, FileCount: stat.FileCount}
		if !stat.LastActive.IsZero() {
			last := stat.LastActive
			lang.LastActive = &last
		}
		file.Languages[id] = lang
	}
	return json.Marshal(file)
}

// Decode parses a stored blob field by field. Absent fields default to
// empty, the hourly profile is padded to 24 entries and negative values are
// clamped to zero. A field, language, day or hour that cannot be read is
// dropped on its own and reported in the returned error, while everything
// else is kept. Only a blob that is not a JSON object yields an empty
// snapshot.
func Decode(blob []byte) (ledger.Snapshot, error) {
	snap := ledger.Snapshot{
		Categories: map[string]ledger.CategoryStat{},
		Daily:      map[string]map[string]int64{},
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(blob, &fields); err != nil {
		return snap, fmt.Errorf("decode stats: %w", err)
	}

	var errs []error
	if raw, ok := fields["version"]; ok {
		if err := json.Unmarshal(raw, &snap.Version); err != nil {
			errs = append(errs, fmt.Errorf("version: %w", err))
		}
	}
	errs = append(errs, decodeLanguages(fields["languages"], snap.Categories)...)
	errs = append(errs, decodeDaily(fields["daily"], snap.Daily)...)
	errs = append(errs, decodeHourly(fields["hourly"], &snap.Hourly)...)

	if err := errors.Join(errs...); err != nil {
		return snap, fmt.Errorf("decode stats: %w", err)
	}
	return snap, nil
}

func decodeLanguages(raw json.RawMessage, out map[string]ledger.CategoryStat) []error {
	if isAbsent(raw) {
		return nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []error{fmt.Errorf("languages: %w", err)}
	}

	var errs []error
	for id, entry := range entries {
		var lang statsLanguage
		if err := json.Unmarshal(entry, &lang); err != nil {
			errs = append(errs, fmt.Errorf("language %s: %w", id, err))
			continue
		}
		stat := ledger.CategoryStat{
			TotalTime: max(lang.TotalTime, 0),
			FileCount: max(lang.FileCount, 0),
		}
		if lang.LastActive != nil {
			stat.LastActive = *lang.LastActive
		}
		out[id] = stat
	}
	return errs
}

func decodeDaily(raw json.RawMessage, out map[string]map[string]int64) []error {
	if isAbsent(raw) {
		return nil
	}
	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return []error{fmt.Errorf("daily: %w", err)}
	}

	var errs []error
	for date, rawBucket := range days {
		var bucket map[string]json.RawMessage
		if err := json.Unmarshal(rawBucket, &bucket); err != nil {
			errs = append(errs, fmt.Errorf("daily %s: %w", date, err))
			continue
		}
		day := make(map[string]int64, len(bucket))
		for id, v := range bucket {
			secs, err := decodeSeconds(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("daily %s %s: %w", date, id, err))
				continue
			}
			if secs > 0 {
				day[id] = secs
			}
		}
		out[date] = day
	}
	return errs
}

func decodeHourly(raw json.RawMessage, out *[ledger.HoursPerDay]int64) []error {
	if isAbsent(raw) {
		return nil
	}
	var hours []json.RawMessage
	if err := json.Unmarshal(raw, &hours); err != nil {
		return []error{fmt.Errorf("hourly: %w", err)}
	}

	var errs []error
	for i := 0; i < ledger.HoursPerDay && i < len(hours); i++ {
		secs, err := decodeSeconds(hours[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("hourly[%d]: %w", i, err))
			continue
		}
		out[i] = max(secs, 0)
	}
	return errs
}

// decodeSeconds reads a JSON number, truncating fractional seconds.
func decodeSeconds(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if secs, err := n.Int64(); err == nil {
		return secs, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// MemoryStore is an in-process BlobStore.
type MemoryStore struct {
	blobs  map[string][]byte
	mu     sync.RWMutex
	closed bool
}

// NewMemoryStore returns an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get implements BlobStore.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

// Set implements BlobStore.
func (m *MemoryStore) Set(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.blobs[key] = stored
	return nil
}

// Close implements BlobStore.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
