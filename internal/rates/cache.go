package rates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/scaramou4/telegrambot2.0/internal/logger"
	"github.com/scaramou4/telegrambot2.0/internal/models"
)

// FileCache is a date-keyed store of rate snapshots backed by a JSON file.
// Entries never expire: rates for a past date are historically fixed. Writes
// are persisted write-through before Put returns, via a temp file renamed
// over the target so a crash mid-write never leaves a partial file behind.
type FileCache struct {
	path string

	mu      sync.RWMutex
	entries map[string]models.RateSnapshot
}

// NewFileCache creates a cache backed by the given file and loads any
// previously persisted entries. A missing or corrupt file starts the cache
// empty; corruption is logged, not propagated.
func NewFileCache(path string) *FileCache {
	c := &FileCache{
		path:    path,
		entries: make(map[string]models.RateSnapshot),
	}
	c.load()
	return c
}

// Get returns the cached snapshot for the date, if present.
func (c *FileCache) Get(date string) (models.RateSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot, ok := c.entries[date]
	if !ok {
		return models.RateSnapshot{}, false
	}
	return snapshot.Clone(), true
}

// Put inserts or overwrites the snapshot for its date and persists the cache
// before returning.
func (c *FileCache) Put(snapshot models.RateSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[snapshot.Date] = snapshot.Clone()
	return c.persistLocked()
}

// Len returns the number of cached dates.
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *FileCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Warn().Err(err).Str("path", c.path).Msg("Failed to read rates cache file, starting empty")
		}
		return
	}

	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Log.Warn().Err(err).Str("path", c.path).Msg("Rates cache file is corrupt, starting empty")
		return
	}

	for date, rawRates := range raw {
		rates := make(map[string]decimal.Decimal, len(rawRates))
		for code, value := range rawRates {
			rate, err := decimal.NewFromString(value)
			if err != nil || !rate.IsPositive() {
				logger.Log.Warn().Str("date", date).Str("code", code).Str("value", value).Msg("Skipping malformed cached rate")
				continue
			}
			rates[code] = rate
		}
		if len(rates) == 0 {
			continue
		}
		c.entries[date] = models.RateSnapshot{Date: date, Rates: rates}
	}

	logger.Log.Info().Int("dates", len(c.entries)).Str("path", c.path).Msg("Loaded rates cache")
}

func (c *FileCache) persistLocked() error {
	raw := make(map[string]map[string]string, len(c.entries))
	for date, snapshot := range c.entries {
		rawRates := make(map[string]string, len(snapshot.Rates))
		for code, rate := range snapshot.Rates {
			rawRates[code] = rate.StringFixed(models.RateScale)
		}
		raw[date] = rawRates
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode rates cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}
