package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"pitchcoach/models"
)

const (
	// DefaultCacheTTL bounds how stale a cached model document can get. A
	// deploy that publishes a new document takes effect within one TTL, or
	// immediately via Invalidate.
	DefaultCacheTTL = 5 * time.Minute

	cacheSize     = 8
	modelCacheKey = "model"
)

// Service loads the trained model document. Lookups prefer the Postgres
// source when one is configured, then the bundled file, then the empty-table
// default. A load never fails the request.
type Service struct {
	path  string
	pg    *PostgresSource
	cache *expirable.LRU[string, *models.ModelData]

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewService creates a model store reading from the given file path
func NewService(path string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		path:  path,
		cache: expirable.NewLRU[string, *models.ModelData](cacheSize, nil, ttl),
	}
}

// SetPostgresSource enables the database-backed document source
func (s *Service) SetPostgresSource(pg *PostgresSource) {
	s.pg = pg
}

// Load returns the current model document. Missing or unreadable sources log
// and degrade to the empty-table default rather than failing.
func (s *Service) Load(ctx context.Context) *models.ModelData {
	if cached, ok := s.cache.Get(modelCacheKey); ok {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
		return cached
	}
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()

	model := s.fetch(ctx)
	s.cache.Add(modelCacheKey, model)
	return model
}

func (s *Service) fetch(ctx context.Context) *models.ModelData {
	if s.pg != nil {
		model, err := s.pg.Fetch(ctx)
		if err == nil {
			return model
		}
		log.Printf("Model document unavailable from database: %v, trying file", err)
	}

	model, err := s.loadFile()
	if err != nil {
		log.Printf("Model document unavailable from %s: %v, using empty defaults", s.path, err)
		return models.DefaultModelData()
	}
	return model
}

func (s *Service) loadFile() (*models.ModelData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	model, err := models.ParseModelData(data)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Invalidate drops any cached document so the next load re-reads the source
func (s *Service) Invalidate() {
	s.cache.Purge()
}

// GetCacheStats returns cache counters for the metrics endpoint
func (s *Service) GetCacheStats() (hits, misses int64, entries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses, s.cache.Len()
}
