package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/elboulangero/exaile-webradio-title/scraper"
)

var ErrNotFound = errors.New("no entry found for station")

// Entry is the latest event reported for a station.
type Entry struct {
	StationID string            `json:"station_id"`
	Station   string            `json:"station"`
	Cause     string            `json:"cause"`
	Infos     scraper.TrackInfo `json:"infos"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Storage keeps one now playing entry per station. Storing an entry replaces
// the previous one.
type Storage interface {
	Init() error
	StoreNowPlaying(entry Entry) error
	GetNowPlaying(stationID string) (*Entry, error)
	GetAllStations() ([]string, error)
	Close() error
}

type options struct {
	redisChannel string
}

type Option func(*options)

// WithRedisChannel sets the pub/sub channel used by the redis backend.
func WithRedisChannel(channel string) Option {
	return func(o *options) {
		o.redisChannel = channel
	}
}

// NewStorage builds the storage backend named by storageType.
func NewStorage(storageType, storagePath string, opts ...Option) (Storage, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch storageType {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "file":
		return NewFileStorage(storagePath)
	case "sqlite":
		return NewSQLiteStorage(storagePath)
	case "postgres":
		return NewPostgreSQLStorage(storagePath)
	case "redis":
		return NewRedisStorage(storagePath, o.redisChannel)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]Entry),
	}
}

func (s *MemoryStorage) Init() error {
	return nil
}

func (s *MemoryStorage) StoreNowPlaying(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.StationID] = entry
	return nil
}

func (s *MemoryStorage) GetNowPlaying(stationID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[stationID]
	if !exists {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *MemoryStorage) GetAllStations() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.entries), nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

func sortedKeys(m map[string]Entry) []string {
	stations := make([]string, 0, len(m))
	for stationID := range m {
		stations = append(stations, stationID)
	}
	sort.Strings(stations)
	return stations
}
