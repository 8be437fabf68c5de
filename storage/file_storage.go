package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "nowplaying.json"

// FileStorage keeps the entries in a JSON file under a directory.
type FileStorage struct {
	mu       sync.Mutex
	entries  map[string]Entry
	filePath string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	return &FileStorage{
		entries:  make(map[string]Entry),
		filePath: filepath.Join(dir, fileName),
	}, nil
}

func (s *FileStorage) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFromFile()
}

func (s *FileStorage) StoreNowPlaying(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.StationID] = entry
	return s.saveToFile()
}

func (s *FileStorage) loadFromFile() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File does not exist, will create when storing
		}
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(&s.entries)
}

// saveToFile writes to a temporary file first so readers never see a
// partial document.
func (s *FileStorage) saveToFile() error {
	tmp := s.filePath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.entries); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func (s *FileStorage) GetNowPlaying(stationID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[stationID]
	if !exists {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *FileStorage) GetAllStations() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.entries), nil
}

func (s *FileStorage) Close() error {
	return nil
}
