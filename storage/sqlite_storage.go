package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/elboulangero/exaile-webradio-title/utils"
)

const sqliteFileName = "nowplaying.sqlite"

type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the database at dbPath. A path that does not end in
// ".sqlite" or ".db" is taken as a directory.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if !strings.HasSuffix(dbPath, ".sqlite") && !strings.HasSuffix(dbPath, ".db") {
		dbPath = filepath.Join(dbPath, sqliteFileName)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, err
	}
	utils.Logger.Debugf("Opening SQLite storage at %s", dbPath)

	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS now_playing (
		station_id TEXT PRIMARY KEY,
		station TEXT NOT NULL,
		cause TEXT NOT NULL,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		album TEXT NOT NULL,
		date TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	return err
}

func (s *SQLiteStorage) StoreNowPlaying(entry Entry) error {
	_, err := s.db.Exec(`INSERT INTO now_playing (station_id, station, cause, artist, title, album, date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			station = excluded.station,
			cause = excluded.cause,
			artist = excluded.artist,
			title = excluded.title,
			album = excluded.album,
			date = excluded.date,
			updated_at = excluded.updated_at`,
		entry.StationID, entry.Station, entry.Cause,
		entry.Infos.Artist, entry.Infos.Title, entry.Infos.Album, entry.Infos.Date,
		entry.UpdatedAt.UnixMilli())
	return err
}

func (s *SQLiteStorage) GetNowPlaying(stationID string) (*Entry, error) {
	row := s.db.QueryRow(`SELECT station_id, station, cause, artist, title, album, date, updated_at
		FROM now_playing WHERE station_id = ?`, stationID)

	var entry Entry
	var updatedAt int64
	err := row.Scan(&entry.StationID, &entry.Station, &entry.Cause,
		&entry.Infos.Artist, &entry.Infos.Title, &entry.Infos.Album, &entry.Infos.Date, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	entry.UpdatedAt = time.UnixMilli(updatedAt)
	return &entry, nil
}

func (s *SQLiteStorage) GetAllStations() ([]string, error) {
	return queryStations(s.db)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func queryStations(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT station_id FROM now_playing ORDER BY station_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []string
	for rows.Next() {
		var stationID string
		if err := rows.Scan(&stationID); err != nil {
			return nil, err
		}
		stations = append(stations, stationID)
	}
	return stations, rows.Err()
}
