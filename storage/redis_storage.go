package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix   = "nowplaying:"
	redisStationsKey = "nowplaying:stations"

	// DefaultRedisChannel receives every stored entry as JSON.
	DefaultRedisChannel = "nowplaying"

	redisTimeout = 5 * time.Second
)

// RedisStorage keeps a hash per station and publishes each update.
type RedisStorage struct {
	client  *redis.Client
	channel string
}

// NewRedisStorage connects to a redis:// URL. Updates are published on
// channel, DefaultRedisChannel when empty.
func NewRedisStorage(url, channel string) (*RedisStorage, error) {
	if url == "" || url == "data" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisStorage{
		client:  redis.NewClient(opts),
		channel: channel,
	}, nil
}

func (s *RedisStorage) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStorage) StoreNowPlaying(entry Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	msg, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisKeyPrefix+entry.StationID,
		"station", entry.Station,
		"cause", entry.Cause,
		"artist", entry.Infos.Artist,
		"title", entry.Infos.Title,
		"album", entry.Infos.Album,
		"date", entry.Infos.Date,
		"updated_at", entry.UpdatedAt.Format(time.RFC3339Nano),
	)
	pipe.SAdd(ctx, redisStationsKey, entry.StationID)
	pipe.Publish(ctx, s.channel, msg)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStorage) GetNowPlaying(stationID string) (*Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	values, err := s.client.HGetAll(ctx, redisKeyPrefix+stationID).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}
	return entryFromHash(stationID, values)
}

func (s *RedisStorage) GetAllStations() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	stations, err := s.client.SMembers(ctx, redisStationsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	sort.Strings(stations)
	return stations, nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func entryFromHash(stationID string, values map[string]string) (*Entry, error) {
	entry := &Entry{
		StationID: stationID,
		Station:   values["station"],
		Cause:     values["cause"],
	}
	entry.Infos.Artist = values["artist"]
	entry.Infos.Title = values["title"]
	entry.Infos.Album = values["album"]
	entry.Infos.Date = values["date"]

	if ts := values["updated_at"]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, err
		}
		entry.UpdatedAt = t
	}
	return entry, nil
}
