// Package geoindex keeps a Redis GEO set of last known locations so nearby
// queries can be answered without touching the SQL store.
package geoindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/redis/go-redis/v9"
)

const (
	GeoKey          = "radar:geo"
	recordKeyPrefix = "radar:loc:"
)

// Redis measures with a slightly larger Earth radius than pkg/location, so the
// search is padded and proximity.Filter trims to the exact radius.
const radiusPadding = 1.01

func recordKey(userID string) string { return recordKeyPrefix + userID }

type Index struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns an Index whose per-user records expire after ttl (<=0 means never).
func New(rdb *redis.Client, ttl time.Duration) *Index {
	return &Index{rdb: rdb, ttl: ttl}
}

// Put stores rec and adds its position to the GEO set.
func (i *Index) Put(ctx context.Context, rec proximity.UserLocationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal location record: %w", err)
	}
	_, err = i.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, recordKey(rec.UserID), data, i.ttl)
		p.GeoAdd(ctx, GeoKey, &redis.GeoLocation{
			Name:      rec.UserID,
			Longitude: rec.Location.Longitude,
			Latitude:  rec.Location.Latitude,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store location in redis: %w", err)
	}
	return nil
}

// Get returns the stored record, or nil when there is none (or it expired).
func (i *Index) Get(ctx context.Context, userID string) (*proximity.UserLocationRecord, error) {
	data, err := i.rdb.Get(ctx, recordKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location from redis: %w", err)
	}
	var rec proximity.UserLocationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal location record: %w", err)
	}
	return &rec, nil
}

// SetOnline flips the presence flag of a stored record, keeping its TTL.
// Users without a record are ignored.
func (i *Index) SetOnline(ctx context.Context, userID string, online bool) error {
	rec, err := i.Get(ctx, userID)
	if err != nil || rec == nil {
		return err
	}
	rec.IsOnline = online
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal location record: %w", err)
	}
	return i.rdb.Set(ctx, recordKey(userID), data, redis.KeepTTL).Err()
}

func (i *Index) Remove(ctx context.Context, userID string) error {
	_, err := i.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, recordKey(userID))
		p.ZRem(ctx, GeoKey, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove location from redis: %w", err)
	}
	return nil
}

// Candidates implements proximity.CandidatePool using GEORADIUS. Members whose
// record has expired are dropped from the GEO set on the way.
func (i *Index) Candidates(ctx context.Context, q proximity.PoolQuery) ([]proximity.UserLocationRecord, error) {
	hits, err := i.rdb.GeoRadius(ctx, GeoKey, q.Center.Longitude, q.Center.Latitude, &redis.GeoRadiusQuery{
		Radius: q.RadiusMeters * radiusPadding,
		Unit:   "m",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("search nearby in redis: %w", err)
	}

	keys := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Name == q.RequesterID {
			continue
		}
		keys = append(keys, recordKey(h.Name))
	}
	if len(keys) == 0 {
		return []proximity.UserLocationRecord{}, nil
	}

	vals, err := i.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load location records: %w", err)
	}

	out := make([]proximity.UserLocationRecord, 0, len(vals))
	var expired []interface{}
	for n, v := range vals {
		s, ok := v.(string)
		if !ok {
			expired = append(expired, keys[n][len(recordKeyPrefix):])
			continue
		}
		var rec proximity.UserLocationRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	if len(expired) > 0 {
		_ = i.rdb.ZRem(ctx, GeoKey, expired...).Err()
	}
	return out, nil
}
