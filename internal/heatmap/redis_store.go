package heatmap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces heatmap keys
const DefaultRedisPrefix = "campusguard:heatmap"

// slot keys outlive the longest window ("today") by a margin
const redisSlotTTL = 25 * time.Hour

// RedisStore keeps one hash per minute slot: cell -> count, plus a sibling
// hash of cell -> last ping unix millis. Keys expire on their own, so Evict
// only removes slots early.
type RedisStore struct {
	rc     redis.Cmdable
	prefix string
}

// NewRedisStore wraps a redis client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(rc redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rc: rc, prefix: prefix}
}

func (s *RedisStore) countKey(slot time.Time) string {
	return fmt.Sprintf("%s:count:%d", s.prefix, slot.Unix())
}

func (s *RedisStore) lastKey(slot time.Time) string {
	return fmt.Sprintf("%s:last:%d", s.prefix, slot.Unix())
}

func (s *RedisStore) Increment(ctx context.Context, cell string, slot, at time.Time) error {
	countKey, lastKey := s.countKey(slot), s.lastKey(slot)
	_, err := s.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, countKey, cell, 1)
		pipe.HSet(ctx, lastKey, cell, at.UnixMilli())
		pipe.Expire(ctx, countKey, redisSlotTTL)
		pipe.Expire(ctx, lastKey, redisSlotTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis increment %s: %w", countKey, err)
	}
	return nil
}

func (s *RedisStore) Counts(ctx context.Context, from, to time.Time) ([]CellCount, error) {
	slots := slotRange(from, to)
	if len(slots) == 0 {
		return nil, nil
	}

	type pair struct{ counts, lasts *redis.MapStringStringCmd }
	cmds := make([]pair, 0, len(slots))
	_, err := s.rc.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, slot := range slots {
			cmds = append(cmds, pair{
				counts: pipe.HGetAll(ctx, s.countKey(slot)),
				lasts:  pipe.HGetAll(ctx, s.lastKey(slot)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis counts: %w", err)
	}

	totals := make(map[string]*CellCount)
	for _, c := range cmds {
		counts, err := c.counts.Result()
		if err != nil {
			return nil, fmt.Errorf("redis counts: %w", err)
		}
		lasts, _ := c.lasts.Result()
		for cell, raw := range counts {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				continue
			}
			cc, ok := totals[cell]
			if !ok {
				cc = &CellCount{Cell: cell}
				totals[cell] = cc
			}
			cc.Count += n
			if ms, err := strconv.ParseInt(lasts[cell], 10, 64); err == nil {
				if at := time.UnixMilli(ms).UTC(); at.After(cc.LastUpdated) {
					cc.LastUpdated = at
				}
			}
		}
	}

	out := make([]CellCount, 0, len(totals))
	for _, cc := range totals {
		out = append(out, *cc)
	}
	return out, nil
}

// Evict deletes the hour of slots just before the cutoff. Older slots are
// left to their TTL.
func (s *RedisStore) Evict(ctx context.Context, before time.Time) error {
	slots := slotRange(before.Add(-time.Hour), before.Add(-SlotSize))
	if len(slots) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(slots))
	for _, slot := range slots {
		keys = append(keys, s.countKey(slot), s.lastKey(slot))
	}
	if err := s.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis evict: %w", err)
	}
	return nil
}

// slotRange lists slot starts with from <= slot <= to
func slotRange(from, to time.Time) []time.Time {
	start := from.Truncate(SlotSize)
	if start.Before(from) {
		start = start.Add(SlotSize)
	}
	var out []time.Time
	for t := start; !t.After(to); t = t.Add(SlotSize) {
		out = append(out, t)
	}
	return out
}
