package timelinecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "lodging"
	defaultTTL    = 10 * time.Minute
	globalScope   = "*"
)

var ErrInvalidConfig = errors.New("invalid timeline cache config")

// Config wires a Cache.
type Config struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// Validate applies defaults and checks the client.
func (config *Config) Validate() error {
	if config.Client == nil {
		return fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}
	config.Prefix = strings.TrimSpace(config.Prefix)
	if config.Prefix == "" {
		config.Prefix = defaultPrefix
	}
	if config.TTL <= 0 {
		config.TTL = defaultTTL
	}
	return nil
}

// Cache stores week timelines in Redis. Entries are keyed by the generation counters
// of their cycle and of the global scope; Invalidate bumps a counter so older entries
// become unreachable and expire on their TTL.
type Cache struct {
	config  Config
	pending sync.Map
}

type generations struct {
	global int64
	cycle  int64
}

// New validates config and returns a Cache.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Cache{config: config}, nil
}

// GetTimeline returns the cached week, if any. A miss records the generations seen so the
// following PutTimeline can detect writes that happened while the week was being loaded.
func (cache *Cache) GetTimeline(ctx context.Context, cycleID lodging.CycleID, weekStart lodging.Date) (lodging.Timeline, bool, error) {
	current, err := cache.generations(ctx, cycleID)
	if err != nil {
		return lodging.Timeline{}, false, err
	}
	payload, err := cache.config.Client.Get(ctx, cache.entryKey(cycleID, weekStart, current)).Bytes()
	if errors.Is(err, redis.Nil) {
		cache.pending.LoadOrStore(cache.pendingKey(cycleID, weekStart), current)
		return lodging.Timeline{}, false, nil
	}
	if err != nil {
		return lodging.Timeline{}, false, fmt.Errorf("get timeline: %w", err)
	}
	var document timelineDocument
	if err := json.Unmarshal(payload, &document); err != nil {
		return lodging.Timeline{}, false, fmt.Errorf("decode timeline: %w", err)
	}
	timeline, err := document.toTimeline()
	if err != nil {
		return lodging.Timeline{}, false, fmt.Errorf("decode timeline: %w", err)
	}
	return timeline, true, nil
}

// PutTimeline stores a week loaded after a miss. It is skipped when the cycle was
// invalidated since that miss.
func (cache *Cache) PutTimeline(ctx context.Context, timeline lodging.Timeline) error {
	observed, ok := cache.pending.LoadAndDelete(cache.pendingKey(timeline.CycleID, timeline.WeekStart))
	if !ok {
		return nil
	}
	current, err := cache.generations(ctx, timeline.CycleID)
	if err != nil {
		return err
	}
	if current != observed.(generations) {
		return nil
	}
	payload, err := json.Marshal(newTimelineDocument(timeline))
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	if err := cache.config.Client.Set(ctx, cache.entryKey(timeline.CycleID, timeline.WeekStart, current), payload, cache.config.TTL).Err(); err != nil {
		return fmt.Errorf("put timeline: %w", err)
	}
	return nil
}

// Invalidate drops every cached week of the cycle; a zero cycle drops every cycle.
func (cache *Cache) Invalidate(ctx context.Context, cycleID lodging.CycleID) error {
	if err := cache.config.Client.Incr(ctx, cache.generationKey(cycleID)).Err(); err != nil {
		return fmt.Errorf("invalidate timelines: %w", err)
	}
	return nil
}

func (cache *Cache) generations(ctx context.Context, cycleID lodging.CycleID) (generations, error) {
	values, err := cache.config.Client.MGet(ctx, cache.generationKey(lodging.CycleID{}), cache.generationKey(cycleID)).Result()
	if err != nil {
		return generations{}, fmt.Errorf("read generations: %w", err)
	}
	global, err := parseGeneration(values[0])
	if err != nil {
		return generations{}, err
	}
	cycle, err := parseGeneration(values[1])
	if err != nil {
		return generations{}, err
	}
	return generations{global: global, cycle: cycle}, nil
}

func parseGeneration(value interface{}) (int64, error) {
	if value == nil {
		return 0, nil
	}
	text, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation value %T", value)
	}
	generation, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse generation %q: %w", text, err)
	}
	return generation, nil
}

func (cache *Cache) generationKey(cycleID lodging.CycleID) string {
	scope := globalScope
	if !cycleID.IsZero() {
		scope = cycleID.String()
	}
	return fmt.Sprintf("%s:timeline-gen:%s", cache.config.Prefix, scope)
}

func (cache *Cache) entryKey(cycleID lodging.CycleID, weekStart lodging.Date, current generations) string {
	return fmt.Sprintf("%s:timeline:%s:%s:%d:%d", cache.config.Prefix, cycleID.String(), weekStart.String(), current.global, current.cycle)
}

func (cache *Cache) pendingKey(cycleID lodging.CycleID, weekStart lodging.Date) string {
	return cycleID.String() + "|" + weekStart.String()
}

var _ lodging.TimelineCache = (*Cache)(nil)
