package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mikepea/taskr/pkg/taskr/cache"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const statsCacheKey = "tasks:stats"

// CategoryUser is a (category, owner email) bucket. An empty Category is
// the uncategorized bucket; category names are never blank.
type CategoryUser struct {
	Category string
	User     string
}

// CategoryUserCounts encodes as a list sorted by category then user, with
// the uncategorized bucket written as a null category.
type CategoryUserCounts map[CategoryUser]int64

type categoryUserEntry struct {
	Category *string `json:"category"`
	User     string  `json:"user"`
	Count    int64   `json:"count"`
}

func (c CategoryUserCounts) MarshalJSON() ([]byte, error) {
	keys := make([]CategoryUser, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].User < keys[j].User
	})

	entries := make([]categoryUserEntry, 0, len(keys))
	for _, k := range keys {
		entry := categoryUserEntry{User: k.User, Count: c[k]}
		if k.Category != "" {
			name := k.Category
			entry.Category = &name
		}
		entries = append(entries, entry)
	}
	return json.Marshal(entries)
}

func (c *CategoryUserCounts) UnmarshalJSON(b []byte) error {
	var entries []categoryUserEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	out := make(CategoryUserCounts, len(entries))
	for _, e := range entries {
		key := CategoryUser{User: e.User}
		if e.Category != nil {
			key.Category = *e.Category
		}
		out[key] = e.Count
	}
	*c = out
	return nil
}

// Stats is a snapshot over the live tasks of live users. All three counts
// cover the same tasks.
//
// Encoded as:
//
//	{
//	  "tasks_count_by_user": {"<email>": n},
//	  "tasks_count_by_category_and_user": [
//	    {"category": "<name>" | null, "user": "<email>", "count": n}
//	  ],
//	  "tags_count": {"<tag>": n}
//	}
//
// The category/user mapping is a list because its keys are pairs; entries
// are sorted by category then user, and null marks uncategorized tasks.
type Stats struct {
	TasksCountByUser            map[string]int64   `json:"tasks_count_by_user"`
	TasksCountByCategoryAndUser CategoryUserCounts `json:"tasks_count_by_category_and_user"`
	TagsCount                   map[string]int64   `json:"tags_count"`
}

// Aggregator computes Stats, memoized under a single cache key
type Aggregator struct {
	db    *gorm.DB
	cache cache.Cache
	obs   cache.Observer
	log   logrus.FieldLogger
}

// NewAggregator creates an aggregator. A nil cache disables memoization.
func NewAggregator(db *gorm.DB, opts Options) *Aggregator {
	return &Aggregator{db: db, cache: opts.Cache, obs: opts.Observer, log: opts.Log}
}

// Aggregate returns the cached snapshot or computes a fresh one
func (a *Aggregator) Aggregate(ctx context.Context) (*Stats, error) {
	return cache.FetchObserved(ctx, a.cache, statsCacheKey, "tasks_stats", a.obs, a.log, func() (*Stats, error) {
		return a.Compute(ctx)
	})
}

// Invalidate drops the cached snapshot
func (a *Aggregator) Invalidate(ctx context.Context) error {
	if a.cache == nil {
		return nil
	}
	if err := a.cache.Delete(ctx, statsCacheKey); err != nil {
		return fmt.Errorf("invalidate stats: %w", err)
	}
	return nil
}

// Refresh invalidates and recomputes the snapshot
func (a *Aggregator) Refresh(ctx context.Context) (*Stats, error) {
	if err := a.Invalidate(ctx); err != nil {
		return nil, err
	}
	return a.Aggregate(ctx)
}

type countRow struct {
	Name  string
	Count int64
}

type categoryUserRow struct {
	Category *string
	Email    string
	Count    int64
}

// Compute runs the grouping queries, bypassing the cache
func (a *Aggregator) Compute(ctx context.Context) (*Stats, error) {
	db := a.db.WithContext(ctx)
	stats := &Stats{
		TasksCountByUser:            map[string]int64{},
		TasksCountByCategoryAndUser: CategoryUserCounts{},
		TagsCount:                   map[string]int64{},
	}

	var byUser []countRow
	err := db.Model(&models.Task{}).
		Select("users.email AS name, COUNT(tasks.id) AS count").
		Joins("JOIN users ON users.id = tasks.user_id AND users.deleted_at IS NULL").
		Group("users.email").
		Scan(&byUser).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by user: %w", err)
	}
	for _, r := range byUser {
		stats.TasksCountByUser[r.Name] = r.Count
	}

	// LEFT JOIN keeps uncategorized tasks under a NULL category
	var byCategory []categoryUserRow
	err = db.Model(&models.Task{}).
		Select("categories.name AS category, users.email AS email, COUNT(tasks.id) AS count").
		Joins("JOIN users ON users.id = tasks.user_id AND users.deleted_at IS NULL").
		Joins("LEFT JOIN categories ON categories.id = tasks.category_id").
		Group("categories.name, users.email").
		Scan(&byCategory).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by category and user: %w", err)
	}
	for _, r := range byCategory {
		key := CategoryUser{User: r.Email}
		if r.Category != nil {
			key.Category = *r.Category
		}
		stats.TasksCountByCategoryAndUser[key] += r.Count
	}

	var byTag []countRow
	err = db.Table("taggings").
		Select("tags.name AS name, COUNT(DISTINCT taggings.task_id) AS count").
		Joins("JOIN tags ON tags.id = taggings.tag_id").
		Joins("JOIN tasks ON tasks.id = taggings.task_id AND tasks.deleted_at IS NULL").
		Joins("JOIN users ON users.id = tasks.user_id AND users.deleted_at IS NULL").
		Group("tags.name").
		Scan(&byTag).Error
	if err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}
	for _, r := range byTag {
		stats.TagsCount[r.Name] = r.Count
	}

	return stats, nil
}
