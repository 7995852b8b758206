package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mikepea/taskr/pkg/taskr/cache"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options carries the optional collaborators of the selector and aggregator
type Options struct {
	Cache    cache.Cache
	Observer cache.Observer
	Log      logrus.FieldLogger
}

// CategoryFilter tells an absent category apart from an explicit null.
// A present filter with a nil ID matches uncategorized tasks only.
type CategoryFilter struct {
	Present bool
	ID      *uint
}

// CategoryID returns a present filter on id
func CategoryID(id uint) CategoryFilter {
	return CategoryFilter{Present: true, ID: &id}
}

// NullCategory returns a present filter matching uncategorized tasks
func NullCategory() CategoryFilter {
	return CategoryFilter{Present: true}
}

// UnmarshalJSON is only invoked when the key is present, null included
func (f *CategoryFilter) UnmarshalJSON(b []byte) error {
	f.Present = true
	f.ID = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("category_id: %w", err)
	}
	f.ID = &id
	return nil
}

func (f CategoryFilter) cacheKey() string {
	switch {
	case !f.Present:
		return "absent"
	case f.ID == nil:
		return "null"
	default:
		return strconv.FormatUint(uint64(*f.ID), 10)
	}
}

// Filter narrows a user's task listing
type Filter struct {
	// Tags is the raw comma separated list of tag names; empty means no tag filter
	Tags     string
	Category CategoryFilter
}

// Selector lists a user's tasks
type Selector struct {
	db    *gorm.DB
	cache cache.Cache
	obs   cache.Observer
	log   logrus.FieldLogger
}

// NewSelector creates a selector. A nil cache disables memoization.
func NewSelector(db *gorm.DB, opts Options) *Selector {
	return &Selector{db: db, cache: opts.Cache, obs: opts.Observer, log: opts.Log}
}

// Select returns the user's tasks matching f in creation order. Results may
// be served from the cache and can lag behind writes by up to its TTL.
func (s *Selector) Select(ctx context.Context, userID uint, f Filter) ([]models.Task, error) {
	key := fmt.Sprintf("tasks:select:%d:%s:%s", userID, f.Tags, f.Category.cacheKey())
	return cache.FetchObserved(ctx, s.cache, key, "tasks_select", s.obs, s.log, func() ([]models.Task, error) {
		return s.query(ctx, userID, f)
	})
}

func (s *Selector) query(ctx context.Context, userID uint, f Filter) ([]models.Task, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Task{}).Where("tasks.user_id = ?", userID)

	if f.Category.Present {
		if f.Category.ID == nil {
			q = q.Where("tasks.category_id IS NULL")
		} else {
			q = q.Where("tasks.category_id = ?", *f.Category.ID)
		}
	}

	// IN (subquery) keeps one row per task however many tags match
	if names := SplitTagFilter(f.Tags); len(names) > 0 {
		tagged := db.Session(&gorm.Session{NewDB: true}).
			Table("taggings").
			Select("taggings.task_id").
			Joins("JOIN tags ON tags.id = taggings.tag_id").
			Where("tags.name IN ?", names)
		q = q.Where("tasks.id IN (?)", tagged)
	}

	var tasks []models.Task
	err := q.Preload("Tags", orderTagsByName).
		Preload("Category").
		Order("tasks.id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("select tasks for user %d: %w", userID, err)
	}

	for i := range tasks {
		if tasks[i].Tags == nil {
			tasks[i].Tags = []models.Tag{}
		}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}
