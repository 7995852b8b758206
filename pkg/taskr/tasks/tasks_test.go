package tasks

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mikepea/taskr/pkg/taskr/cache"
	"github.com/mikepea/taskr/pkg/taskr/database"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenAndMigrate("sqlite", ":memory:", nil)
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "hash", SystemRole: models.SystemRoleUser}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createTask(t *testing.T, db *gorm.DB, userID uint, title string, categoryID *uint, tags ...string) *models.Task {
	t.Helper()
	task, err := NewCreator(db).Create(context.Background(), userID, CreateParams{
		Title:       title,
		Description: title + " description",
		CategoryID:  categoryID,
		TagsArray:   tags,
	})
	require.NoError(t, err)
	return task
}

func tagNames(task *models.Task) []string {
	names := make([]string, 0, len(task.Tags))
	for _, tag := range task.Tags {
		names = append(names, tag.Name)
	}
	sort.Strings(names)
	return names
}

func taskIDs(tasks []models.Task) []uint {
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestNormalizeTagNames(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, NormalizeTagNames([]string{" b", "a", "", "b ", "  ", "c"}))
	assert.Empty(t, NormalizeTagNames(nil))
	assert.Nil(t, SplitTagFilter(""))
	assert.Nil(t, SplitTagFilter("   "))
	assert.Equal(t, []string{"a", "b", "c"}, SplitTagFilter("a, b,,c"))
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&models.Task{Title: " ", Description: ""})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, ValidationErrors{
		"title":       "can't be blank",
		"description": "can't be blank",
	}, verrs)
	assert.Contains(t, err.Error(), "description can't be blank")

	assert.NoError(t, Validate(&models.Task{Title: "t", Description: "d"}))
}

func TestCreateWithTags(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")

	task := createTask(t, db, user.ID, "Write report", nil, "a", "b")

	assert.NotZero(t, task.ID)
	assert.Equal(t, []string{"a", "b"}, tagNames(task))

	reloaded, err := FindOwned(context.Background(), db, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tagNames(reloaded))
}

func TestCreateSkipsBlankAndDuplicateTags(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")

	task := createTask(t, db, user.ID, "Write report", nil, "a", " ", "a", "b ")
	assert.Equal(t, []string{"a", "b"}, tagNames(task))

	var taggings int64
	db.Model(&models.Tagging{}).Where("task_id = ?", task.ID).Count(&taggings)
	assert.EqualValues(t, 2, taggings)
}

func TestCreateValidationFailureWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")

	task, err := NewCreator(db).Create(context.Background(), user.ID, CreateParams{
		Title:     "",
		TagsArray: []string{"orphan"},
	})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "title")
	assert.Contains(t, verrs, "description")
	require.NotNil(t, task)
	assert.Zero(t, task.ID)

	var tasks, tags int64
	db.Model(&models.Task{}).Count(&tasks)
	db.Model(&models.Tag{}).Count(&tags)
	assert.Zero(t, tasks)
	assert.Zero(t, tags, "tags must not be created for an invalid task")
}

func TestCreateUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	missing := uint(999)

	_, err := NewCreator(db).Create(context.Background(), user.ID, CreateParams{
		Title:       "t",
		Description: "d",
		CategoryID:  &missing,
	})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "does not exist", verrs["category_id"])
}

func TestUpdateReplacesTags(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Write report", nil, "a", "b")

	updated, err := NewUpdator(db).Update(context.Background(), task, UpdateParams{TagsArray: []string{"b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, tagNames(updated))

	// "a" is detached but the tag row survives; "b" is not duplicated
	var tags []models.Tag
	db.Order("name").Find(&tags)
	require.Len(t, tags, 3)
	assert.Equal(t, "a", tags[0].Name)

	var bCount int64
	db.Model(&models.Tag{}).Where("name = ?", "b").Count(&bCount)
	assert.EqualValues(t, 1, bCount)
}

func TestUpdateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Write report", nil, "x")
	updator := NewUpdator(db)
	params := UpdateParams{TagsArray: []string{"p", "q"}}

	once, err := updator.Update(context.Background(), task, params)
	require.NoError(t, err)
	twice, err := updator.Update(context.Background(), once, params)
	require.NoError(t, err)

	assert.Equal(t, tagNames(once), tagNames(twice))

	var taggings int64
	db.Model(&models.Tagging{}).Where("task_id = ?", task.ID).Count(&taggings)
	assert.EqualValues(t, 2, taggings)

	var tags int64
	db.Model(&models.Tag{}).Where("name IN ?", []string{"p", "q"}).Count(&tags)
	assert.EqualValues(t, 2, tags)
}

func TestUpdateWithoutTagsClearsThem(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Write report", nil, "a", "b")
	title := "Renamed"

	updated, err := NewUpdator(db).Update(context.Background(), task, UpdateParams{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Write report description", updated.Description)
	assert.Empty(t, updated.Tags)
}

func TestUpdateValidationFailureKeepsTags(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Write report", nil, "a")
	blank := "   "

	returned, err := NewUpdator(db).Update(context.Background(), task, UpdateParams{
		Title:     &blank,
		TagsArray: []string{"z"},
	})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "can't be blank", verrs["title"])
	assert.Equal(t, "Write report", returned.Title)

	reloaded, err := FindOwned(context.Background(), db, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", reloaded.Title)
	assert.Equal(t, []string{"a"}, tagNames(reloaded))
}

func TestUpdateCategory(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	work := createCategory(t, db, "work")
	task := createTask(t, db, user.ID, "Write report", nil)
	updator := NewUpdator(db)

	updated, err := updator.Update(context.Background(), task, UpdateParams{CategoryID: CategoryID(work.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "work", updated.Category.Name)

	// Absent leaves it alone
	updated, err = updator.Update(context.Background(), updated, UpdateParams{})
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)

	// Explicit null clears it
	updated, err = updator.Update(context.Background(), updated, UpdateParams{CategoryID: NullCategory()})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
	assert.Nil(t, updated.Category)
}

func TestUpdateParamsCategoryJSON(t *testing.T) {
	var absent, null, set UpdateParams
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"category_id":null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"category_id":7}`), &set))

	assert.False(t, absent.CategoryID.Present)
	assert.True(t, null.CategoryID.Present)
	assert.Nil(t, null.CategoryID.ID)
	assert.True(t, set.CategoryID.Present)
	require.NotNil(t, set.CategoryID.ID)
	assert.EqualValues(t, 7, *set.CategoryID.ID)

	var bad UpdateParams
	assert.Error(t, json.Unmarshal([]byte(`{"category_id":"work"}`), &bad))
}

func TestUpdateDue(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Write report", nil)
	updator := NewUpdator(db)
	due := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

	updated, err := updator.Update(context.Background(), task, UpdateParams{Due: DueAt(due)})
	require.NoError(t, err)
	require.NotNil(t, updated.Due)
	assert.True(t, updated.Due.Equal(due))

	// Absent leaves it alone
	updated, err = updator.Update(context.Background(), updated, UpdateParams{})
	require.NoError(t, err)
	require.NotNil(t, updated.Due)

	// Explicit null clears it
	updated, err = updator.Update(context.Background(), updated, UpdateParams{Due: NoDueDate()})
	require.NoError(t, err)
	assert.Nil(t, updated.Due)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Nil(t, stored.Due)
}

func TestUpdateParamsDueJSON(t *testing.T) {
	var absent, null, set UpdateParams
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2026-10-20T09:00:00Z"}`), &set))

	assert.False(t, absent.Due.Present)
	assert.True(t, null.Due.Present)
	assert.Nil(t, null.Due.Time)
	require.NotNil(t, set.Due.Time)
	assert.Equal(t, 2026, set.Due.Time.Year())

	var bad UpdateParams
	assert.Error(t, json.Unmarshal([]byte(`{"due":"tomorrow"}`), &bad))
}

func TestConcurrentCreateSharesTag(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := database.OpenAndMigrate("sqlite", dsn, nil)
	require.NoError(t, err)
	user := createUser(t, db, "alice@example.com")
	creator := NewCreator(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = creator.Create(context.Background(), user.ID, CreateParams{
				Title:       "Fix outage",
				Description: "Now",
				TagsArray:   []string{"urgent"},
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var tags []models.Tag
	require.NoError(t, db.Where("name = ?", "urgent").Find(&tags).Error)
	require.Len(t, tags, 1)

	var taggings int64
	db.Model(&models.Tagging{}).Where("tag_id = ?", tags[0].ID).Count(&taggings)
	assert.EqualValues(t, 2, taggings)
}

func TestFindOrCreateTagReusesRow(t *testing.T) {
	db := setupTestDB(t)

	first, err := FindOrCreateTag(db, "urgent")
	require.NoError(t, err)
	second, err := FindOrCreateTag(db, "urgent")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestAttachAndDetachTag(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Write report", nil, "a")

	require.NoError(t, AttachTags(db, task.ID, []string{"a", "b"}))
	reloaded, _ := FindOwned(context.Background(), db, user.ID, task.ID)
	assert.Equal(t, []string{"a", "b"}, tagNames(reloaded))

	removed, err := DetachTag(db, task.ID, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = DetachTag(db, task.ID, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	reloaded, _ = FindOwned(context.Background(), db, user.ID, task.ID)
	assert.Equal(t, []string{"b"}, tagNames(reloaded))
}

func TestFindOwnedHidesOtherUsersTasks(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	task := createTask(t, db, alice.ID, "Private", nil)

	_, err := FindOwned(context.Background(), db, bob.ID, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBlockedBySubtasks(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	task := createTask(t, db, user.ID, "Parent", nil, "a")
	subtask := models.Subtask{TaskID: task.ID, Title: "child", Description: "child"}
	require.NoError(t, db.Create(&subtask).Error)

	err := Delete(context.Background(), db, user.ID, task.ID)
	assert.ErrorIs(t, err, ErrHasSubtasks)

	require.NoError(t, db.Delete(&subtask).Error)
	require.NoError(t, Delete(context.Background(), db, user.ID, task.ID))

	_, err = FindOwned(context.Background(), db, user.ID, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var taggings int64
	db.Model(&models.Tagging{}).Where("task_id = ?", task.ID).Count(&taggings)
	assert.Zero(t, taggings)

	assert.ErrorIs(t, Delete(context.Background(), db, user.ID, task.ID), ErrNotFound)
}

func TestSelectDeduplicatesOverlappingTags(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	both := createTask(t, db, user.ID, "both", nil, "a", "b")
	onlyA := createTask(t, db, user.ID, "only a", nil, "a")
	createTask(t, db, user.ID, "other", nil, "c")
	createTask(t, db, user.ID, "untagged", nil)

	tasks, err := NewSelector(db, Options{}).Select(context.Background(), user.ID, Filter{Tags: "a,b"})
	require.NoError(t, err)

	assert.Equal(t, []uint{both.ID, onlyA.ID}, taskIDs(tasks))
	assert.Len(t, tasks[0].Tags, 2)
}

func TestSelectEmptyTagFilterReturnsAll(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	other := createUser(t, db, "bob@example.com")
	first := createTask(t, db, user.ID, "first", nil, "a")
	second := createTask(t, db, user.ID, "second", nil)
	createTask(t, db, other.ID, "not mine", nil, "a")

	selector := NewSelector(db, Options{})
	for _, raw := range []string{"", " , "} {
		tasks, err := selector.Select(context.Background(), user.ID, Filter{Tags: raw})
		require.NoError(t, err)
		assert.Equal(t, []uint{first.ID, second.ID}, taskIDs(tasks), "tags=%q", raw)
	}
}

func TestSelectCategoryAbsentVersusNull(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	work := createCategory(t, db, "work")
	categorized := createTask(t, db, user.ID, "categorized", &work.ID)
	uncategorized := createTask(t, db, user.ID, "uncategorized", nil)
	selector := NewSelector(db, Options{})
	ctx := context.Background()

	all, err := selector.Select(ctx, user.ID, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{categorized.ID, uncategorized.ID}, taskIDs(all))

	onlyNull, err := selector.Select(ctx, user.ID, Filter{Category: NullCategory()})
	require.NoError(t, err)
	assert.Equal(t, []uint{uncategorized.ID}, taskIDs(onlyNull))

	onlyWork, err := selector.Select(ctx, user.ID, Filter{Category: CategoryID(work.ID)})
	require.NoError(t, err)
	assert.Equal(t, []uint{categorized.ID}, taskIDs(onlyWork))
	require.NotNil(t, onlyWork[0].Category)
	assert.Equal(t, "work", onlyWork[0].Category.Name)
}

func TestSelectCombinesTagAndCategory(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	work := createCategory(t, db, "work")
	match := createTask(t, db, user.ID, "match", &work.ID, "a")
	createTask(t, db, user.ID, "wrong category", nil, "a")
	createTask(t, db, user.ID, "wrong tag", &work.ID, "b")

	tasks, err := NewSelector(db, Options{}).Select(context.Background(), user.ID, Filter{
		Tags:     "a",
		Category: CategoryID(work.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{match.ID}, taskIDs(tasks))
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit(string)  { o.hits++ }
func (o *countingObserver) CacheMiss(string) { o.misses++ }

func TestSelectCachedIsStaleUntilExpiry(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	createTask(t, db, user.ID, "first", nil)
	obs := &countingObserver{}
	selector := NewSelector(db, Options{Cache: cache.NewMemory(16, time.Hour), Observer: obs})
	ctx := context.Background()

	tasks, err := selector.Select(ctx, user.ID, Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	createTask(t, db, user.ID, "second", nil)

	tasks, err = selector.Select(ctx, user.ID, Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "cached listing lags behind writes")
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)

	// A different raw category value is a different entry
	tasks, err = selector.Select(ctx, user.ID, Filter{Category: NullCategory()})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestSelectWithoutCacheSeesWrites(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "alice@example.com")
	selector := NewSelector(db, Options{Cache: cache.Noop{}})
	ctx := context.Background()

	tasks, err := selector.Select(ctx, user.ID, Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)

	createTask(t, db, user.ID, "first", nil)
	tasks, err = selector.Select(ctx, user.ID, Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestAggregate(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	work := createCategory(t, db, "work")
	createCategory(t, db, "unused")

	createTask(t, db, alice.ID, "a1", &work.ID, "x", "y")
	createTask(t, db, alice.ID, "a2", nil, "x")
	createTask(t, db, alice.ID, "a3", nil)
	createTask(t, db, bob.ID, "b1", nil, "y")
	deleted := createTask(t, db, bob.ID, "b2", &work.ID, "x")
	require.NoError(t, Delete(context.Background(), db, bob.ID, deleted.ID))

	stats, err := NewAggregator(db, Options{}).Aggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"alice@example.com": 3,
		"bob@example.com":   1,
	}, stats.TasksCountByUser)

	assert.Equal(t, CategoryUserCounts{
		{Category: "work", User: "alice@example.com"}: 1,
		{Category: "", User: "alice@example.com"}:     2,
		{Category: "", User: "bob@example.com"}:       1,
	}, stats.TasksCountByCategoryAndUser)

	assert.Equal(t, map[string]int64{"x": 2, "y": 2}, stats.TagsCount)
}

func TestAggregateEmptyCorpus(t *testing.T) {
	db := setupTestDB(t)

	stats, err := NewAggregator(db, Options{}).Aggregate(context.Background())
	require.NoError(t, err)

	assert.Empty(t, stats.TasksCountByUser)
	assert.Empty(t, stats.TasksCountByCategoryAndUser)
	assert.Empty(t, stats.TagsCount)
}

func TestAggregateSkipsDeletedUsersConsistently(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	createTask(t, db, alice.ID, "Live", nil, "shared")
	createTask(t, db, bob.ID, "Orphaned", nil, "shared", "bobonly")
	require.NoError(t, db.Delete(&bob).Error)

	stats, err := NewAggregator(db, Options{}).Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"alice@example.com": 1}, stats.TasksCountByUser)
	assert.Equal(t, CategoryUserCounts{{User: "alice@example.com"}: 1}, stats.TasksCountByCategoryAndUser)
	assert.Equal(t, map[string]int64{"shared": 1}, stats.TagsCount)
}

func TestAggregateCachedUntilInvalidated(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice@example.com")
	createTask(t, db, alice.ID, "a1", nil, "x")
	aggregator := NewAggregator(db, Options{Cache: cache.NewMemory(16, time.Hour)})
	ctx := context.Background()

	stats, err := aggregator.Aggregate(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TasksCountByUser["alice@example.com"])

	createTask(t, db, alice.ID, "a2", nil, "x")

	stats, err = aggregator.Aggregate(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TasksCountByUser["alice@example.com"])
	assert.EqualValues(t, 1, stats.TasksCountByCategoryAndUser[CategoryUser{User: "alice@example.com"}])

	stats, err = aggregator.Refresh(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TasksCountByUser["alice@example.com"])
	assert.EqualValues(t, 2, stats.TagsCount["x"])
}

func TestCategoryUserCountsJSON(t *testing.T) {
	counts := CategoryUserCounts{
		{Category: "work", User: "bob@example.com"}:   1,
		{Category: "", User: "alice@example.com"}:     2,
		{Category: "work", User: "alice@example.com"}: 3,
	}

	encoded, err := json.Marshal(counts)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"category": null, "user": "alice@example.com", "count": 2},
		{"category": "work", "user": "alice@example.com", "count": 3},
		{"category": "work", "user": "bob@example.com", "count": 1}
	]`, string(encoded))

	var decoded CategoryUserCounts
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, counts, decoded)
}
