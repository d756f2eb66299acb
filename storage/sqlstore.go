package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	taskSequence  = "tasks"
	storySequence = "user_stories"
)

// SQLBackend keeps tasks and user stories in a relational database.
// Every mutation runs in its own transaction.
type SQLBackend struct {
	db      *gorm.DB
	dialect string
	closers []func()
	now     func() time.Time
}

var _ Backend = (*SQLBackend)(nil)

// NewSQLBackend wraps an open GORM connection and migrates the schema.
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&storyRecord{}, &taskRecord{}, &sequenceRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	for _, name := range []string{taskSequence, storySequence} {
		seq := sequenceRecord{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return nil, fmt.Errorf("failed to seed sequence %s: %w", name, err)
		}
	}
	return &SQLBackend{
		db:      db,
		dialect: db.Dialector.Name(),
		now:     utcNow,
	}, nil
}

func (b *SQLBackend) Name() string { return "sql/" + b.dialect }

func (b *SQLBackend) Tasks() TaskStore { return &sqlTaskStore{b} }

func (b *SQLBackend) Stories() StoryStore { return &sqlStoryStore{b} }

func (b *SQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	for _, closeFn := range b.closers {
		closeFn()
	}
	return err
}

// reserveIDs hands out n consecutive ids for table, advancing the stored
// high-watermark inside tx. The sequence row stays locked until tx ends, so
// concurrent creates on PostgreSQL queue up instead of sharing ids.
func reserveIDs(tx *gorm.DB, name string, model any, n int) (int64, error) {
	var seq sequenceRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to lock sequence %s: %w", name, err)
	}

	var maxID int64
	if err := tx.Model(model).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("failed to read max id of %s: %w", name, err)
	}

	first := max(maxID, seq.Value) + 1
	last := first + int64(n) - 1
	if err := tx.Model(&sequenceRecord{}).Where("name = ?", name).Update("value", last).Error; err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return first, nil
}

// nextPosition returns the position that sorts after every row of model.
func nextPosition(tx *gorm.DB, name string, model any) (int64, error) {
	var last int64
	if err := tx.Model(model).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
		return 0, fmt.Errorf("failed to read last position of %s: %w", name, err)
	}
	return last + 1, nil
}

func storyExists(tx *gorm.DB, id int64) (bool, error) {
	var count int64
	if err := tx.Model(&storyRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type sqlTaskStore struct {
	b *SQLBackend
}

// LoadAll returns tasks in the order they were saved.
func (s *sqlTaskStore) LoadAll(ctx context.Context) ([]backlog.Task, error) {
	var records []taskRecord
	if err := s.b.db.WithContext(ctx).Order("position, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasksFromRecords(records), nil
}

// SaveAll replaces the task table contents in one transaction.
func (s *sqlTaskStore) SaveAll(ctx context.Context, tasks []backlog.Task) error {
	if err := checkIDs(tasks); err != nil {
		return err
	}
	return s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&taskRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}
		if len(tasks) == 0 {
			return nil
		}
		records := make([]taskRecord, 0, len(tasks))
		for i, t := range tasks {
			record := toTaskRecord(t)
			record.Position = int64(i + 1)
			records = append(records, record)
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}
		return nil
	})
}

func (s *sqlTaskStore) Get(ctx context.Context, id int64) (backlog.Task, error) {
	var record taskRecord
	if err := s.b.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return backlog.Task{}, taskNotFound(id)
		}
		return backlog.Task{}, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return record.toDomain(), nil
}

func (s *sqlTaskStore) ListByStory(ctx context.Context, storyID int64) ([]backlog.Task, error) {
	var records []taskRecord
	if err := s.b.db.WithContext(ctx).Where("user_story_id = ?", storyID).Order("position, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks of story %d: %w", storyID, err)
	}
	return tasksFromRecords(records), nil
}

func (s *sqlTaskStore) Create(ctx context.Context, task backlog.Task, storyID *int64) (backlog.Task, error) {
	created, err := s.CreateBatch(ctx, []backlog.Task{task}, storyID)
	if err != nil {
		return backlog.Task{}, err
	}
	return created[0], nil
}

func (s *sqlTaskStore) CreateBatch(ctx context.Context, batch []backlog.Task, storyID *int64) ([]backlog.Task, error) {
	if len(batch) == 0 {
		return []backlog.Task{}, nil
	}

	var created []backlog.Task
	err := s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if storyID != nil {
			ok, err := storyExists(tx, *storyID)
			if err != nil {
				return fmt.Errorf("failed to check user story %d: %w", *storyID, err)
			}
			if !ok {
				return unknownStory()
			}
		}

		first, err := reserveIDs(tx, taskSequence, &taskRecord{}, len(batch))
		if err != nil {
			return err
		}
		position, err := nextPosition(tx, taskSequence, &taskRecord{})
		if err != nil {
			return err
		}

		now := s.b.now()
		records := make([]taskRecord, 0, len(batch))
		for i, t := range batch {
			t.ID = first + int64(i)
			t.UserStoryID = copyID(storyID)
			t.CreatedAt = now
			record := toTaskRecord(t)
			record.Position = position + int64(i)
			records = append(records, record)
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to insert tasks: %w", err)
		}
		created = tasksFromRecords(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *sqlTaskStore) Update(ctx context.Context, id int64, patch backlog.TaskPatch) (backlog.Task, error) {
	var updated backlog.Task
	err := s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return taskNotFound(id)
			}
			return fmt.Errorf("failed to get task %d: %w", id, err)
		}

		if cols := taskColumns(patch); len(cols) > 0 {
			if err := tx.Model(&taskRecord{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return fmt.Errorf("failed to update task %d: %w", id, err)
			}
		}

		task := record.toDomain()
		backlog.ApplyTaskPatch(&task, patch)
		updated = task
		return nil
	})
	return updated, err
}

func (s *sqlTaskStore) Delete(ctx context.Context, id int64) error {
	result := s.b.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return taskNotFound(id)
	}
	return nil
}

func (s *sqlTaskStore) DeleteByStory(ctx context.Context, storyID int64) (int, error) {
	result := s.b.db.WithContext(ctx).Delete(&taskRecord{}, "user_story_id = ?", storyID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete tasks of story %d: %w", storyID, result.Error)
	}
	return int(result.RowsAffected), nil
}

func tasksFromRecords(records []taskRecord) []backlog.Task {
	tasks := make([]backlog.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.toDomain())
	}
	return tasks
}

type sqlStoryStore struct {
	b *SQLBackend
}

// LoadAll returns stories in the order they were saved.
func (s *sqlStoryStore) LoadAll(ctx context.Context) ([]backlog.UserStory, error) {
	var records []storyRecord
	if err := s.b.db.WithContext(ctx).Order("position, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load user stories: %w", err)
	}
	stories := make([]backlog.UserStory, 0, len(records))
	for _, r := range records {
		stories = append(stories, r.toDomain())
	}
	return stories, nil
}

// SaveAll replaces the story table. Tasks whose story disappears are removed
// in the same transaction.
func (s *sqlStoryStore) SaveAll(ctx context.Context, stories []backlog.UserStory) error {
	if err := checkIDs(stories); err != nil {
		return err
	}
	return s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(stories))
		for _, st := range stories {
			ids = append(ids, st.ID)
		}
		orphans := tx.Where("user_story_id IS NOT NULL")
		if len(ids) > 0 {
			orphans = orphans.Where("user_story_id NOT IN ?", ids)
		}
		if err := orphans.Delete(&taskRecord{}).Error; err != nil {
			return fmt.Errorf("failed to remove orphaned tasks: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&storyRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear user stories: %w", err)
		}
		if len(stories) == 0 {
			return nil
		}
		records := make([]storyRecord, 0, len(stories))
		for i, st := range stories {
			record := toStoryRecord(st)
			record.Position = int64(i + 1)
			records = append(records, record)
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to save user stories: %w", err)
		}
		return nil
	})
}

func (s *sqlStoryStore) Get(ctx context.Context, id int64) (backlog.UserStory, error) {
	var record storyRecord
	if err := s.b.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return backlog.UserStory{}, storyNotFound(id)
		}
		return backlog.UserStory{}, fmt.Errorf("failed to get user story %d: %w", id, err)
	}
	return record.toDomain(), nil
}

func (s *sqlStoryStore) Create(ctx context.Context, story backlog.UserStory) (backlog.UserStory, error) {
	err := s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := reserveIDs(tx, storySequence, &storyRecord{}, 1)
		if err != nil {
			return err
		}
		position, err := nextPosition(tx, storySequence, &storyRecord{})
		if err != nil {
			return err
		}
		story.ID = id
		story.CreatedAt = s.b.now()
		record := toStoryRecord(story)
		record.Position = position
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to insert user story: %w", err)
		}
		return nil
	})
	if err != nil {
		return backlog.UserStory{}, err
	}
	return story, nil
}

func (s *sqlStoryStore) Update(ctx context.Context, id int64, patch backlog.StoryPatch) (backlog.UserStory, error) {
	var updated backlog.UserStory
	err := s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record storyRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storyNotFound(id)
			}
			return fmt.Errorf("failed to get user story %d: %w", id, err)
		}
		if cols := storyColumns(patch); len(cols) > 0 {
			if err := tx.Model(&storyRecord{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return fmt.Errorf("failed to update user story %d: %w", id, err)
			}
		}
		story := record.toDomain()
		backlog.ApplyStoryPatch(&story, patch)
		updated = story
		return nil
	})
	return updated, err
}

// Delete removes the story's tasks and then the story in one transaction.
func (s *sqlStoryStore) Delete(ctx context.Context, id int64) (int, error) {
	var removed int
	err := s.b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := storyExists(tx, id)
		if err != nil {
			return fmt.Errorf("failed to check user story %d: %w", id, err)
		}
		if !ok {
			return storyNotFound(id)
		}

		result := tx.Delete(&taskRecord{}, "user_story_id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete tasks of story %d: %w", id, result.Error)
		}
		removed = int(result.RowsAffected)

		if err := tx.Delete(&storyRecord{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete user story %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
