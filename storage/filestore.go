package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

const (
	// TasksFile is the name of the task document inside the data directory.
	TasksFile = "tasks.json"
	// StoriesFile is the name of the user story document.
	StoriesFile = "user_stories.json"
)

// FileBackend keeps tasks and user stories in two JSON documents.
//
// A single mutex serializes every load-mutate-save cycle across both
// documents. Ids come from a high-watermark seeded from the documents when
// the backend opens, so an id freed by a delete is not handed out again while
// the process runs. A cascading story delete rewrites the task document first
// and the story document second; a crash in between leaves a story without
// tasks, never tasks without their story.
type FileBackend struct {
	mu        sync.Mutex
	tasks     document[backlog.Task]
	stories   document[backlog.UserStory]
	taskMark  int64
	storyMark int64
	now       func() time.Time
}

var _ Backend = (*FileBackend)(nil)

// OpenFile opens (creating if needed) a file backend rooted at dir.
func OpenFile(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	b := &FileBackend{
		tasks:   document[backlog.Task]{path: filepath.Join(dir, TasksFile)},
		stories: document[backlog.UserStory]{path: filepath.Join(dir, StoriesFile)},
		now:     utcNow,
	}

	// A corrupt document is reported by the first operation that reads it.
	if tasks, err := b.tasks.load(); err == nil {
		b.taskMark = maxIdentity(tasks)
	} else {
		log.Printf("[storage] Warning: %v", err)
	}
	if stories, err := b.stories.load(); err == nil {
		b.storyMark = maxIdentity(stories)
	} else {
		log.Printf("[storage] Warning: %v", err)
	}
	return b, nil
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Tasks() TaskStore { return (*fileTaskStore)(b) }

func (b *FileBackend) Stories() StoryStore { return (*fileStoryStore)(b) }

// Ping checks that both documents are readable and well formed.
func (b *FileBackend) Ping(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.tasks.load(); err != nil {
		return err
	}
	_, err := b.stories.load()
	return err
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) nextTaskID(tasks []backlog.Task) int64 {
	return max(NextID(tasks), b.taskMark+1)
}

func (b *FileBackend) nextStoryID(stories []backlog.UserStory) int64 {
	return max(NextID(stories), b.storyMark+1)
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type fileTaskStore FileBackend

func (s *fileTaskStore) LoadAll(_ context.Context) ([]backlog.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.load()
}

func (s *fileTaskStore) SaveAll(_ context.Context, tasks []backlog.Task) error {
	if err := checkIDs(tasks); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tasks.save(tasks); err != nil {
		return err
	}
	s.taskMark = max(s.taskMark, maxIdentity(tasks))
	return nil
}

func (s *fileTaskStore) Get(_ context.Context, id int64) (backlog.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks.load()
	if err != nil {
		return backlog.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return backlog.Task{}, taskNotFound(id)
}

func (s *fileTaskStore) ListByStory(_ context.Context, storyID int64) ([]backlog.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks.load()
	if err != nil {
		return nil, err
	}
	owned := make([]backlog.Task, 0)
	for _, t := range tasks {
		if t.BelongsTo(storyID) {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

func (s *fileTaskStore) Create(ctx context.Context, task backlog.Task, storyID *int64) (backlog.Task, error) {
	created, err := s.CreateBatch(ctx, []backlog.Task{task}, storyID)
	if err != nil {
		return backlog.Task{}, err
	}
	return created[0], nil
}

func (s *fileTaskStore) CreateBatch(_ context.Context, batch []backlog.Task, storyID *int64) ([]backlog.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if storyID != nil {
		stories, err := s.stories.load()
		if err != nil {
			return nil, err
		}
		if !containsID(stories, *storyID) {
			return nil, unknownStory()
		}
	}

	tasks, err := s.tasks.load()
	if err != nil {
		return nil, err
	}

	b := (*FileBackend)(s)
	next := b.nextTaskID(tasks)
	now := s.now()
	created := make([]backlog.Task, 0, len(batch))
	for _, t := range batch {
		t.ID = next
		t.UserStoryID = copyID(storyID)
		t.CreatedAt = now
		next++
		created = append(created, t)
	}

	if err := s.tasks.save(append(tasks, created...)); err != nil {
		return nil, err
	}
	s.taskMark = next - 1
	return created, nil
}

func (s *fileTaskStore) Update(_ context.Context, id int64, patch backlog.TaskPatch) (backlog.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.tasks.load()
	if err != nil {
		return backlog.Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		if patch.Empty() {
			return tasks[i], nil
		}
		backlog.ApplyTaskPatch(&tasks[i], patch)
		if err := s.tasks.save(tasks); err != nil {
			return backlog.Task{}, err
		}
		return tasks[i], nil
	}
	return backlog.Task{}, taskNotFound(id)
}

func (s *fileTaskStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.tasks.load()
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return s.tasks.save(append(tasks[:i], tasks[i+1:]...))
		}
	}
	return taskNotFound(id)
}

func (s *fileTaskStore) DeleteByStory(_ context.Context, storyID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*FileBackend)(s).deleteTasksOf(storyID)
}

// deleteTasksOf must be called with the mutex held.
func (b *FileBackend) deleteTasksOf(storyID int64) (int, error) {
	tasks, err := b.tasks.load()
	if err != nil {
		return 0, err
	}
	kept := make([]backlog.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.BelongsTo(storyID) {
			kept = append(kept, t)
		}
	}
	removed := len(tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := b.tasks.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

type fileStoryStore FileBackend

func (s *fileStoryStore) LoadAll(_ context.Context) ([]backlog.UserStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stories.load()
}

func (s *fileStoryStore) SaveAll(_ context.Context, stories []backlog.UserStory) error {
	if err := checkIDs(stories); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.stories.save(stories); err != nil {
		return err
	}
	s.storyMark = max(s.storyMark, maxIdentity(stories))
	return nil
}

func (s *fileStoryStore) Get(_ context.Context, id int64) (backlog.UserStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stories, err := s.stories.load()
	if err != nil {
		return backlog.UserStory{}, err
	}
	for _, st := range stories {
		if st.ID == id {
			return st, nil
		}
	}
	return backlog.UserStory{}, storyNotFound(id)
}

func (s *fileStoryStore) Create(_ context.Context, story backlog.UserStory) (backlog.UserStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := s.stories.load()
	if err != nil {
		return backlog.UserStory{}, err
	}
	story.ID = (*FileBackend)(s).nextStoryID(stories)
	story.CreatedAt = s.now()
	if err := s.stories.save(append(stories, story)); err != nil {
		return backlog.UserStory{}, err
	}
	s.storyMark = story.ID
	return story, nil
}

func (s *fileStoryStore) Update(_ context.Context, id int64, patch backlog.StoryPatch) (backlog.UserStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := s.stories.load()
	if err != nil {
		return backlog.UserStory{}, err
	}
	for i := range stories {
		if stories[i].ID != id {
			continue
		}
		if patch.Empty() {
			return stories[i], nil
		}
		backlog.ApplyStoryPatch(&stories[i], patch)
		if err := s.stories.save(stories); err != nil {
			return backlog.UserStory{}, err
		}
		return stories[i], nil
	}
	return backlog.UserStory{}, storyNotFound(id)
}

func (s *fileStoryStore) Delete(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := s.stories.load()
	if err != nil {
		return 0, err
	}
	idx := -1
	for i := range stories {
		if stories[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, storyNotFound(id)
	}

	removed, err := (*FileBackend)(s).deleteTasksOf(id)
	if err != nil {
		return 0, err
	}
	if err := s.stories.save(append(stories[:idx], stories[idx+1:]...)); err != nil {
		return removed, err
	}
	return removed, nil
}

func containsID[E identified](items []E, id int64) bool {
	for _, item := range items {
		if item.Identity() == id {
			return true
		}
	}
	return false
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
