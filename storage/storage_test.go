package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eachBackend runs fn against a fresh file backend and a fresh SQLite backend.
func eachBackend(t *testing.T, fn func(t *testing.T, b Backend)) {
	t.Helper()

	t.Run("file", func(t *testing.T) {
		b, err := OpenFile(t.TempDir())
		require.NoError(t, err)
		fn(t, b)
	})

	t.Run("sqlite", func(t *testing.T) {
		b, err := OpenSQL(context.Background(), filepath.Join(t.TempDir(), "backlog.db"), false)
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		fn(t, b)
	})
}

func sampleTask(title string) backlog.Task {
	return backlog.Task{
		Title:       title,
		Description: "desc " + title,
		Priority:    backlog.PriorityMedium,
		EffortHours: 3,
		Status:      backlog.StatusPending,
		AssignedTo:  "ana",
	}
}

func sampleStory(project string) backlog.UserStory {
	return backlog.UserStory{
		Project:     project,
		Role:        "customer",
		Goal:        "track orders",
		Reason:      "know when they arrive",
		Priority:    backlog.PriorityHigh,
		StoryPoints: 5,
		EffortHours: 12,
	}
}

func taskIDs(tasks []backlog.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func problemFields(problems []backlog.FieldProblem) []string {
	fields := make([]string, 0, len(problems))
	for _, p := range problems {
		fields = append(fields, p.Field)
	}
	return fields
}

func TestNextID(t *testing.T) {
	assert.Equal(t, int64(1), NextID([]backlog.Task{}))
	assert.Equal(t, int64(8), NextID([]backlog.Task{{ID: 3}, {ID: 7}, {ID: 2}}))
}

func TestTaskStore_EmptyLoad(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		tasks, err := b.Tasks().LoadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestTaskStore_CreateAssignsSequentialIDs(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		first, err := b.Tasks().Create(ctx, sampleTask("one"), nil)
		require.NoError(t, err)
		second, err := b.Tasks().Create(ctx, sampleTask("two"), nil)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		assert.False(t, first.CreatedAt.IsZero())
		assert.Nil(t, first.UserStoryID)
	})
}

func TestTaskStore_DeletedIDsAreNotReissued(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		for _, title := range []string{"a", "b", "c"} {
			_, err := b.Tasks().Create(ctx, sampleTask(title), nil)
			require.NoError(t, err)
		}
		require.NoError(t, b.Tasks().Delete(ctx, 3))

		next, err := b.Tasks().Create(ctx, sampleTask("d"), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), next.ID)
	})
}

func TestTaskStore_GetMissing(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		_, err := b.Tasks().Get(context.Background(), 999)
		assert.True(t, errors.Is(err, backlog.ErrNotFound))
	})
}

func TestTaskStore_UpdatePartial(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		created, err := b.Tasks().Create(ctx, sampleTask("partial"), nil)
		require.NoError(t, err)

		updated, err := b.Tasks().Update(ctx, created.ID, backlog.TaskPatch{
			Status:      backlog.Ptr(backlog.StatusInProgress),
			EffortHours: backlog.Ptr(0.0),
		})
		require.NoError(t, err)
		assert.Equal(t, backlog.StatusInProgress, updated.Status)
		assert.Equal(t, 0.0, updated.EffortHours)
		assert.Equal(t, "desc partial", updated.Description)

		stored, err := b.Tasks().Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, backlog.StatusInProgress, stored.Status)
		assert.Equal(t, created.AssignedTo, stored.AssignedTo)
		assert.True(t, created.CreatedAt.Equal(stored.CreatedAt))
	})
}

func TestTaskStore_EmptyUpdateIsIdentity(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		created, err := b.Tasks().Create(ctx, sampleTask("same"), nil)
		require.NoError(t, err)

		updated, err := b.Tasks().Update(ctx, created.ID, backlog.TaskPatch{})
		require.NoError(t, err)

		stored, err := b.Tasks().Get(ctx, created.ID)
		require.NoError(t, err)
		for _, got := range []backlog.Task{updated, stored} {
			assert.Equal(t, created.Fields(), got.Fields())
			assert.Equal(t, created.ID, got.ID)
			assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
		}
	})
}

func TestTaskStore_UpdateMissing(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		_, err := b.Tasks().Update(context.Background(), 42, backlog.TaskPatch{Title: backlog.Ptr("x")})
		assert.True(t, errors.Is(err, backlog.ErrNotFound))
	})
}

func TestTaskStore_DeleteMissing(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		err := b.Tasks().Delete(context.Background(), 1)
		assert.True(t, errors.Is(err, backlog.ErrNotFound))
	})
}

func TestTaskStore_CreateWithUnknownStory(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		storyID := int64(77)
		_, err := b.Tasks().Create(context.Background(), sampleTask("orphan"), &storyID)
		assert.True(t, errors.Is(err, backlog.ErrValidation))

		tasks, err := b.Tasks().LoadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestTaskStore_SaveAllReplaces(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		_, err := b.Tasks().Create(ctx, sampleTask("gone"), nil)
		require.NoError(t, err)

		replacement := sampleTask("kept")
		replacement.ID = 10
		replacement.CreatedAt = utcNow()
		require.NoError(t, b.Tasks().SaveAll(ctx, []backlog.Task{replacement}))

		tasks, err := b.Tasks().LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "kept", tasks[0].Title)

		next, err := b.Tasks().Create(ctx, sampleTask("after"), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(11), next.ID)
	})
}

func TestSaveAll_RoundTripKeepsOrder(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

		var tasks []backlog.Task
		for _, id := range []int64{5, 2, 9} {
			task := sampleTask(fmt.Sprintf("t%d", id))
			task.ID = id
			task.CreatedAt = created
			tasks = append(tasks, task)
		}
		require.NoError(t, b.Tasks().SaveAll(ctx, tasks))

		loaded, err := b.Tasks().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, tasks, loaded)

		next, err := b.Tasks().Create(ctx, sampleTask("after"), nil)
		require.NoError(t, err)
		loaded, err = b.Tasks().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 2, 9, next.ID}, taskIDs(loaded))

		var stories []backlog.UserStory
		for _, id := range []int64{7, 3} {
			story := sampleStory(fmt.Sprintf("p%d", id))
			story.ID = id
			story.CreatedAt = created
			stories = append(stories, story)
		}
		require.NoError(t, b.Stories().SaveAll(ctx, stories))

		loadedStories, err := b.Stories().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, stories, loadedStories)

		require.NoError(t, b.Tasks().SaveAll(ctx, nil))
		loaded, err = b.Tasks().LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestSaveAll_RejectsUnusableIDs(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		kept, err := b.Tasks().Create(ctx, sampleTask("kept"), nil)
		require.NoError(t, err)

		for name, ids := range map[string][]int64{
			"duplicate": {1, 1},
			"zero":      {0},
			"negative":  {-3, 4},
		} {
			var tasks []backlog.Task
			for _, id := range ids {
				task := sampleTask(name)
				task.ID = id
				tasks = append(tasks, task)
			}
			err := b.Tasks().SaveAll(ctx, tasks)
			require.Error(t, err, name)
			assert.True(t, errors.Is(err, backlog.ErrValidation), name)
			assert.Equal(t, []string{"id"}, problemFields(backlog.ProblemsOf(err)), name)
		}

		story := sampleStory("dup")
		story.ID = 2
		err = b.Stories().SaveAll(ctx, []backlog.UserStory{story, story})
		assert.True(t, errors.Is(err, backlog.ErrValidation))

		tasks, err := b.Tasks().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{kept.ID}, taskIDs(tasks))

		next, err := b.Tasks().Create(ctx, sampleTask("next"), nil)
		require.NoError(t, err)
		assert.Equal(t, kept.ID+1, next.ID)
	})
}

func TestStoryStore_CascadeDelete(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		storyA, err := b.Stories().Create(ctx, sampleStory("A"))
		require.NoError(t, err)
		storyB, err := b.Stories().Create(ctx, sampleStory("B"))
		require.NoError(t, err)

		_, err = b.Tasks().CreateBatch(ctx, []backlog.Task{sampleTask("1"), sampleTask("2"), sampleTask("3")}, &storyA.ID)
		require.NoError(t, err)
		_, err = b.Tasks().Create(ctx, sampleTask("4"), &storyB.ID)
		require.NoError(t, err)

		removed, err := b.Stories().Delete(ctx, storyA.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		tasks, err := b.Tasks().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{4}, taskIDs(tasks))

		_, err = b.Stories().Get(ctx, storyA.ID)
		assert.True(t, errors.Is(err, backlog.ErrNotFound))
		_, err = b.Stories().Get(ctx, storyB.ID)
		assert.NoError(t, err)
	})
}

func TestStoryStore_DeleteMissing(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		_, err := b.Stories().Delete(context.Background(), 5)
		assert.True(t, errors.Is(err, backlog.ErrNotFound))
	})
}

func TestTaskStore_ListByStory(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		story, err := b.Stories().Create(ctx, sampleStory("list"))
		require.NoError(t, err)
		_, err = b.Tasks().Create(ctx, sampleTask("loose"), nil)
		require.NoError(t, err)
		created, err := b.Tasks().CreateBatch(ctx, []backlog.Task{sampleTask("x"), sampleTask("y")}, &story.ID)
		require.NoError(t, err)

		owned, err := b.Tasks().ListByStory(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, taskIDs(created), taskIDs(owned))
		for _, task := range owned {
			assert.True(t, task.BelongsTo(story.ID))
		}

		removed, err := b.Tasks().DeleteByStory(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
	})
}

func TestStoryStore_UpdatePartial(t *testing.T) {
	eachBackend(t, func(t *testing.T, b Backend) {
		ctx := context.Background()
		story, err := b.Stories().Create(ctx, sampleStory("upd"))
		require.NoError(t, err)

		updated, err := b.Stories().Update(ctx, story.ID, backlog.StoryPatch{StoryPoints: backlog.Ptr(8)})
		require.NoError(t, err)
		assert.Equal(t, 8, updated.StoryPoints)
		assert.Equal(t, "upd", updated.Project)

		stories, err := b.Stories().LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, stories, 1)
		assert.Equal(t, 8, stories[0].StoryPoints)
	})
}
