package activity

import (
	"context"
	"testing"
	"time"

	"github.com/mmoralesp95/Proyecto-IA/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlersRecordEntries(t *testing.T) {
	m := NewModule()
	ctx := context.Background()
	storyID := int64(2)

	require.NoError(t, m.handleStoryCreated(ctx, events.StoryCreatedEvent{StoryID: 2, Project: "tienda"}, nil))
	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: 7, Title: "API", UserStoryID: &storyID, Drafted: true}, nil))
	require.NoError(t, m.handleStoryUpdated(ctx, events.StoryUpdatedEvent{StoryID: 2, Fields: []string{"goal", "priority"}}, nil))
	require.NoError(t, m.handleStoryDeleted(ctx, events.StoryDeletedEvent{StoryID: 2, TasksRemoved: 1, DeletedAt: time.Now()}, nil))

	entries := m.Entries(0)
	require.Len(t, entries, 4)
	assert.Equal(t, "story_deleted", entries[0].Type)
	assert.Equal(t, "User story 2 deleted with 1 tasks", entries[0].Message)
	assert.Equal(t, "User story 2 updated (2 fields)", entries[1].Message)
	assert.Equal(t, "Task 7 'API' created by the assistant for user story 2", entries[2].Message)
	assert.Equal(t, "story_created", entries[3].Type)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestEntriesAreBounded(t *testing.T) {
	m := NewModule()
	for i := 1; i <= DefaultCapacity+5; i++ {
		require.NoError(t, m.handleTaskDeleted(context.Background(), events.TaskDeletedEvent{TaskID: int64(i)}, nil))
	}

	entries := m.Entries(0)
	require.Len(t, entries, DefaultCapacity)
	assert.Equal(t, int64(DefaultCapacity+5), entries[0].EntityID)
	assert.Equal(t, int64(6), entries[len(entries)-1].EntityID)
}

func TestRecentActivityLimit(t *testing.T) {
	m := NewModule()
	for i := 1; i <= 3; i++ {
		require.NoError(t, m.handleTaskUpdated(context.Background(), events.TaskUpdatedEvent{TaskID: int64(i), Fields: []string{"status"}}, nil))
	}

	resp, err := m.recentActivity(context.Background(), RecentActivityRequest{Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, int64(3), resp.Entries[0].EntityID)
	assert.Equal(t, int64(2), resp.Entries[1].EntityID)
}
