package backlog

import (
	"errors"
	"testing"
	"time"
)

func TestApplyTaskPatch_EmptyPatchIsIdentity(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := Task{
		ID:          1,
		Title:       "a",
		Description: "b",
		Priority:    PriorityMedium,
		EffortHours: 2,
		Status:      StatusPending,
		AssignedTo:  "c",
		CreatedAt:   created,
	}
	before := task

	ApplyTaskPatch(&task, TaskPatch{})

	if task != before {
		t.Errorf("empty patch changed task: got %+v, want %+v", task, before)
	}
}

func TestApplyTaskPatch_OnlyPresentFields(t *testing.T) {
	task := Task{ID: 4, Title: "old", Description: "keep", Status: StatusPending}

	ApplyTaskPatch(&task, TaskPatch{Title: Ptr("new"), Status: Ptr(StatusDone)})

	if task.Title != "new" {
		t.Errorf("expected title %q, got %q", "new", task.Title)
	}
	if task.Status != StatusDone {
		t.Errorf("expected status %q, got %q", StatusDone, task.Status)
	}
	if task.Description != "keep" {
		t.Errorf("omitted field changed: description = %q", task.Description)
	}
	if task.ID != 4 {
		t.Errorf("id changed to %d", task.ID)
	}
}

func TestTaskPatchOf_RebuildsTask(t *testing.T) {
	src := Task{Title: "t", Description: "d", Priority: PriorityLow, EffortHours: 8, Status: StatusInReview, AssignedTo: "x", Category: "Backend"}

	var dst Task
	ApplyTaskPatch(&dst, TaskPatchOf(src))

	if dst != src {
		t.Errorf("expected %+v, got %+v", src, dst)
	}
}

func TestApplyStoryPatch(t *testing.T) {
	story := UserStory{Project: "p", Role: "r", Goal: "g", Reason: "why", StoryPoints: 2}

	ApplyStoryPatch(&story, StoryPatch{StoryPoints: Ptr(0)})

	if story.StoryPoints != 0 {
		t.Errorf("expected zero story points to be applied, got %d", story.StoryPoints)
	}
	if story.Goal != "g" {
		t.Errorf("omitted field changed: goal = %q", story.Goal)
	}
}

func TestFaultPreservesKind(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{Problems{{Field: "title", Reason: "must not be empty"}}.Err(), ErrValidation},
		{&NotFoundError{Entity: "task", ID: 9}, ErrNotFound},
		{&DraftError{Reason: "not json"}, ErrDraftGeneration},
		{ErrServiceUnavailable, ErrServiceUnavailable},
	}

	for _, tc := range cases {
		fault := FaultFrom(tc.err)
		if !errors.Is(fault, tc.want) {
			t.Errorf("fault for %v lost its kind %q", tc.err, fault.Kind)
		}
	}

	if FaultFrom(errors.New("boom")).Kind != KindInternal {
		t.Error("unclassified error should map to internal")
	}
	if FaultFrom(nil) != nil {
		t.Error("nil error should give nil fault")
	}
}

func TestFaultCarriesProblems(t *testing.T) {
	fault := FaultFrom(Problems{{Field: "status", Reason: "bad"}}.Err())

	problems := ProblemsOf(fault)
	if len(problems) != 1 || problems[0].Field != "status" {
		t.Errorf("unexpected problems: %+v", problems)
	}
}
