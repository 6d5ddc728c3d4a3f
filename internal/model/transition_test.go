package model

import (
	"errors"
	"testing"
)

func TestValidateTransition_CompletedIsTerminal(t *testing.T) {
	for _, next := range []TaskStatus{StatusWaiting, StatusInProcess, StatusCompleted} {
		err := ValidateTransition(StatusCompleted, next)
		if !errors.Is(err, ErrTaskCompleted) {
			t.Fatalf("COMPLETED -> %s: expected ErrTaskCompleted, got %v", next, err)
		}
	}
}

func TestValidateTransition_NoRevertToWaiting(t *testing.T) {
	err := ValidateTransition(StatusInProcess, StatusWaiting)
	if !errors.Is(err, ErrRevertToWaiting) {
		t.Fatalf("IN_PROCESS -> WAITING: expected ErrRevertToWaiting, got %v", err)
	}
}

func TestValidateTransition_Allowed(t *testing.T) {
	cases := []struct {
		current, next TaskStatus
	}{
		{StatusWaiting, StatusInProcess},
		{StatusWaiting, StatusCompleted},
		{StatusInProcess, StatusCompleted},
		// no-op 迁移对非终态全部放行
		{StatusWaiting, StatusWaiting},
		{StatusInProcess, StatusInProcess},
	}
	for _, tc := range cases {
		if err := ValidateTransition(tc.current, tc.next); err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.current, tc.next, err)
		}
	}
}

func TestParseTaskStatus(t *testing.T) {
	if _, ok := ParseTaskStatus("IN_PROCESS"); !ok {
		t.Fatalf("expected IN_PROCESS to parse")
	}
	if _, ok := ParseTaskStatus("running"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestTaskIsParticipant(t *testing.T) {
	assignee := uint(7)
	task := Task{AuthorID: 3, AssigneeID: &assignee}

	if !task.IsParticipant(3) {
		t.Fatalf("author should be a participant")
	}
	if !task.IsParticipant(7) {
		t.Fatalf("assignee should be a participant")
	}
	if task.IsParticipant(9) {
		t.Fatalf("stranger should not be a participant")
	}

	unassigned := Task{AuthorID: 3}
	if unassigned.IsParticipant(7) {
		t.Fatalf("no assignee set, only author participates")
	}
}
