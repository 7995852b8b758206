package tasks

import "errors"

var (
	// ErrNotFound covers both a missing task and a task owned by someone else
	ErrNotFound = errors.New("task not found")
	// ErrHasSubtasks blocks deleting a task until its subtasks are gone
	ErrHasSubtasks = errors.New("task has subtasks")
)
