package store

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a single todo item.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is one entry in a TodoList.
type Task struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Status     TaskStatus `json:"status"`
	ActiveForm string     `json:"active_form"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TodoList is the full persisted state for one session's todo tool.
type TodoList struct {
	SessionID string    `json:"session_id"`
	Tasks     []Task    `json:"tasks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// validate enforces the at-most-one-in-progress invariant.
func (l *TodoList) validate() error {
	inProgress := 0
	for _, t := range l.Tasks {
		if t.Status == TaskInProgress {
			inProgress++
		}
	}
	if inProgress > 1 {
		return fmt.Errorf("todo: at most one task may be in_progress, found %d", inProgress)
	}
	return nil
}

// TodoStore persists one TodoList per session id as
// <user-config-dir>/ok/todos/<session_id>.json.
type TodoStore struct {
	dir   string
	clock Clock
}

// NewTodoStore opens the todo store rooted at the user config directory.
func NewTodoStore() (*TodoStore, error) {
	dir, err := baseDir("todos")
	if err != nil {
		return nil, err
	}
	return &TodoStore{dir: dir, clock: time.Now}, nil
}

func (s *TodoStore) path(sessionID string) string {
	return fmt.Sprintf("%s/%s.json", s.dir, sessionID)
}

// Load returns the todo list for a session, or an empty list (not an
// error) if none has been written yet.
func (s *TodoStore) Load(sessionID string) (*TodoList, error) {
	if err := sanitizeKey(sessionID); err != nil {
		return nil, err
	}
	var list TodoList
	err := readJSONFile(s.path(sessionID), &list)
	if err != nil {
		if isNotExist(err) {
			return &TodoList{SessionID: sessionID}, nil
		}
		return nil, err
	}
	return &list, nil
}

// Replace overwrites the todo list for a session in a single whole-file
// write, validating the in-progress invariant first.
func (s *TodoStore) Replace(sessionID string, tasks []Task) (*TodoList, error) {
	if err := sanitizeKey(sessionID); err != nil {
		return nil, err
	}
	list := &TodoList{SessionID: sessionID, Tasks: tasks, UpdatedAt: s.clock()}
	if err := list.validate(); err != nil {
		return nil, err
	}
	if err := writeJSONFile(s.path(sessionID), list); err != nil {
		return nil, err
	}
	return list, nil
}

// Sessions lists the session ids that have a persisted todo list.
func (s *TodoStore) Sessions() ([]string, error) {
	return listJSONKeys(s.dir)
}
