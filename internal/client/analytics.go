package client

// Analytics counters persisted under the "analytics" key.
type Analytics struct {
	TasksCreated   int `json:"tasksCreated"`
	TasksCompleted int `json:"tasksCompleted"`
	TasksDeleted   int `json:"tasksDeleted"`
	Syncs          int `json:"syncs"`
}
