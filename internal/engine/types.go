package engine

import "github.com/cosmico/webinar/internal/domain"

// Task is a job bound to its output path.
type Task struct {
	Job  domain.DownloadJob
	Path string
}

// QueueItem is either a Task or a Stop marker. The zero value is a Stop.
type QueueItem struct {
	task Task
	job  bool
}

// JobItem wraps a task for the queue.
func JobItem(t Task) QueueItem {
	return QueueItem{task: t, job: true}
}

// StopItem tells the worker that pops it to exit. One is pushed per worker.
func StopItem() QueueItem {
	return QueueItem{}
}

func (i QueueItem) IsStop() bool {
	return !i.job
}

// Task returns the wrapped task; ok is false for a Stop.
func (i QueueItem) Task() (Task, bool) {
	return i.task, i.job
}

// jobResult is what a single processing attempt ends with.
type jobResult struct {
	outcome domain.Outcome
	bytes   int64
	err     error
	// fatal stops the worker after the result is recorded
	fatal bool
}
