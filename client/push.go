package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ganttline/ganttline/models"
)

// PushProject reconciles the remote project with the given local task set:
// every local task is upserted and remote tasks missing locally are deleted.
func (c *Client) PushProject(ctx context.Context, projectID string, tasks map[string]models.Task) error {
	remote, err := c.FetchTasks(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetch remote tasks: %w", err)
	}

	for _, task := range tasks {
		if err := c.UpdateTask(ctx, projectID, task); err != nil {
			return fmt.Errorf("push task %s: %w", task.ID, err)
		}
	}

	for id := range remote {
		if _, ok := tasks[id]; ok {
			continue
		}
		if err := c.DeleteTask(ctx, projectID, id); err != nil {
			return fmt.Errorf("delete remote task %s: %w", id, err)
		}
	}

	return nil
}

// PushAsync pushes the task set in the background, retrying transient
// failures with linear backoff. Failures are logged, never surfaced; local
// state is the source of truth and a later push reconciles everything.
func (c *Client) PushAsync(projectID string, tasks map[string]models.Task) {
	// Copy before handing off; the caller may keep mutating its map.
	snapshot := make(map[string]models.Task, len(tasks))
	for id, t := range tasks {
		snapshot[id] = t.Clone()
	}

	go func() {
		var err error
		for attempt := 0; attempt <= c.maxRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(time.Duration(attempt) * time.Second)
			}
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			err = c.PushProject(ctx, projectID, snapshot)
			cancel()
			if err == nil {
				return
			}
			if errors.Is(err, ErrSessionExpired) {
				break
			}
		}
		c.logger.Warn("background push failed", "project", projectID, "error", err)
	}()
}
