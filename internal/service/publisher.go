// Package service hosts the background tasks that run on timers,
// independent of request traffic.
package service

import (
	"database/sql"
	"time"

	"inkwell/cms/db"
	"inkwell/cms/internal/audit"
	"inkwell/cms/internal/metrics"
	"inkwell/cms/pkg/logger"

	"go.uber.org/zap"
)

// PublisherService flips scheduled posts to published once their
// publish time passes. Scheduling is minute-granular; the sweep just
// has to run often enough that readers do not notice the lag.
type PublisherService struct {
	db       *db.Manager
	audit    *audit.Writer
	interval time.Duration
	stopChan chan struct{}
}

// NewPublisherService creates the publisher sweep.
func NewPublisherService(dbManager *db.Manager, auditWriter *audit.Writer) *PublisherService {
	return &PublisherService{
		db:       dbManager,
		audit:    auditWriter,
		interval: time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
func (s *PublisherService) Start() {
	go func() {
		s.publishDue()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.publishDue()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (s *PublisherService) Stop() {
	close(s.stopChan)
}

func (s *PublisherService) publishDue() {
	due, err := s.db.DB.SQLite.ListDuePosts(time.Now().UTC())
	if err != nil {
		logger.Error("failed to list due posts", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	for _, post := range due {
		post.Status = "published"
		if !post.PublishedAt.Valid {
			post.PublishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		}
		if err := s.db.DB.SQLite.UpdatePost(post); err != nil {
			logger.Error("failed to publish scheduled post",
				zap.String("post_id", post.ID), zap.Error(err))
			continue
		}

		metrics.ScheduledPostsPublished.Inc()
		logger.Info("scheduled post published",
			zap.String("post_id", post.ID), zap.String("slug", post.Slug))
		s.audit.Record("post.publish", "", audit.Options{
			ResourceType: "post",
			ResourceID:   post.ID,
			Metadata:     map[string]interface{}{"scheduled": true},
		})
	}
}
