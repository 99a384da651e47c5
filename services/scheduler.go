// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const staleLeadAge = 90 * 24 * time.Hour

// StartArchiveScheduler runs the hourly lead janitor: anything still "new"
// after 90 days gets archived so the inbox view stays useful.
func (s *LeadService) StartArchiveScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			archived, err := s.ArchiveStale(staleLeadAge)
			if err != nil {
				log.Printf("[Scheduler] Failed to archive stale leads: %v", err)
				return
			}
			if archived > 0 {
				log.Printf("✅ Archived %d stale leads", archived)
			}
		}),
	)
}
