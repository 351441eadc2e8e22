package infra

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"brokersim/internal/service"
)

// Scheduler manages scheduled background tasks
type Scheduler struct {
	cron  *cron.Cron
	audit *service.AuditService
}

// NewScheduler creates a new scheduler
func NewScheduler(audit *service.AuditService) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		audit: audit,
	}
}

// Start starts the scheduler. The ledger audit runs hourly; trades never
// wait on it.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.RunNow(); err != nil {
			log.Printf("ERROR: Scheduled ledger audit failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[OK] Ledger audit scheduled hourly")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunNow runs the ledger audit immediately
func (s *Scheduler) RunNow() error {
	_, err := s.audit.AuditLedger(context.Background())
	return err
}
