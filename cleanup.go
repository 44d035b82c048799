package main

import (
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCleanupScheduler expires idle review sessions on a cron schedule.
// The schedule is a standard 5-field cron expression (minute hour
// day-of-month month day-of-week); default is hourly.
func StartCleanupScheduler(cfg Config, sessions *SessionManager) {
	schedule := strings.TrimSpace(cfg.CleanupSchedule)
	if schedule == "" {
		log.Println("Session cleanup disabled (cleanup_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid cleanup_schedule '%s': %v — session cleanup disabled", schedule, err)
		return
	}

	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	log.Printf("Session cleanup scheduled (cron: %s, ttl: %s)", schedule, ttl)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			time.Sleep(next.Sub(now))

			expired := sessions.ExpireIdle(ttl, time.Now())
			if expired > 0 {
				log.Printf("Session cleanup expired=%d remaining=%d", expired, sessions.Len())
			}
		}
	}()
}
