package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// SchedulerService runs named jobs once a day on the wall clock of its
// location.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleDaily registers job to run every day at hhmm (H:MM or HH:MM). A
// positive timeout bounds each run; zero lets it run as long as it needs.
func (s *SchedulerService) ScheduleDaily(name, hhmm string, timeout time.Duration, job Job) (cron.EntryID, error) {
	spec, err := dailySpec(hhmm)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, func() { runJob(name, timeout, job) })
}

func runJob(name string, timeout time.Duration, job Job) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	if err := job(ctx); err != nil {
		log.Printf("job %s: %v", name, err)
		return
	}
	log.Printf("[info] job %s done in %s", name, time.Since(started).Round(time.Millisecond))
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// Next reports when the job is due next; zero before Start.
func (s *SchedulerService) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// dailySpec turns a wall clock time into a six-field cron spec.
func dailySpec(hhmm string) (string, error) {
	at, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return fmt.Sprintf("0 %d %d * * *", at.Minute(), at.Hour()), nil
}
