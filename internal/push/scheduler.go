package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

// reminderHour is the local hour the daily due-task reminder goes out.
const reminderHour = 9

// Scheduler sends a morning reminder to members with tasks due that day.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	tasks    *store.TaskStore
	logger   *slog.Logger
	interval time.Duration
	lastSent string // day stamp of the last reminder run
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(svc *Service, pushStore *store.PushStore, taskStore *store.TaskStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		tasks:    taskStore,
		logger:   logger.With("component", "scheduler"),
		interval: time.Minute,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if !s.shouldSend(now) {
		return
	}
	s.sendDueReminders(ctx, now)
}

// shouldSend reports whether the daily reminder is due and claims the day
// stamp so it only fires once.
func (s *Scheduler) shouldSend(now time.Time) bool {
	if now.Hour() < reminderHour {
		return false
	}
	stamp := now.Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSent == stamp {
		return false
	}
	s.lastSent = stamp
	return true
}

func (s *Scheduler) sendDueReminders(ctx context.Context, now time.Time) {
	tasks, err := s.tasks.ListDueOn(now)
	if err != nil {
		s.logger.Error("list due tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	// Group due tasks per household, splitting out per-assignee counts.
	type group struct {
		total    int
		byUser   map[int64]int
		oneTitle string
	}
	groups := make(map[int64]*group)
	for _, task := range tasks {
		g, ok := groups[task.HouseholdID]
		if !ok {
			g = &group{byUser: make(map[int64]int)}
			groups[task.HouseholdID] = g
		}
		g.total++
		g.oneTitle = task.Title
		if task.AssignedTo != nil {
			g.byUser[*task.AssignedTo]++
		}
	}

	for householdID, g := range groups {
		subs, err := s.push.ListForHousehold(householdID)
		if err != nil {
			s.logger.Error("list subscriptions", "error", err)
			continue
		}

		for i := range subs {
			sub := &subs[i]
			enabled, err := s.push.GetPreference(sub.UserID, householdID, model.NotifTypeTaskDue)
			if err != nil || !enabled {
				continue
			}

			count := g.total
			if assigned := g.byUser[sub.UserID]; assigned > 0 {
				count = assigned
			}
			body := fmt.Sprintf("You have %d tasks due today", count)
			if count == 1 && g.total == 1 {
				body = fmt.Sprintf("Due today: %s", g.oneTitle)
			}

			payload := Payload{
				Title: "Tasks due today",
				Body:  body,
				URL:   "/tasks",
				Tag:   "task-due-daily",
			}
			if err := s.service.Send(ctx, sub, payload); err != nil {
				if errors.Is(err, ErrExpired) {
					s.push.DeleteByEndpoint(sub.Endpoint)
					continue
				}
				s.logger.Warn("send due reminder", "error", err)
			}
		}
	}
}
