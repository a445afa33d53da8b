package workers

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"fitgenAPI/internal/store"
	"fitgenAPI/services"
)

const sweepRetries = 3

// DailySweep runs the nightly maintenance pass: expire dead streaks,
// pre-generate today's challenges, and heal one-sided friend edges. Every
// per-user failure is logged and skipped so one bad document never stalls
// the sweep.
type DailySweep struct {
	users      store.UserStore
	challenges *services.ChallengeService
	social     *services.SocialService

	engine *cron.Cron
}

func NewDailySweep(users store.UserStore, challenges *services.ChallengeService, social *services.SocialService) *DailySweep {
	return &DailySweep{
		users:      users,
		challenges: challenges,
		social:     social,
		engine:     cron.New(),
	}
}

// Start registers the daily schedule and launches the cron engine. The sweep
// also runs once at startup so a restarted server catches up immediately.
func (w *DailySweep) Start() error {
	if _, err := w.engine.AddFunc("@daily", w.runOnce); err != nil {
		return err
	}
	w.engine.Start()
	go w.runOnce()
	return nil
}

func (w *DailySweep) Stop() {
	ctx := w.engine.Stop()
	<-ctx.Done()
}

func (w *DailySweep) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	log.Println("DailySweep: starting")

	ids, err := w.listUserIDs(ctx)
	if err != nil {
		log.Printf("DailySweep: failed to list users, aborting: %v", err)
		return
	}

	expired, generated := 0, 0
	for _, id := range ids {
		changed, err := w.challenges.CheckMissedChallenges(ctx, id)
		if err != nil {
			log.Printf("DailySweep: streak check for %s failed: %v", id, err)
		} else if changed {
			expired++
		}

		if _, err := w.challenges.GenerateChallengeIfNeeded(ctx, id); err != nil {
			log.Printf("DailySweep: challenge generation for %s failed: %v", id, err)
		} else {
			generated++
		}
	}

	healed, err := w.social.ReconcileFriendEdges(ctx)
	if err != nil {
		log.Printf("DailySweep: reconciliation failed: %v", err)
	}

	log.Printf("DailySweep: done in %s (%d users, %d streaks expired, %d challenges ensured, %d edges healed)",
		time.Since(start).Round(time.Millisecond), len(ids), expired, generated, healed)
}

func (w *DailySweep) listUserIDs(ctx context.Context) ([]string, error) {
	var lastErr error
	for attempt := 1; attempt <= sweepRetries; attempt++ {
		ids, err := w.users.ListUserIDs(ctx)
		if err == nil {
			return ids, nil
		}
		lastErr = err
		log.Printf("DailySweep: list users attempt %d/%d failed: %v", attempt, sweepRetries, err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}
