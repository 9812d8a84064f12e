package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reaper tears down rooms nobody has acted in for longer than the
// configured idle timeout, with the same teardown path the admin's
// end-game action uses.
type Reaper struct {
	store   *RoomStore
	game    *GameService
	timeout time.Duration
	logger  *zap.Logger
	cron    *cron.Cron
}

func NewReaper(store *RoomStore, game *GameService, timeout time.Duration, logger *zap.Logger) *Reaper {
	return &Reaper{
		store:   store,
		game:    game,
		timeout: timeout,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules a sweep every minute. A zero or negative timeout
// disables the reaper.
func (r *Reaper) Start() {
	if r.timeout <= 0 {
		r.logger.Info("idle room reaper disabled")
		return
	}

	r.cron.AddFunc("* * * * *", r.Sweep)
	r.cron.Start()
	r.logger.Info("idle room reaper started", zap.Duration("timeout", r.timeout))
}

func (r *Reaper) Stop() {
	r.cron.Stop()
}

// Sweep expires every room whose last activity is older than the
// timeout.
func (r *Reaper) Sweep() {
	cutoff := time.Now().Add(-r.timeout)

	for _, code := range r.store.Codes() {
		room, ok := r.store.Get(code)
		if !ok {
			continue
		}

		room.RLock()
		idle := room.LastActive.Before(cutoff)
		room.RUnlock()

		if !idle {
			continue
		}
		if err := r.game.ExpireRoom(code); err != nil {
			continue
		}
		r.logger.Info("idle room expired", zap.String("room", code))
	}
}
