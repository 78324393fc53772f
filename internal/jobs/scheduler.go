package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"zerobin/client/internal/session"
)

// Scheduler runs the gateway's background upkeep: a periodic re-read of the
// authenticated user's profile, and a sweep of stale sentiment cache keys
// when redis is in play.
type Scheduler struct {
	cron     *cron.Cron
	sessions *session.Manager
	cache    *redis.Client
	log      zerolog.Logger
}

func NewScheduler(sessions *session.Manager, cache *redis.Client, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		cache:    cache,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 */10 * * * *", s.refreshProfile); err != nil {
		return err
	}
	if s.cache != nil {
		if _, err := s.cron.AddFunc("0 0 * * * *", s.pruneSentimentCache); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to a bound.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) refreshProfile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.sessions.RefreshUser(ctx)
}

// pruneSentimentCache evicts sentiment entries past their TTL grace. The
// keys already expire on their own; this sweep only reclaims entries left
// behind when the TTL config shrinks between runs.
func (s *Scheduler) pruneSentimentCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.cache.Scan(ctx, cursor, "zerobin:sentiment:*", 100).Result()
		if err != nil {
			s.log.Error().Err(err).Msg("sentiment cache scan failed")
			return
		}
		for _, key := range keys {
			ttl, err := s.cache.TTL(ctx, key).Result()
			if err != nil {
				continue
			}
			if ttl < 0 {
				if err := s.cache.Del(ctx, key).Err(); err == nil {
					removed++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("sentiment cache pruned")
	}
}
