package core

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"portfolio.dev/portfolio-api/internal/store"
)

// Sweeper deletes stale conversations in the background. Triggers that
// arrive while a sweep is running join it instead of starting another.
type Sweeper struct {
	conversations *store.ConversationStore
	maxAgeDays    int
	group         singleflight.Group
	wg            sync.WaitGroup
	log           *logrus.Entry
}

func NewSweeper(conversations *store.ConversationStore, maxAgeDays int) *Sweeper {
	if maxAgeDays < 1 {
		maxAgeDays = store.DefaultConversationMaxAgeDays
	}
	return &Sweeper{
		conversations: conversations,
		maxAgeDays:    maxAgeDays,
		log:           logrus.WithField("component", "sweeper"),
	}
}

// Trigger starts a sweep without waiting for it. Failures are logged only.
func (s *Sweeper) Trigger() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err, shared := s.group.Do("cleanup", func() (any, error) {
			return s.conversations.Cleanup(s.maxAgeDays)
		})
		if err != nil && !shared {
			s.log.Debugf("Background cleanup failed: %v", err)
		}
	}()
}

// Wait blocks until every triggered sweep has finished.
func (s *Sweeper) Wait() {
	s.wg.Wait()
}
