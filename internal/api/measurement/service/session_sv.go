package measurementService

import (
	"context"
	"sync"
	"time"

	"ProjectVTO/internal/api/measurement"
	"ProjectVTO/internal/entity"
	contextPkg "ProjectVTO/pkg/context"
	"ProjectVTO/pkg/vto"

	"github.com/sirupsen/logrus"
)

type session struct {
	mu            sync.Mutex
	id            string
	createdAt     time.Time
	lastSeen      time.Time
	lastPublished time.Time
	processor     *vto.Processor
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	limit    int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func newSessionRegistry(limit int, now func() time.Time) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		limit:    limit,
		now:      now,
		stop:     make(chan struct{}),
	}
}

func (r *sessionRegistry) add(sess *session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.sessions) >= r.limit {
		return measurement.ErrTooManySessionsActive
	}
	r.sessions[sess.id] = sess
	return nil
}

func (r *sessionRegistry) get(id string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	return sess, ok
}

func (r *sessionRegistry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *sessionRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictIdle drops sessions not used for longer than idle and returns their ids.
func (r *sessionRegistry) evictIdle(idle time.Duration) []string {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, sess := range r.sessions {
		sess.mu.Lock()
		expired := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()

		if expired {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

func (r *sessionRegistry) startJanitor(idle time.Duration, log *logrus.Logger) {
	if idle <= 0 {
		return
	}

	interval := idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				if evicted := r.evictIdle(idle); len(evicted) > 0 {
					log.WithFields(logrus.Fields{
						"evicted": len(evicted),
						"active":  r.count(),
					}).Info("Evicted idle measurement sessions")
				}
			}
		}
	}()
}

func (r *sessionRegistry) stopJanitor() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

func (s *measurementService) CreateSession(ctx context.Context) (entity.MeasurementSession, error) {
	requestID := contextPkg.GetRequestID(ctx)
	now := s.now()

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.MeasurementSession{}, measurement.ErrInternalServerError
	}

	sess := &session{
		id:        id,
		createdAt: now,
		lastSeen:  now,
		processor: vto.NewProcessor(s.cfg.VTO, vto.WithLogger(s.log.WithField("session_id", id))),
	}

	if err := s.sessions.add(sess); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"active":     s.sessions.count(),
		}).Warn("Session limit reached")
		return entity.MeasurementSession{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": id,
	}).Info("Measurement session created")

	return entity.MeasurementSession{
		ID:        id,
		CreatedAt: now,
		LastSeen:  now,
	}, nil
}

func (s *measurementService) CloseSession(ctx context.Context, sessionID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	if !s.sessions.remove(sessionID) {
		return measurement.ErrSessionNotFound
	}

	if s.redis != nil {
		if err := s.redis.DeleteSnapshot(ctx, sessionID); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Failed to delete session snapshot")
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}).Info("Measurement session closed")

	return nil
}

func (s *measurementService) lookupSession(sessionID string) (*session, error) {
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return nil, measurement.ErrSessionNotFound
	}
	return sess, nil
}
