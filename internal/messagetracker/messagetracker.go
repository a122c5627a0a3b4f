package messagetracker

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// MessageTracker watches how long ago a streaming feed last delivered a
// message, so a quietly dead connection is noticed and cached data from it
// is not trusted.
type MessageTracker struct {
	lastMessageTime atomic.Value
	feedName        string
	staleThreshold  time.Duration
}

func New(feedName string, staleThreshold time.Duration) *MessageTracker {
	mt := &MessageTracker{
		feedName:       feedName,
		staleThreshold: staleThreshold,
	}
	mt.lastMessageTime.Store(time.Now())
	return mt
}

func (mt *MessageTracker) RecordMessage() {
	mt.lastMessageTime.Store(time.Now())
}

func (mt *MessageTracker) Stale() bool {
	lastTime := mt.lastMessageTime.Load().(time.Time)
	return time.Since(lastTime) > mt.staleThreshold
}

func (mt *MessageTracker) CheckStaleConnection() {
	lastTime := mt.lastMessageTime.Load().(time.Time)
	if time.Since(lastTime) > mt.staleThreshold {
		log.Warn().
			Str("feed", mt.feedName).
			Dur("timeSinceLastMessage", time.Since(lastTime)).
			Msg("Connection may be stale")
	} else {
		log.Debug().
			Str("feed", mt.feedName).
			Dur("timeSinceLastMessage", time.Since(lastTime)).
			Msg("Connection does not appear stale")
	}
}
