package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionDeadlineKey returns the cache key for a session's wall-clock deadline.
// The value is the Unix timestamp after which progress saves must expire the
// session. TTL on the key is the time limit plus the reclamation buffer.
func (r *CacheKeyStruct) SessionDeadlineKey(userID, sessionID string) string {
	return fmt.Sprintf("user:%s:session:%s:deadline", userID, sessionID)
}

// RateLimitKey returns the rate-limit bucket key for a client IP.
func (r *CacheKeyStruct) RateLimitKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s", ip)
}

// ExamEventsChannel returns the Redis PubSub channel that mirrors exam
// lifecycle events for the live monitor stream.
func (r *CacheKeyStruct) ExamEventsChannel() string {
	return "events:exams"
}

var CacheKey = NewCacheKeyStruct()
