package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key pinning a student's login JTI
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// AttemptAnswersKey returns the cache key for an attempt's autosaved answers
func (r *CacheKeyStruct) AttemptAnswersKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:answers", attemptID)
}

// StudentActiveAttemptKey returns the cache key for a student's live attempt
func (r *CacheKeyStruct) StudentActiveAttemptKey(studentID int) string {
	return fmt.Sprintf("student:%d:active_attempt", studentID)
}

// AssistantInflightKey guards a single in-flight explanation request per
// attempt+question so repeated taps cannot race into the same display slot
func (r *CacheKeyStruct) AssistantInflightKey(attemptID string, questionID int) string {
	return fmt.Sprintf("assistant:attempt:%s:question:%d:inflight", attemptID, questionID)
}

// ChatInflightKey guards a single in-flight chat completion per student
func (r *CacheKeyStruct) ChatInflightKey(studentID int) string {
	return fmt.Sprintf("assistant:chat:%d:inflight", studentID)
}

var CacheKey = NewCacheKeyStruct()
