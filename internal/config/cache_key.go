package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// StudentGradesKey returns the cache key for a student's nested grade payload
func (r *CacheKeyStruct) StudentGradesKey(studentID int) string {
	return fmt.Sprintf("student:%d:grades", studentID)
}

// StudentGradesVersionKey returns the counter bumped whenever a student's transcript changes
func (r *CacheKeyStruct) StudentGradesVersionKey(studentID int) string {
	return fmt.Sprintf("student:%d:grades:version", studentID)
}

// StudentNotificationChannel returns the Redis PubSub channel for a student's notifications
func (r *CacheKeyStruct) StudentNotificationChannel(studentID int) string {
	return fmt.Sprintf("student:%d:notifications", studentID)
}

var CacheKey = NewCacheKeyStruct()
