package cache

import (
	"context"
	"log/slog"
	"time"
)

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeSet stores a value, logging instead of failing
func SafeSet(ctx context.Context, helper *CacheHelper, key string, value interface{}, ttl time.Duration) {
	if err := helper.Set(ctx, key, value, ttl); err != nil {
		slog.ErrorContext(ctx, "Failed to set cache key",
			"error", err,
			"key", key)
	}
}

// Published catalog keys
const (
	PublishedListKey = "list"
)

func PublishedAssessmentKey(id string) string {
	return "assessment:" + id
}

func PublishedQuestionsKey(assessmentID string) string {
	return "questions:" + assessmentID
}

// InvalidatePublishedAssessment drops every published-catalog entry touching the assessment
func InvalidatePublishedAssessment(ctx context.Context, cm *CacheManager, assessmentID string) {
	SafeDelete(ctx, cm.Published,
		PublishedListKey,
		PublishedAssessmentKey(assessmentID),
		PublishedQuestionsKey(assessmentID))
}
