package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateProgressCache drops cached pipeline state for one user after any
// progress mutation
func InvalidateProgressCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.Progress, fmt.Sprintf("user:%s", userID))
	SafeInvalidatePattern(ctx, cm.Stats, "report:*")
}

// InvalidateExpertCache invalidates expert listings after admin CRUD
func InvalidateExpertCache(ctx context.Context, cm *CacheManager, expertID uint) {
	SafeDelete(ctx, cm.Expert, fmt.Sprintf("id:%d", expertID))
	SafeInvalidatePattern(ctx, cm.Expert, "list:*")
}
