package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs failures instead
// of surfacing them; stale cache entries expire on TTL anyway.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys with logging.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateQuestionBank drops cached bank reads for one teacher's
// subject after a bulk insert or question edit.
func InvalidateQuestionBank(ctx context.Context, cm *CacheManager, schoolID, creatorID, subject string) {
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("bank:%s:%s:%s*", schoolID, creatorID, subject))
	SafeInvalidatePattern(ctx, cm.Question, "list:*")
}

// InvalidateExam drops cached exam reads and its summary after
// attempts or exam rows change.
func InvalidateExam(ctx context.Context, cm *CacheManager, examID uint) {
	SafeDelete(ctx, cm.Exam,
		fmt.Sprintf("id:%d", examID),
		fmt.Sprintf("questions:%d", examID))
	SafeInvalidatePattern(ctx, cm.Summary, fmt.Sprintf("exam:%d*", examID))
}

// InvalidateGrade drops a student's cached grade for one subject and
// term.
func InvalidateGrade(ctx context.Context, cm *CacheManager, schoolID, studentID, subject, term string) {
	SafeDelete(ctx, cm.Grade, fmt.Sprintf("%s:%s:%s:%s", schoolID, studentID, subject, term))
}
