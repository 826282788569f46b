package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/repositories"
)

// Percentage returns round(100*part/total), or 0 when total is not positive
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// recomputeSessionScore stores the aggregate over the session's surviving responses.
// The caller must hold the session row lock inside tx.
func recomputeSessionScore(ctx context.Context, tx repositories.Repository, sessionID string) (int, error) {
	totals, err := tx.Response().SumScores(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	score := Percentage(totals.Awarded, totals.Possible)
	if err := tx.Session().UpdateScore(ctx, sessionID, score, models.SessionEvaluated); err != nil {
		return 0, fmt.Errorf("failed to store session score: %w", err)
	}
	return score, nil
}

// gradeMCQ compares an answer to the key ignoring surrounding whitespace and case
func gradeMCQ(answer string, question *models.Question) (bool, int) {
	if question.CorrectAnswer == nil {
		return false, 0
	}
	if strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(*question.CorrectAnswer)) {
		return true, question.Marks
	}
	return false, 0
}
