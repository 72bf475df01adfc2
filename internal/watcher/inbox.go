package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/indexer"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// SkillAdder adds skill records to the index.
type SkillAdder interface {
	AddSkills(ctx context.Context, records []models.SkillRecord) ([]int, error)
}

// SubmissionHandler returns a Handler that reads a JSON submission event from
// the file and adds its skills. Unreadable files and persistence failures are
// retried; malformed or invalid submissions are rejected.
func SubmissionHandler(adder SkillAdder, logger *zap.Logger) Handler {
	logger = utils.OrNop(logger)
	return func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRetry, err)
		}
		ev, err := models.DecodeSubmission(data)
		if err != nil {
			return err
		}
		ids, err := adder.AddSkills(ctx, ev.Records())
		if err != nil {
			if errors.Is(err, indexer.ErrPersistence) {
				return fmt.Errorf("%w: %w", ErrRetry, err)
			}
			return err
		}
		logger.Info("inbox submission ingested",
			zap.String("path", path),
			zap.Any("user_id", ev.UserID),
			zap.Ints("ids", ids))
		return nil
	}
}
