package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeRefreshDaily asks the worker to recompute the sales summary for one day.
const TypeRefreshDaily = "reports:refresh_daily"

type refreshDailyPayload struct {
	Day string `json:"day"`
}

// NewRefreshDailyTask builds a refresh task for the day containing ts.
func NewRefreshDailyTask(ts time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(refreshDailyPayload{Day: ts.UTC().Format("2006-01-02")})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRefreshDaily, payload, asynq.MaxRetry(3)), nil
}

// HandleRefreshDaily processes a refresh task.
func (s *Service) HandleRefreshDaily(ctx context.Context, t *asynq.Task) error {
	var payload refreshDailyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode refresh payload: %w", err)
	}
	day, err := time.Parse("2006-01-02", payload.Day)
	if err != nil {
		return fmt.Errorf("parse refresh day: %w", err)
	}
	return s.RefreshDay(ctx, day)
}
