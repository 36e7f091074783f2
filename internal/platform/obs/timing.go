package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// PlanIDKey carries the id of the planning run an operation belongs to.
const PlanIDKey ctxKey = "plan_id"

// WithPlanID returns a context whose timed operations log planID.
func WithPlanID(ctx context.Context, planID string) context.Context {
	return context.WithValue(ctx, PlanIDKey, planID)
}

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	planID, _ := ctx.Value(PlanIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("plan_id=%s op=%s dur=%dms err=%v", planID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("plan_id=%s op=%s dur=%dms", planID, name, dur.Milliseconds())
	}
}
