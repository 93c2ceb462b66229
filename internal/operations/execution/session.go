package execution

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/repositories"
)

// ResolveSession resolves the trading session an order belongs to. An
// explicit id must exist; otherwise today's active PUBLIC session is found
// or created. Must run inside the caller's transaction so the order row and
// a freshly created session commit together.
//
// The create path is insert-ignore on the (session_day, mode) unique index
// followed by a re-read, so concurrent first-orders-of-the-day converge on
// exactly one session row.
func ResolveSession(ctx context.Context, r repositories.Repos, explicitID uint, now time.Time) (uint, error) {
	if explicitID != 0 {
		session, err := r.Sessions.FindByID(ctx, explicitID)
		if err != nil {
			return 0, err
		}
		if session == nil {
			return 0, &NotFoundError{Resource: "market session", Key: strconv.FormatUint(uint64(explicitID), 10)}
		}
		return session.ID, nil
	}

	day := now.Format(models.SessionDayFormat)
	session, err := r.Sessions.FindActivePublic(ctx, day)
	if err != nil {
		return 0, err
	}
	if session != nil {
		return session.ID, nil
	}

	created := &models.MarketSession{
		SessionDate:     now,
		SessionDay:      day,
		Mode:            models.SessionModePublic,
		StartTime:       now,
		CurrentTime:     now,
		IsActive:        true,
		SimulationSpeed: 1,
	}
	if err := r.Sessions.Create(ctx, created); err != nil {
		return 0, err
	}
	if created.ID != 0 {
		return created.ID, nil
	}

	// insert was swallowed by the unique index: a concurrent resolver won
	session, err = r.Sessions.FindActivePublic(ctx, day)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, fmt.Errorf("session for %s exists but is not active", day)
	}
	return session.ID, nil
}
