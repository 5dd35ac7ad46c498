package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"church/internal/adapters/storage/document"
	"church/internal/domain/visit"
)

// VisitsCollection holds one document per visitor per Brussels day.
const VisitsCollection = "visits"

// DocumentStoreForVisit defines the store interface needed by TrackVisit.
type DocumentStoreForVisit interface {
	Get(ctx context.Context, collection, id string) (document.Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error
}

// Locator resolves a coarse location. It never fails; unknown is a valid answer.
type Locator interface {
	Locate(ctx context.Context, ip string) visit.Location
}

// TrackVisitInput carries one page view.
type TrackVisitInput struct {
	VisitorID string
	IP        string
	Path      string
	Referrer  string
}

// TrackVisitResult reports whether a new visit was stored.
type TrackVisitResult struct {
	Day     string
	Tracked bool
}

// TrackVisitDeps holds dependencies for TrackVisit.
type TrackVisitDeps struct {
	Store   DocumentStoreForVisit
	Locator Locator
	Now     func() time.Time
}

// ExecuteTrackVisit stores the first visit of a visitor on the current Brussels day.
// PRE: input.VisitorID comes from the visitor cookie
// POST: visits/{day}_{visitor} exists
// INVARIANT: at most one visit document per visitor per day
func ExecuteTrackVisit(ctx context.Context, input TrackVisitInput, deps TrackVisitDeps) (TrackVisitResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	v := visit.New(input.VisitorID, input.Path, input.Referrer, now())
	if err := v.Validate(); err != nil {
		return TrackVisitResult{}, err
	}
	res := TrackVisitResult{Day: v.Day}

	_, exists, err := deps.Store.Get(ctx, VisitsCollection, v.DocumentID())
	if err != nil {
		return res, err
	}
	if exists {
		return res, nil
	}

	if deps.Locator != nil {
		v.Location = deps.Locator.Locate(ctx, input.IP)
	}

	fields := map[string]any{
		"visitorId": v.VisitorID,
		"day":       v.Day,
		"path":      v.Path,
		"referrer":  v.Referrer,
		"country":   v.Location.Country,
		"city":      v.Location.City,
		"createdAt": v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := deps.Store.Set(ctx, VisitsCollection, v.DocumentID(), fields, document.SetOptions{}); err != nil {
		return res, err
	}
	slog.Debug("visit_event", "event", "tracked", "day", v.Day, "country", v.Location.Country)
	res.Tracked = true
	return res, nil
}
