package orchestrators

import (
	"context"
	"errors"
	"testing"

	"church/internal/domain/visit"
)

func TestExecuteTrackVisit_OncePerDay(t *testing.T) {
	store := newMockDocStore()
	loc := &mockLocator{loc: visit.Location{Country: "Belgium", City: "Brussels"}}
	deps := TrackVisitDeps{Store: store, Locator: loc, Now: fixedNow}
	ctx := context.Background()

	res, err := ExecuteTrackVisit(ctx, TrackVisitInput{VisitorID: "v1", IP: "1.2.3.4", Path: "/"}, deps)
	if err != nil {
		t.Fatalf("ExecuteTrackVisit: %v", err)
	}
	if !res.Tracked || res.Day != "2025-12-01" {
		t.Fatalf("result = %+v", res)
	}
	doc := store.docs["visits/2025-12-01_v1"]
	if doc["country"] != "Belgium" || doc["city"] != "Brussels" {
		t.Errorf("doc = %v", doc)
	}

	res, err = ExecuteTrackVisit(ctx, TrackVisitInput{VisitorID: "v1", Path: "/events"}, deps)
	if err != nil {
		t.Fatalf("second visit: %v", err)
	}
	if res.Tracked || store.sets != 1 || loc.calls != 1 {
		t.Errorf("second visit tracked=%v sets=%d locates=%d", res.Tracked, store.sets, loc.calls)
	}
}

func TestExecuteTrackVisit_NoLocator(t *testing.T) {
	store := newMockDocStore()
	if _, err := ExecuteTrackVisit(context.Background(), TrackVisitInput{VisitorID: "v1"}, TrackVisitDeps{Store: store, Now: fixedNow}); err != nil {
		t.Fatalf("ExecuteTrackVisit: %v", err)
	}
	if got := store.docs["visits/2025-12-01_v1"]["country"]; got != visit.Unknown {
		t.Errorf("country = %v, want Unknown", got)
	}
}

func TestExecuteTrackVisit_Errors(t *testing.T) {
	store := newMockDocStore()
	if _, err := ExecuteTrackVisit(context.Background(), TrackVisitInput{}, TrackVisitDeps{Store: store}); !errors.Is(err, visit.ErrEmptyVisitor) {
		t.Errorf("empty visitor: err = %v", err)
	}
	store.failGet = errors.New("offline")
	if _, err := ExecuteTrackVisit(context.Background(), TrackVisitInput{VisitorID: "v"}, TrackVisitDeps{Store: store}); err == nil {
		t.Error("expected store error")
	}
}
