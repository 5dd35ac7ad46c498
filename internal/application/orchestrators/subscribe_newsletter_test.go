package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"church/internal/domain/subscriber"
)

func TestExecuteSubscribe(t *testing.T) {
	store := newMockDocStore()
	ctx := context.Background()

	res, err := ExecuteSubscribe(ctx, SubscribeInput{Email: " Ion@Mail.RO ", Lang: "nl"}, SubscribeDeps{Store: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("ExecuteSubscribe: %v", err)
	}
	if res.ID != "ion@mail.ro" || res.Existing {
		t.Fatalf("result = %+v", res)
	}
	doc := store.docs["newsletter/ion@mail.ro"]
	if doc["lang"] != "nl" || doc["subscribedAt"] != "2025-12-01T14:30:45Z" {
		t.Errorf("doc = %v", doc)
	}

	later := func() time.Time { return testNow.Add(24 * time.Hour) }
	res, err = ExecuteSubscribe(ctx, SubscribeInput{Email: "ion@mail.ro", Lang: "xx"}, SubscribeDeps{Store: store, Now: later})
	if err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	if !res.Existing {
		t.Error("Existing = false on repeat")
	}
	doc = store.docs["newsletter/ion@mail.ro"]
	if doc["subscribedAt"] != "2025-12-01T14:30:45Z" {
		t.Errorf("subscribedAt moved: %v", doc["subscribedAt"])
	}
	if doc["lang"] != "ro" {
		t.Errorf("unknown lang should fall back to ro, got %v", doc["lang"])
	}
}

func TestExecuteSubscribe_InvalidEmail(t *testing.T) {
	store := newMockDocStore()
	_, err := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "a@b"}, SubscribeDeps{Store: store})
	if !errors.Is(err, subscriber.ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
	if store.sets != 0 {
		t.Error("invalid email written")
	}
}

func TestExecuteSubscribe_StoreError(t *testing.T) {
	store := newMockDocStore()
	store.failSet = errors.New("offline")
	if _, err := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "a@b.be"}, SubscribeDeps{Store: store}); err == nil {
		t.Fatal("expected store error")
	}
}
