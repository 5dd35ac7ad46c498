package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"church/internal/adapters/storage/outbox"
	outboxDomain "church/internal/domain/outbox"
)

// outboxRow is one contact delivery as listed to admins. The payload is
// left out so message bodies are not echoed to the browser.
type outboxRow struct {
	ID            string    `json:"id"`
	ActionType    string    `json:"actionType"`
	Status        string    `json:"status"`
	Attempts      int       `json:"attempts"`
	MaxAttempts   int       `json:"maxAttempts"`
	LastError     string    `json:"lastError,omitempty"`
	ExternalID    string    `json:"externalId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastAttemptAt time.Time `json:"lastAttemptAt,omitempty"`
}

func toOutboxRow(e outboxDomain.Entry) outboxRow {
	return outboxRow{
		ID:            e.ID,
		ActionType:    e.ActionType,
		Status:        e.Status,
		Attempts:      e.Attempts,
		MaxAttempts:   e.MaxAttempts,
		LastError:     e.ErrorMessage,
		ExternalID:    e.ExternalID,
		CreatedAt:     e.CreatedAt,
		LastAttemptAt: e.LastAttemptedAt,
	}
}

// handleAdminOutbox handles GET /admin/outbox: recent contact deliveries, newest first.
// ?status=pending lists only entries still waiting for a retry.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	var entries []outboxDomain.Entry
	var err error
	if r.URL.Query().Get("status") == "pending" {
		entries, err = deps.Outbox.ListPending(ctx, limit)
	} else {
		entries, err = deps.Outbox.ListRecent(ctx, limit)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	rows := make([]outboxRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toOutboxRow(e))
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleAdminOutboxRetry handles POST /admin/outbox/{id}/retry
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	entry, err := deps.Delivery.ProcessSingle(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, outbox.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, outboxDomain.ErrTerminal):
		jsonError(w, http.StatusConflict, err.Error())
	case err != nil && entry.ID != "":
		// The attempt ran and failed; the entry carries the error and the next retry.
		writeJSON(w, http.StatusBadGateway, toOutboxRow(entry))
	case err != nil:
		internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, toOutboxRow(entry))
	}
}

// handleAdminOutboxAbandon handles POST /admin/outbox/{id}/abandon
func handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	err := deps.Delivery.AbandonEntry(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, outbox.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case err != nil:
		internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": outboxDomain.StatusAbandoned})
	}
}
