/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// queueRequest asks for a post to be scheduled. SlotID is optional;
// when empty the post takes the nearest free occurrence of any slot.
type queueRequest struct {
	PostID string `json:"post_id"`
	SlotID string `json:"slot_id"`
}

type queueResponse struct {
	PostID      string    `json:"post_id"`
	SlotID      string    `json:"slot_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// handleQueuePost assigns a post to a free publication occurrence.
func (a *API) handleQueuePost(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "post_id_required")
		return
	}

	at, err := a.queue.QueuePost(r.Context(), req.PostID, req.SlotID)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queueResponse{
		PostID:      req.PostID,
		SlotID:      req.SlotID,
		ScheduledAt: at,
	})
}

// handleQueueUpcoming lists queued posts ordered by publish time.
func (a *API) handleQueueUpcoming(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListUpcoming(r.Context())
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}
