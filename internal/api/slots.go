/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// defaultAvailableLimit caps the availability listing when the caller
// does not ask for a specific count.
const defaultAvailableLimit = 10

// availableSlot is one free occurrence offered to a post.
type availableSlot struct {
	SlotID    string    `json:"slot_id"`
	PublishAt time.Time `json:"publish_at"`
	Label     string    `json:"label"`
}

// slotTemplateCreateRequest is the request body for defining a slot.
type slotTemplateCreateRequest struct {
	DayOfWeek int    `json:"day_of_week"` // ISO: 1=Monday .. 7=Sunday
	TimeOfDay string `json:"time_of_day"` // HH:MM
}

// handleSlotsAvailable returns the next free occurrences, nearest first.
func (a *API) handleSlotsAvailable(w http.ResponseWriter, r *http.Request) {
	limit := defaultAvailableLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}

	occurrences, err := a.queue.Available(r.Context(), limit)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}

	out := make([]availableSlot, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, availableSlot{
			SlotID:    occ.SlotID,
			PublishAt: occ.At,
			Label:     occ.Label(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

// handleSlotTemplatesList returns every defined slot.
func (a *API) handleSlotTemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := a.slots.List(r.Context())
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot_templates": templates})
}

// handleSlotTemplatesCreate defines a new weekly slot.
func (a *API) handleSlotTemplatesCreate(w http.ResponseWriter, r *http.Request) {
	var req slotTemplateCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	slot, err := a.slots.Add(r.Context(), req.DayOfWeek, req.TimeOfDay)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

// handleSlotTemplatesDelete removes a slot definition. Posts already
// queued on one of its occurrences keep their schedule.
func (a *API) handleSlotTemplatesDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "slotID")
	if err := a.slots.Delete(r.Context(), id); err != nil {
		a.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
