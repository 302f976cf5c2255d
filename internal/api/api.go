/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP surface: slot availability, queueing,
// slot template management and post management.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/press_queue/internal/queue"
	"github.com/friendsincode/press_queue/internal/slots"
	"github.com/friendsincode/press_queue/internal/store"
)

// API exposes HTTP handlers.
type API struct {
	queue  *queue.Service
	slots  store.SlotStore
	posts  store.PostStore
	logger zerolog.Logger
}

// New creates the API handler set.
func New(queueSvc *queue.Service, slotStore store.SlotStore, postStore store.PostStore, logger zerolog.Logger) *API {
	return &API{
		queue:  queueSvc,
		slots:  slotStore,
		posts:  postStore,
		logger: logger,
	}
}

// AddRoutes registers every API route on the router.
func (a *API) AddRoutes(r chi.Router) {
	r.Get("/slots", a.handleSlotsAvailable)

	r.Route("/slot-templates", func(r chi.Router) {
		r.Get("/", a.handleSlotTemplatesList)
		r.Post("/", a.handleSlotTemplatesCreate)
		r.Delete("/{slotID}", a.handleSlotTemplatesDelete)
	})

	r.Post("/queue", a.handleQueuePost)
	r.Get("/queue/upcoming", a.handleQueueUpcoming)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", a.handlePostsList)
		r.Post("/", a.handlePostsCreate)
		r.Get("/{postID}", a.handlePostsGet)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeStoreError maps the scheduling error taxonomy onto HTTP statuses.
func (a *API) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "post_not_found")
	case errors.Is(err, store.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found")
	case errors.Is(err, store.ErrNoSlots):
		writeError(w, http.StatusNotFound, "no_slots_available")
	case errors.Is(err, store.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken")
	case errors.Is(err, slots.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "invalid_slot")
	default:
		a.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "db_error")
	}
}
