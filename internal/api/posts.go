/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/friendsincode/press_queue/internal/models"
)

// postCreateRequest is the request body for creating a draft post.
type postCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
}

// handlePostsCreate creates a new draft post.
func (a *API) handlePostsCreate(w http.ResponseWriter, r *http.Request) {
	var req postCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title_required")
		return
	}

	post := &models.Post{
		ID:      uuid.NewString(),
		Status:  models.PostStatusDraft,
		Title:   req.Title,
		Content: req.Content,
		Excerpt: req.Excerpt,
	}
	if err := a.posts.Create(r.Context(), post); err != nil {
		a.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// handlePostsGet returns a single post.
func (a *API) handlePostsGet(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.Get(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handlePostsList returns queued posts ordered by publish time. Drafts
// are created and managed elsewhere; this surface is about the queue.
func (a *API) handlePostsList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListUpcoming(r.Context())
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}
