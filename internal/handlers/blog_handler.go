// File: internal/handlers/blog_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkwell-blog/go-inkwell/internal/services/blog"
)

type BlogHandler struct {
	BlogService *blog.Service
}

func NewBlogHandler(service *blog.Service) *BlogHandler {
	return &BlogHandler{BlogService: service}
}

// CreatePost handles dashboard post creation. The slug comes back in the
// response; clients never choose it.
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req blog.PostInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.BlogService.CreatePost(r.Context(), userID, req)
	if err != nil {
		writeBlogError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req blog.PostInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.BlogService.UpdatePost(r.Context(), userID, postID, req)
	if err != nil {
		writeBlogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.BlogService.DeletePost(r.Context(), userID, postID); err != nil {
		writeBlogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPost loads the author's own post for the edit form.
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	found, err := h.BlogService.GetPostByID(r.Context(), userID, postID)
	if err != nil {
		writeBlogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// ListMyPosts lists the author's own posts for the dashboard.
func (h *BlogHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)
	posts, total, err := h.BlogService.ListAuthorPosts(r.Context(), userID, page, limit)
	if err != nil {
		writeError(w, "Could not retrieve posts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"total": total,
	})
}

// ListPublicPosts is the public browse endpoint, optionally filtered by
// category.
func (h *BlogHandler) ListPublicPosts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)
	category := r.URL.Query().Get("category")

	posts, total, err := h.BlogService.ListPublicPosts(r.Context(), category, page, limit)
	if err != nil {
		writeError(w, "Could not retrieve posts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"total": total,
	})
}

// GetPublicPost serves the public detail view by slug, with the markdown
// body rendered to HTML.
func (h *BlogHandler) GetPublicPost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if slug == "" {
		writeError(w, "Invalid slug", http.StatusBadRequest)
		return
	}

	found, html, err := h.BlogService.GetPostBySlug(r.Context(), slug)
	if err != nil {
		writeBlogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":         found,
		"content_html": html,
	})
}

// FeaturedPosts serves the home page strip of latest posts.
func (h *BlogHandler) FeaturedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.BlogService.FeaturedPosts(r.Context())
	if err != nil {
		writeError(w, "Could not retrieve posts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func writeBlogError(w http.ResponseWriter, err error) {
	var blogErr *blog.BlogError
	if errors.As(err, &blogErr) {
		switch blogErr.Type {
		case blog.ErrTypeValidation:
			writeError(w, blogErr.Message, http.StatusBadRequest)
			return
		case blog.ErrTypeNotFound:
			writeError(w, blogErr.Message, http.StatusNotFound)
			return
		case blog.ErrTypeUnauthorized:
			writeError(w, blogErr.Message, http.StatusForbidden)
			return
		}
	}
	writeError(w, "Could not process request", http.StatusInternalServerError)
}
