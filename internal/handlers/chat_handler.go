// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/inkwell-blog/go-inkwell/internal/services/chat"
	"github.com/inkwell-blog/go-inkwell/internal/services/chatstream"
)

type ChatHandler struct {
	ChatService *chat.Service
}

func NewChatHandler(cs *chat.Service) *ChatHandler {
	return &ChatHandler{ChatService: cs}
}

// CreateChat starts a new conversation.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title string `json:"title"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ChatService.CreateChat(r.Context(), userID, req.Title, req.Model)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUserChats handles the request to retrieve all chat histories for a user.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.ChatService.GetUserChats(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// GetChatMessages handles the request to retrieve all messages for a specific chat.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	messages, err := h.ChatService.GetChatMessages(r.Context(), userID, chatID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// RenameChat updates a conversation title.
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.UpdateChatTitle(r.Context(), userID, chatID, req.Title); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), userID, chatID); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamChatMessage runs one assistant round, flushing each reply chunk to
// the client as plain text the moment it arrives.
func (h *ChatHandler) StreamChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	wrote := false
	_, err = h.ChatService.SendMessage(r.Context(), userID, chatID, req.Message, func(delta string) {
		if _, werr := w.Write([]byte(delta)); werr != nil {
			log.Printf("[ChatHandler] client write failed: %v", werr)
			return
		}
		wrote = true
		flusher.Flush()
	})
	if err != nil {
		// Headers are gone once the first chunk is out; surface the
		// failure in-band in that case.
		log.Printf("[ChatHandler] stream round failed: %v", err)
		if !wrote {
			// Status already written; emit the error as the body.
			w.Write([]byte("Error: " + streamErrorMessage(err)))
		} else {
			w.Write([]byte("\n\n[stream interrupted]"))
		}
		flusher.Flush()
		return
	}
}

func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, chatstream.ErrRoundInFlight):
		return "a reply is already being generated for this chat"
	case errors.Is(err, chatstream.ErrEmptyMessage):
		return "message cannot be empty"
	default:
		return "could not generate a reply"
	}
}

func writeChatError(w http.ResponseWriter, err error) {
	var chatErr *chat.ChatError
	if errors.As(err, &chatErr) {
		switch chatErr.Type {
		case chat.ErrTypeValidation:
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		case chat.ErrTypeNotFound:
			writeError(w, chatErr.Message, http.StatusNotFound)
			return
		case chat.ErrTypeUnauthorized:
			writeError(w, chatErr.Message, http.StatusForbidden)
			return
		}
	}
	writeError(w, "Could not process request", http.StatusInternalServerError)
}
