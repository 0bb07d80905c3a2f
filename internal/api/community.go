package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/go-chi/chi/v5"
)

type reactResponse struct {
	Success  bool `json:"success"`
	NewCount int  `json:"new_count"`
}

func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := community.DefaultFeedLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeServiceError(w, r, &community.ValidationError{
				Fields: map[string]string{"limit": "limit must be an integer"},
			}, "")
			return
		}
		limit = n
	}

	posts, err := h.community.GetFeed(r.Context(), q.Get("category"), limit)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var in community.PostInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	post, err := h.community.CreatePost(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	post, err := h.community.FindPost(r.Context(), postID)
	if err != nil {
		h.writeServiceError(w, r, err, notFound(postID))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	var in community.CommentInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	comment, err := h.community.AddComment(r.Context(), postID, in)
	if err != nil {
		h.writeServiceError(w, r, err, notFound(postID))
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) react(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	reactionType := r.URL.Query().Get("type")

	count, err := h.community.React(r.Context(), postID, reactionType)
	if err != nil {
		h.writeServiceError(w, r, err, notFound(postID))
		return
	}
	writeJSON(w, http.StatusOK, reactResponse{Success: true, NewCount: count})
}

func (h *Handler) trending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tags": h.community.TrendingTags()})
}

func notFound(postID string) string {
	return fmt.Sprintf("Post with id %s not found", postID)
}
