package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hongminglow/forum-be/internal/auth"
	"github.com/hongminglow/forum-be/internal/http/respond"
	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/models/dto"
	"github.com/hongminglow/forum-be/internal/storage"
)

// PostListLimit caps GET /posts.
const PostListLimit = 50

// PostsHandler lists posts and lets signed-in users create them.
type PostsHandler struct {
	posts  storage.PostStore
	logger *slog.Logger
}

// NewPostsHandler constructs the handler.
func NewPostsHandler(posts storage.PostStore, logger *slog.Logger) *PostsHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PostsHandler{posts: posts, logger: logger}
}

// Register attaches post routes to the mux.
func (h *PostsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/posts", h.handle)
}

func (h *PostsHandler) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *PostsHandler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context(), PostListLimit)
	if err != nil {
		logging.LogError(h.logger, "list posts failed", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", posts)
}

func (h *PostsHandler) create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity.IsAnonymous() {
		respond.Error(w, http.StatusUnauthorized, "You must be logged in to post")
		return
	}

	var req dto.CreatePostRequest
	err := decodeBody(w, r, &req, func(form url.Values) {
		req.Title = form.Get("title")
		req.Body = form.Get("body")
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	title, body := strings.TrimSpace(req.Title), strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		respond.Error(w, http.StatusBadRequest, "title and body are required")
		return
	}

	post, err := h.posts.CreatePost(r.Context(), identity.ID, title, body)
	if err != nil {
		logging.LogError(h.logger, "create post failed", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	respond.JSON(w, http.StatusCreated, "Post created", post)
}
