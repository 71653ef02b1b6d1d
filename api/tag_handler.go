package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/models"
)

type tagHandler struct {
	responder Responder
	logger    zerolog.Logger
	tagRepo   *database.TagRepo
}

func newTagHandler(base handlerBase, tagRepo *database.TagRepo) tagHandler {
	responder, logger := base.build("tagHandler")
	return tagHandler{
		responder: responder,
		logger:    logger,
		tagRepo:   tagRepo,
	}
}

func (h tagHandler) getTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find tags", "tags", err))
			return
		}
		if tags == nil {
			tags = []*models.Tag{}
		}
		h.responder.WriteJSON(w, tags)
	}
}

func (h tagHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TagRequest
		if err := decodeJSON(r, &req, "tag"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		name, err := requireText("name", req.Name, 50)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag, err := h.tagRepo.Add(r.Context(), name)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create tag", "tag", err))
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, tag)
	}
}

func (h tagHandler) deleteTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.tagRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete tag", "tag", err))
			return
		}
		h.responder.WriteJSON(w, MessageResponse{Message: "tag deleted"})
	}
}
