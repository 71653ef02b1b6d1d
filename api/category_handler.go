package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/markoai/marko-backend/database"
	"github.com/markoai/marko-backend/errs"
	"github.com/markoai/marko-backend/models"
	"github.com/markoai/marko-backend/services"
)

type categoryHandler struct {
	responder    Responder
	logger       zerolog.Logger
	categoryRepo *database.CategoryRepo
}

func newCategoryHandler(base handlerBase, categoryRepo *database.CategoryRepo) categoryHandler {
	responder, logger := base.build("categoryHandler")
	return categoryHandler{
		responder:    responder,
		logger:       logger,
		categoryRepo: categoryRepo,
	}
}

func (h categoryHandler) getCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categoryRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find categories", "categories", err))
			return
		}
		if categories == nil {
			categories = []*models.Category{}
		}
		h.responder.WriteJSON(w, categories)
	}
}

func (h categoryHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CategoryRequest
		if err := decodeJSON(r, &req, "category"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Name == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		name, err := requireText("name", *req.Name, 80)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category := &models.Category{Name: name, Slug: categorySlug(req.Slug, name)}
		if req.Description != nil {
			category.Description = strings.TrimSpace(*req.Description)
		}

		if err := h.categoryRepo.Add(r.Context(), category); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create category", "category", err))
			return
		}

		h.logger.Info().Uint("categoryId", category.ID).Str("slug", category.Slug).Msg("Category created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, category)
	}
}

func (h categoryHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req CategoryRequest
		if err := decodeJSON(r, &req, "category"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categoryRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find category", "category", err))
			return
		}

		if req.Name != nil {
			name, err := requireText("name", *req.Name, 80)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			category.Name = name
		}
		if req.Slug != nil {
			category.Slug = categorySlug(req.Slug, category.Name)
		}
		if req.Description != nil {
			category.Description = strings.TrimSpace(*req.Description)
		}

		if err := h.categoryRepo.Update(r.Context(), category); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update category", "category", err))
			return
		}
		h.responder.WriteJSON(w, category)
	}
}

// deleteCategory removes the category; its posts become uncategorized.
func (h categoryHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.categoryRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete category", "category", err))
			return
		}
		h.logger.Info().Uint("categoryId", id).Msg("Category deleted")
		h.responder.WriteJSON(w, MessageResponse{Message: "category deleted"})
	}
}

func categorySlug(requested *string, name string) string {
	slug := ""
	if requested != nil {
		slug = services.Slugify(*requested)
	}
	if slug == "" {
		slug = services.Slugify(name)
	}
	if slug == "" {
		slug = "category"
	}
	return slug
}
