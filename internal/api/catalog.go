package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"staysee-store/internal/stories/collections"
	"staysee-store/internal/stories/products"
	"staysee-store/internal/stories/projects"
)

// isArray reports whether a JSON body is an array. PUT with an array
// reorders a whole collection.
func isArray(body []byte) bool {
	return jx.DecodeBytes(body).Next() == jx.Array
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p products.Product
	if err := decodeJSON(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.products.Create(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &ref); err != nil {
		h.fail(w, r, products.ErrInvalidInput)
		return
	}

	updated, err := h.products.Update(r.Context(), ref.ID, func(p *products.Product) error {
		return json.Unmarshal(body, p)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Product deleted successfully"})
}

func (h *Handler) listFilters(w http.ResponseWriter, r *http.Request) {
	list, err := h.filters.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type filterRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) createFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := h.filters.Create(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) renameFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := h.filters.Rename(r.Context(), req.ID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) deleteFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.filters.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	list, err := h.collections.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createCollection(w http.ResponseWriter, r *http.Request) {
	var c collections.Collection
	if err := decodeJSON(w, r, &c); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.collections.Create(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateCollection(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if isArray(body) {
		var list []collections.Collection
		if err := json.Unmarshal(body, &list); err != nil {
			h.fail(w, r, errBadJSON)
			return
		}
		if err := h.collections.Reorder(r.Context(), list); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	var req struct {
		ID          string                `json:"id"`
		Title       string                `json:"title"`
		Description string                `json:"description"`
		Sections    []collections.Section `json:"sections"`
		Slug        string                `json:"slug"`
		Image       string                `json:"image"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, r, errBadJSON)
		return
	}

	updated, err := h.collections.Update(r.Context(), req.ID, collections.Patch{
		Title:       req.Title,
		Description: req.Description,
		Sections:    req.Sections,
		Slug:        req.Slug,
		Image:       req.Image,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Collection deleted successfully"})
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type projectRequest struct {
	ID    string        `json:"id"`
	Type  projects.Type `json:"type"`
	Title *string       `json:"title"`
	Image *string       `json:"image"`
	Text  *string       `json:"text"`
	Order *int          `json:"order"`
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.projects.Create(r.Context(), projects.Project{
		Type:  req.Type,
		Title: req.Title,
		Image: req.Image,
		Text:  req.Text,
	}, req.Order)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if isArray(body) {
		var list []projects.Project
		if err := json.Unmarshal(body, &list); err != nil {
			h.fail(w, r, errBadJSON)
			return
		}
		if err := h.projects.Reorder(r.Context(), list); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	var req projectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, r, errBadJSON)
		return
	}

	updated, err := h.projects.Update(r.Context(), req.ID, projects.Patch{
		Type:  req.Type,
		Title: req.Title,
		Image: req.Image,
		Text:  req.Text,
		Order: req.Order,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Project deleted successfully"})
}
