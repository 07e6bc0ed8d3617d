package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/turnoverhq/turnover/internal/adapters/auth"
	"github.com/turnoverhq/turnover/internal/adapters/repository"
	"github.com/turnoverhq/turnover/internal/domain/model"
)

// CatalogDependencies defines the interface for catalog operations.
type CatalogDependencies interface {
	ListShoes(ctx context.Context, f repository.ShoeFilter) ([]model.Shoe, error)
	GetShoe(ctx context.Context, id string) (model.Shoe, error)
	CreateShoe(ctx context.Context, s model.Shoe) (model.Shoe, error)
	UpdateShoe(ctx context.Context, id string, u repository.ShoeUpdate) (model.Shoe, error)
	DeleteShoe(ctx context.Context, id string) error
}

// ShoesHandler handles catalog requests. Reads are public; writes require
// authentication.
type ShoesHandler struct {
	deps     CatalogDependencies
	verifier auth.Verifier
}

// NewShoesHandler creates a new catalog handler.
func NewShoesHandler(deps CatalogDependencies, verifier auth.Verifier) *ShoesHandler {
	return &ShoesHandler{deps: deps, verifier: verifier}
}

// HandleCollection handles GET and POST /api/shoes.
func (h *ShoesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles GET, PATCH, and DELETE /api/shoes/{id}.
func (h *ShoesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/shoes/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPatch:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *ShoesHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f repository.ShoeFilter
	if raw := q.Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		f.Category = c
	}
	f.Brand = q.Get("brand")
	f.Search = q.Get("search")
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	shoes, err := h.deps.ListShoes(r.Context(), f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if shoes == nil {
		shoes = []model.Shoe{}
	}
	writeData(w, http.StatusOK, shoes, "")
}

func (h *ShoesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	shoe, err := h.deps.GetShoe(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, shoe, "")
}

// createShoeRequest mirrors the catalog write schema.
type createShoeRequest struct {
	Brand               string   `json:"brand" validate:"required"`
	Name                string   `json:"name" validate:"required"`
	Category            string   `json:"category" validate:"required,oneof=daily workout race"`
	Tags                []string `json:"tags" validate:"required,dive,oneof=cushioned responsive lightweight stable neutral plush firm breathable durable versatile fast comfortable"`
	Weight              float64  `json:"weight" validate:"required,gt=0"`
	Drop                float64  `json:"drop" validate:"gte=0"`
	StackHeightHeel     float64  `json:"stack_height_heel" validate:"gte=0"`
	StackHeightForefoot float64  `json:"stack_height_forefoot" validate:"gte=0"`
	ImageURL            string   `json:"image_url" validate:"omitempty,url"`
}

func (h *ShoesHandler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(h.verifier, w, r); !ok {
		return
	}

	var req createShoeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	shoe, err := h.deps.CreateShoe(r.Context(), model.Shoe{
		Brand:               req.Brand,
		Name:                req.Name,
		Category:            model.Category(req.Category),
		Tags:                req.Tags,
		Weight:              req.Weight,
		Drop:                req.Drop,
		StackHeightHeel:     req.StackHeightHeel,
		StackHeightForefoot: req.StackHeightForefoot,
		ImageURL:            req.ImageURL,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusCreated, shoe, "Shoe created successfully")
}

// updateShoeRequest carries a partial catalog update; absent fields stay
// untouched.
type updateShoeRequest struct {
	Brand               *string   `json:"brand" validate:"omitempty,min=1"`
	Name                *string   `json:"name" validate:"omitempty,min=1"`
	Category            *string   `json:"category" validate:"omitempty,oneof=daily workout race"`
	Tags                *[]string `json:"tags" validate:"omitempty,dive,oneof=cushioned responsive lightweight stable neutral plush firm breathable durable versatile fast comfortable"`
	Weight              *float64  `json:"weight" validate:"omitempty,gt=0"`
	Drop                *float64  `json:"drop" validate:"omitempty,gte=0"`
	StackHeightHeel     *float64  `json:"stack_height_heel" validate:"omitempty,gte=0"`
	StackHeightForefoot *float64  `json:"stack_height_forefoot" validate:"omitempty,gte=0"`
	ImageURL            *string   `json:"image_url" validate:"omitempty,url"`
}

func (h *ShoesHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := authenticate(h.verifier, w, r); !ok {
		return
	}

	var req updateShoeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	u := repository.ShoeUpdate{
		Brand:               req.Brand,
		Name:                req.Name,
		Tags:                req.Tags,
		Weight:              req.Weight,
		Drop:                req.Drop,
		StackHeightHeel:     req.StackHeightHeel,
		StackHeightForefoot: req.StackHeightForefoot,
		ImageURL:            req.ImageURL,
	}
	if req.Category != nil {
		c := model.Category(*req.Category)
		u.Category = &c
	}

	shoe, err := h.deps.UpdateShoe(r.Context(), id, u)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, shoe, "Shoe updated successfully")
}

func (h *ShoesHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := authenticate(h.verifier, w, r); !ok {
		return
	}
	if err := h.deps.DeleteShoe(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
