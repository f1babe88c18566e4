package menu

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/easysplit/internal/code"
	"github.com/MrJamesThe3rd/easysplit/internal/http/respond"
	"github.com/MrJamesThe3rd/easysplit/internal/menu"
	"github.com/MrJamesThe3rd/easysplit/internal/menu/importer"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

const maxUploadBytes = 2 << 20

type Handler struct {
	svc    *menu.Service
	splits *split.Service
	lookup func(http.Handler) http.Handler
}

// NewHandler wires menu routes. lookup, when set, wraps every route addressed by a code.
func NewHandler(svc *menu.Service, splits *split.Service, lookup func(http.Handler) http.Handler) *Handler {
	if lookup == nil {
		lookup = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{svc: svc, splits: splits, lookup: lookup}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/import", h.importCSV)

	r.Group(func(r chi.Router) {
		r.Use(h.lookup)

		r.Get("/{code}", h.get)
		r.Patch("/{code}", h.update)
		r.Delete("/{code}", h.delete)
		r.Get("/{code}/splits", h.listSplits)
	})
}

type menuRequest struct {
	Name     string            `json:"name" validate:"max=120"`
	Currency string            `json:"currency" validate:"max=8"`
	Items    []menuItemRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

type menuItemRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Price float64 `json:"price" validate:"gt=0"`
}

func (req menuRequest) params() menu.Params {
	p := menu.Params{Name: req.Name, Currency: req.Currency, Items: make([]menu.ItemParams, len(req.Items))}
	for i, it := range req.Items {
		p.Items[i] = menu.ItemParams{Name: it.Name, Price: it.Price}
	}

	return p
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}

	m, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCreateResponse(m))
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Invalid(w, []respond.FieldError{{Field: "file", Message: "is required"}})
		return
	}
	defer file.Close()

	items, err := importer.Parse(file)
	if err != nil {
		if errors.Is(err, importer.ErrInvalid) {
			respond.Invalid(w, []respond.FieldError{{Field: "file", Message: err.Error()}})
			return
		}

		respond.Internal(w, r, err)

		return
	}

	req := menuRequest{Name: r.FormValue("name"), Currency: r.FormValue("currency")}
	for _, it := range items {
		req.Items = append(req.Items, menuItemRequest{Name: it.Name, Price: it.Price})
	}

	if fields := respond.Validate(req); len(fields) > 0 {
		respond.Invalid(w, fields)
		return
	}

	m, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCreateResponse(m))
}

// codeParam returns the normalized {code} URL parameter, or writes a 400 and returns
// false when it cannot be a valid code.
func codeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := code.Normalize(chi.URLParam(r, "code"))
	if !code.Valid(c) {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid menu code")
		return "", false
	}

	return c, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, ok := codeParam(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Get(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	c, ok := codeParam(w, r)
	if !ok {
		return
	}

	var req menuRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}

	m, err := h.svc.Update(r.Context(), c, req.params())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	c, ok := codeParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, deleteResponse{Success: true})
}

func (h *Handler) listSplits(w http.ResponseWriter, r *http.Request) {
	c, ok := codeParam(w, r)
	if !ok {
		return
	}

	splits, err := h.splits.ListByMenu(r.Context(), c)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	resp := make([]splitSummary, len(splits))
	for i, sp := range splits {
		resp[i] = toSplitSummary(sp)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, menu.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "menu not found")
		return
	}

	respond.Internal(w, r, err)
}
