package split

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/code"
	"github.com/MrJamesThe3rd/easysplit/internal/http/respond"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

type Handler struct {
	svc    *split.Service
	lookup func(http.Handler) http.Handler
}

// NewHandler wires split routes. lookup, when set, wraps every route addressed by a code.
func NewHandler(svc *split.Service, lookup func(http.Handler) http.Handler) *Handler {
	if lookup == nil {
		lookup = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{svc: svc, lookup: lookup}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/calculate", h.calculate)

	r.Group(func(r chi.Router) {
		r.Use(h.lookup)

		r.Get("/{code}", h.get)
		r.Patch("/{code}", h.update)
	})
}

func decodeSplit(w http.ResponseWriter, r *http.Request) (splitRequest, bool) {
	var req splitRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.DecodeError(w, err)
		return req, false
	}

	if fields := crossCheck(req.People, req.Items, req.Quantities, req.Totals); len(fields) > 0 {
		respond.Invalid(w, fields)
		return req, false
	}

	return req, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSplit(w, r)
	if !ok {
		return
	}

	sp, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, createResponse{Code: sp.Code, Split: toResponse(sp)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, ok := codeParam(w, r)
	if !ok {
		return
	}

	sp, err := h.svc.Get(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(sp))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	c, ok := codeParam(w, r)
	if !ok {
		return
	}

	req, ok := decodeSplit(w, r)
	if !ok {
		return
	}

	sp, err := h.svc.Update(r.Context(), c, req.params())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(sp))
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}

	if fields := crossCheck(req.People, req.Items, req.Quantities, req.Totals); len(fields) > 0 {
		respond.Invalid(w, fields)
		return
	}

	res, err := split.Settle(req.params())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCalculateResponse(res))
}

func codeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := code.Normalize(chi.URLParam(r, "code"))
	if !code.Valid(c) {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid split code")
		return "", false
	}

	return c, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, split.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "split not found")
	case errors.Is(err, split.ErrMenuNotFound):
		respond.Error(w, http.StatusBadRequest, respond.CodeMenuNotFound, "referenced menu does not exist",
			respond.FieldError{Field: "menuCode", Message: "references an unknown menu"})
	case errors.Is(err, allocation.ErrExcessContribution):
		respond.Error(w, http.StatusBadRequest, respond.CodeExcessContribution, err.Error())
	default:
		respond.Internal(w, r, err)
	}
}
