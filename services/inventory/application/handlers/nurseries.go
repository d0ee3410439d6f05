package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/nurseryinventory/pkg/errhttp"
	"github.com/ghuser/nurseryinventory/pkg/httpx"
	pkgvalidator "github.com/ghuser/nurseryinventory/pkg/validator"
	appsvcs "github.com/ghuser/nurseryinventory/services/inventory/application/services"
	domainsvcs "github.com/ghuser/nurseryinventory/services/inventory/domain/services"
)

// NurseryHandler serves the /nurseries endpoints.
type NurseryHandler struct {
	svc *appsvcs.Services
}

// NewNurseryHandler returns a NurseryHandler backed by the given services.
func NewNurseryHandler(svc *appsvcs.Services) *NurseryHandler {
	return &NurseryHandler{svc: svc}
}

// Create registers a nursery.
//
//	@Summary		Create nursery
//	@Description	Creates a nursery with zeroed statistics. GPS locations without an address are reverse geocoded.
//	@Tags			nurseries
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateNurseryRequest	true	"Nursery"
//	@Success		201		{object}	NurseryResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/nurseries [post]
func (h *NurseryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateNurseryRequest](w, r)
	if !ok {
		return
	}
	in, err := req.toInput()
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	n, err := h.svc.Nurseries.Create(r.Context(), in)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, r, n.ID, nurseryResponse(n))
}

// List returns nurseries.
//
//	@Summary	List nurseries
//	@Tags		nurseries
//	@Produce	json
//	@Param		public		query		bool	false	"Only publicly visible nurseries"
//	@Param		order_by	query		string	false	"Sort field"	Enums(id, name, createdAt)
//	@Param		desc		query		bool	false	"Sort descending"
//	@Param		limit		query		int		false	"Maximum results"
//	@Success	200			{array}		NurseryResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries [get]
func (h *NurseryHandler) List(w http.ResponseWriter, r *http.Request) {
	var opts appsvcs.NurseryListOptions
	var err error
	if opts.PublicOnly, err = queryBool(r, "public"); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if opts.Descending, err = queryBool(r, "desc"); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if opts.Limit, err = queryLimit(r); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	opts.OrderBy = r.URL.Query().Get("order_by")

	nurseries, err := h.svc.Nurseries.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]NurseryResponse, len(nurseries))
	for i := range nurseries {
		out[i] = nurseryResponse(&nurseries[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one nursery.
//
//	@Summary	Get nursery
//	@Tags		nurseries
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Success	200			{object}	NurseryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID} [get]
func (h *NurseryHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Nurseries.Get(r.Context(), chi.URLParam(r, "nurseryID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nurseryResponse(n))
}

// Patch partially updates a nursery. A rename refreshes the bed display names.
//
//	@Summary		Update nursery
//	@Description	Merges the given fields. id, audit creation fields and statistics are refused.
//	@Tags			nurseries
//	@Accept			json
//	@Produce		json
//	@Param			nurseryID	path		string				true	"Nursery id"
//	@Param			request		body		PatchNurseryRequest	true	"Fields to change"
//	@Success		200			{object}	NurseryResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/nurseries/{nurseryID} [patch]
func (h *NurseryHandler) Patch(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidatePatchRequest[PatchNurseryRequest](w, r, domainsvcs.RejectProtectedFields)
	if !ok {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	n, err := h.svc.Nurseries.Update(r.Context(), chi.URLParam(r, "nurseryID"), patch)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nurseryResponse(n))
}

// Delete removes a nursery with all its beds and cutting batches.
//
//	@Summary	Delete nursery
//	@Tags		nurseries
//	@Param		nurseryID	path	string	true	"Nursery id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Failure	422	{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID} [delete]
func (h *NurseryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deleter.DeleteNursery(r.Context(), chi.URLParam(r, "nurseryID")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Statistics returns the statistics block, served from cache when warm.
//
//	@Summary	Nursery statistics
//	@Tags		nurseries
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Success	200			{object}	NurseryStatisticsResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/statistics [get]
func (h *NurseryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Nurseries.Statistics(r.Context(), chi.URLParam(r, "nurseryID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nurseryStatisticsResponse(stats))
}

// Recompute rebuilds the statistics of every bed and then the nursery.
//
//	@Summary	Recompute nursery statistics
//	@Tags		nurseries
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Success	200			{object}	NurseryStatisticsResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/recompute [post]
func (h *NurseryHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Engine.RecomputeAll(r.Context(), chi.URLParam(r, "nurseryID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, nurseryStatisticsResponse(stats))
}
