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

// CuttingBatchHandler serves the /nurseries/{nurseryID}/beds/{bedID}/batches endpoints.
type CuttingBatchHandler struct {
	svc *appsvcs.Services
}

// NewCuttingBatchHandler returns a CuttingBatchHandler backed by the given services.
func NewCuttingBatchHandler(svc *appsvcs.Services) *CuttingBatchHandler {
	return &CuttingBatchHandler{svc: svc}
}

func batchPath(r *http.Request) (nurseryID, bedID string) {
	return chi.URLParam(r, "nurseryID"), chi.URLParam(r, "bedID")
}

// Create records a cutting batch on a bed.
//
//	@Summary	Create cutting batch
//	@Tags		batches
//	@Accept		json
//	@Produce	json
//	@Param		nurseryID	path		string						true	"Nursery id"
//	@Param		bedID		path		string						true	"Bed id"
//	@Param		request		body		CreateCuttingBatchRequest	true	"Cutting batch"
//	@Success	201			{object}	CuttingBatchResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID}/batches [post]
func (h *CuttingBatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateCuttingBatchRequest](w, r)
	if !ok {
		return
	}
	nurseryID, bedID := batchPath(r)
	b, err := h.svc.Batches.Create(r.Context(), nurseryID, bedID, req.toInput())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, r, b.ID, cuttingBatchResponse(b))
}

// List returns the cutting batches of a bed, newest first by default.
//
//	@Summary	List cutting batches
//	@Tags		batches
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Param		bedID		path		string	true	"Bed id"
//	@Param		asc			query		bool	false	"Oldest first"
//	@Param		limit		query		int		false	"Maximum results"
//	@Success	200			{array}		CuttingBatchResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID}/batches [get]
func (h *CuttingBatchHandler) List(w http.ResponseWriter, r *http.Request) {
	var opts appsvcs.BatchListOptions
	var err error
	if opts.Ascending, err = queryBool(r, "asc"); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if opts.Limit, err = queryLimit(r); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	nurseryID, bedID := batchPath(r)
	batches, err := h.svc.Batches.List(r.Context(), nurseryID, bedID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]CuttingBatchResponse, len(batches))
	for i := range batches {
		out[i] = cuttingBatchResponse(&batches[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one cutting batch.
//
//	@Summary	Get cutting batch
//	@Tags		batches
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Param		bedID		path		string	true	"Bed id"
//	@Param		batchID		path		string	true	"Cutting batch id"
//	@Success	200			{object}	CuttingBatchResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID}/batches/{batchID} [get]
func (h *CuttingBatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	nurseryID, bedID := batchPath(r)
	b, err := h.svc.Batches.Get(r.Context(), nurseryID, bedID, chi.URLParam(r, "batchID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cuttingBatchResponse(b))
}

// Patch partially updates a cutting batch.
//
//	@Summary	Update cutting batch
//	@Tags		batches
//	@Accept		json
//	@Produce	json
//	@Param		nurseryID	path		string						true	"Nursery id"
//	@Param		bedID		path		string						true	"Bed id"
//	@Param		batchID		path		string						true	"Cutting batch id"
//	@Param		request		body		PatchCuttingBatchRequest	true	"Fields to change"
//	@Success	200			{object}	CuttingBatchResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID}/batches/{batchID} [patch]
func (h *CuttingBatchHandler) Patch(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidatePatchRequest[PatchCuttingBatchRequest](w, r, domainsvcs.RejectProtectedFields)
	if !ok {
		return
	}
	nurseryID, bedID := batchPath(r)
	b, err := h.svc.Batches.Update(r.Context(), nurseryID, bedID, chi.URLParam(r, "batchID"), req.toPatch())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cuttingBatchResponse(b))
}

// Delete removes a cutting batch.
//
//	@Summary	Delete cutting batch
//	@Tags		batches
//	@Param		nurseryID	path	string	true	"Nursery id"
//	@Param		bedID		path	string	true	"Bed id"
//	@Param		batchID		path	string	true	"Cutting batch id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID}/batches/{batchID} [delete]
func (h *CuttingBatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	nurseryID, bedID := batchPath(r)
	if err := h.svc.Batches.Delete(r.Context(), nurseryID, bedID, chi.URLParam(r, "batchID")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
