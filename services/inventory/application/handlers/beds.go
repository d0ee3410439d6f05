package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/nurseryinventory/pkg/errhttp"
	"github.com/ghuser/nurseryinventory/pkg/httpx"
	pkgvalidator "github.com/ghuser/nurseryinventory/pkg/validator"
	appsvcs "github.com/ghuser/nurseryinventory/services/inventory/application/services"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/nurseryinventory/services/inventory/domain/services"
)

// BedHandler serves the /nurseries/{nurseryID}/beds endpoints.
type BedHandler struct {
	svc *appsvcs.Services
}

// NewBedHandler returns a BedHandler backed by the given services.
func NewBedHandler(svc *appsvcs.Services) *BedHandler {
	return &BedHandler{svc: svc}
}

// Create adds a bed to a nursery.
//
//	@Summary	Create bed
//	@Tags		beds
//	@Accept		json
//	@Produce	json
//	@Param		nurseryID	path		string				true	"Nursery id"
//	@Param		request		body		CreateBedRequest	true	"Bed"
//	@Success	201			{object}	BedResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds [post]
func (h *BedHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateBedRequest](w, r)
	if !ok {
		return
	}
	b, err := h.svc.Beds.Create(r.Context(), chi.URLParam(r, "nurseryID"), req.toInput())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, r, b.ID, bedResponse(b))
}

// List returns the beds of a nursery.
//
//	@Summary	List beds
//	@Tags		beds
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Param		state		query		string	false	"Only beds in this state"	Enums(active, inactive, other)
//	@Param		order_by	query		string	false	"Sort field"				Enums(id, createdAt, plantCount, plantingDate, species)
//	@Param		desc		query		bool	false	"Sort descending"
//	@Param		limit		query		int		false	"Maximum results"
//	@Success	200			{array}		BedResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds [get]
func (h *BedHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := appsvcs.BedListOptions{
		State:   models.BedState(r.URL.Query().Get("state")),
		OrderBy: r.URL.Query().Get("order_by"),
	}
	var err error
	if opts.Descending, err = queryBool(r, "desc"); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if opts.Limit, err = queryLimit(r); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	beds, err := h.svc.Beds.List(r.Context(), chi.URLParam(r, "nurseryID"), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]BedResponse, len(beds))
	for i := range beds {
		out[i] = bedResponse(&beds[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one bed.
//
//	@Summary	Get bed
//	@Tags		beds
//	@Produce	json
//	@Param		nurseryID	path		string	true	"Nursery id"
//	@Param		bedID		path		string	true	"Bed id"
//	@Success	200			{object}	BedResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID} [get]
func (h *BedHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Beds.Get(r.Context(), chi.URLParam(r, "nurseryID"), chi.URLParam(r, "bedID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bedResponse(b))
}

// Patch partially updates a bed.
//
//	@Summary	Update bed
//	@Tags		beds
//	@Accept		json
//	@Produce	json
//	@Param		nurseryID	path		string			true	"Nursery id"
//	@Param		bedID		path		string			true	"Bed id"
//	@Param		request		body		PatchBedRequest	true	"Fields to change"
//	@Success	200			{object}	BedResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID} [patch]
func (h *BedHandler) Patch(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidatePatchRequest[PatchBedRequest](w, r, domainsvcs.RejectProtectedFields)
	if !ok {
		return
	}
	b, err := h.svc.Beds.Update(r.Context(), chi.URLParam(r, "nurseryID"), chi.URLParam(r, "bedID"), req.toPatch())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bedResponse(b))
}

// Delete removes a bed with all its cutting batches.
//
//	@Summary	Delete bed
//	@Tags		beds
//	@Param		nurseryID	path	string	true	"Nursery id"
//	@Param		bedID		path	string	true	"Bed id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/nurseries/{nurseryID}/beds/{bedID} [delete]
func (h *BedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deleter.DeleteBed(r.Context(), chi.URLParam(r, "nurseryID"), chi.URLParam(r, "bedID")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
