package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ghuser/nurseryinventory/pkg/errhttp"
	"github.com/ghuser/nurseryinventory/pkg/httpx"
	pkgvalidator "github.com/ghuser/nurseryinventory/pkg/validator"
	"github.com/ghuser/nurseryinventory/services/inventory/application/workflows"
	"github.com/ghuser/nurseryinventory/services/inventory/domain"
)

// RepairStarter launches the bulk statistics repair workflow.
type RepairStarter interface {
	StartRepair(ctx context.Context, nurseryIDs []string) (workflows.RepairRun, error)
}

// RepairHandler serves POST /repairs.
type RepairHandler struct {
	starter RepairStarter
}

// NewRepairHandler returns a RepairHandler. A nil starter answers 503.
func NewRepairHandler(starter RepairStarter) *RepairHandler {
	return &RepairHandler{starter: starter}
}

// Start schedules a bulk recompute of nursery statistics.
//
//	@Summary		Start statistics repair
//	@Description	Starts a workflow that recomputes every listed nursery, or all nurseries when none are listed.
//	@Tags			repairs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		StartRepairRequest	false	"Nurseries to repair"
//	@Success		202		{object}	workflows.RepairRun
//	@Failure		422		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/repairs [post]
func (h *RepairHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.starter == nil {
		errhttp.WriteError(w, fmt.Errorf("%w: repair workflows are not configured", domain.ErrUnavailable))
		return
	}
	var ids []string
	if r.ContentLength != 0 {
		req, ok := pkgvalidator.ValidateRequest[StartRepairRequest](w, r)
		if !ok {
			return
		}
		ids = req.NurseryIDs
	}
	run, err := h.starter.StartRepair(r.Context(), ids)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: %w", domain.ErrUnavailable, err))
		return
	}
	httpx.JSON(w, http.StatusAccepted, run)
}
