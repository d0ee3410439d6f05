package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/nurseryinventory/pkg/app"
	"github.com/ghuser/nurseryinventory/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/nurseryinventory/services/inventory/application/services"
	"github.com/ghuser/nurseryinventory/services/inventory/application/workflows"
)

// InventoryRoutes wires the inventory services from the Application container
// and registers their endpoints on the provided chi router. Repairs are
// enabled only when a Temporal client is configured.
func InventoryRoutes(r chi.Router, a *app.Application) (*appsvcs.Services, error) {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return nil, err
	}
	var repairs handlers.RepairStarter
	if a.TemporalClient != nil {
		repairs = workflows.NewStarter(a.TemporalClient.Client, a.Config.TemporalTaskQueue)
	}
	Mount(r, svcs, repairs)
	return svcs, nil
}

// Mount registers the inventory endpoints over already wired services.
func Mount(r chi.Router, svcs *appsvcs.Services, repairs handlers.RepairStarter) {
	nurseries := handlers.NewNurseryHandler(svcs)
	beds := handlers.NewBedHandler(svcs)
	batches := handlers.NewCuttingBatchHandler(svcs)

	r.Route("/nurseries", func(r chi.Router) {
		r.Post("/", nurseries.Create)
		r.Get("/", nurseries.List)
		r.Route("/{nurseryID}", func(r chi.Router) {
			r.Get("/", nurseries.Get)
			r.Patch("/", nurseries.Patch)
			r.Delete("/", nurseries.Delete)
			r.Get("/statistics", nurseries.Statistics)
			r.Post("/recompute", nurseries.Recompute)

			r.Route("/beds", func(r chi.Router) {
				r.Post("/", beds.Create)
				r.Get("/", beds.List)
				r.Route("/{bedID}", func(r chi.Router) {
					r.Get("/", beds.Get)
					r.Patch("/", beds.Patch)
					r.Delete("/", beds.Delete)

					r.Route("/batches", func(r chi.Router) {
						r.Post("/", batches.Create)
						r.Get("/", batches.List)
						r.Get("/{batchID}", batches.Get)
						r.Patch("/{batchID}", batches.Patch)
						r.Delete("/{batchID}", batches.Delete)
					})
				})
			})
		})
	})
	r.Post("/repairs", handlers.NewRepairHandler(repairs).Start)
}
