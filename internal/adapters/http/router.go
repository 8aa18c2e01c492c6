package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers marketplace HTTP routes and the middleware stack.
// Centralizing routes here keeps error and logging behavior consistent across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/marketplace/v1", func(r chi.Router) {
		r.Post("/datasets", handler.createDataset)
		r.Get("/datasets", handler.listDatasets)
		r.Patch("/datasets", handler.recordAccess)
		r.Get("/datasets/info", handler.datasetInfo)
		r.Post("/purchases", handler.recordPurchase)
		r.Get("/purchases", handler.listPurchases)
		r.Get("/my-purchases", handler.myPurchases)
	})

	return r
}
