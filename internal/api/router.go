package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/angryss/idp-engine/internal/api/handlers"
	mw "github.com/angryss/idp-engine/internal/api/middleware"
	"github.com/angryss/idp-engine/internal/services"
)

type Dependencies struct {
	Auth services.AuthService

	HealthChecks map[string]func(context.Context) error

	ProvidersHandler     *handlers.ProvidersHandler
	ResourceTypesHandler *handlers.ResourceTypesHandler
	MappingsHandler      *handlers.MappingsHandler
	BlueprintsHandler    *handlers.BlueprintsHandler
	StacksHandler        *handlers.StacksHandler
	TaxonomyHandler      *handlers.TaxonomyHandler
	EnvironmentsHandler  *handlers.EnvironmentsHandler
	APIKeysHandler       *handlers.APIKeysHandler
	AdminHandler         *handlers.AdminHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(mw.Metrics)
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler(dep.HealthChecks)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Method(http.MethodGet, "/metrics", mw.MetricsHandler())

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/docs/doc.json"),
	))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(mw.Auth(dep.Auth))

		meta := handlers.NewMetaHandler()
		api.Get("/user/me", meta.Me)
		api.Get("/stack-types", meta.StackTypes)

		// Catalog
		api.Route("/cloud-providers", func(cr chi.Router) {
			cr.Get("/", dep.ProvidersHandler.List)
			cr.Get("/{id}", dep.ProvidersHandler.Get)
			cr.Group(func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Post("/", dep.ProvidersHandler.Create)
				admin.Put("/{id}", dep.ProvidersHandler.Update)
				admin.Put("/{id}/enabled", dep.ProvidersHandler.SetEnabled)
				admin.Delete("/{id}", dep.ProvidersHandler.Delete)
			})
		})

		api.Route("/resource-types", func(rr chi.Router) {
			rr.Get("/", dep.ResourceTypesHandler.List)
			rr.Get("/{id}", dep.ResourceTypesHandler.Get)
			rr.Group(func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Post("/", dep.ResourceTypesHandler.Create)
				admin.Put("/{id}", dep.ResourceTypesHandler.Update)
				admin.Put("/{id}/enabled", dep.ResourceTypesHandler.SetEnabled)
				admin.Delete("/{id}", dep.ResourceTypesHandler.Delete)
			})
		})

		api.Get("/resource-schemas/{resourceTypeID}/{cloudProviderID}", dep.MappingsHandler.GetSchema)

		api.Route("/mappings", func(mr chi.Router) {
			mr.Get("/", dep.MappingsHandler.List)
			mr.Get("/{id}", dep.MappingsHandler.Get)
			mr.Get("/{id}/properties", dep.MappingsHandler.ListProperties)
			mr.Group(func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Post("/", dep.MappingsHandler.Create)
				admin.Put("/{id}", dep.MappingsHandler.Update)
				admin.Put("/{id}/enabled", dep.MappingsHandler.SetEnabled)
				admin.Delete("/{id}", dep.MappingsHandler.Delete)
				admin.Post("/{id}/properties", dep.MappingsHandler.AddProperty)
				admin.Put("/{id}/properties/{propertyID}", dep.MappingsHandler.UpdateProperty)
				admin.Delete("/{id}/properties/{propertyID}", dep.MappingsHandler.DeleteProperty)
			})
		})

		api.Route("/blueprints", func(br chi.Router) {
			br.Get("/", dep.BlueprintsHandler.List)
			br.Get("/{id}", dep.BlueprintsHandler.Get)
			br.Group(func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Post("/", dep.BlueprintsHandler.Create)
				admin.Put("/{id}", dep.BlueprintsHandler.Update)
				admin.Put("/{id}/enabled", dep.BlueprintsHandler.SetEnabled)
				admin.Delete("/{id}", dep.BlueprintsHandler.Delete)
				admin.Post("/{id}/resources", dep.BlueprintsHandler.AddResource)
				admin.Delete("/{id}/resources/{resourceID}", dep.BlueprintsHandler.RemoveResource)
			})
		})

		// Stacks: any authenticated user may create; ownership is enforced
		// in the service layer.
		api.Route("/stacks", func(sr chi.Router) {
			sr.Get("/", dep.StacksHandler.List)
			sr.Post("/", dep.StacksHandler.Create)
			sr.Get("/{id}", dep.StacksHandler.Get)
			sr.Put("/{id}", dep.StacksHandler.Update)
			sr.Put("/{id}/enabled", dep.StacksHandler.SetEnabled)
			sr.Delete("/{id}", dep.StacksHandler.Delete)
			sr.Post("/{id}/resources", dep.StacksHandler.AddResource)
			sr.Delete("/{id}/resources/{resourceID}", dep.StacksHandler.RemoveResource)
			sr.Get("/{id}/provisioning", dep.StacksHandler.GetProvisioning)
			sr.Post("/{id}/provisioning", dep.StacksHandler.RequestProvisioning)
		})

		// Taxonomy
		api.Route("/teams", func(tr chi.Router) {
			tr.Get("/", dep.TaxonomyHandler.ListTeams)
			tr.Post("/", dep.TaxonomyHandler.CreateTeam)
			tr.Get("/{id}", dep.TaxonomyHandler.GetTeam)
			tr.Put("/{id}", dep.TaxonomyHandler.UpdateTeam)
			tr.Delete("/{id}", dep.TaxonomyHandler.DeleteTeam)
		})
		api.Route("/domains", func(dr chi.Router) {
			dr.Get("/", dep.TaxonomyHandler.ListDomains)
			dr.Post("/", dep.TaxonomyHandler.CreateDomain)
			dr.Get("/{id}", dep.TaxonomyHandler.GetDomain)
			dr.Put("/{id}", dep.TaxonomyHandler.UpdateDomain)
			dr.Delete("/{id}", dep.TaxonomyHandler.DeleteDomain)
		})
		api.Route("/categories", func(cr chi.Router) {
			cr.Get("/", dep.TaxonomyHandler.ListCategories)
			cr.Post("/", dep.TaxonomyHandler.CreateCategory)
			cr.Get("/{id}", dep.TaxonomyHandler.GetCategory)
			cr.Put("/{id}", dep.TaxonomyHandler.UpdateCategory)
			cr.Delete("/{id}", dep.TaxonomyHandler.DeleteCategory)
		})
		api.Route("/collections", func(cr chi.Router) {
			cr.Get("/", dep.TaxonomyHandler.ListCollections)
			cr.Post("/", dep.TaxonomyHandler.CreateCollection)
			cr.Get("/{id}", dep.TaxonomyHandler.GetCollection)
			cr.Put("/{id}", dep.TaxonomyHandler.UpdateCollection)
			cr.Delete("/{id}", dep.TaxonomyHandler.DeleteCollection)
		})

		api.Route("/environments", func(er chi.Router) {
			er.Get("/", dep.EnvironmentsHandler.List)
			er.Get("/{id}", dep.EnvironmentsHandler.Get)
			er.Get("/{id}/configs", dep.EnvironmentsHandler.ListConfigs)
			er.Group(func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Post("/", dep.EnvironmentsHandler.Create)
				admin.Put("/{id}/enabled", dep.EnvironmentsHandler.SetEnabled)
				admin.Put("/{id}/configs", dep.EnvironmentsHandler.SetConfig)
				admin.Delete("/{id}/configs/{configID}", dep.EnvironmentsHandler.DeleteConfig)
			})
		})

		api.Route("/apikeys", func(kr chi.Router) {
			kr.Get("/", dep.APIKeysHandler.List)
			kr.Post("/", dep.APIKeysHandler.Create)
			kr.Get("/{id}", dep.APIKeysHandler.Get)
			kr.Put("/{id}", dep.APIKeysHandler.Rename)
			kr.Post("/{id}/rotate", dep.APIKeysHandler.Rotate)
			kr.Delete("/{id}", dep.APIKeysHandler.Revoke)
		})

		api.Route("/admin", func(ar chi.Router) {
			ar.Use(mw.RequireAdmin)
			ar.Get("/statistics", dep.AdminHandler.Statistics)
			ar.Get("/audit-logs", dep.AdminHandler.ListAuditLogs)
		})
	})

	return r
}
