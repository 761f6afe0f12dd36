package routes

import (
	"net/http"

	"cruiseops/audit"
	"cruiseops/auth"
	"cruiseops/booking"
	"cruiseops/companies"
	"cruiseops/customers"
	"cruiseops/dashboard"
	"cruiseops/edge"
	"cruiseops/globals"
	"cruiseops/imports"
	"cruiseops/itinerary"
	"cruiseops/middleware"
	"cruiseops/notifications"
	"cruiseops/pricing"
	"cruiseops/ratelim"
	"cruiseops/sailings"
	"cruiseops/settings"
	"cruiseops/ships"
	"cruiseops/staff"
	"cruiseops/translations"

	"github.com/julienschmidt/httprouter"
)

// Deps carries everything the route table needs.
type Deps struct {
	Auth        *middleware.Auth
	Tenants     middleware.TenantResolver
	Idempotency middleware.IdempotencyStore
	Limiter     *ratelim.RateLimiter
	DevTokens   bool
	UploadDir   string

	Audit         *audit.Log
	Login         *auth.Handler
	Companies     *companies.Handler
	Ships         *ships.Handler
	Itineraries   *itinerary.Handler
	Sailings      *sailings.Handler
	Pricing       *pricing.Handler
	Bookings      *booking.Handler
	Customers     *customers.Handler
	Staff         *staff.Handler
	Settings      *settings.Handler
	Translations  *translations.Handler
	Notifications *notifications.Handler
	Hub           *notifications.Hub
	Imports       *imports.Handler
	Dashboard     *dashboard.Handler
	Edge          *edge.Handler
}

// tenant authenticates, checks roles and binds the company's tenant database.
func (d Deps) tenant(roles []string, h httprouter.Handle) httprouter.Handle {
	return d.Auth.Require(roles, middleware.Tenant(d.Tenants, h))
}

// idem is tenant plus Idempotency-Key replay.
func (d Deps) idem(roles []string, h httprouter.Handle) httprouter.Handle {
	return d.tenant(roles, middleware.Idempotent(d.Idempotency, h))
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func AddStaticRoutes(router *httprouter.Router, d Deps) {
	if d.UploadDir != "" {
		router.ServeFiles("/static/uploads/*filepath", http.Dir(d.UploadDir))
	}
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/auth/login", d.Limiter.Limit(middleware.Tenant(d.Tenants, d.Login.Login)))
	if d.DevTokens {
		router.POST("/dev/token", d.Limiter.Limit(d.Login.DevToken))
	}
}

func AddCompanyRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/companies", d.Auth.Require(globals.AdminOnly, d.Companies.Create))
	router.GET("/api/companies", d.Auth.Require(globals.StaffRoles, d.Companies.List))
	router.GET("/api/companies/:id", d.Auth.Require(globals.StaffRoles, d.Companies.Get))
	router.GET("/api/companies/:id/settings", d.Companies.GetSettings)
	router.PUT("/api/companies/:id/settings", d.Auth.Require(globals.AdminOnly, d.Companies.PutSettings))
	router.POST("/api/companies/:id/logo", d.Auth.Require(globals.AdminOnly, d.Companies.UploadLogo))
}

func AddShipRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/ships", d.tenant(globals.ManageRoles, d.Ships.CreateShip))
	router.GET("/api/ships", d.tenant(globals.AnyRole, d.Ships.ListShips))
	router.GET("/api/ships/:id", d.tenant(globals.AnyRole, d.Ships.GetShip))
	router.PATCH("/api/ships/:id", d.tenant(globals.ManageRoles, d.Ships.PatchShip))
	router.POST("/api/ships/:id/amenities", d.tenant(globals.ManageRoles, d.Ships.AddAmenity))
	router.POST("/api/ships/:id/maintenance-records", d.tenant(globals.ManageRoles, d.Ships.AddMaintenanceRecord))

	router.POST("/api/ships/:id/cabin-categories", d.tenant(globals.ManageRoles, d.Ships.CreateCategory))
	router.GET("/api/ships/:id/cabin-categories", d.tenant(globals.AnyRole, d.Ships.ListCategories))
	router.POST("/api/ships/:id/cabins", d.tenant(globals.ManageRoles, d.Ships.CreateCabin))
	router.GET("/api/ships/:id/cabins", d.tenant(globals.AnyRole, d.Ships.ListCabins))
	router.PATCH("/api/ships/:id/cabins/:cabinId", d.tenant(globals.ManageRoles, d.Ships.PatchCabin))

	router.POST("/api/ships/:id/capabilities", d.tenant(globals.ManageRoles, d.Ships.CreateCapability))
	router.GET("/api/ships/:id/capabilities", d.tenant(globals.AnyRole, d.Ships.ListCapabilities))
	router.POST("/api/ships/:id/restaurants", d.tenant(globals.ManageRoles, d.Ships.CreateRestaurant))
	router.GET("/api/ships/:id/restaurants", d.tenant(globals.AnyRole, d.Ships.ListRestaurants))
	router.POST("/api/ships/:id/shorex", d.tenant(globals.ManageRoles, d.Ships.CreateShorex))
	router.GET("/api/ships/:id/shorex", d.tenant(globals.AnyRole, d.Ships.ListShorex))
	router.PUT("/api/ships/:id/shorex/:shorexId/prices", d.tenant(globals.ManageRoles, d.Ships.UpsertShorexPrices))
}

func AddItineraryRoutes(router *httprouter.Router, d Deps) {
	router.PUT("/api/ports", d.tenant(globals.ManageRoles, d.Itineraries.UpsertPort))
	router.GET("/api/ports", d.tenant(globals.AnyRole, d.Itineraries.ListPorts))
	router.GET("/api/ports/:code", d.tenant(globals.AnyRole, d.Itineraries.GetPort))

	router.POST("/api/itineraries", d.tenant(globals.ManageRoles, d.Itineraries.Create))
	router.GET("/api/itineraries", d.tenant(globals.AnyRole, d.Itineraries.List))
	router.GET("/api/itineraries/:id", d.tenant(globals.AnyRole, d.Itineraries.Get))
	router.PUT("/api/itineraries/:id", d.tenant(globals.ManageRoles, d.Itineraries.Update))
	router.GET("/api/itineraries/:id/compute", d.tenant(globals.AnyRole, d.Itineraries.Compute))
	router.POST("/api/itineraries/:id/sailings", d.tenant(globals.ManageRoles, d.Itineraries.CreateSailing))
	router.GET("/api/itineraries/:id/sailings", d.tenant(globals.AnyRole, d.Itineraries.Sailings))
}

func AddSailingRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/sailings", d.tenant(globals.ManageRoles, d.Sailings.Create))
	router.GET("/api/sailings", d.tenant(globals.AnyRole, d.Sailings.List))
	router.GET("/api/sailings/:id", d.tenant(globals.AnyRole, d.Sailings.Get))
	router.PATCH("/api/sailings/:id", d.tenant(globals.ManageRoles, d.Sailings.Patch))
	router.POST("/api/sailings/:id/port-stops", d.tenant(globals.ManageRoles, d.Sailings.AddPortStop))
	router.GET("/api/sailings/:id/itinerary", d.tenant(globals.AnyRole, d.Sailings.Itinerary))
}

func AddPricingRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/pricing/quote", d.Limiter.Limit(d.Auth.OptionalAuth(middleware.OptionalTenant(d.Tenants, d.Pricing.Quote))))

	router.GET("/api/pricing/overrides", d.tenant(globals.ManageRoles, d.Pricing.GetOverrides))
	router.POST("/api/pricing/overrides/cabin-multipliers", d.tenant(globals.ManageRoles, d.Pricing.SetCabinMultiplier))
	router.POST("/api/pricing/overrides/base-fares", d.tenant(globals.ManageRoles, d.Pricing.SetBaseFare))
	router.POST("/api/pricing/overrides/demand-multiplier", d.tenant(globals.ManageRoles, d.Pricing.SetDemandMultiplier))
	router.DELETE("/api/pricing/overrides/:company", d.tenant(globals.AdminOnly, d.Pricing.DeleteOverrides))

	router.GET("/api/pricing/category-prices", d.tenant(globals.StaffRoles, d.Pricing.ListCategoryPrices))
	router.POST("/api/pricing/category-prices", d.tenant(globals.ManageRoles, d.Pricing.UpsertCategoryPrice))
	router.POST("/api/pricing/category-prices/bulk", d.tenant(globals.ManageRoles, d.Pricing.BulkUpsertCategoryPrices))

	router.GET("/api/pricing/price-categories", d.tenant(globals.StaffRoles, d.Pricing.ListPriceCategories))
	router.POST("/api/pricing/price-categories", d.tenant(globals.ManageRoles, d.Pricing.CreatePriceCategory))
	router.PATCH("/api/pricing/price-categories/:code", d.tenant(globals.ManageRoles, d.Pricing.PatchPriceCategory))
	router.DELETE("/api/pricing/price-categories/:code", d.tenant(globals.ManageRoles, d.Pricing.DeletePriceCategory))
	router.POST("/api/pricing/price-categories-reorder", d.tenant(globals.ManageRoles, d.Pricing.ReorderPriceCategories))

	router.GET("/api/pricing/cruise-prices", d.tenant(globals.StaffRoles, d.Pricing.ListCruisePrices))
	router.POST("/api/pricing/cruise-prices/bulk", d.tenant(globals.ManageRoles, d.Pricing.BulkUpsertCruisePrices))
	router.GET("/api/pricing/cruise-prices/export", d.tenant(globals.StaffRoles, d.Pricing.ExportCruisePrices))

	router.GET("/api/pricing/fx-rates", d.tenant(globals.StaffRoles, d.Pricing.ListFXRates))
	router.PUT("/api/pricing/fx-rates", d.tenant(globals.ManageRoles, d.Pricing.UpsertFXRate))
	router.DELETE("/api/pricing/fx-rates/:base/:quote", d.tenant(globals.ManageRoles, d.Pricing.DeleteFXRate))
}

func AddBookingRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/holds", d.Limiter.Limit(d.idem(globals.AnyRole, d.Bookings.Hold)))
	router.GET("/api/bookings", d.tenant(globals.StaffRoles, d.Bookings.List))
	router.GET("/api/bookings/:id", d.tenant(globals.AnyRole, d.Bookings.Get))
	router.POST("/api/bookings/:id/confirm", d.idem(globals.AnyRole, d.Bookings.Confirm))
	router.POST("/api/bookings/:id/cancel", d.idem(globals.AnyRole, d.Bookings.Cancel))
	router.GET("/api/bookings/:id/document", d.tenant(globals.AnyRole, d.Bookings.Document))
	router.POST("/api/booking-documents/verify", d.tenant(globals.StaffRoles, d.Bookings.VerifyDocument))
}

func AddCustomerRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/customers", d.tenant(globals.StaffRoles, d.Customers.Create))
	router.GET("/api/customers", d.tenant(globals.StaffRoles, d.Customers.Search))
	router.GET("/api/customers/:id", d.tenant(globals.AnyRole, d.Customers.Get))
	router.PATCH("/api/customers/:id", d.tenant(globals.StaffRoles, d.Customers.Patch))
	router.GET("/api/customers/:id/bookings", d.tenant(globals.AnyRole, d.Customers.Bookings))
	router.POST("/api/customers/:id/passengers", d.tenant(globals.StaffRoles, d.Customers.AddPassenger))
	router.GET("/api/customers/:id/passengers", d.tenant(globals.AnyRole, d.Customers.ListPassengers))
	router.PATCH("/api/customers/:id/passengers/:passengerId", d.tenant(globals.StaffRoles, d.Customers.PatchPassenger))
	router.DELETE("/api/customers/:id/passengers/:passengerId", d.tenant(globals.StaffRoles, d.Customers.DeletePassenger))
}

func AddStaffRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/staff/users", d.tenant(globals.AdminOnly, d.Staff.CreateUser))
	router.GET("/api/staff/users", d.tenant(globals.AdminOnly, d.Staff.ListUsers))
	router.PATCH("/api/staff/users/:id", d.tenant(globals.AdminOnly, d.Staff.PatchUser))

	router.POST("/api/staff/groups", d.tenant(globals.AdminOnly, d.Staff.CreateGroup))
	router.GET("/api/staff/groups", d.tenant(globals.ManageRoles, d.Staff.ListGroups))
	router.PATCH("/api/staff/groups/:id", d.tenant(globals.AdminOnly, d.Staff.PatchGroup))
	router.POST("/api/staff/groups/:id/members", d.tenant(globals.AdminOnly, d.Staff.AddMember))
	router.GET("/api/staff/groups/:id/members", d.tenant(globals.ManageRoles, d.Staff.ListMembers))
	router.DELETE("/api/staff/groups/:id/members/:userId", d.tenant(globals.AdminOnly, d.Staff.RemoveMember))

	router.POST("/api/staff/announcements", d.tenant(globals.ManageRoles, d.Staff.Announce))
	router.GET("/api/staff/announcements", d.tenant(globals.StaffRoles, d.Staff.Announcements))
	router.POST("/api/staff/announcements/:id/read", d.tenant(globals.StaffRoles, d.Staff.MarkRead))
}

func AddSettingsRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/staff/me/preferences", d.tenant(globals.StaffRoles, d.Settings.GetPreferences))
	router.PUT("/api/staff/me/preferences", d.tenant(globals.StaffRoles, d.Settings.PutPreferences))
	router.PATCH("/api/staff/me/preferences", d.tenant(globals.StaffRoles, d.Settings.PatchPreferences))
}

func AddAuditRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/audit", d.tenant(globals.AdminOnly, d.Audit.List))
}

func AddTranslationRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/translations", d.Auth.Require(globals.StaffRoles, d.Translations.List))
	router.PUT("/api/translations", d.Auth.Require(globals.AdminOnly, d.Translations.Upsert))
	router.DELETE("/api/translations/:lang/:namespace/:key", d.Auth.Require(globals.AdminOnly, d.Translations.Delete))
	router.GET("/api/translations/bundle/:lang/:namespace", d.Translations.Bundle)
}

func AddNotificationRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/notifications", d.tenant(globals.AnyRole, d.Notifications.List))
	router.GET("/api/notifications/ws", d.tenant(globals.AnyRole, d.Hub.ServeWS))
}

func AddImportRoutes(router *httprouter.Router, d Deps) {
	router.POST("/api/imports/workbook", d.tenant(globals.ManageRoles, d.Imports.Workbook))
}

func AddDashboardRoutes(router *httprouter.Router, d Deps) {
	router.GET("/api/dashboard/kpis", d.tenant(globals.StaffRoles, d.Dashboard.KPIs))
}

// AddEdgeRoutes mounts the /v1 surface used by the public site and the mobile app.
func AddEdgeRoutes(router *httprouter.Router, d Deps) {
	router.GET("/v1/cruises", d.tenant(globals.AnyRole, d.Edge.Cruises))
	router.GET("/v1/mobile/agenda", d.tenant(globals.AnyRole, d.Edge.MobileAgenda))

	router.POST("/v1/quote", d.Limiter.Limit(d.Auth.OptionalAuth(middleware.OptionalTenant(d.Tenants, d.Pricing.Quote))))
	router.POST("/v1/holds", d.Limiter.Limit(d.idem(globals.AnyRole, d.Bookings.Hold)))
	router.POST("/v1/bookings/:id/confirm", d.idem(globals.AnyRole, d.Bookings.Confirm))
	router.GET("/v1/customers/:id", d.tenant(globals.AnyRole, d.Customers.Get))
	router.GET("/v1/customers/:id/bookings", d.tenant(globals.AnyRole, d.Customers.Bookings))
	router.GET("/v1/translations/bundle/:lang/:namespace", d.Translations.Bundle)
}
