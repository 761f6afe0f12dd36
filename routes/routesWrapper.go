package routes

import (
	"github.com/julienschmidt/httprouter"
)

// New builds the full route table.
func New(d Deps) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)
	RoutesWrapper(router, d)
	return router
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddStaticRoutes(router, d)
	AddAuthRoutes(router, d)
	AddCompanyRoutes(router, d)
	AddShipRoutes(router, d)
	AddItineraryRoutes(router, d)
	AddSailingRoutes(router, d)
	AddPricingRoutes(router, d)
	AddBookingRoutes(router, d)
	AddCustomerRoutes(router, d)
	AddStaffRoutes(router, d)
	AddSettingsRoutes(router, d)
	AddAuditRoutes(router, d)
	AddTranslationRoutes(router, d)
	AddNotificationRoutes(router, d)
	AddImportRoutes(router, d)
	AddDashboardRoutes(router, d)
	AddEdgeRoutes(router, d)
}
