package internal

import (
	"net/http"

	"ytstat/internal/controllers"
	"ytstat/internal/providers"
)

func InitRoutes(dashboardController *controllers.DashboardController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/dashboard", http.HandlerFunc(dashboardController.Dashboard))
	routers.Get("/spikes", http.HandlerFunc(dashboardController.Spikes))
	routers.Get("/above-average", http.HandlerFunc(dashboardController.AboveAverage))
	routers.Get("/quota", http.HandlerFunc(dashboardController.Quota))
	routers.Get("/channels", http.HandlerFunc(dashboardController.Channels))
	routers.Get("/history", http.HandlerFunc(dashboardController.History))
	routers.Post("/collect", http.HandlerFunc(dashboardController.Collect))
	return routers
}
