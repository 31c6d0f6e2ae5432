package router

import (
	"github.com/fuelops/backend/internal/interfaces/http/handler"
)

// FuelReportRoutes maps the fuel report endpoints under /fuel-reports
func FuelReportRoutes(h *handler.FuelReportHandler) *DomainGroup {
	g := NewDomainGroup("fuel-reports", "/fuel-reports")
	g.POST("/parse", h.Parse)
	g.POST("/calibration/import", h.ImportCalibration)

	ws := g.Group("workspaces", "/workspaces/:id")
	ws.GET("", h.Get)
	ws.DELETE("", h.Delete)
	ws.POST("/process", h.Process)
	ws.POST("/submit", h.Submit)
	ws.PATCH("/units/:unit", h.UpdateUnit)
	ws.GET("/export", h.Export)
	ws.GET("/render", h.Render)
	return g
}

// SystemRoutes maps the system info endpoints under /system
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
	return g
}
