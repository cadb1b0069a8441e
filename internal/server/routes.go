package server

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the HTTP surface.
func RegisterRoutes(e *echo.Echo, r *routes) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Relationship routes
	e.POST("/relationships", r.createRelationship)
	e.GET("/relationships", r.listRelationships)
	e.GET("/relationships/view", r.viewRelationships)
	e.PUT("/relationships/:id", r.updateRelationship)
	e.DELETE("/relationships/:id", r.deleteRelationship)
	e.GET("/relationships/:id/history", r.relationshipHistory)

	// Member routes
	e.POST("/members", r.createMember)
	e.GET("/members", r.listMembers)
	e.GET("/members/:id", r.getMember)
	e.DELETE("/members/:id", r.deleteMember)
	e.POST("/members/:id/relationships/batch", r.materialize)

	e.GET("/search", r.search)
}
