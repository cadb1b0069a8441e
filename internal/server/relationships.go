package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/entities"
)

type routes struct {
	h      Handlers
	logger *log.Logger
}

type createRelationshipBody struct {
	PersonID  string `json:"personId" validate:"required"`
	RelatedID string `json:"relatedId" validate:"required"`
	Type      string `json:"relationshipType" validate:"required"`
	Notes     string `json:"notes"`
}

type updateRelationshipBody struct {
	Type  *string `json:"relationshipType"`
	Notes *string `json:"notes"`
}

type relationshipsResponse struct {
	PersonID      string                  `json:"personId,omitempty"`
	Relationships []entities.Relationship `json:"relationships"`
}

func (r *routes) createRelationship(c echo.Context) error {
	body := new(createRelationshipBody)
	if err := c.Bind(body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(body); err != nil {
		return r.fail(c, err)
	}

	rel, err := r.h.Relationships.HandleCreate(c.Request().Context(), body.PersonID, body.Type, body.RelatedID, body.Notes)
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(http.StatusCreated, rel)
}

func (r *routes) updateRelationship(c echo.Context) error {
	body := new(updateRelationshipBody)
	if err := c.Bind(body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Type == nil && body.Notes == nil {
		return badRequest(c, "nothing to update: set relationshipType and/or notes")
	}

	rel, err := r.h.Relationships.HandleUpdate(c.Request().Context(), c.Param("id"), body.Type, body.Notes)
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(http.StatusOK, rel)
}

func (r *routes) deleteRelationship(c echo.Context) error {
	if err := r.h.Relationships.HandleDelete(c.Request().Context(), c.Param("id")); err != nil {
		return r.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// listRelationships returns the raw edges touching personId.
func (r *routes) listRelationships(c echo.Context) error {
	personID := c.QueryParam("personId")
	if personID == "" {
		return badRequest(c, "personId is required")
	}

	result, err := r.h.Relationships.HandleList(c.Request().Context(), personID, handlers.ListOptions{
		Raw:  true,
		Type: c.QueryParam("type"),
	})
	if err != nil {
		return r.fail(c, err)
	}

	rels := result.Raw
	if rels == nil {
		rels = []entities.Relationship{}
	}
	return c.JSON(http.StatusOK, relationshipsResponse{PersonID: personID, Relationships: rels})
}

// viewRelationships returns the canonical, labeled and grouped view of personId.
func (r *routes) viewRelationships(c echo.Context) error {
	personID := c.QueryParam("personId")
	if personID == "" {
		return badRequest(c, "personId is required")
	}

	result, err := r.h.Relationships.HandleList(c.Request().Context(), personID, handlers.ListOptions{
		Type: c.QueryParam("type"),
	})
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(http.StatusOK, result.View)
}

func (r *routes) relationshipHistory(c echo.Context) error {
	entries, err := r.h.Relationships.HandleHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, err)
	}
	if entries == nil {
		entries = []entities.AuditEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
