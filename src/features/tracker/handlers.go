package tracker

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lmoretti/waxshelf/src/collection"
)

// ArtworkProvider resolves a cached, resized cover image for a record.
type ArtworkProvider interface {
	Thumbnail(imageURL string) ([]byte, string, error)
}

// Handler is the handler for the tracker feature.
type Handler struct {
	service *Service
	artwork ArtworkProvider
}

// NewHandler creates a new handler for the tracker feature.
func NewHandler(service *Service, artwork ArtworkProvider) *Handler {
	return &Handler{service: service, artwork: artwork}
}

// GetCollection returns the projected view of the active collection.
func (h *Handler) GetCollection(c *fiber.Ctx) error {
	slog.Debug("GetCollection handler called")

	criteria := criteriaFromQuery(c)
	view := h.service.View(criteria)
	return c.JSON(fiber.Map{
		"subject": h.service.Subject().Key(),
		"count":   len(view),
		"records": view,
	})
}

// GetRecord returns a single record by id.
func (h *Handler) GetRecord(c *fiber.Ctx) error {
	slog.Debug("GetRecord handler called", "id", c.Params("id"))
	record, err := h.service.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(record)
}

// CreateRecord adds a new record to the collection.
func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	slog.Debug("CreateRecord handler called")

	var fields CreateFields
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	result, err := h.service.Create(c.Context(), fields)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"record":       result.Record,
		"lookupFailed": result.LookupFailed,
	})
}

// UpdateRecord merges partial fields into an existing record.
func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	slog.Debug("UpdateRecord handler called", "id", c.Params("id"))

	var fields UpdateFields
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	record, err := h.service.Update(c.Context(), c.Params("id"), fields)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(record)
}

// StageRemove marks a record for deletion pending confirmation.
func (h *Handler) StageRemove(c *fiber.Ctx) error {
	slog.Debug("StageRemove handler called", "id", c.Params("id"))
	record, err := h.service.StageRemove(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"staged": record})
}

// CommitRemove confirms and executes the staged deletion.
func (h *Handler) CommitRemove(c *fiber.Ctx) error {
	slog.Debug("CommitRemove handler called")
	if err := h.service.CommitRemove(c.Context()); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CancelRemove discards the staged deletion.
func (h *Handler) CancelRemove(c *fiber.Ctx) error {
	slog.Debug("CancelRemove handler called")
	h.service.CancelRemove()
	return c.SendStatus(fiber.StatusNoContent)
}

// Reorder replaces the stored order with the supplied id sequence. With
// ?debounce=true the order is scheduled instead, so rapid drag updates
// coalesce into a single commit.
func (h *Handler) Reorder(c *fiber.Ctx) error {
	slog.Debug("Reorder handler called")

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if c.Query("debounce") == "true" {
		h.service.ScheduleReorder(body.IDs)
		return c.SendStatus(fiber.StatusAccepted)
	}
	if err := h.service.Reorder(c.Context(), body.IDs); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RefreshRecord re-resolves a record's metadata from its catalog link.
func (h *Handler) RefreshRecord(c *fiber.Ctx) error {
	slog.Debug("RefreshRecord handler called", "id", c.Params("id"))
	record, err := h.service.RefreshFromCatalog(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(record)
}

// ExportCollection downloads the full collection as a JSON file.
func (h *Handler) ExportCollection(c *fiber.Ctx) error {
	slog.Debug("ExportCollection handler called")
	payload, err := h.service.Export()
	if err != nil {
		slog.Error("Export failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "export failed",
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="collection.json"`)
	return c.Send(payload)
}

// ImportCollection merges an uploaded JSON array into the collection.
func (h *Handler) ImportCollection(c *fiber.Ctx) error {
	slog.Debug("ImportCollection handler called")
	summary, err := h.service.Import(c.Context(), c.Body())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(summary)
}

// RandomRecord returns one random record from the projected view.
func (h *Handler) RandomRecord(c *fiber.Ctx) error {
	slog.Debug("RandomRecord handler called")
	record, ok := h.service.Random(criteriaFromQuery(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "collection view is empty",
		})
	}
	return c.JSON(record)
}

// GetArtwork serves a cached, resized cover thumbnail for a record.
func (h *Handler) GetArtwork(c *fiber.Ctx) error {
	slog.Debug("GetArtwork handler called", "id", c.Params("id"))
	record, err := h.service.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if record.ImageURL == "" || record.ImageURL == collection.DefaultImageRef {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "record has no cover image",
		})
	}
	data, contentType, err := h.artwork.Thumbnail(record.ImageURL)
	if err != nil {
		slog.Error("Artwork fetch failed", "id", record.ID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "artwork fetch failed",
		})
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func criteriaFromQuery(c *fiber.Ctx) collection.Criteria {
	criteria := collection.Criteria{
		TextQuery: c.Query("q"),
		Artist:    c.Query("artist"),
		SortKey:   collection.SortKey(c.Query("sort", string(collection.SortCustom))),
	}
	if genres := c.Query("genres"); genres != "" {
		criteria.Genres = strings.Split(genres, ",")
	}
	for _, format := range strings.Split(c.Query("formats"), ",") {
		switch strings.TrimSpace(format) {
		case "vinyl":
			criteria.Formats.Vinyl = true
		case "cd":
			criteria.Formats.CD = true
		case "cassette":
			criteria.Formats.Cassette = true
		}
	}
	return criteria
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, collection.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, collection.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, collection.ErrReadOnly):
		status = fiber.StatusForbidden
	case errors.Is(err, collection.ErrStaleOrder):
		status = fiber.StatusConflict
	case errors.Is(err, ErrSubjectChanged):
		status = fiber.StatusConflict
	case errors.Is(err, collection.ErrImportFormat):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, collection.ErrNoLinkAvailable):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, collection.ErrLookupFailure):
		status = fiber.StatusBadGateway
	case collection.IsStorageFailure(err):
		status = fiber.StatusBadGateway
	}
	slog.Debug("Request failed", "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
