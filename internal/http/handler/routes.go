package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plagcheck/internal/extract"
	"plagcheck/internal/service"
)

const (
	serviceName    = "Plagiarism Checker API"
	serviceVersion = "1.0.0"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.CheckService, reg *prometheus.Registry) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/check-plagiarism/", CheckPlagiarism(svc))

	app.Get("/documents", ListDocuments(svc))
	app.Get("/documents/:id", GetDocument(svc))

	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})
}

// Root reports service identity and liveness.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": serviceName,
			"version": serviceVersion,
			"status":  "running",
		})
	}
}

// HealthCheck verifies database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a bare liveness endpoint with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// checkResponse is the success body of POST /check-plagiarism/.
type checkResponse struct {
	Message              string  `json:"message"`
	DocumentID           string  `json:"document_id"`
	Filename             string  `json:"filename"`
	UploadTimestamp      string  `json:"upload_timestamp"`
	SimilarityScore      float64 `json:"similarity_score"`
	SimilarityPercentage string  `json:"similarity_percentage"`
	FileHash             string  `json:"file_hash"`
	TextExtractedLength  int     `json:"text_extracted_length"`
}

// CheckPlagiarism accepts a multipart upload (field name: file) and runs the
// check pipeline, translating pipeline errors to HTTP statuses.
func CheckPlagiarism(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.Check(c.UserContext(), f, fh.Filename)
		if err != nil {
			return writeCheckError(c, err)
		}

		doc := res.Document
		return c.Status(fiber.StatusOK).JSON(checkResponse{
			Message:              res.Message,
			DocumentID:           doc.ID,
			Filename:             fh.Filename,
			UploadTimestamp:      doc.UploadedAt.UTC().Format(time.RFC3339),
			SimilarityScore:      res.SimilarityScore,
			SimilarityPercentage: fmt.Sprintf("%.2f%%", res.SimilarityScore),
			FileHash:             doc.FileHash,
			TextExtractedLength:  res.TextExtractedLength,
		})
	}
}

// writeCheckError maps pipeline failures to the API error taxonomy.
// Validation and extraction problems carry their precise reason; dependency
// and internal faults are logged in full and answered generically.
func writeCheckError(c *fiber.Ctx, err error) error {
	var exErr *extract.ExtractionError
	var depErr *service.DependencyError

	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error())
	case errors.Is(err, service.ErrEmptyUpload), errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_UPLOAD", service.ErrEmptyUpload.Error())
	case errors.As(err, &exErr):
		return writeError(c, fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED", exErr.Error())
	case errors.Is(err, service.ErrNoText):
		return writeError(c, fiber.StatusUnprocessableEntity, "NO_TEXT_EXTRACTED", service.ErrNoText.Error())
	case errors.As(err, &depErr):
		log.Printf("request %s: %v", requestIDFromCtx(c), err)
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "a backing service is unavailable")
	default:
		log.Printf("request %s: %v", requestIDFromCtx(c), err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListDocuments returns ledger records with limit/offset pagination.
func ListDocuments(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			log.Printf("request %s: list documents: %v", requestIDFromCtx(c), err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single ledger record by ID.
func GetDocument(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			log.Printf("request %s: get document: %v", requestIDFromCtx(c), err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}
