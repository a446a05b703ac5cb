package routes

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lendly/lendly/internal/middleware"
	"github.com/lendly/lendly/internal/response"
	"github.com/lendly/lendly/internal/upload"
	"github.com/lendly/lendly/internal/user"
)

const kycUploadFolder = "lendly/kyc"

// RegisterUserRoutes wires the profile/KYC endpoints. The group is expected
// to carry the auth middleware; setup-profile and upload-kyc tolerate a
// missing token there and enforce authentication in the handler.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, uploader upload.Uploader, logger *slog.Logger) {
	r.Post("/setup-profile", h.SetupProfile)
	r.Post("/upload-kyc", h.UploadKYC)
	r.Get("/profile", middleware.RequireUser(), h.GetProfile)

	// Server-side document upload: accepts the image and returns the URL the
	// client then submits to /upload-kyc.
	r.Post("/kyc-file", middleware.RequireUser(), func(c *fiber.Ctx) error {
		if uploader == nil {
			return fiber.NewError(http.StatusServiceUnavailable, "Document storage is not configured")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "A document file is required")
		}

		f, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "Could not read the uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "Could not read the uploaded file")
		}

		name := fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().Unix(),
			strings.ToLower(filepath.Ext(fileHeader.Filename)))
		url, err := uploader.Upload(c.UserContext(), kycUploadFolder, name, data)
		if err != nil {
			logger.Error("kyc file upload failed", slog.Any("error", err))
			return fiber.NewError(http.StatusBadGateway, "Document upload failed")
		}

		return response.JSON(c, http.StatusOK, "Document uploaded", fiber.Map{"fileUrl": url})
	})
}
