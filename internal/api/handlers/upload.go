package handlers

import (
	"net/http"

	"github.com/shopora/shopora-platform/internal/api/middleware"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/utils/response"
	"github.com/shopora/shopora-platform/pkg/cloudinary"
)

// maxUploadSize caps product image uploads at 5 MiB.
const maxUploadSize = 5 << 20

// maxBatchImages matches the product gallery limit.
const maxBatchImages = 5

type UploadHandler struct {
	images cloudinary.Client
}

func NewUploadHandler(images cloudinary.Client) *UploadHandler {
	return &UploadHandler{images: images}
}

func (h *UploadHandler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if h.images == nil {
			response.Error(w, apperrors.ThirdPartyError("Image uploads are not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.Error(w, apperrors.BadRequestError("Image exceeds the 5 MB limit").WithError(err))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Error(w, apperrors.BadRequestError("Missing image file").WithError(err))
			return
		}
		defer file.Close()

		result, err := h.images.Upload(r.Context(), file, header.Filename)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("image upload failed", "error", err)
			response.Error(w, apperrors.ThirdPartyError("Image upload failed").WithError(err))

			return
		}

		middleware.LoggerFromContext(r.Context()).Info("image uploaded", "publicId", result.PublicID)
		response.Success(w, http.StatusCreated, result)
	}
}

// UploadBatch accepts up to maxBatchImages files under the "images" field for
// product galleries.
func (h *UploadHandler) UploadBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if h.images == nil {
			response.Error(w, apperrors.ThirdPartyError("Image uploads are not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBatchImages*maxUploadSize)

		if err := r.ParseMultipartForm(maxBatchImages * maxUploadSize); err != nil {
			response.Error(w, apperrors.BadRequestError("Upload exceeds the size limit").WithError(err))
			return
		}

		files := r.MultipartForm.File["images"]
		if len(files) == 0 {
			response.Error(w, apperrors.BadRequestError("Missing image files"))
			return
		}

		if len(files) > maxBatchImages {
			response.Error(w, apperrors.BadRequestError("A maximum of 5 images may be uploaded at once"))
			return
		}

		results := make([]*cloudinary.UploadResult, 0, len(files))

		for _, header := range files {
			file, err := header.Open()
			if err != nil {
				response.Error(w, apperrors.BadRequestError("Unreadable image file").WithError(err))
				return
			}

			result, err := h.images.Upload(r.Context(), file, header.Filename)
			file.Close()

			if err != nil {
				middleware.LoggerFromContext(r.Context()).Error("image upload failed",
					"filename", header.Filename, "error", err)
				response.Error(w, apperrors.ThirdPartyError("Image upload failed").WithError(err))

				return
			}

			results = append(results, result)
		}

		response.Success(w, http.StatusCreated, results)
	}
}

func (h *UploadHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if h.images == nil {
			response.Error(w, apperrors.ThirdPartyError("Image uploads are not configured"))
			return
		}

		publicID := r.PathValue("publicId")
		if publicID == "" {
			response.Error(w, apperrors.BadRequestError("Missing image public ID"))
			return
		}

		if err := h.images.Destroy(r.Context(), publicID); err != nil {
			response.Error(w, apperrors.ThirdPartyError("Image removal failed").WithError(err))
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Image removed"})
	}
}
