package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kkarhua/fullrest-backend/api/responses"
	"github.com/kkarhua/fullrest-backend/api/validators"
	"github.com/kkarhua/fullrest-backend/internal/media"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
)

const (
	uploadField = "file"
	// multipart framing allowance on top of the file size limit
	multipartOverhead = 1 << 20
)

// ImagesUpload accepts a multipart "file" field and stores it as the image
// of the product in the path.
func ImagesUpload(svc media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "media")
			return
		}
		productID, err := validators.ParseIDParam(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "file exceeds the maximum upload size"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		file, header, err := r.FormFile(uploadField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file is required"))
			return
		}
		defer file.Close()

		out, err := svc.Upload(r.Context(), productID, header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// ImagesServe streams a stored image by file name.
func ImagesServe(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "media")
			return
		}
		name := chi.URLParam(r, "fileName")
		f, err := svc.Open(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stat image"))
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}

func ImagesDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "media")
			return
		}
		productID, err := validators.ParseIDParam(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": "image deleted", "productoId": productID})
	}
}
