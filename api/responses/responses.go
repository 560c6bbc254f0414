package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"github.com/kkarhua/fullrest-backend/pkg/types"
)

// WriteSuccess writes data inside the {"data": ...} envelope with 200.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteJSON writes payload as-is, without the data envelope. Auth endpoints
// use the flat contract.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

// WriteError maps err onto the error envelope and logs it as request.error.
// Untyped errors become INTERNAL_ERROR without leaking their message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	code := pkgerrors.CodeOf(err)
	meta := pkgerrors.MetadataFor(code)
	typed := pkgerrors.As(err)

	msg := meta.PublicMessage
	if typed != nil && pkgerrors.ExposesMessage(code) {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Message: msg,
		Error: types.APIError{
			Code:    string(code),
			Message: msg,
		},
	}

	if typed != nil && meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		ctx = logg.WithFields(ctx, map[string]any{"status": meta.HTTPStatus, "error_code": string(code)})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.error", err)
		}
	}

	WriteJSON(w, meta.HTTPStatus, payload)
}
