package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"go.uber.org/zap"
)

// ErrorResponse тело ответа при ошибке
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFor код ответа по группе доменной ошибки
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError отвечает доменной ошибкой; всё остальное логируется и
// уходит клиенту как 500 без подробностей
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := service.AsError(err); ok && e.Kind != service.KindInternal {
		writeError(w, statusFor(e.Kind), e.Code, e.Message)
		return
	}

	if r.Context().Err() != nil {
		h.logger.Warn("Request cancelled", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, service.ErrInternal.Code, service.ErrInternal.Message)
}
