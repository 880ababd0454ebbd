package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/txmanager"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgRetry         = "параллельное изменение, повторите запрос"

	maxBodyBytes = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError пишет ошибку без классификации
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{
		Code: http.StatusBadRequest, Kind: string(domain.KindInvalidInput), Reason: string(domain.KindInvalidInput), Message: message,
	})
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusForbidden, ErrorResponse{
		Code: http.StatusForbidden, Kind: string(domain.KindAuthorizationDenied), Reason: "StaffOnly", Message: message,
	})
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code: http.StatusInternalServerError, Kind: string(domain.KindInternal), Message: msgInternalError,
	})
}

// StatusOf возвращает HTTP статус для ошибки сервиса или use case
func StatusOf(err error) int {
	if errors.Is(err, txmanager.ErrSerialization) {
		return http.StatusConflict
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindCapacityExceeded, domain.KindStateConflict:
		return http.StatusConflict
	case domain.KindTemporalViolation:
		return http.StatusUnprocessableEntity
	case domain.KindAuthorizationDenied:
		return http.StatusForbidden
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError пишет классифицированную ошибку и возвращает выбранный статус.
// Текст внутренних ошибок клиенту не отдаётся
func RespondDomainError(w http.ResponseWriter, err error) int {
	status := StatusOf(err)
	switch {
	case errors.Is(err, txmanager.ErrSerialization):
		RespondJSON(w, status, ErrorResponse{
			Code: status, Kind: string(domain.KindStateConflict), Reason: "ConcurrentUpdate", Message: msgRetry,
		})
	case status == http.StatusInternalServerError:
		RespondInternalError(w)
	default:
		RespondJSON(w, status, ErrorResponse{
			Code:    status,
			Kind:    string(domain.KindOf(err)),
			Reason:  domain.ReasonOf(err),
			Message: err.Error(),
		})
	}
	return status
}

// DecodeJSON декодирует тело запроса, неизвестные поля запрещены
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// DecodeOptionalJSON декодирует необязательное тело: пустое тело не считается ошибкой
// независимо от Content-Length
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := DecodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// PathID извлекает положительный int64 параметр пути
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// QueryBool разбирает необязательный булев query-параметр
func QueryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
