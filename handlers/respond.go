package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/middleware"
	"challengeTrackerAPI/services"
)

const (
	requestTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

type validationErrorResponse struct {
	Error  string                `json:"error"`
	Fields []services.FieldError `json:"fields"`
}

// respondWithServiceError maps the errors shared by every service call. Not-found is
// left to the caller since its status and wording differ per route.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, op string, err error, internalMsg string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, validationErrorResponse{Error: verr.Message, Fields: verr.Fields})
	case errors.Is(err, services.ErrAlreadyJoined), errors.Is(err, services.ErrUsernameTaken):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInconsistent):
		logError(r, op, "consistency violation: %v", err)
		respondWithError(w, http.StatusInternalServerError, internalMsg)
	default:
		logError(r, op, "%v", err)
		respondWithError(w, http.StatusInternalServerError, internalMsg)
	}
}

func logError(r *http.Request, op string, format string, args ...any) {
	requestID, _ := middleware.GetRequestID(r.Context())
	log.Printf("%s Handler [%s]: "+format, append([]any{op, requestID}, args...)...)
}

func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// respondWithDecodeError reports a body that is not valid JSON for the request type.
// A value of the wrong JSON type is reported against its field.
func respondWithDecodeError(w http.ResponseWriter, err error, message string) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		respondWithJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:  message,
			Fields: []services.FieldError{{Field: typeErr.Field, Message: "must be " + jsonKind(typeErr.Type)}},
		})
		return
	}
	respondWithError(w, http.StatusBadRequest, message)
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
