package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

var errMalformedBody = errors.New("malformed JSON body")

// codedDetail is the {"message", "code"} object carried in "detail".
type codedDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// validationItem mirrors one entry of a 422 detail list.
type validationItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type errorBody struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeValidation(w http.ResponseWriter, location string, fields validation.FieldErrors) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]validationItem, 0, len(names))
	for _, name := range names {
		items = append(items, validationItem{Loc: []string{location, name}, Msg: fields[name], Type: "value_error"})
	}
	writeDetail(w, http.StatusUnprocessableEntity, items)
}

// writeError maps service errors onto the wire contract. Coded errors with a
// code become {"detail": {"message", "code"}}, those without a plain string
// detail. Anything unexpected is logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		writeValidation(w, "body", fields)
		return
	}
	if errors.Is(err, errMalformedBody) {
		writeDetail(w, http.StatusUnprocessableEntity, []validationItem{
			{Loc: []string{"body"}, Msg: "Invalid JSON body", Type: "json_invalid"},
		})
		return
	}
	if ce, ok := apperrors.AsCoded(err); ok {
		if ce.Code == "" {
			writeDetail(w, ce.Status, ce.Message)
		} else {
			writeDetail(w, ce.Status, codedDetail{Message: ce.Message, Code: ce.Code})
		}
		return
	}
	if apperrors.Is(err, apperrors.ErrUserNotFound) || apperrors.Is(err, apperrors.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Not found")
		return
	}

	log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errMalformedBody
	}
	return nil
}

// queryInt parses an optional integer query parameter and checks it lies in
// [lo, hi]. A missing parameter yields def.
func queryInt(r *http.Request, name string, def, lo, hi int) (int, validation.FieldErrors) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.FieldErrors{name: "must be a valid integer"}
	}
	if n < lo || n > hi {
		return 0, validation.FieldErrors{name: "must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)}
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, validation.FieldErrors) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, validation.FieldErrors{name: "must be a valid boolean"}
	}
	return b, nil
}
