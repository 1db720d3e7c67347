package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"opencure/internal/domain"
	"opencure/internal/escrow"
	"opencure/internal/middleware"
	"opencure/internal/token"
)

// App carries the collaborators shared by every handler.
type App struct {
	Registry *escrow.Registry
	Ledger   token.Ledger
	// Journal is nil when no database is configured.
	Journal  domain.EventJournal
	Logger   zerolog.Logger
	Decimals int32
	Faucet   bool

	// APIVersion and PublicURL fill info.version and servers in the served
	// OpenAPI document. An empty PublicURL means the request host.
	APIVersion string
	PublicURL  string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": msg},
	})
}

// fail renders err with the status of its kind and a message in the
// request locale.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", localize(middleware.LocaleFromContext(r.Context()), "internal", "internal error"))
		return
	}
	status := statusForKind(de.Kind)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.error(w, status, de.Code, localize(middleware.LocaleFromContext(r.Context()), de.Code, de.Message))
}

func statusForKind(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindState:
		return http.StatusConflict
	case domain.KindResource:
		return http.StatusUnprocessableEntity
	case domain.KindTemporal:
		return http.StatusPreconditionFailed
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errInvalidPayload
}

var errInvalidPayload = &domain.Error{Kind: domain.KindValidation, Code: "invalid_payload", Message: "invalid payload"}

func (a *App) project(r *http.Request) (*escrow.Account, error) {
	return a.Registry.Project(chi.URLParam(r, "id"))
}

func milestoneID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "mid"))
	if err != nil {
		return 0, domain.ErrInvalidMilestone
	}
	return id, nil
}

// seconds converts a JSON seconds count. Counts a time.Duration cannot hold
// are rejected instead of wrapping; the sign is left to the escrow rules.
func seconds(n int64) (time.Duration, error) {
	const limit = math.MaxInt64 / int64(time.Second)
	if n > limit || n < -limit {
		return 0, domain.ErrInvalidDuration
	}
	return time.Duration(n) * time.Second, nil
}

// queryLimit reads ?limit=. Absent means zero, which lets the store pick.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidInput
	}
	return n, nil
}

func caller(r *http.Request) common.Address {
	return middleware.CallerFromContext(r.Context())
}
