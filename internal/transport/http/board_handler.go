package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "deliveryboard/internal/errors"
	"deliveryboard/internal/exporter"
	"deliveryboard/internal/middleware"
	"deliveryboard/internal/services"
	api "deliveryboard/pkg/contracts/api/v1"
	"deliveryboard/pkg/contracts/domain"
)

type contextKey string

const kindContextKey contextKey = "record_kind"

// BoardHandler serves the classified boards, confirmations and exports
type BoardHandler struct {
	service      BoardServiceInterface
	exporter     *exporter.BoardExporter
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewBoardHandler creates a board handler
func NewBoardHandler(service BoardServiceInterface, exp *exporter.BoardExporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BoardHandler {
	return &BoardHandler{
		service:      service,
		exporter:     exp,
		validator:    middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "board_handler")),
	}
}

// Register adds the board routes to r, which is expected to be mounted at /api
func (h *BoardHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Dashboard endpoints
		r.Get("/reservas", h.GetBoard(domain.KindReservation))
		r.Get("/requisicoes", h.GetBoard(domain.KindRequisition))

		r.Route("/confirmacoes", func(r chi.Router) {
			r.Get("/", h.ListConfirmations)
			r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/", h.Confirm)
		})
	})

	r.Route("/reports/{kind}", func(r chi.Router) {
		r.Use(h.KindCtx)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetSnapshot)
		r.With(render.SetContentType(render.ContentTypeJSON)).Post("/refresh", h.Refresh)
		r.Get("/export", h.Export)
	})
}

// KindCtx resolves the {kind} URL parameter
func (h *BoardHandler) KindCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseRecordKind(chi.URLParam(r, "kind"))
		if err != nil {
			h.errorHandler.HandleError(w, r, unknownKind(err))
			return
		}
		ctx := context.WithValue(r.Context(), kindContextKey, kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func kindFrom(ctx context.Context) domain.RecordKind {
	kind, _ := ctx.Value(kindContextKey).(domain.RecordKind)
	return kind
}

// GetBoard handles GET /api/reservas and GET /api/requisicoes. Before the
// first successful refresh every bucket is an empty list.
func (h *BoardHandler) GetBoard(kind domain.RecordKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, h.service.Result(kind))
	}
}

// GetSnapshot handles GET /api/reports/{kind}
func (h *BoardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	kind := kindFrom(r.Context())
	snap := h.service.Snapshot(kind)
	if snap == nil {
		h.errorHandler.HandleError(w, r, boardNotFound(kind))
		return
	}
	render.JSON(w, r, snap)
}

// Refresh handles POST /api/reports/{kind}/refresh
func (h *BoardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	kind := kindFrom(r.Context())
	reqID := chimiddleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "manual refresh requested",
		slog.String("kind", string(kind)),
		slog.String("request_id", reqID),
	)

	snap, err := h.service.Refresh(r.Context(), kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, snap)
}

// Export handles GET /api/reports/{kind}/export?format=xlsx|csv
func (h *BoardHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind := kindFrom(r.Context())

	allowed := make([]string, 0, len(exporter.Formats))
	for _, f := range exporter.Formats {
		allowed = append(allowed, string(f))
	}
	name, ok := h.query.ValidateEnum(w, r, "format", allowed, string(exporter.FormatXLSX))
	if !ok {
		return
	}
	format := exporter.Format(name)

	snap := h.service.Snapshot(kind)
	if snap == nil {
		h.errorHandler.HandleError(w, r, boardNotFound(kind))
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, snap, format); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("kind", string(kind)),
			slog.String("format", name),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.Filename(snap, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Confirm handles POST /api/confirmacoes. The response is written after the
// board has been re-classified with the new answer.
func (h *BoardHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req api.ConfirmRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}
	kind, err := domain.ParseRecordKind(req.Kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, unknownKind(err))
		return
	}

	entry := domain.ConfirmationEntry{RecordID: req.ID, Arrived: *req.Arrived, Kind: kind}
	snap, err := h.service.Confirm(r.Context(), entry)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	resp := api.ConfirmResponse{Status: "ok", ID: req.ID, Arrived: *req.Arrived, Kind: kind}
	if snap != nil {
		resp.Counts = snap.Result.Counts()
		if cr, found := snap.Result.Find(req.ID); found {
			resp.Bucket = cr.Bucket
		}
	}
	render.JSON(w, r, resp)
}

// ListConfirmations handles GET /api/confirmacoes
func (h *BoardHandler) ListConfirmations(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Confirmations(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	if entries == nil {
		entries = []domain.ConfirmationEntry{}
	}
	render.JSON(w, r, api.ConfirmationList{Status: "success", Data: entries, Count: len(entries)})
}

// mapServiceError converts board service errors to API errors
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrConfirmationNotSaved):
		return apierrors.ConfirmationNotSaved(err)
	case errors.Is(err, services.ErrUnknownKind):
		return unknownKind(err)
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.ErrValidation("id", err.Error())
	case errors.Is(err, services.ErrNoSnapshot):
		return apierrors.NewNotFoundError("board")
	case errors.Is(err, services.ErrStoreUnavailable):
		return apierrors.NewStorageError("confirmation store unavailable", err).WithCode(apierrors.CodeStoreUnavailable)
	case errors.Is(err, services.ErrSourceUnavailable):
		return apierrors.NewSourceUnavailableError("report source unavailable", err).WithCode(apierrors.CodeSourceUnavailable)
	case errors.Is(err, services.ErrParseFailed):
		return apierrors.NewParsingError("report could not be parsed", err).WithCode(apierrors.CodeParseFailed)
	default:
		return err
	}
}

func unknownKind(err error) error {
	return apierrors.NewAppValidationError(err.Error()).WithCode(apierrors.CodeUnknownKind)
}

func boardNotFound(kind domain.RecordKind) error {
	return apierrors.NewNotFoundError(fmt.Sprintf("board for %s", kind)).WithContext("kind", string(kind))
}
