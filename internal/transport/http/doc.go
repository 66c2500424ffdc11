// Package http implements the HTTP handlers of the delivery board.
// Handlers stay thin: they parse the request, call a service and render the
// result. Business rules live in internal/services.
//
// # Routes
//
// BoardHandler and HealthHandler register their routes on a router mounted
// at /api:
//
//	GET  /api/reservas                   reservation board {on_track, delivered, late}
//	GET  /api/requisicoes                requisition board
//	GET  /api/reports/{kind}             snapshot envelope (result, source, today, refreshed_at)
//	POST /api/reports/{kind}/refresh     re-read the newest report now
//	GET  /api/reports/{kind}/export      download as ?format=xlsx (default) or csv
//	GET  /api/confirmacoes               stored confirmations, newest first
//	POST /api/confirmacoes               {id, arrived, kind} → {status:"ok", id, arrived, kind, bucket}
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//
// {kind} accepts the canonical names and the Portuguese aliases
// (reservas, requisicoes).
//
// # Error Handling
//
// All errors are RFC 7807 problem details written by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/confirmation/not-saved",
//	    "title": "Internal Server Error",
//	    "status": 500,
//	    "detail": "Confirmation could not be saved",
//	    "instance": "/api/confirmacoes",
//	    "error_code": "CONFIRMATION_NOT_SAVED"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// BoardServiceInterface.
package http
