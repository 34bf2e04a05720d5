package handler

import (
	"viralcut/internal/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler() *Handler {
	return &Handler{
		Service: service.NewService(),
	}
}

// NewHandlerWithService wires an externally built service (used when the
// execution backend is chosen at startup).
func NewHandlerWithService(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}
