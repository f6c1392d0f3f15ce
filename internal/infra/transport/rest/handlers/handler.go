package handlers

import (
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

type Handlers struct {
	service usecase.Service
}

func NewHandlers(service usecase.Service) *Handlers {
	return &Handlers{service: service}
}
