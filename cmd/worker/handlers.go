package main

import (
	"github.com/hibiken/asynq"

	overdueJob "library-lending-backend/internal/domains/overdue/job"
	"library-lending-backend/internal/shared"
	"library-lending-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	notifyOverdue *overdueJob.NotifyOverdueHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		notifyOverdue: c.NotifyOverdueJob,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeNotifyOverdueReaders, h.notifyOverdue.ProcessTask)
}
