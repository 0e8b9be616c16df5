package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	mx               *chi.Mux
	remindersService RemindersServiceI
	queryService     QueryServiceI
}

type ServicesList struct {
	RemindersService RemindersServiceI
	QueryService     QueryServiceI
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:               chi.NewMux(),
		remindersService: servicesOptions.RemindersService,
		queryService:     servicesOptions.QueryService,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/reminders", s.CreateReminder)
		r.Get("/reminders", s.GetReminders)
		r.Get("/reminders/{id}", s.GetReminder)
		r.Put("/reminders/{id}", s.UpdateReminder)
		r.Delete("/reminders/{id}", s.DeleteReminder)
		r.Patch("/reminders/{id}/status", s.UpdateReminderStatus)
		r.Get("/reminders/{id}/activities", s.GetActivities)
		r.Post("/reminders/{id}/activities", s.AddActivity)
		r.Put("/reminders/{id}/activities/{activityID}", s.UpdateActivity)
		r.Delete("/reminders/{id}/activities/{activityID}", s.DeleteActivity)
		r.Get("/occurrences", s.GetOccurrences)
		r.Get("/reminders/{id}/occurrences/{day}", s.GetOccurrenceState)
		r.Put("/reminders/{id}/occurrences/{day}", s.SetOccurrenceState)
	})
}

func (s *Server) Run(address string) error {
	return http.ListenAndServe(address, s.mx)
}

// Handler exposes the configured mux, used by handler tests.
func (s *Server) Handler() http.Handler {
	return s.mx
}
