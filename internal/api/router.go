package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(apiHandler.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", apiHandler.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Device-facing routes
	r.Post("/trigger", apiHandler.TriggerHandler)
	r.Get("/config", apiHandler.ConfigHandler)
	r.Get("/history", apiHandler.HistoryHandler)
	r.Post("/register_device", apiHandler.RegisterDeviceHandler)

	// Catalog edits
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.JWTAuthMiddleware)

		r.Put("/config/{buttonID}/label", apiHandler.UpdateLabelHandler)
		r.Put("/config/{buttonID}/texts/{lang}", apiHandler.UpdateTextHandler)
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/events", apiHandler.EventsHandler)
		r.Get("/devices", apiHandler.ListDevicesHandler)
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/security-questions", apiHandler.SecurityQuestionsHandler)
		r.Get("/password/question", apiHandler.PasswordQuestionHandler)
		r.Post("/password/verify", apiHandler.VerifyAnswerHandler)
		r.Post("/password/reset", apiHandler.ResetPasswordHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/me/profile", apiHandler.GetProfileHandler)
			r.Put("/me/profile", apiHandler.UpdateProfileHandler)
			r.Get("/me/theme", apiHandler.GetThemeHandler)
			r.Put("/me/theme", apiHandler.SetThemeHandler)
			r.Get("/me/medicines", apiHandler.GetMedicinesHandler)
			r.Put("/me/medicines", apiHandler.SetMedicinesHandler)
			r.Post("/me/caretakers", apiHandler.AddCaretakerHandler)
			r.Get("/me/accessible", apiHandler.AccessibleAccountsHandler)
		})
	})

	return r
}
