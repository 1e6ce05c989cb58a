/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind proxies
  3. httplog:    Structured request logging via slog
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/employees/*    Employee management and attendance summaries
  /api/attendance/*   Daily attendance records
  /api/loans/*        Loan issuance, schedules, payments
  /api/payslips/*     Payslip preview and lifecycle
  /api/purchasing/*   Suppliers, products, purchase orders
  /api/scenarios/*    Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if logger != nil {
		r.Use(httplog.RequestLogger(logger, &httplog.Options{
			Level: slog.LevelInfo,
		}))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Heartbeat("/healthz"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/attendance/summary", h.GetAttendanceSummary)
		})

		// Attendance routes
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Post("/", h.SaveAttendance)
			r.Delete("/{id}", h.DeleteAttendance)
		})

		// Loan routes
		r.Route("/loans", func(r chi.Router) {
			r.Get("/", h.ListLoans)
			r.Post("/", h.CreateLoan)
			r.Get("/{id}", h.GetLoan)
			r.Delete("/{id}", h.DeleteLoan)
			r.Post("/{id}/payments", h.PostPayment)
		})

		// Payslip routes
		r.Route("/payslips", func(r chi.Router) {
			r.Get("/", h.ListPayslips)
			r.Post("/", h.CreatePayslip)
			r.Post("/preview", h.PreviewPayslip)
			r.Get("/{id}", h.GetPayslip)
			r.Put("/{id}", h.UpdatePayslip)
			r.Delete("/{id}", h.DeletePayslip)
		})

		// Purchasing routes
		r.Route("/purchasing", func(r chi.Router) {
			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", h.ListSuppliers)
				r.Post("/", h.SaveSupplier)
				r.Delete("/{id}", h.DeleteSupplier)
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.SaveProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Post("/", h.PlaceOrder)
				r.Delete("/{id}", h.DeleteOrder)
			})
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
