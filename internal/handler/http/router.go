package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	jwtAuth *jwtauth.JWTAuth,
	payrollHandler PayrollHandler,
	statutoryHandler StatutoryHandler,
	loanHandler LoanHandler,
	thrHandler ThrHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtAuth))
		r.Use(middleware.AuthRequired)
		r.Use(middleware.RequireCompany)

		r.Route("/payroll", func(r chi.Router) {
			r.Route("/settings", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.GetSettings)
				r.With(middleware.RequirePermission(user.PermissionPayrollSettings)).Put("/", payrollHandler.UpdateSettings)
			})

			r.With(middleware.RequirePermission(user.PermissionPayrollView)).
				Post("/statutory/calculate", statutoryHandler.Calculate)

			r.With(middleware.RequirePermission(user.PermissionPayrollRun)).Post("/runs", payrollHandler.RunPayroll)

			r.Route("/periods", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListPeriods)

				r.Route("/{id}", func(r chi.Router) {
					// View
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionPayrollView))
						r.Get("/", payrollHandler.GetPeriod)
						r.Get("/payslips", payrollHandler.ListPayslips)
						r.Get("/export", payrollHandler.ExportPeriod)
					})

					r.With(middleware.RequirePermission(user.PermissionPayrollRun)).Post("/regenerate", payrollHandler.RegenerateDraft)
					r.With(middleware.RequirePermission(user.PermissionPayrollFinalize)).Post("/finalize", payrollHandler.FinalizePeriod)
				})
			})

			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/payslips/{id}", payrollHandler.GetPayslip)
		})

		r.Route("/loans", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionLoanCreate)).Post("/", loanHandler.Create)
			r.With(middleware.RequirePermission(user.PermissionLoanViewAll)).Get("/", loanHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLoanViewAll))
					r.Get("/", loanHandler.Get)
					r.Get("/schedule", loanHandler.GetSchedule)
					r.Get("/payments", loanHandler.ListPayments)
				})

				// Lifecycle
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLoanApprove))
					r.Post("/approve", loanHandler.Approve)
					r.Post("/reject", loanHandler.Reject)
					r.Post("/cancel", loanHandler.Cancel)
					r.Post("/disburse", loanHandler.Disburse)
				})

				r.With(middleware.RequirePermission(user.PermissionLoanPayment)).Post("/payments", loanHandler.RecordPayment)
			})
		})

		r.With(middleware.RequirePermission(user.PermissionThrView)).Get("/employees/{id}/thr", thrHandler.GetForEmployee)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}

// pathID reads a UUID route parameter, answering 422 when it is missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)

	var errs validator.ValidationErrors
	if validator.IsEmpty(id) {
		errs = append(errs, validator.ValidationError{Field: param, Message: "is required"})
	} else if !validator.IsValidUUID(id) {
		errs = append(errs, validator.ValidationError{Field: param, Message: "must be a valid UUID"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return "", false
	}
	return id, true
}
