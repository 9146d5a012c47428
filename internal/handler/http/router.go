package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/teamzen/hris-backend-go/internal/config"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/handler/http/middleware"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
)

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Auth         AuthHandler
	Leave        LeaveHandler
	Attendance   AttendanceHandler
	User         UserHandler
	Organization OrganizationHandler
}

func NewRouter(cfg config.AppConfig, JWTService jwt.Service, m *metrics.Metrics, health HealthCheck, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "teamzen-hris"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	if m != nil {
		r.Use(m.Middleware)
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			if health != nil {
				if err := health(r.Context()); err != nil {
					slog.Error("Health check failed", "error", err)
					response.InternalServerError(w, "database unavailable")
					return
				}
			}
			response.Success(w, map[string]string{"status": "ok"})
		})

		r.Post("/auth/login", h.Auth.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.Get("/", h.Leave.ListTypes)
					r.Get("/{id}", h.Leave.GetType)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveManageTypes))
						r.Post("/", h.Leave.CreateType)
						r.Put("/{id}", h.Leave.UpdateType)
					})
				})

				r.Route("/balances", func(r chi.Router) {
					r.Get("/me", h.Leave.GetMyBalances)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveViewAll))
						r.Get("/", h.Leave.GetBalances)
						r.Get("/{id}/events", h.Leave.ListBalanceEvents)
					})
				})

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/me", h.Leave.GetMyRequests)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Post("/{id}/cancel", h.Leave.CancelRequest)

					r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", h.Leave.ListRequests)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})

				r.Route("/holidays", func(r chi.Router) {
					r.Get("/", h.Leave.ListHolidays)
					r.With(middleware.RequirePermission(user.PermissionLeaveManageTypes)).Post("/", h.Leave.CreateHoliday)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/me", h.Attendance.GetMyAttendance)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.ListAttendance)

				r.Route("/corrections", func(r chi.Router) {
					r.Post("/", h.Attendance.RequestCorrection)
					r.Get("/me", h.Attendance.GetMyCorrections)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.ListCorrections)
					r.Post("/{id}/cancel", h.Attendance.CancelCorrection)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceApprove))
						r.Post("/{id}/approve", h.Attendance.ApproveCorrection)
						r.Post("/{id}/reject", h.Attendance.RejectCorrection)
					})
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.User.GetMe)
				r.Patch("/me", h.User.UpdateMe)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Post("/", h.User.CreateUser)
					r.Get("/", h.User.ListUsers)
					r.Get("/{id}", h.User.GetUser)
					r.Post("/{id}/offboard", h.User.OffboardUser)
				})
			})

			r.Get("/organization", h.Organization.GetOrganization)

			r.Route("/offices", func(r chi.Router) {
				r.Get("/", h.Organization.ListOffices)
				r.With(middleware.RequirePermission(user.PermissionOrgManage)).Post("/", h.Organization.CreateOffice)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Organization.ListDepartments)
				r.With(middleware.RequirePermission(user.PermissionOrgManage)).Post("/", h.Organization.CreateDepartment)
			})
		})
	})
	return r
}
