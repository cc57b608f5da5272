package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enaya12q/smartlabs/internal/api/handlers"
	"github.com/enaya12q/smartlabs/internal/auth"
	"github.com/enaya12q/smartlabs/internal/config"
	"github.com/enaya12q/smartlabs/internal/middleware"
	"github.com/enaya12q/smartlabs/internal/services"
)

type RouterDeps struct {
	Cfg           config.Config
	TM            *auth.TokenManager
	UserSvc       *services.UserService
	EarningsSvc   *services.EarningsService
	WithdrawalSvc *services.WithdrawalService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	sess := middleware.NewSessionMiddleware(d.TM)
	authH := handlers.NewAuthHandler(d.UserSvc, d.TM, d.Cfg)
	earnH := handlers.NewEarningsHandler(d.EarningsSvc, d.WithdrawalSvc, d.Cfg)
	adminH := handlers.NewAdminHandler(d.UserSvc, d.WithdrawalSvc, d.TM, d.Cfg)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)

		r.Group(func(r chi.Router) {
			r.Use(sess.RequireUser)
			r.Get("/user_data", authH.UserData)
			r.Post("/view_ad", earnH.ViewAd)
			r.Post("/withdraw", earnH.Withdraw)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminH.Login)

			r.Group(func(r chi.Router) {
				r.Use(sess.RequireAdmin)
				r.Get("/users", adminH.ListUsers)
				r.Get("/withdrawals", adminH.ListWithdrawals)
				r.Post("/withdrawals/{id}/{status}", adminH.SetWithdrawalStatus)
			})
		})
	})

	return r
}
