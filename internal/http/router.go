package http

import (
	"net/http"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/config"
	"areasense/internal/http/handler"
	mw "areasense/internal/http/middleware"
	"areasense/internal/metrics"
	"areasense/internal/route"
	"areasense/internal/tip"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the REST surface is built on.
type Deps struct {
	Areas    *area.Service
	Tips     *tip.Service
	Queue    *tip.Queue
	Router   *route.Router
	Profiles auth.ProfileRepository
	JWT      *auth.JWT
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	ah := &handler.AuthHandler{Profiles: d.Profiles, JWT: d.JWT}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Profiles: d.Profiles}
	r.With(auth.RequireAuth(d.JWT)).Get("/me", me.Me)

	areaH := &handler.AreaHandler{Svc: d.Areas, TipSvc: d.Tips}
	r.Route("/areas", func(r chi.Router) {
		r.Get("/resolve", areaH.Resolve)
		r.Get("/{id}", areaH.Get)
		r.Get("/{id}/briefings", areaH.Briefings)
		r.Get("/{id}/events", areaH.Events)
		r.Get("/{id}/tips", areaH.Tips)
	})

	tipH := &handler.TipHandler{Svc: d.Tips}
	r.Route("/tips", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Post("/", tipH.Submit)
		r.Post("/{id}/votes", tipH.Vote)
		r.Post("/{id}/reports", tipH.Report)
	})

	modH := &handler.ModerationHandler{Queue: d.Queue, Svc: d.Tips}
	r.Route("/moderation", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))
		r.Use(auth.RequireModerator)

		r.Get("/queue", modH.List)
		r.Post("/tips/{id}/decision", modH.Decide)
	})

	platform, err := route.ParsePlatform(cfg.RoutePlatform)
	if err != nil {
		platform = route.PlatformAndroid
	}
	routeH := &handler.RouteHandler{Router: d.Router, Platform: platform}
	r.Get("/route/plan", routeH.Plan)

	return r
}
