package main

import (
	"context"
	"net/http"
	"time"

	api "github.com/examgate/examgate/internal/api/http"
	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/config"
	"github.com/examgate/examgate/internal/db"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/logger"
	"github.com/examgate/examgate/internal/rbac"
	"github.com/examgate/examgate/internal/storage"
	"github.com/examgate/examgate/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	store := exam.NewSQLStore(dbh)
	svc := exam.NewService(store, nil)
	guard := rbac.NewGuard(store)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store init failed")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, store))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/api", func(ar chi.Router) {
			// Student flow
			ar.Post("/exams/join", api.JoinExamHandler(svc, guard))
			ar.Get("/exams/code/{examCode}", api.ExamInstructionsHandler(svc, guard))
			ar.Get("/students/{studentID}/result", api.StudentResultByQueryHandler(svc, guard))

			// Teacher flow
			ar.Get("/exams/code/{examCode}/attempts", api.RosterByCodeHandler(svc, guard))
			ar.Get("/exams/{examID}/results", api.ExamResultsHandler(svc, guard))
			ar.Get("/exams/{examID}/students/{studentID}", api.StudentResultHandler(svc, guard))

			api.MountUploads(ar, upload.Config{
				Accept:    cfg.UploadAccept,
				MaxSizeMB: cfg.UploadMaxMB,
			}, bs)
		})
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBDriver).Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
