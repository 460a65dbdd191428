package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"journal-hand/config"
	"journal-hand/models"
	"journal-hand/services"
	"journal-hand/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	journalsPublishedCounter    prometheus.Counter
	subscriptionsCreatedCounter prometheus.Counter
	feedRequestsCounter         prometheus.Counter
)

func init() {
	journalsPublishedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journals_published_total",
			Help: "Total number of journals published via the API.",
		},
	)
	subscriptionsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "Total number of subscription edges created.",
		},
	)
	feedRequestsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed requests served.",
		},
	)
	prometheus.MustRegister(journalsPublishedCounter, subscriptionsCreatedCounter, feedRequestsCounter)
}

// jwtAuthMiddleware verlangt ein gültiges Bearer-Token für alle Routen der Gruppe.
func jwtAuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer token"})
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// respondServiceError bildet die Service-Fehlertypen auf HTTP-Statuscodes ab.
// Es wird immer erst geloggt, dann geantwortet; alles Unerwartete fällt auf 500.
func respondServiceError(c *gin.Context, log *zap.Logger, msg string, err error) {
	var notFound *services.NotFoundError
	var validation *services.ValidationError
	var unauthorized *services.UnauthorizedError
	switch {
	case errors.As(err, &notFound):
		log.Warn(msg, zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &validation):
		log.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &unauthorized):
		log.Warn(msg, zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	default:
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// idParam parst den :id-Pfadparameter als UUID; ungültige IDs sind ein 400.
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to journal database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.Researcher{}, &models.Journal{}, &models.Subscription{}, &models.University{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Services
	files, err := storage.NewFileStore(cfg.FilesDir)
	if err != nil {
		logging.Fatal("File store creation failed", zap.Error(err))
	}
	researcherService := services.NewResearcherService(db, logging)
	journalService := services.NewJournalService(cfg, db, files, logging)
	subscriptionService := services.NewSubscriptionService(db, logging)
	authService := services.NewAuthService(cfg, db, logging)
	janitor := services.NewJanitorService(db, files, logging, time.Duration(cfg.CleanupGraceMinutes)*time.Minute)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAuthRoutes(router, authService, researcherService, logging)

	// Alles außer /auth und /metrics verlangt ein Bearer-Token.
	authorized := router.Group("/", jwtAuthMiddleware(authService))
	setupResearcherRoutes(authorized, researcherService, logging)
	setupJournalRoutes(authorized, journalService, logging)
	setupSubscriptionRoutes(authorized, subscriptionService, logging)
	setupUniversityRoutes(authorized, db, logging)

	// Setup Cron: verwaiste Dokument-Dateien abräumen
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CleanupSchedule, func() {
		logging.Info("Running scheduled document sweep...")
		removed, err := janitor.Sweep(context.Background())
		if err != nil {
			logging.Error("Document sweep failed", zap.Error(err))
		} else {
			logging.Info("Document sweep completed", zap.Int("removed", removed))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// credentialsPayload ist der JSON-Body für Registrierung und Forscher-Writes.
// Das Passwort kommt hier im Klartext an und wird im Service gehasht; im
// Researcher-Modell selbst ist das Feld von der Serialisierung ausgenommen.
type credentialsPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setupAuthRoutes(router *gin.Engine, auth *services.AuthService, researchers *services.ResearcherService, log *zap.Logger) {
	rg := router.Group("/auth")

	rg.POST("/validate", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		token, err := auth.Validate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			var unauthorized *services.UnauthorizedError
			if errors.As(err, &unauthorized) {
				log.Warn("Credential validation rejected", zap.String("email", req.Email))
				c.JSON(http.StatusUnauthorized, gin.H{"token": ""})
				return
			}
			respondServiceError(c, log, "Error while validating credentials", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	rg.POST("/register", func(c *gin.Context) {
		var req credentialsPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		researcher := models.Researcher{Name: req.Name, Email: req.Email, Password: req.Password}
		if err := researchers.Create(c.Request.Context(), &researcher); err != nil {
			respondServiceError(c, log, "Error while registering researcher", err)
			return
		}
		c.JSON(http.StatusOK, researcher)
	})
}

func setupResearcherRoutes(router *gin.RouterGroup, svc *services.ResearcherService, log *zap.Logger) {
	rg := router.Group("/researcher")

	rg.GET("", func(c *gin.Context) {
		researchers, err := svc.Get(c.Request.Context())
		if err != nil {
			respondServiceError(c, log, "Error while getting researchers", err)
			return
		}
		c.JSON(http.StatusOK, researchers)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		researcher, err := svc.GetOne(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while getting researcher", err)
			return
		}
		c.JSON(http.StatusOK, researcher)
	})

	rg.POST("", func(c *gin.Context) {
		var req credentialsPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		researcher := models.Researcher{Name: req.Name, Email: req.Email, Password: req.Password}
		if err := svc.Create(c.Request.Context(), &researcher); err != nil {
			respondServiceError(c, log, "Error while creating researcher", err)
			return
		}
		c.JSON(http.StatusOK, researcher)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req credentialsPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := svc.Update(c.Request.Context(), id, &models.Researcher{Name: req.Name, Email: req.Email, Password: req.Password})
		if err != nil {
			respondServiceError(c, log, "Error while updating researcher", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondServiceError(c, log, "Error while deleting researcher", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "researcher deleted"})
	})
}

// journalUploadFromForm liest die optionale Dokument-Datei aus dem Multipart-Form.
// (nil, nil) bedeutet: kein Dokument mitgesendet.
func journalUploadFromForm(c *gin.Context) (*services.JournalUpload, error) {
	fileHeader, err := c.FormFile("journalFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.JournalUpload{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func setupJournalRoutes(router *gin.RouterGroup, svc *services.JournalService, log *zap.Logger) {
	rg := router.Group("/journal")

	rg.GET("", func(c *gin.Context) {
		journals, err := svc.Get(c.Request.Context())
		if err != nil {
			respondServiceError(c, log, "Error while getting journals", err)
			return
		}
		c.JSON(http.StatusOK, journals)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		journal, err := svc.GetOne(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while getting journal", err)
			return
		}
		c.JSON(http.StatusOK, journal)
	})

	rg.GET("/researcher/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		journals, err := svc.GetByResearcher(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while getting journals by researcher", err)
			return
		}
		c.JSON(http.StatusOK, journals)
	})

	rg.GET("/docFile/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		data, name, err := svc.Document(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while reading journal document", err)
			return
		}
		c.Header("Content-Disposition", `inline; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/pdf", data)
	})

	rg.POST("", func(c *gin.Context) {
		researcherID, err := uuid.Parse(c.PostForm("researcher_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid researcher_id"})
			return
		}
		doc, err := journalUploadFromForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal file"})
			return
		}

		journal := models.Journal{ResearcherID: researcherID, Title: c.PostForm("title")}
		if err := svc.Create(c.Request.Context(), &journal, doc); err != nil {
			respondServiceError(c, log, "Error while creating journal", err)
			return
		}
		journalsPublishedCounter.Inc()
		c.JSON(http.StatusOK, journal)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		doc, err := journalUploadFromForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal file"})
			return
		}

		updated, err := svc.Update(c.Request.Context(), id, &models.Journal{Title: c.PostForm("title")}, doc)
		if err != nil {
			respondServiceError(c, log, "Error while updating journal", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondServiceError(c, log, "Error while deleting journal", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "journal deleted"})
	})
}

func setupSubscriptionRoutes(router *gin.RouterGroup, svc *services.SubscriptionService, log *zap.Logger) {
	rg := router.Group("/subscription")

	rg.GET("/subscriptors/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		researchers, err := svc.GetSubscriptors(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while getting subscriptors", err)
			return
		}
		c.JSON(http.StatusOK, researchers)
	})

	rg.GET("/subscriptions/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		subscriptions, err := svc.GetSubscriptions(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while getting subscriptions", err)
			return
		}
		c.JSON(http.StatusOK, subscriptions)
	})

	rg.GET("/feed/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		feed, err := svc.GetFeed(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while getting feed", err)
			return
		}
		feedRequestsCounter.Inc()
		c.JSON(http.StatusOK, feed)
	})

	rg.POST("", func(c *gin.Context) {
		var subscription models.Subscription
		if err := c.ShouldBindJSON(&subscription); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := svc.Create(c.Request.Context(), &subscription); err != nil {
			respondServiceError(c, log, "Error while creating subscription", err)
			return
		}
		subscriptionsCreatedCounter.Inc()
		c.JSON(http.StatusOK, subscription)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		deleted, err := svc.Delete(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, log, "Error while deleting subscription", err)
			return
		}
		if !deleted {
			log.Warn("Subscription not found", zap.String("id", id.String()))
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "subscription deleted"})
	})
}

// setupUniversityRoutes: Stammdaten ohne Bezug zum Kern, bewusst direkt auf der DB.
func setupUniversityRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/university")

	rg.GET("", func(c *gin.Context) {
		var universities []models.University
		if err := db.WithContext(c.Request.Context()).Find(&universities).Error; err != nil {
			log.Error("Database query for universities failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, universities)
	})

	rg.POST("", func(c *gin.Context) {
		var university models.University
		if err := c.ShouldBindJSON(&university); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if university.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		university.ID = uuid.New()
		if err := db.WithContext(c.Request.Context()).Create(&university).Error; err != nil {
			log.Error("Failed to create university", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create university"})
			return
		}
		c.JSON(http.StatusCreated, university)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(&models.University{}, "id = ?", id)
		if res.Error != nil {
			log.Error("Failed to delete university", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "university not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "university deleted"})
	})
}
