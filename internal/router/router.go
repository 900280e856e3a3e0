package router

import (
	"fmt"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/firestore"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/geoindex"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/handler"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/middleware"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/ws"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/cloudinary"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Backends are the optional external stores; nil fields are disabled.
type Backends struct {
	Cloud     cloudinary.Client
	GeoIndex  *geoindex.Index
	Firestore *firestore.Pool
}

func Setup(cfg *config.Config, db *gorm.DB, b Backends) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(), middleware.Metrics())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	locRepo := repository.NewLocationRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	blockRepo := repository.NewBlockRepository(db)

	pool, err := selectPool(cfg.Proximity.PoolBackend, locRepo, b)
	if err != nil {
		return nil, err
	}
	var mirrors []service.LocationMirror
	if b.GeoIndex != nil {
		mirrors = append(mirrors, service.RedisMirror(b.GeoIndex))
	}
	if b.Firestore != nil {
		mirrors = append(mirrors, service.FirestoreMirror(b.Firestore))
	}

	radarHub := ws.NewRadarHub()

	// Services
	locationSvc := service.NewLocationService(userRepo, locRepo, presenceRepo, mirrors...)
	locationSvc.SetNotifier(radarHub)
	proximitySvc := service.NewProximityService(pool, blockRepo, cfg.Location.LocationFuzzMeters)

	// Handlers
	locationHandler := handler.NewLocationHandler(locationSvc)
	presenceHandler := handler.NewPresenceHandler(locationSvc)
	profileHandler := handler.NewProfileHandler(userRepo, locationSvc, b.Cloud)
	nearbyHandler := handler.NewNearbyHandler(proximitySvc, locationSvc, &cfg.Proximity)
	distanceHandler := handler.NewDistanceHandler(locationSvc, blockRepo)
	blockHandler := handler.NewBlockHandler(blockRepo)
	healthHandler := handler.NewHealthHandler(db, radarHub)

	authMw := middleware.AuthRequired(&cfg.JWT)
	locationWriteMw := middleware.RateLimitByUser(middleware.NewRateLimiter(1, cfg.Location.MinUpdateInterval))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", profileHandler.GetProfile)
			me.PATCH("/profile", profileHandler.UpdateProfile)
			me.POST("/photo", profileHandler.UploadPhoto)
			me.PATCH("/location", locationWriteMw, locationHandler.UpdateLocation)
			me.GET("/location", locationHandler.GetMyLocation)
			me.DELETE("/location", locationHandler.ClearLocation)
			me.PATCH("/presence", presenceHandler.SetPresence)
			me.GET("/presence", presenceHandler.GetMyPresence)
		}
		api.GET("/nearby", authMw, nearbyHandler.Nearby)
		api.GET("/nearby/options", authMw, nearbyHandler.Options)
		api.GET("/users/:user_id/distance", authMw, distanceHandler.GetDistance)
		api.POST("/block/:user_id", authMw, blockHandler.Block)
		api.DELETE("/block/:user_id", authMw, blockHandler.Unblock)
	}

	r.GET("/ws/radar", ws.UpgradeRadarWS(cfg, radarHub, proximitySvc, locationSvc))

	logger.Info("routes ready", zap.String("pool_backend", cfg.Proximity.PoolBackend), zap.Int("mirrors", len(mirrors)))
	return r, nil
}

func selectPool(backend string, sql *repository.LocationRepository, b Backends) (proximity.CandidatePool, error) {
	switch backend {
	case "", config.PoolBackendSQL:
		return sql, nil
	case config.PoolBackendRedis:
		if b.GeoIndex == nil {
			return nil, fmt.Errorf("pool backend %q needs REDIS_ADDR", backend)
		}
		return b.GeoIndex, nil
	case config.PoolBackendFirestore:
		if b.Firestore == nil {
			return nil, fmt.Errorf("pool backend %q needs FIREBASE_SERVICE_ACCOUNT_PATH", backend)
		}
		return b.Firestore, nil
	default:
		return nil, fmt.Errorf("unknown pool backend %q", backend)
	}
}
