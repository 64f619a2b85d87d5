package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
)

const claimsContextKey = "auth_claims"

// Run serves the lodging API until ctx is cancelled.
func Run(ctx context.Context, cfg Config, service *lodging.Service, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	router, err := NewRouter(cfg, service, logger)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("lodging api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// NewRouter validates cfg and builds the gin engine serving the lodging API.
func NewRouter(cfg Config, service *lodging.Service, logger *zap.Logger) (*gin.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if service == nil {
		return nil, fmt.Errorf("lodging service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionValidator, err := sessionvalidator.New(sessionvalidator.Config{
		SigningKey: []byte(cfg.SessionSigningKey),
		Issuer:     cfg.SessionIssuer,
		CookieName: cfg.SessionCookieName,
	})
	if err != nil {
		return nil, fmt.Errorf("session validator: %w", err)
	}
	handler := &httpHandler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}
	return setupRouter(cfg, handler, sessionValidator), nil
}

func setupRouter(cfg Config, handler *httpHandler, validator *sessionvalidator.Validator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(validator.GinMiddleware(claimsContextKey))
	handler.register(api)
	return router
}

func (handler *httpHandler) register(api *gin.RouterGroup) {
	api.GET("/session", handler.handleSession)

	api.GET("/resources", handler.handleListResources)
	api.POST("/resources", handler.handleCreateResource)
	api.GET("/resources/:resource", handler.handleGetResource)
	api.PUT("/resources/:resource", handler.handleUpdateResource)

	cycle := api.Group("/cycles/:cycle")
	cycle.GET("/timeline", handler.handleTimeline)
	cycle.GET("/states", handler.handleStateBoard)
	cycle.GET("/availability", handler.handleCheckConflict)
	cycle.GET("/eligible-resources", handler.handleEligibleResources)
	cycle.GET("/resources/:resource/state", handler.handleDeriveState)
	cycle.POST("/resources/:resource/force-active", handler.handleForceResourceActive)
	cycle.POST("/resources/:resource/cancel-current", handler.handleCancelCurrentReservation)

	cycle.GET("/reservations", handler.handleListReservations)
	cycle.POST("/reservations", handler.handleCreateReservation)
	cycle.GET("/reservations/:reservation", handler.handleGetReservation)
	cycle.PUT("/reservations/:reservation", handler.handleUpdateReservation)
	cycle.DELETE("/reservations/:reservation", handler.handleDeleteReservation)

	cycle.GET("/blackouts", handler.handleListBlackouts)
	cycle.POST("/blackouts", handler.handleCreateBlackout)
	cycle.GET("/blackouts/availability", handler.handleCheckBlackoutConflict)
	cycle.GET("/blackouts/:blackout", handler.handleGetBlackout)
	cycle.PUT("/blackouts/:blackout", handler.handleUpdateBlackout)
}

type httpHandler struct {
	logger  *zap.Logger
	service *lodging.Service
	cfg     Config
}

func (handler *httpHandler) handleSession(ctx *gin.Context) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"user_id":    claims.GetUserID(),
		"email":      claims.GetUserEmail(),
		"display":    claims.GetUserDisplayName(),
		"avatar_url": claims.GetUserAvatarURL(),
		"roles":      claims.GetUserRoles(),
		"expires":    claims.GetExpiresAt().Unix(),
	})
}

// principal resolves the session principal, answering 401 when there is none.
func (handler *httpHandler) principal(ctx *gin.Context) (lodging.Principal, bool) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return lodging.Principal{}, false
	}
	userID, err := lodging.NewUserID(claims.GetUserID())
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "session has no user"))
		return lodging.Principal{}, false
	}
	return lodging.Principal{UserID: userID, Roles: claims.GetUserRoles()}, true
}

func (handler *httpHandler) cycleID(ctx *gin.Context) (lodging.CycleID, bool) {
	cycleID, err := lodging.NewCycleID(ctx.Param("cycle"))
	if err != nil {
		handler.respondError(ctx, err)
		return lodging.CycleID{}, false
	}
	return cycleID, true
}

func (handler *httpHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	switch lodging.Classify(err) {
	case lodging.ErrorClassValidation:
		var validationError *lodging.ValidationError
		if !errors.As(err, &validationError) {
			ctx.JSON(http.StatusUnprocessableEntity, errorResponse("invalid_request", err.Error()))
			return
		}
		code := "validation_failed"
		if errors.Is(err, lodging.ErrConflict) {
			code = "unavailable"
		}
		payload := errorResponse(code, err.Error())
		payload["error"].(gin.H)["fields"] = newFieldPayloads(validationError.Fields)
		ctx.JSON(http.StatusUnprocessableEntity, payload)
	case lodging.ErrorClassAuthorization:
		ctx.JSON(http.StatusForbidden, errorResponse("forbidden", "lodging access denied"))
	case lodging.ErrorClassNotFound:
		ctx.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	default:
		handler.logger.Error("lodging request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "request failed"))
	}
}

func getClaims(ctx *gin.Context) *sessionvalidator.Claims {
	claimsValue, ok := ctx.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*sessionvalidator.Claims)
	return claims
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
