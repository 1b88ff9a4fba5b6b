package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"innkeeper/internal/infra/config"
	"innkeeper/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Confirm(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	Cancel(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
}

type PaymentHTTP interface {
	Record(c *gin.Context)
	Refund(c *gin.Context)
	ListForReservation(c *gin.Context)
}

type PropertyHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}

type RoomHTTP interface {
	Create(c *gin.Context)
	ListByProperty(c *gin.Context)
	Get(c *gin.Context)
	SetStatus(c *gin.Context)
}

type GuestHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	UploadDocument(c *gin.Context)
}

type Handlers struct {
	Reservation    ReservationHTTP
	Availability   AvailabilityHTTP
	Payment        PaymentHTTP
	Property       PropertyHTTP
	Room           RoomHTTP
	Guest          GuestHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	registerValidations()
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.GET("/reservations", h.Reservation.List)
		api.GET("/reservations/:id", h.Reservation.Get)
		api.PUT("/reservations/:id", h.Reservation.Update)
		api.POST("/reservations/:id/confirm", h.Reservation.Confirm)
		api.POST("/reservations/:id/check-in", h.Reservation.CheckIn)
		api.POST("/reservations/:id/check-out", h.Reservation.CheckOut)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
	}
	if h.Availability != nil {
		api.POST("/availability/check", h.Availability.Check)
	}
	if h.Payment != nil {
		api.POST("/payments", h.Payment.Record)
		api.POST("/payments/:id/refund", h.Payment.Refund)
		api.GET("/reservations/:id/payments", h.Payment.ListForReservation)
	}
	if h.Property != nil {
		api.POST("/properties", h.Property.Create)
		api.GET("/properties", h.Property.List)
		api.GET("/properties/:id", h.Property.Get)
	}
	if h.Room != nil {
		api.POST("/properties/:id/rooms", h.Room.Create)
		api.GET("/properties/:id/rooms", h.Room.ListByProperty)
		api.GET("/rooms/:id", h.Room.Get)
		api.PATCH("/rooms/:id/status", h.Room.SetStatus)
	}
	if h.Guest != nil {
		api.POST("/guests", h.Guest.Create)
		api.GET("/guests", h.Guest.List)
		api.GET("/guests/:id", h.Guest.Get)
		api.POST("/guests/:id/document", h.Guest.UploadDocument)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

var (
	_ ReservationHTTP  = ReservationHandler{}
	_ AvailabilityHTTP = AvailabilityHandler{}
	_ PaymentHTTP      = PaymentHandler{}
	_ PropertyHTTP     = PropertyHandler{}
	_ RoomHTTP         = RoomHandler{}
	_ GuestHTTP        = GuestHandler{}
)
