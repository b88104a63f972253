package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aidanlowson/notify-dispatch/internal/api/handlers/notification"
	"github.com/aidanlowson/notify-dispatch/internal/api/handlers/user"
	"github.com/aidanlowson/notify-dispatch/internal/middlewares"
)

func New(notifHandler *notification.Handler, userHandler *user.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")
	{
		api.POST("/notify", notifHandler.Enqueue)
		api.GET("/notifications", notifHandler.GetAll)
		api.GET("/notifications/:id", notifHandler.GetRecord)

		api.POST("/users", userHandler.Create)
		api.GET("/users", userHandler.GetAll)
	}

	return e
}
