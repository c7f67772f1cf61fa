package rest

import (
	"runtime"
	"time"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/AzielCF/az-blast/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

type App struct {
	Sessions  domainSession.ISessionUsecase
	startedAt time.Time
}

func InitRestApp(app fiber.Router, sessions domainSession.ISessionUsecase) App {
	rest := App{Sessions: sessions, startedAt: time.Now().UTC()}
	app.Get("/app/status", rest.Status)
	app.Get("/app/settings", rest.GetSettings)
	app.Get("/app/version", rest.GetVersion)
	return rest
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": coreconfig.Global.App.Version,
		"os":      runtime.GOOS,
	})
}

func (handler *App) Status(c *fiber.Ctx) error {
	sessions, err := handler.Sessions.List(c.UserContext())
	utils.PanicIfNeeded(err)

	ready := 0
	for _, s := range sessions {
		if s.State == domainSession.StateReady {
			ready++
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Service status retrieved",
		Results: map[string]any{
			"version":        coreconfig.Global.App.Version,
			"started":        humanize.Time(handler.startedAt),
			"sessions_total": len(sessions),
			"sessions_ready": ready,
		},
	})
}

func (handler *App) GetSettings(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings fetched",
		Results: coreconfig.GetAllSettings(),
	})
}
