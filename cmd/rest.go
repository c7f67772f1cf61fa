package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	"github.com/AzielCF/az-blast/ui/rest"
	"github.com/AzielCF/az-blast/ui/rest/middleware"
	"github.com/AzielCF/az-blast/ui/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Blast whatsapp messages over http api",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               int(coreconfig.Global.Whatsapp.MaxDownloadSize),
		Network:                 "tcp",
		AppName:                 "Az-Blast Engine",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}

	if len(coreconfig.Global.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = coreconfig.Global.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(coreconfig.Global.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, coreconfig.Global.App.BaseUrl) {
		origins += ", " + coreconfig.Global.App.BaseUrl
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if coreconfig.Global.App.Debug {
		app.Use(logger.New())
	}

	if len(coreconfig.Global.App.BasicAuth) == 0 {
		logrus.Fatalln("APP_BASIC_AUTH is required. Nothing should be public; please set APP_BASIC_AUTH=<user>:<secret>[,<user2>:<secret2>] and restart.")
	}

	account := make(map[string]string)
	for _, basicAuth := range coreconfig.Global.App.BasicAuth {
		ba := strings.Split(basicAuth, ":")
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}

	apiGroup := app.Group(coreconfig.Global.App.BasePath + "/api")

	apiGroup.Use(basicauth.New(basicauth.Config{
		Users: account,
		Next: func(c *fiber.Ctx) bool {
			// Allow CORS preflight without credentials.
			return c.Method() == fiber.MethodOptions
		},
	}))

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		StopApp()
	}()

	rest.InitRestApp(apiGroup, sessionUsecase)
	rest.InitRestSession(apiGroup, sessionUsecase, directoryUsecase, sessionSelector)
	rest.InitRestSend(apiGroup, sendUsecase)
	rest.InitRestMessage(apiGroup, messageUsecase)

	// Websocket
	websocket.RegisterRoutes(apiGroup, sessionUsecase)
	go websocket.RunHub()

	// 404 handler for the API group
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	if err := app.Listen(":" + coreconfig.Global.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
