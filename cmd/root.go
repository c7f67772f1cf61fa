package cmd

import (
	"context"
	"os"
	"time"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	coredb "github.com/AzielCF/az-blast/core/database"
	domainDirectory "github.com/AzielCF/az-blast/domains/directory"
	domainMessage "github.com/AzielCF/az-blast/domains/message"
	domainSend "github.com/AzielCF/az-blast/domains/send"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/AzielCF/az-blast/infrastructure/whatsapp/adapter"
	"github.com/AzielCF/az-blast/pkg/utils"
	"github.com/AzielCF/az-blast/repository"
	"github.com/AzielCF/az-blast/ui/websocket"
	"github.com/AzielCF/az-blast/usecase"
	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Repositories
	accountRepo repository.IAccountRepository
	messageRepo repository.IMessageRepository

	// Usecases
	sessionUsecase   domainSession.ISessionUsecase
	directoryUsecase domainDirectory.IDirectoryUsecase
	messageUsecase   domainMessage.IMessageUsecase
	sendUsecase      domainSend.ISendUsecase
	sessionSelector  usecase.ISessionSelector
	quotaUsecase     usecase.IQuotaUsecase

	dispatchQueue *usecase.DispatchQueue
	cronRunner    *cron.Cron
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Multi-session whatsapp blast API",
	Long: `Message blast service over http api: registers several whatsapp accounts,
schedules marketing messages and dispatches them through the least used
connected session while respecting per-account daily limits.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig pushes the merged flag/env values back into the environment
// so LoadConfig sees one consistent source. Flags win over the environment.
func initEnvConfig() {
	if v := viper.GetString("app_port"); v != "" {
		_ = os.Setenv("APP_PORT", v)
	}
	if viper.GetBool("app_debug") {
		_ = os.Setenv("APP_DEBUG", "true")
	}
	if v := viper.GetString("app_basic_auth"); v != "" {
		_ = os.Setenv("APP_BASIC_AUTH", v)
	}
	if v := viper.GetString("db_driver"); v != "" {
		_ = os.Setenv("DB_DRIVER", v)
	}
	if v := viper.GetString("db_name"); v != "" {
		_ = os.Setenv("DB_NAME", v)
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringP(
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringP(
		"basic-auth", "b",
		"",
		"basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().String(
		"db-driver",
		"",
		`database driver --db-driver <string> | example: --db-driver="sqlite" or --db-driver="postgres"`,
	)
	rootCmd.PersistentFlags().String(
		"db-name",
		"",
		`database file path (sqlite) or database name (postgres) --db-name <string> | example: --db-name="storages/app.db"`,
	)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("app_basic_auth", rootCmd.PersistentFlags().Lookup("basic-auth"))
	_ = viper.BindPFlag("db_driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("db_name", rootCmd.PersistentFlags().Lookup("db-name"))
	viper.AutomaticEnv()
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Invalid configuration: %v", err)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()

	db, err := coredb.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to open database: %v", err)
	}

	accountRepo = repository.NewAccountGormRepository(db)
	if err := accountRepo.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate accounts: %v", err)
	}
	messageRepo = repository.NewMessageGormRepository(db)
	if err := messageRepo.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate messages: %v", err)
	}

	// Session lifecycle events go out through the websocket hub. The send is
	// non-blocking so a slow hub never stalls a session state machine.
	notify := usecase.Notifier(func(code, message string, result any) {
		select {
		case websocket.Broadcast <- websocket.BroadcastMessage{Code: code, Message: message, Result: result}:
		default:
			logrus.Debugf("[WS] Hub busy, dropped %s broadcast", code)
		}
	})

	driverFactory := func(accountID string) domainSession.Driver {
		return adapter.NewAdapter(accountID, cfg.Paths.Storages)
	}

	sessions := usecase.NewSessionService(accountRepo, driverFactory, notify, cfg.Session, cfg.Quota.DefaultDailyLimit)
	sessionUsecase = sessions
	sessionSelector = usecase.NewSessionSelector(accountRepo, sessions)
	quotaUsecase = usecase.NewQuotaService(accountRepo)
	directoryUsecase = usecase.NewDirectoryService(sessions)
	messageUsecase = usecase.NewMessageService(messageRepo)
	sendUsecase = usecase.NewSendService(sessions, accountRepo, quotaUsecase, cfg.Dispatch.SendTimeout)

	// Counters left over from a previous day get zeroed before anything sends.
	if err := quotaUsecase.ResetDailyLimits(ctx); err != nil {
		logrus.WithError(err).Error("[APP] Initial quota reset failed")
	}

	sessions.RestoreAll(ctx)

	dispatchQueue = usecase.NewDispatchQueue(messageRepo, sessionSelector, sessions, quotaUsecase, notify, cfg.Dispatch)
	dispatchQueue.Start(ctx)

	reaper := usecase.NewStalledMessageReaper(messageRepo, notify, cfg.Dispatch.StallTimeout)

	cronRunner = cron.New()
	if _, err := cronRunner.AddFunc("@hourly", func() { reaper.Run(context.Background()) }); err != nil {
		logrus.Fatalf("[APP] Failed to schedule reaper: %v", err)
	}
	if _, err := cronRunner.AddFunc("@midnight", func() {
		if err := quotaUsecase.ResetDailyLimits(context.Background()); err != nil {
			logrus.WithError(err).Error("[QUOTA] Scheduled reset failed")
		}
	}); err != nil {
		logrus.Fatalf("[APP] Failed to schedule quota reset: %v", err)
	}
	cronRunner.Start()
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the dispatcher, the schedulers and
// every live session.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if dispatchQueue != nil {
		dispatchQueue.Stop()
	}
	if cronRunner != nil {
		cronRunner.Stop()
	}

	if sessionUsecase != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		sessions, err := sessionUsecase.List(ctx)
		if err != nil {
			logrus.WithError(err).Error("[APP] Failed to list sessions for shutdown")
		}
		for _, s := range sessions {
			if err := sessionUsecase.Destroy(ctx, s.AccountID); err != nil {
				logrus.WithError(err).Warnf("[APP] Failed to stop session %s", s.AccountID)
			}
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
