package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sushihentaime/inkpost/internal/blogservice"
	"github.com/sushihentaime/inkpost/internal/common"
	"github.com/sushihentaime/inkpost/internal/mailservice"
	"github.com/sushihentaime/inkpost/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
}

func main() {
	configPath := flag.String("config", ".env", "path to the env configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	db, err := common.NewDB(common.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if err := common.Migrate(db); err != nil {
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config: cfg,
		logger: logger,
	}

	var producer common.MessageProducer = common.NopProducer{}
	if cfg.messagingEnabled() {
		broker, err := common.NewMessageBroker(common.AMQPURI(cfg.MQHost, cfg.MQPort, cfg.MQUser, cfg.MQPassword))
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		if err := common.SetupUserExchange(broker); err != nil {
			logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		app.broker = broker
		app.mailService = mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger)
		defer app.mailService.Close()

		if err := app.mailService.SendWelcomeEmail(); err != nil {
			logger.Error("failed to start the welcome email consumer", slog.String("error", err.Error()))
			os.Exit(1)
		}

		producer = broker
	} else {
		logger.Info("messaging disabled, user.created events will not be published")
	}

	tokens := userservice.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	app.userService = userservice.NewUserService(db, tokens, producer, logger)
	app.blogService = blogservice.NewBlogService(db, app.userService)

	if err := app.serve(); err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
