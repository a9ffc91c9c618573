package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/net/proxy"

	router "twitchchat/internal/app/adapters/http"
	"twitchchat/internal/app/adapters/twitch/api"
	"twitchchat/internal/app/adapters/twitch/irc"
	"twitchchat/internal/app/infrastructure/config"
	"twitchchat/internal/app/infrastructure/storage"
	"twitchchat/internal/app/ports"
	"twitchchat/pkg/logger"
)

const configPath = "config.json"

func New() error {
	_ = godotenv.Load()

	manager, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()
	applyEnv(cfg)

	log := logger.New(cfg.App.LogFile)
	log.SetLogLevel(cfg.App.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	client := &http.Client{
		Timeout:   10 * time.Second,
		Transport: http.DefaultTransport,
	}
	if p := cfg.Connection.Proxy; p != nil && p.Address != "" && p.Port != 0 {
		dialer, err := proxy.SOCKS5("tcp", fmt.Sprintf("%s:%d", p.Address, p.Port), nil, proxy.Direct)
		if err != nil {
			return err
		}
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	}

	if _, err := os.Stat("cache"); os.IsNotExist(err) {
		if err := os.Mkdir("cache", 0700); err != nil {
			log.Error("Error creating cache directory", err)
			return err
		}
	} else if err != nil {
		log.Error("Error stat cache directory", err)
		return err
	}

	emoteCache := storage.NewCache[[]ports.Emote](0, 24*time.Hour, "cache/emotes.json", time.Minute)
	catalog := api.NewEmoteCatalog(logger.NewPrefixedLogger(log, "emotes"), cfg, client, emoteCache)

	chat := irc.New(log, manager, catalog)

	r := router.NewRouter(logger.NewPrefixedLogger(log, "http"), manager, chat)
	go func() {
		if err := r.Run(); err != nil {
			log.Error("Debug server stopped", err)
		}
	}()

	if err := chat.Connect(); err != nil {
		// the client keeps retrying on its own when reconnection is on
		log.Error("Initial connect failed", err)
		if !cfg.Connection.Reconnect {
			return err
		}
	}
	return nil
}

// applyEnv lets secrets come from the environment instead of the config
// file.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("TWITCH_USERNAME"); v != "" {
		cfg.Identity.Username = v
	}
	if v := os.Getenv("TWITCH_OAUTH"); v != "" {
		cfg.Identity.OAuth = v
	}
	if v := os.Getenv("TWITCH_CLIENT_ID"); v != "" {
		cfg.Identity.ClientID = v
	}
	if v := os.Getenv("DEBUG_AUTH_TOKEN"); v != "" {
		cfg.App.AuthToken = v
	}
}
