package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suryawash/internal/config"
	"suryawash/internal/database"
	"suryawash/internal/identity"
	"suryawash/internal/pkg/cache"
	"suryawash/internal/repository"
	"suryawash/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("level=info msg=no_env_file relying_on=environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("level=fatal msg=config_invalid err=%q", err.Error())
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal msg=db_connect_failed err=%q", err.Error())
	}
	if err := database.Migrate(db, repository.Models()...); err != nil {
		log.Fatalf("level=fatal msg=migrate_failed err=%q", err.Error())
	}

	var c cache.Cache
	if cfg.UseRedis() {
		rc := cache.NewRedis(cfg.RedisAddrs, cfg.RedisPassword, cfg.RedisCluster)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Fatalf("level=fatal msg=redis_unreachable addrs=%v err=%q", cfg.RedisAddrs, err.Error())
		}
		c = rc
	} else {
		log.Println("level=warn msg=using_memory_cache note=single_instance_only")
		c = cache.NewMemory()
	}
	defer c.Close()

	sms := identity.NewBreakerSender(identity.NewLogSender(nil).RevealCodes(!cfg.IsProduction()),
		uint32(cfg.SMSBreakerFailures), cfg.SMSBreakerTimeout, nil)

	app := server.New(cfg, db, server.Options{Cache: c, SMS: sms})
	defer app.Hub.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("level=info msg=server_starting addr=%s env=%s", cfg.HTTPAddr, cfg.AppEnv)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("level=info msg=server_shutting_down")
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("level=error msg=shutdown_failed err=%q", err.Error())
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("level=error msg=server_failed err=%q", err.Error())
		}
	}
}
