package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamtasks/internal/config"
	"teamtasks/internal/model"
	"teamtasks/internal/remote"
	"teamtasks/internal/repository"
	"teamtasks/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	store := repository.NewStore(db)
	client := remote.NewClient(nil, cfg.RemoteURL, cfg.RemoteAPIKey, cfg.RemoteAccessToken)
	syncSvc := service.NewSyncService(store, client, nil, cfg.MaxPushAttempts)

	// Refresh the cached session so local mutation sites know who is
	// signed in, then run the post-login full sync.
	if cfg.RemoteAccessToken != "" {
		loginCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		userID, err := client.CurrentUserID(loginCtx)
		cancel()
		if err != nil {
			log.Printf("session check failed: %v", err)
		} else {
			token := model.AuthToken{
				AccessToken: cfg.RemoteAccessToken,
				UserID:      userID,
				ExpiresAt:   time.Now().Add(time.Hour),
				CreatedAt:   time.Now().UTC(),
			}
			if err := store.AuthTokens.Save(ctx, &token); err != nil {
				log.Printf("cache session: %v", err)
			}
		}
	}

	runSync := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := syncSvc.PerformFullSync(jobCtx); err != nil {
			if errors.Is(err, service.ErrSyncInProgress) {
				return
			}
			log.Printf("sync: %v", err)
		}
	}
	runSync()

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.SyncInterval, runSync); err != nil {
		log.Fatalf("schedule sync: %v", err)
	}
	if _, err := scheduler.ScheduleDaily(cfg.QueueGCTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Queue.ClearSynced(jobCtx); err != nil {
			log.Printf("queue gc: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule queue gc: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("teamtasks sync client started.")
	<-ctx.Done()
	log.Println("Shutdown complete.")
}
