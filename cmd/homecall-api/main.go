// README: Entry point; loads config, wires services, starts HTTP server and
// background sweeper.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homecall/internal/config"
	httptransport "homecall/internal/http"
	"homecall/internal/infra"
	"homecall/internal/modules/address"
	"homecall/internal/modules/capability"
	"homecall/internal/modules/dispatch"
	"homecall/internal/modules/geo"
	"homecall/internal/modules/history"
	"homecall/internal/modules/notify"
	"homecall/internal/modules/order"
	"homecall/internal/modules/provider"
	"homecall/internal/modules/storage"
	"homecall/internal/modules/support"
	"homecall/internal/modules/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	// Firebase, GCS, Maps and Gemini are optional: without credentials the
	// server still runs, with pushes, uploads, geocoding and support chat off.
	var verifier infra.TokenVerifier
	var gateway notify.Gateway
	if cfg.Firebase.ProjectID != "" {
		fb, err := infra.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
		verifier = fb
		gateway = notify.NewFCMGateway(fb.Messaging)
	} else {
		log.Print("firebase not configured; auth and push notifications disabled")
	}

	var images history.ImageUploader
	if cfg.Storage.Bucket != "" {
		bucket, err := infra.NewBucket(ctx, cfg.Storage.Bucket, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("storage init: %v", err)
		}
		images = storage.NewGCSImageStore(bucket)
	}

	addressStore := address.NewStore(dbPool)
	var geocoder address.Geocoder
	if cfg.Maps.APIKey != "" {
		geocoder, err = address.NewMapsGeocoder(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	}
	resolver := address.NewResolver(addressStore, geocoder)

	geoStore := geo.NewStore(redisClient)
	capStore := capability.NewStore(dbPool)
	tokenStore := token.NewStore(dbPool)
	profileStore := provider.NewStore(dbPool)
	orderStore := order.NewStore(dbPool)
	dispatchStore := dispatch.NewStore(redisClient)

	dispatchSvc := dispatch.NewService(orderStore, resolver, geoStore, capStore,
		tokenStore, dispatchStore, gateway, cfg.Dispatch.RadiusMeters)

	historyStore := history.NewPGStore(dbPool)
	historySvc := history.NewService(historyStore, orderStore, profileStore,
		tokenStore, dispatchStore, gateway, images)

	var assistant *support.Assistant
	if cfg.AI.GeminiKey != "" {
		assistant, err = support.NewAssistant(ctx, cfg.AI.GeminiKey, orderStore)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer assistant.Close()
	}

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Dispatch:      dispatchSvc,
		History:       historySvc,
		Orders:        orderStore,
		Addresses:     addressStore,
		Geo:           geoStore,
		Capabilities:  capStore,
		Profiles:      profileStore,
		Tokens:        tokenStore,
		Support:       assistant,
		Verifier:      verifier,
		InternalToken: cfg.Internal.Token,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go historySvc.RunExpirySweeper(ctx, time.Duration(cfg.Dispatch.SweepSeconds)*time.Second)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("homecall-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
