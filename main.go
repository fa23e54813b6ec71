package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api/handlers"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/api/scheduler"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim := dispatch.NewSimulator(a.Store, a.Config.SimTickInterval)
	go func() {
		if err := sim.Start(ctx); err != nil {
			zap.S().Errorw("position simulator stopped", "error", err)
		}
	}()

	sched := scheduler.NewScheduler(a.Store, a.Archive)
	sched.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		zap.S().Info("shutting down")
		sim.Stop()
		sched.Stop()
		cancel()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("ssm-dispatch-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
