package main

import (
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/explain"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
)

var (
	//go:embed assets/* templates/*
	embedFS embed.FS

	portFlag = &cli.IntFlag{
		Name:     "port",
		Usage:    "Port on which the server will listen",
		Required: false,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Start local HTTP server with the prediction form",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			modelNameFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	port := cfg.Port
	if c.IsSet(portFlag.Name) {
		port = c.Int(portFlag.Name)
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	db := getDBOrFail()
	defer db.Close()

	name := c.String(modelNameFlag.Name)
	if name == "" {
		run, err := resolveRun(db, "")
		if err != nil {
			return err
		}
		name = run.BestModel
	}

	artifact, err := model.LoadArtifact(modelDir, name)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s artifact", name)
	}

	explainer, err := explain.New(artifact)
	if err != nil {
		return errors.Wrap(err, "failed to build explainer")
	}

	router, err := makeRouter(db, artifact, explainer)
	if err != nil {
		return err
	}

	s := &http.Server{
		Addr:           address,
		Handler:        router,
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("error starting server: %v", err)
		}
	}()

	log.Infof("server started on %s (model: %s)", address, name)

	<-done

	ctx, cancel := newShutdownContext()
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		log.Errorf("error shutting down server: %v", err)
	}
	return nil
}
