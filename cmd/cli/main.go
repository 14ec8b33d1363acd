package main

import (
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/config"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/logging"
)

const (
	dirMode = 0700
)

var (
	name    = "chargepredict"
	version = "v0.0.1-default"
	commit  = ""

	homeDir    = getHomeDir()
	dbFilePath = path.Join(homeDir, data.DataFileName)
	modelDir   = path.Join(homeDir, "models")
	debug      = false

	cfg = config.Config{}

	debugFlag = &cli.BoolFlag{
		Name:        "debug",
		Usage:       "Prints verbose logs (optional, default: false)",
		Destination: &debug,
	}

	dbFilePathFlag = &cli.StringFlag{
		Name:        "db",
		Usage:       fmt.Sprintf("Path to the Sqlite database file (optional, defaults to $HOME/.%s/data.db)", name),
		Destination: &dbFilePath,
		Value:       dbFilePath,
	}

	modelDirFlag = &cli.StringFlag{
		Name:        "models",
		Usage:       fmt.Sprintf("Path to the model artifact directory (optional, defaults to $HOME/.%s/models)", name),
		Destination: &modelDir,
		Value:       modelDir,
	}
)

func main() {
	logging.Init(debug)

	c, err := config.ReadOrCreate(homeDir)
	if err != nil {
		fatalErr(err)
	}
	cfg = *c

	if err = data.Init(dbFilePath); err != nil {
		fatalErr(err)
	}

	app := &cli.App{
		Name:     name,
		Version:  fmt.Sprintf("%s - (commit: %s)", version, commit),
		Compiled: time.Now(),
		Usage:    "CLI for hospital treatment charge prediction",
		Flags: []cli.Flag{
			debugFlag,
			dbFilePathFlag,
			modelDirFlag,
		},
		Commands: []*cli.Command{
			generateCmd,
			importCmd,
			trainCmd,
			evaluateCmd,
			explainCmd,
			predictCmd,
			queryCmd,
			serverCmd,
		},
		Before: func(c *cli.Context) error {
			if c.Bool(debugFlag.Name) {
				log.SetLevel(log.DebugLevel)
			}

			if err := ensureDir(modelDir); err != nil {
				return err
			}
			return nil
		},
	}

	err = app.Run(os.Args)
	if err != nil {
		fatalErr(err)
	}
}

func fatalErr(err error) {
	if err != nil {
		log.Fatalf("fatal error: %v", err)
		os.Exit(1)
	}
}

func getDBOrFail() *sql.DB {
	db, err := data.GetDB(dbFilePath)
	if err != nil {
		log.Fatalf("fatal error creating DB: %v", err)
		os.Exit(1)
	}
	return db
}

func ensureDir(dirPath string) error {
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return errors.Wrapf(err, "error creating dir: %s", dirPath)
		}
	}
	return nil
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Debugf("error getting home dir, using current dir instead: %v", err)
		return "."
	}
	log.Debugf("home dir: %s", home)

	dirName := "." + name
	dirPath := filepath.Join(home, dirName)
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		log.Debugf("creating dir: %s", dirPath)
		err := os.Mkdir(dirPath, dirMode)
		if err != nil {
			log.Debugf("error creating dir: %s, using home: %s - %v", dirPath, home, err)
			return home
		}
	}
	return dirPath
}
