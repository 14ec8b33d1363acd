package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
)

const queryResultLimitDefault = 100

var (
	queryLimitFlag = &cli.IntFlag{
		Name:     "limit",
		Usage:    "Limits number of results returned",
		Value:    queryResultLimitDefault,
		Required: false,
	}

	groupByFlag = &cli.StringFlag{
		Name:     "by",
		Usage:    "Grouping column (gender, race, insurance_type, treatment_type)",
		Value:    "race",
		Required: false,
	}

	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List data query operations",
		Subcommands: []*cli.Command{
			{
				Name:    "encounters",
				Usage:   "List stored encounters",
				Aliases: []string{"e"},
				Action:  cmdQueryEncounters,
				Flags: []cli.Flag{
					queryLimitFlag,
				},
			},
			{
				Name:    "runs",
				Usage:   "List training runs",
				Aliases: []string{"r"},
				Action:  cmdQueryRuns,
				Flags: []cli.Flag{
					queryLimitFlag,
				},
			},
			{
				Name:    "metrics",
				Usage:   "List metrics for a training run",
				Aliases: []string{"m"},
				Action:  cmdQueryMetrics,
				Flags: []cli.Flag{
					runIDFlag,
				},
			},
			{
				Name:    "groups",
				Usage:   "Summarize observed charges by group",
				Aliases: []string{"g"},
				Action:  cmdQueryGroups,
				Flags: []cli.Flag{
					groupByFlag,
				},
			},
			{
				Name:    "predictions",
				Usage:   "List logged predictions",
				Aliases: []string{"p"},
				Action:  cmdQueryPredictions,
				Flags: []cli.Flag{
					queryLimitFlag,
				},
			},
		},
	}
)

func cmdQueryEncounters(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	list, err := data.GetEncounters(db, c.Int(queryLimitFlag.Name))
	if err != nil {
		return errors.Wrap(err, "failed to query encounters")
	}
	return writeJSON(list)
}

func cmdQueryRuns(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	list, err := data.GetRuns(db, c.Int(queryLimitFlag.Name))
	if err != nil {
		return errors.Wrap(err, "failed to query training runs")
	}
	return writeJSON(list)
}

func cmdQueryMetrics(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	run, err := resolveRun(db, c.String(runIDFlag.Name))
	if err != nil {
		return err
	}

	list, err := data.GetMetrics(db, run.ID)
	if err != nil {
		return errors.Wrap(err, "failed to query metrics")
	}
	return writeJSON(list)
}

func cmdQueryGroups(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	list, err := data.GetGroupCharges(db, c.String(groupByFlag.Name))
	if err != nil {
		return errors.Wrap(err, "failed to query group charges")
	}
	return writeJSON(list)
}

func cmdQueryPredictions(c *cli.Context) error {
	db := getDBOrFail()
	defer db.Close()

	list, err := data.GetPredictions(db, c.Int(queryLimitFlag.Name))
	if err != nil {
		return errors.Wrap(err, "failed to query predictions")
	}
	return writeJSON(list)
}
