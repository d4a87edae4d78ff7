// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/czcorpus/quantreport/bootstrap"
	"github.com/czcorpus/quantreport/cnf"
	"github.com/czcorpus/quantreport/dataset"
	"github.com/czcorpus/quantreport/report"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

const (
	errColor = color.FgHiRed
)

func runActionImport(conf *cnf.Conf, srcPath string) {
	db, err := dataset.NewDatabase(conf.WorkingDBPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorImportFailed)
	}
	if err := db.Init(); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorImportFailed)
	}
	numImported, err := db.ImportCSV(srcPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorImportFailed)
	}
	log.Info().
		Int("numRecords", numImported).
		Str("file", srcPath).
		Msg("imported run records")
}

// loadReportRecords reads run records either straight from a CSV file
// (when srcPath is non-empty) or from the working database.
func loadReportRecords(conf *cnf.Conf, srcPath string) ([]dataset.RunRecord, error) {
	if srcPath != "" {
		return dataset.LoadCSV(srcPath)
	}
	db, err := dataset.NewDatabase(conf.WorkingDBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Init(); err != nil {
		return nil, err
	}
	return db.GetAllRecords(dataset.ListFilter{})
}

func runActionReport(ctx context.Context, conf *cnf.Conf, srcPath string, dumpOnly bool) {
	recs, err := loadReportRecords(conf, srcPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorReportFailed)
	}
	log.Info().Int("numRecords", len(recs)).Msg("loaded run records")

	var rng *rand.Rand
	if conf.RandomSeed != 0 {
		rng = rand.New(rand.NewPCG(conf.RandomSeed, conf.RandomSeed>>32))
	}
	builder := report.NewBuilder(bootstrap.NewEstimator(
		conf.BootstrapResamples, conf.BootstrapAlpha, rng))
	bar := progressbar.Default(
		int64(report.CountBootstrapCells(recs)), "estimating confidence intervals")
	builder.OnCell = func() {
		bar.Add(1)
	}
	rep, err := builder.Build(ctx, recs)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorReportFailed)
	}
	rep.GeneratedAt = rep.GeneratedAt.In(conf.TimezoneLocation())
	if !rep.Failures.Empty() {
		log.Warn().
			Int("numItems", len(rep.Failures.Items)).
			Msg("some report cells could not be computed")
	}

	if dumpOnly {
		if err := os.MkdirAll(conf.OutDir, 0755); err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorReportFailed)
		}
		if err := rep.SaveMsgpack(filepath.Join(conf.OutDir, "report.mp")); err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorReportFailed)
		}
		return
	}
	if err := report.WriteAll(rep, recs, conf.OutDir); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorReportFailed)
	}
}
