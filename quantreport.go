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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/quantreport/cnf"
)

const (
	actionVersion = "version"
	actionHelp    = "help"
	actionImport  = "import"
	actionReport  = "report"

	exitErrorGeneralFailure = iota
	exitErrorImportFailed
	exitErrorReportFailed
)

var (
	version   string
	buildDate string
	gitCommit string
)

// VersionInfo provides a detailed information about the actual build
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "QUANTREPORT - a quantization evaluation reporting tool\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\t%s\t\timport run records from a CSV file\n", actionImport)
	fmt.Fprintf(os.Stderr, "\t%s\t\tcompute and render the evaluation report\n", actionReport)
	fmt.Fprintf(os.Stderr, "\nUse `quantreport help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	conf := cnf.LoadConfig(confPath)
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	return conf
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func runActionVersion(ver VersionInfo) {
	fmt.Fprintln(os.Stderr, "QuantReport version: ", ver)
}

func main() {
	version := VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdVersion.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)
	cmdHelp.Usage = func() {
		cmdHelp.PrintDefaults()
	}

	cmdImport := flag.NewFlagSet(actionImport, flag.ExitOnError)
	cmdImport.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s config.json data.csv\n",
			filepath.Base(os.Args[0]), actionImport)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdImport.PrintDefaults()
		fmt.Fprintf(
			os.Stderr,
			"\nValidate a CSV file of evaluation runs and store its records.\n"+
				"A file with any invalid row is rejected as a whole.\n")
	}

	cmdReport := flag.NewFlagSet(actionReport, flag.ExitOnError)
	reportDumpOnly := cmdReport.Bool(
		"dump-only", false,
		"if set, then only the msgpack dump is written (no HTML page, no charts)")
	cmdReport.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json [data.csv]\n",
			filepath.Base(os.Args[0]), actionReport)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdReport.PrintDefaults()
		fmt.Fprintf(
			os.Stderr,
			"\nCompute summary tables, bootstrap confidence intervals and\n"+
				"hypothesis tests over the stored run records and render the report.\n"+
				"With data.csv provided, records are read from the file directly,\n"+
				"bypassing the working database.\n")
	}

	action := actionHelp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case actionHelp:
		var subj string
		if len(os.Args) > 2 {
			cmdHelp.Parse(os.Args[2:])
			subj = cmdHelp.Arg(0)
		}
		if subj == "" {
			topLevelUsage()
			return
		}
		switch subj {
		case actionImport:
			cmdImport.Usage()
		case actionReport:
			cmdReport.Usage()
		case actionVersion:
			cmdVersion.PrintDefaults()
		}
	case actionVersion:
		cmdVersion.Parse(os.Args[2:])
		runActionVersion(version)
	case actionImport:
		cmdImport.Parse(os.Args[2:])
		conf := setup(cmdImport.Arg(0))
		runActionImport(conf, cmdImport.Arg(1))
	case actionReport:
		cmdReport.Parse(os.Args[2:])
		conf := setup(cmdReport.Arg(0))
		ctx, stop := signal.NotifyContext(
			context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		runActionReport(ctx, conf, cmdReport.Arg(1), *reportDumpOnly)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information")
	}

}
