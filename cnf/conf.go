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

package cnf

import (
	"encoding/json"
	"os"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltBootstrapResamples = 2000
	dfltBootstrapAlpha     = 0.01
	dfltOutDir             = "."
	dfltTimeZone           = "Europe/Prague"
)

type Conf struct {
	srcPath string
	Logging logging.LoggingConf `json:"logging"`

	// WorkingDBPath is a path to a sqlite database quantreport uses
	// as its run-record store. The database is created automatically
	// if it does not exist.
	WorkingDBPath string `json:"workingDbPath"`

	// OutDir is a directory where the rendered report (HTML, PNG charts,
	// optional msgpack dump) will be written.
	OutDir string `json:"outDir"`

	BootstrapResamples int     `json:"bootstrapResamples"`
	BootstrapAlpha     float64 `json:"bootstrapAlpha"`

	// RandomSeed makes bootstrap resampling reproducible. With zero,
	// each run draws from a time-based seed.
	RandomSeed uint64 `json:"randomSeed"`

	TimeZone string `json:"timeZone"`
}

func (conf *Conf) SrcPath() string {
	return conf.srcPath
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// the value is validated in ValidateAndDefaults so we can
	// ignore the error here
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ValidateAndDefaults(conf *Conf) {
	if conf.WorkingDBPath == "" {
		log.Fatal().Msg("workingDbPath not specified")
	}
	if conf.OutDir == "" {
		conf.OutDir = dfltOutDir
		log.Warn().Str("outDir", dfltOutDir).Msg("outDir not specified, using default")
	}
	if conf.BootstrapResamples == 0 {
		conf.BootstrapResamples = dfltBootstrapResamples
		log.Warn().Msgf(
			"bootstrapResamples not specified, using default: %d",
			dfltBootstrapResamples,
		)
	}
	if conf.BootstrapResamples < 0 {
		log.Fatal().Int("bootstrapResamples", conf.BootstrapResamples).Msg("invalid bootstrapResamples")
	}
	if conf.BootstrapAlpha == 0 {
		conf.BootstrapAlpha = dfltBootstrapAlpha
		log.Warn().Msgf(
			"bootstrapAlpha not specified, using default: %01.2f",
			dfltBootstrapAlpha,
		)
	}
	if conf.BootstrapAlpha < 0 || conf.BootstrapAlpha >= 1 {
		log.Fatal().Float64("bootstrapAlpha", conf.BootstrapAlpha).Msg("invalid bootstrapAlpha")
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		log.Fatal().Err(err).Msg("invalid time zone")
	}
}
