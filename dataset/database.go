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

package dataset

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Database is a sqlite-backed store of imported run records. It exists
// as an ingest convenience - the pipeline's only persisted output is
// the rendered report.
type Database struct {
	db *sql.DB
	tx *sql.Tx
}

func (database *Database) createRunRecordsTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE run_records (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"size TEXT NOT NULL, " +
			"quant TEXT NOT NULL, " +
			"seed INTEGER, " +
			"accuracy FLOAT NOT NULL, " +
			"f1 FLOAT NOT NULL, " +
			"throughput FLOAT NOT NULL, " +
			"latency FLOAT NOT NULL, " +
			"gpuPeakMemMB FLOAT NOT NULL, " +
			"cpuRSSMB FLOAT NOT NULL" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `run_records`")
	return nil
}

func (database *Database) tableExists(tn string) (bool, error) {
	ans := database.db.QueryRow(
		fmt.Sprintf("SELECT name FROM sqlite_master WHERE type='table' AND name='%s'", tn))
	var nm sql.NullString
	err := ans.Scan(&nm)
	if err == sql.ErrNoRows {
		return false, nil

	} else if err != nil {
		return false, fmt.Errorf("failed to determine existence of table %s: %w", tn, err)
	}
	return true, nil
}

func (database *Database) Init() error {
	ex, err := database.tableExists("run_records")
	if err != nil {
		return fmt.Errorf("failed to init table run_records: %w", err)
	}
	if ex {
		log.Info().Str("table", "run_records").Msg("table already exists")

	} else {
		if err := database.createRunRecordsTable(); err != nil {
			return fmt.Errorf("failed to create table run_records: %w", err)
		}
	}
	return nil
}

// connection returns the running transaction if one was started via
// StartTx, otherwise the plain database handle.
func (database *Database) connection() interface {
	Exec(query string, args ...any) (sql.Result, error)
} {
	if database.tx != nil {
		return database.tx
	}
	return database.db
}

// AddRecord inserts a single run record. With a transaction started via
// StartTx, the insert becomes part of that transaction.
func (database *Database) AddRecord(rec RunRecord) error {
	var seed sql.NullInt64
	if rec.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*rec.Seed), Valid: true}
	}
	_, err := database.connection().Exec(
		"INSERT OR REPLACE INTO run_records "+
			"(id, size, quant, seed, accuracy, f1, throughput, latency, gpuPeakMemMB, cpuRSSMB) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID,
		string(rec.Size),
		string(rec.Quant),
		seed,
		rec.Accuracy,
		rec.F1,
		rec.Throughput,
		rec.Latency,
		rec.GPUPeakMemMB,
		rec.CPURSSMB,
	)
	if err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	return nil
}

// GetAllRecords loads stored run records matching the provided filter,
// in the declared size and quant category order.
func (database *Database) GetAllRecords(filter ListFilter) ([]RunRecord, error) {
	query := "SELECT id, size, quant, seed, accuracy, f1, throughput, latency, gpuPeakMemMB, cpuRSSMB " +
		"FROM run_records WHERE %s"
	whereChunks := make([]string, 0, 3)
	whereArgs := make([]any, 0, 3)
	whereChunks = append(whereChunks, "1 = 1")
	if filter.Size != nil {
		whereChunks = append(whereChunks, "size = ?")
		whereArgs = append(whereArgs, string(*filter.Size))
	}
	if filter.Quant != nil {
		whereChunks = append(whereChunks, "quant = ?")
		whereArgs = append(whereArgs, string(*filter.Quant))
	}
	if filter.FineTuned != nil {
		if *filter.FineTuned {
			whereChunks = append(whereChunks, "seed IS NOT NULL")

		} else {
			whereChunks = append(whereChunks, "seed IS NULL")
		}
	}

	rows, err := database.db.Query(
		fmt.Sprintf(query, strings.Join(whereChunks, " AND ")), whereArgs...)
	if err != nil {
		return []RunRecord{}, fmt.Errorf("failed to fetch all records: %w", err)
	}
	ans := make([]RunRecord, 0, 100)
	for rows.Next() {
		var rec RunRecord
		var seed sql.NullInt64
		err := rows.Scan(
			&rec.ID,
			&rec.Size,
			&rec.Quant,
			&seed,
			&rec.Accuracy,
			&rec.F1,
			&rec.Throughput,
			&rec.Latency,
			&rec.GPUPeakMemMB,
			&rec.CPURSSMB,
		)
		if err != nil {
			return []RunRecord{}, fmt.Errorf("failed to fetch all records: %w", err)
		}
		if seed.Valid {
			s := int(seed.Int64)
			rec.Seed = &s
		}
		ans = append(ans, rec)
	}
	sortByCategoryOrder(ans)
	return ans, nil
}

// ImportCSV validates a whole CSV file and only then inserts its
// records in a single transaction (reject-all semantics).
func (database *Database) ImportCSV(path string) (int, error) {
	recs, err := LoadCSV(path)
	if err != nil {
		return 0, fmt.Errorf("failed to import CSV run records: %w", err)
	}
	if err := database.StartTx(); err != nil {
		return 0, fmt.Errorf("failed to import CSV run records: %w", err)
	}
	for _, rec := range recs {
		if err := database.AddRecord(rec); err != nil {
			database.RollbackTx()
			return 0, fmt.Errorf("failed to import CSV run records: %w", err)
		}
	}
	return len(recs), database.CommitTx()
}

func (database *Database) StartTx() error {
	if database.tx != nil {
		panic("a transaction is already running")
	}
	var err error
	database.tx, err = database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	return nil
}

func (database *Database) CommitTx() error {
	if database.tx == nil {
		panic("no transaction running")
	}
	err := database.tx.Commit()
	database.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (database *Database) RollbackTx() error {
	if database.tx == nil {
		panic("no transaction running")
	}
	err := database.tx.Rollback()
	database.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func NewDatabase(path string) (*Database, error) {
	dbConn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run-record database: %w", err)
	}
	return &Database{
		db: dbConn,
	}, nil
}
