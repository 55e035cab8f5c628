package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const createRuns = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		min_support REAL NOT NULL,
		min_confidence REAL NOT NULL,
		min_lift REAL NOT NULL,
		max_length INTEGER NOT NULL,
		transactions INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		frequent_itemsets INTEGER NOT NULL,
		rule_count INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	)
`

const createRules = `
	CREATE TABLE IF NOT EXISTS rules (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		rule_idx INTEGER NOT NULL,
		antecedent TEXT NOT NULL,
		consequent TEXT NOT NULL,
		count INTEGER NOT NULL,
		support REAL NOT NULL,
		confidence REAL NOT NULL,
		lift REAL NOT NULL,
		PRIMARY KEY (run_id, rule_idx)
	)
`

const createItemsets = `
	CREATE TABLE IF NOT EXISTS itemsets (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		itemset_idx INTEGER NOT NULL,
		items TEXT NOT NULL,
		size INTEGER NOT NULL,
		count INTEGER NOT NULL,
		support REAL NOT NULL,
		PRIMARY KEY (run_id, itemset_idx)
	)
`

// WriteSQLite records res as a new run in the database at path, creating
// the schema if needed, and returns the run id. Item lists are stored as
// JSON arrays. The run is written in a single transaction.
func WriteSQLite(ctx context.Context, path string, res *apriori.Result) (string, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return "", fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	for _, stmt := range []string{createRuns, createRules, createItemsets} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return "", fmt.Errorf("create schema: %w", err)
		}
	}

	runID := uuid.NewString()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	opts := res.Options
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, min_support, min_confidence, min_lift, max_length,
			transactions, skipped, frequent_itemsets, rule_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339),
		opts.MinSupport, opts.MinConfidence, opts.MinLift, opts.MaxLength,
		res.Transactions, res.Skipped, len(res.Itemsets), len(res.Rules),
		res.Duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := insertRules(ctx, tx, runID, res.Rules); err != nil {
		return "", err
	}
	if err := insertItemsets(ctx, tx, runID, res.Itemsets); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

func insertRules(ctx context.Context, tx *sql.Tx, runID string, rules []apriori.Rule) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rules (run_id, rule_idx, antecedent, consequent, count, support, confidence, lift)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rule insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rules {
		ante, err := json.Marshal(r.Antecedent)
		if err != nil {
			return fmt.Errorf("encode antecedent: %w", err)
		}
		cons, err := json.Marshal(r.Consequent)
		if err != nil {
			return fmt.Errorf("encode consequent: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, string(ante), string(cons),
			r.Count, r.Support, r.Confidence, r.Lift); err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}
	return nil
}

func insertItemsets(ctx context.Context, tx *sql.Tx, runID string, itemsets []apriori.FrequentItemset) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO itemsets (run_id, itemset_idx, items, size, count, support)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare itemset insert: %w", err)
	}
	defer stmt.Close()

	for i, fi := range itemsets {
		items, err := json.Marshal(fi.Items)
		if err != nil {
			return fmt.Errorf("encode itemset: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, string(items), fi.Items.Len(), fi.Count, fi.Support); err != nil {
			return fmt.Errorf("insert itemset %d: %w", i, err)
		}
	}
	return nil
}
