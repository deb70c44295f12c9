package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partpal/internal/config"
	"partpal/internal/migrate"
)

func TestPrintReport(t *testing.T) {
	rep := &migrate.Report{
		RunID: "run-1",
		Tables: []migrate.TableReport{
			{Table: "categories", Attempted: 2, Migrated: 2},
			{Table: "parts", Attempted: 3, Migrated: 2, Rows: []migrate.RowOutcome{
				{ID: "p1", Status: migrate.RowMigrated},
				{ID: "p2", Status: migrate.RowFailed, Err: errors.New("fk violation")},
				{ID: "p3", Status: migrate.RowMigrated},
			}},
		},
		FinalCounts: map[string]int64{"categories": 2, "parts": 2},
		Mismatches:  []migrate.CountMismatch{{Table: "parts", Source: 3, Target: 2}},
		CountErrors: []migrate.CountError{{Table: "activity_logs", Store: "target", Err: errors.New("statement timeout")}},
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	out := buf.String()

	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "2/3 migrated, 1 failed")
	assert.Contains(t, out, "! p2: fk violation")
	assert.Contains(t, out, "total 4/5 migrated")
	assert.Contains(t, out, "mismatch parts: source=3 target=2")
	assert.Contains(t, out, "count activity_logs on target failed: statement timeout")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("  categories")), bytes.Index(buf.Bytes(), []byte("  parts")))
}

func TestRootCmdDefaultsFromConfig(t *testing.T) {
	cfg := config.Config{SourceDSN: "src.db", TargetURL: "postgres://x", TargetMigrations: "m", MigrateBatchSize: 50, MigrateConcurrency: 4}
	cmd := newRootCmd(cfg)

	src, err := cmd.PersistentFlags().GetString("source")
	require.NoError(t, err)
	assert.Equal(t, "src.db", src)
	bs, err := cmd.Flags().GetInt("batch-size")
	require.NoError(t, err)
	assert.Equal(t, 50, bs)
	yes, err := cmd.Flags().GetBool("yes")
	require.NoError(t, err)
	assert.False(t, yes)
}

func TestRunRequiresTarget(t *testing.T) {
	cmd := newRootCmd(config.Config{SourceDSN: ":memory:"})
	cmd.SetArgs([]string{"--target", ""})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--target")
}
