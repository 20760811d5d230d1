package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDDL = `CREATE TABLE users (
  id INT NOT NULL AUTO_INCREMENT,
  username VARCHAR(10) NOT NULL,
  age INT UNSIGNED,
  balance DECIMAL(10,2),
  active BOOLEAN NOT NULL,
  PRIMARY KEY (id)
);`

const goodCSV = `id,username,age,balance,active
1,alice,30,100.50,true
2,bob,,,no
`

const badCSV = `id,username,age,balance,active
x,alice,30,100.50,true
2,a-very-long-name,-1,1.234,maybe
`

type result struct {
	code   int
	stdout string
	stderr string
}

// workspace creates a temp dir with the given files and makes it the
// working directory, so the default config and report paths land there.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), append(args, "--no-color"), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestVersion(t *testing.T) {
	workspace(t, nil)
	res := run(t, "version")
	assert.Equal(t, ExitOK, res.code)
	assert.Equal(t, "prechecker version "+Version+"\n", res.stdout)
}

func TestCheck_Pass(t *testing.T) {
	dir := workspace(t, map[string]string{"users.sql": usersDDL, "users.csv": goodCSV})
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv")
	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Result: PASSED (2 rows)")
	assert.Contains(t, res.stderr, "2 rows passed")
	assert.NoFileExists(t, filepath.Join(dir, "validation_errors.csv"))
}

func TestCheck_Failures(t *testing.T) {
	dir := workspace(t, map[string]string{"users.sql": usersDDL, "users.csv": badCSV})
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv", "--max-display", "2")
	assert.Equal(t, ExitFailures, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Result: FAILED (2 rows, 5 failures)")
	assert.Contains(t, res.stdout, "1. row 2, column 'id': not an integer (value: 'x')")
	assert.Contains(t, res.stdout, "... and 3 more")
	assert.Contains(t, res.stdout, "not_integer")

	report, err := os.ReadFile(filepath.Join(dir, "validation_errors.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(report)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "row_number,column_name,value,reason", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `2,"id","x",`), lines[1])
}

func TestCheck_CustomOutputAndWorkers(t *testing.T) {
	dir := workspace(t, map[string]string{"users.sql": usersDDL, "users.csv": badCSV})
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv",
		"--output", "out/errors.csv", "--workers", "3", "--batch-size", "1")
	// the report directory does not exist
	assert.Equal(t, ExitFatal, res.code)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0o755))
	res = run(t, "check", "--ddl", "users.sql", "--csv", "users.csv",
		"--output", "out/errors.csv", "--workers", "3", "--batch-size", "1")
	assert.Equal(t, ExitFailures, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(dir, "out", "errors.csv"))
}

func TestCheck_ExemptAuto(t *testing.T) {
	csv := "username,active\nalice,true\n"
	workspace(t, map[string]string{"users.sql": usersDDL, "users.csv": csv})

	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv")
	assert.Equal(t, ExitFailures, res.code)
	assert.Contains(t, res.stdout, "column missing")

	res = run(t, "check", "--ddl", "users.sql", "--csv", "users.csv", "--exempt-auto")
	assert.Equal(t, ExitOK, res.code, res.stdout)
	assert.Contains(t, res.stderr, "columns missing from data")
}

func TestCheck_TSVAndEncodingFlags(t *testing.T) {
	tsv := "id\tusername\tactive\n1\tbob\t1\n"
	workspace(t, map[string]string{"users.sql": usersDDL, "users.tsv": tsv})
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.tsv", "--delimiter", "tab", "--encoding", "utf-8")
	assert.Equal(t, ExitOK, res.code, res.stderr)
}

func TestCheck_ConfigFileAndFlagPrecedence(t *testing.T) {
	workspace(t, map[string]string{
		"users.sql":        usersDDL,
		"users.csv":        badCSV,
		".prechecker.yaml": "max_display: 1\noutput: from-config.csv\n",
	})

	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv")
	assert.Equal(t, ExitFailures, res.code)
	assert.Contains(t, res.stdout, "... and 4 more")
	assert.FileExists(t, "from-config.csv")

	res = run(t, "check", "--ddl", "users.sql", "--csv", "users.csv", "--max-display", "3")
	assert.Contains(t, res.stdout, "... and 2 more")
}

func TestCheck_EnvOverridesConfigFile(t *testing.T) {
	workspace(t, map[string]string{
		"users.sql":        usersDDL,
		"users.csv":        badCSV,
		".prechecker.yaml": "max_display: 1\n",
	})
	t.Setenv("PRECHECKER_MAX_DISPLAY", "4")
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv")
	assert.Contains(t, res.stdout, "... and 1 more")
}

func TestCheck_Fatal(t *testing.T) {
	workspace(t, map[string]string{
		"users.sql": usersDDL,
		"users.csv": goodCSV,
		"empty.csv": "",
		"bad.sql":   "CREATE TABLE t (id INT",
		"none.sql":  "-- nothing here",
		"bad.yaml":  "max_display: 1\nunknown_key: 3\n",
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing data file", []string{"check", "--ddl", "users.sql", "--csv", "nope.csv"}, "nope.csv"},
		{"empty data file", []string{"check", "--ddl", "users.sql", "--csv", "empty.csv"}, "header"},
		{"unbalanced ddl", []string{"check", "--ddl", "bad.sql", "--csv", "users.csv"}, "Error:"},
		{"no statement", []string{"check", "--ddl", "none.sql", "--csv", "users.csv"}, "Error:"},
		{"no schema source", []string{"check", "--csv", "users.csv"}, "--ddl or --db is required"},
		{"both schema sources", []string{"check", "--ddl", "users.sql", "--db", "sqlite:x.db", "--table", "t", "--csv", "users.csv"}, "not both"},
		{"db without table", []string{"check", "--db", "sqlite:x.db", "--csv", "users.csv"}, "--table is required"},
		{"missing csv flag", []string{"check", "--ddl", "users.sql"}, "csv"},
		{"unknown encoding", []string{"check", "--ddl", "users.sql", "--csv", "users.csv", "--encoding", "klingon"}, "encoding"},
		{"bad delimiter", []string{"check", "--ddl", "users.sql", "--csv", "users.csv", "--delimiter", ";;"}, "delimiter"},
		{"unknown config key", []string{"--config", "bad.yaml", "check", "--ddl", "users.sql", "--csv", "users.csv"}, "unknown_key"},
		{"missing config file", []string{"--config", "nope.yaml", "check", "--ddl", "users.sql", "--csv", "users.csv"}, "nope.yaml"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.args...)
			assert.Equal(t, ExitFatal, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestCheck_Database(t *testing.T) {
	dir := workspace(t, map[string]string{"users.csv": goodCSV})
	dbPath := filepath.Join(dir, "app.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username VARCHAR(10) NOT NULL,
  age INT,
  balance DECIMAL(10,2),
  active BOOLEAN NOT NULL
)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	res := run(t, "check", "--db", "sqlite:"+dbPath, "--table", "users", "--csv", "users.csv")
	assert.Equal(t, ExitOK, res.code, res.stderr)

	res = run(t, "check", "--db", "sqlite:"+dbPath, "--table", "missing", "--csv", "users.csv")
	assert.Equal(t, ExitFatal, res.code)
}

func TestCheck_VerboseListsSchema(t *testing.T) {
	workspace(t, map[string]string{"users.sql": usersDDL, "users.csv": goodCSV})
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv", "--verbose")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "Table users: 5 columns")
}

func TestCheck_PushesMetrics(t *testing.T) {
	var pushes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/metrics/job/prechecker") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	workspace(t, map[string]string{"users.sql": usersDDL, "users.csv": badCSV})
	res := run(t, "check", "--ddl", "users.sql", "--csv", "users.csv", "--pushgateway-url", srv.URL)
	assert.Equal(t, ExitFailures, res.code, res.stderr)
	assert.Equal(t, int32(1), pushes.Load())
}

func TestSchemaCommand(t *testing.T) {
	workspace(t, map[string]string{"users.sql": usersDDL})
	res := run(t, "schema", "--ddl", "users.sql")
	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Table users: 5 columns")
	assert.Contains(t, res.stdout, "DECIMAL(10,2)")
	assert.Contains(t, res.stdout, "auto")
}

func TestGenerateThenCheck(t *testing.T) {
	workspace(t, map[string]string{"users.sql": usersDDL})

	res := run(t, "generate", "--ddl", "users.sql", "--rows", "200", "--out", "clean.csv", "--seed", "3")
	require.Equal(t, ExitOK, res.code, res.stderr)
	res = run(t, "check", "--ddl", "users.sql", "--csv", "clean.csv")
	assert.Equal(t, ExitOK, res.code, res.stdout)
	assert.Contains(t, res.stdout, "Result: PASSED (200 rows)")

	res = run(t, "generate", "--ddl", "users.sql", "--rows", "200", "--error-rate", "0.1", "--style", "edge-cases", "--out", "dirty.csv")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "injected errors")
	res = run(t, "check", "--ddl", "users.sql", "--csv", "dirty.csv")
	assert.Equal(t, ExitFailures, res.code)
}

func TestGenerate_Stdout(t *testing.T) {
	workspace(t, map[string]string{"users.sql": usersDDL})
	a := run(t, "generate", "--ddl", "users.sql", "-n", "3", "--seed", "11")
	b := run(t, "generate", "--ddl", "users.sql", "-n", "3", "--seed", "11")
	require.Equal(t, ExitOK, a.code, a.stderr)
	assert.Equal(t, a.stdout, b.stdout)
	lines := strings.Split(strings.TrimSpace(a.stdout), "\n")
	assert.Equal(t, "id,username,age,balance,active", lines[0])
	assert.Len(t, lines, 4)

	res := run(t, "generate", "--ddl", "users.sql", "--style", "fancy")
	assert.Equal(t, ExitFatal, res.code)
}
