// Command roster-import registers students from gzip-compressed roster files.
//
// Each roster line is "code,name". Files are applied in the order given; when
// a code appears in more than one file the earliest file wins.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Homd11/CAFESYSTEM/internal/repository"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		expected    uint
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory scanned for roster*.gz when no files are given")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.UintVar(&expected, "expected", defaultExpected, "expected number of students per file, sizes the bloom filters")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	files := flag.Args()
	if len(files) == 0 {
		if files, err = filepath.Glob(filepath.Join(dataDir, "roster*.gz")); err != nil {
			lg.Fatal("Invalid data dir", zap.Error(err))
		}
		sort.Strings(files)
	}
	if len(files) == 0 {
		lg.Fatal("No roster files found", zap.String("data_dir", dataDir))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, files, expected); err != nil {
		lg.Fatal("Roster import failed", zap.Error(err))
	}
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, files []string, expected uint) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	lg.Info("Pass 1: building bloom filters", zap.Int("files", len(files)))
	filters, err := buildFilters(ctx, lg, files, expected)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	lg.Info("Connecting to database")
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	lg.Info("Pass 2: registering students")
	stats, err := importFiles(ctx, lg, repository.NewStudentRepository(pool), files, filters)
	if err != nil {
		return errors.Wrap(err, "import rosters")
	}

	lg.Info("Roster import completed",
		zap.Int("created", stats.created),
		zap.Int("existing", stats.existing),
		zap.Int("skipped", stats.skipped),
	)
	return nil
}
