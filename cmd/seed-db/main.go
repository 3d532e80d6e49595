// Command seed-db applies the schema, loads the cafeteria menu and creates
// demo students.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Homd11/CAFESYSTEM/db"
	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/repository"
)

// demoStudent is created when missing. Existing students keep their balance.
type demoStudent struct {
	code   string
	name   string
	points int
}

var demoStudents = []demoStudent{
	{code: "20230001", name: "Mona Hassan", points: 0},
	{code: "20230002", name: "Omar Khaled", points: 120},
	{code: "20230003", name: "Salma Youssef", points: 400},
}

func main() {
	var (
		databaseURL string
		menuFile    string
		skipDemo    bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "", "path to a menu JSON file (defaults to the embedded menu)")
	flag.BoolVar(&skipDemo, "skip-demo-students", false, "do not create demo students")
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, menuFile, !skipDemo); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, menuFile string, withDemo bool) error {
	data := db.MenuSeed
	if menuFile != "" {
		b, err := os.ReadFile(menuFile)
		if err != nil {
			return errors.Wrap(err, "read menu file")
		}
		data = b
	}
	items, err := parseMenu(data)
	if err != nil {
		return errors.Wrap(err, "parse menu")
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

	menuRepo := repository.NewMenuRepository(pool)
	for i := range items {
		if err := menuRepo.Upsert(ctx, &items[i]); err != nil {
			return errors.Wrap(err, "seed menu")
		}
		lg.Info("Upserted menu item",
			zap.Int64("id", items[i].ID),
			zap.String("name", items[i].Name),
			zap.Stringer("price", items[i].Price),
		)
	}

	if !withDemo {
		return nil
	}
	return seedStudents(ctx, lg, repository.NewStudentRepository(pool))
}

func seedStudents(ctx context.Context, lg *zap.Logger, repo *repository.StudentRepository) error {
	for _, d := range demoStudents {
		st, err := repo.FindByCode(ctx, d.code)
		switch {
		case err == nil:
			lg.Info("Student exists", zap.String("code", d.code), zap.Int64("id", st.ID))
			continue
		case !errors.Is(err, domainerr.ErrNotFound):
			return errors.Wrapf(err, "find student %s", d.code)
		}

		st, err = repo.Create(ctx, d.code, d.name, d.points)
		if err != nil {
			return errors.Wrap(err, "seed students")
		}
		lg.Info("Created student",
			zap.String("code", st.Code),
			zap.Int64("id", st.ID),
			zap.Int("points", d.points),
		)
	}
	return nil
}
