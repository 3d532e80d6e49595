package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultExpected = 100_000
	bloomFPR        = 0.001
	progressEvery   = 10_000
	maxCodeLen      = 32
)

// record is one roster line.
type record struct {
	code string
	name string
}

// parseLine splits a "code,name" line. Blank lines and # comments yield
// ok=false with a nil error.
func parseLine(line string) (rec record, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return record{}, false, nil
	}
	code, name, found := strings.Cut(line, ",")
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	switch {
	case !found || name == "":
		return record{}, false, errors.Errorf("missing name in %q", line)
	case code == "" || len(code) > maxCodeLen:
		return record{}, false, errors.Errorf("invalid code in %q", line)
	}
	return record{code: code, name: name}, true, nil
}

// streamRoster opens a gzip-compressed roster and calls fn for each valid
// record. Malformed lines are passed to bad.
func streamRoster(ctx context.Context, path string, fn func(record) error, bad func(line int, err error)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for n := 1; scanner.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, ok, err := parseLine(scanner.Text())
		if err != nil {
			bad(n, err)
			continue
		}
		if !ok {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// buildFilters creates one bloom filter of student codes per file,
// concurrently.
func buildFilters(ctx context.Context, lg *zap.Logger, files []string, expected uint) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(expected, bloomFPR)
			var count int
			err := streamRoster(ctx, path, func(rec record) error {
				filter.AddString(rec.code)
				count++
				return nil
			}, func(int, error) {})
			if err != nil {
				return errors.Wrapf(err, "build filter for %s", path)
			}
			lg.Info("Pass 1 complete", zap.String("file", path), zap.Int("codes", count))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// Registrar adds roster entries. See repository.StudentRepository.Register.
type Registrar interface {
	Register(ctx context.Context, code, name string, overwrite bool) (bool, error)
}

type importStats struct {
	created  int
	existing int
	skipped  int
}

// importFiles registers every record in file order. A code that may appear in
// an earlier file only inserts when absent, so the earlier name is kept.
// Bloom false positives can only turn a rename into a no-op.
func importFiles(ctx context.Context, lg *zap.Logger, reg Registrar, files []string, filters []*bloom.BloomFilter) (importStats, error) {
	var stats importStats
	for i, path := range files {
		var seen int
		err := streamRoster(ctx, path, func(rec record) error {
			overwrite := true
			for _, earlier := range filters[:i] {
				if earlier.TestString(rec.code) {
					overwrite = false
					break
				}
			}
			created, err := reg.Register(ctx, rec.code, rec.name, overwrite)
			if err != nil {
				return errors.Wrapf(err, "register %s", rec.code)
			}
			if created {
				stats.created++
			} else {
				stats.existing++
			}
			if seen++; seen%progressEvery == 0 {
				lg.Info("Pass 2 progress", zap.String("file", path), zap.Int("records", seen))
			}
			return nil
		}, func(line int, err error) {
			stats.skipped++
			lg.Warn("Skipping roster line", zap.String("file", path), zap.Int("line", line), zap.Error(err))
		})
		if err != nil {
			return stats, err
		}
		lg.Info("Pass 2 complete", zap.String("file", path), zap.Int("records", seen))
	}
	return stats, nil
}
