package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sync/atomic"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"
	"ielts-prep/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	SeedKindPreset = "preset"
	SeedKindTest   = "test"

	// DefaultSeedConcurrency bounds how many files are read and stored at once.
	DefaultSeedConcurrency = 4
)

// SeedFile is the on-disk format of one seeded test or preset.
type SeedFile struct {
	// Kind is "preset" (fallback pool) or "test" (smart selection pool).
	Kind   string `json:"kind"`
	ID     string `json:"id,omitempty"`
	Module string `json:"module"`
	Topic  string `json:"topic,omitempty"`
	Accent string `json:"accent,omitempty"`
	// Published defaults to true.
	Published *bool           `json:"published,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// SeedReport summarises one seeding run.
type SeedReport struct {
	Files   int
	Presets int
	Tests   int
	Skipped int
	Failed  int
}

// SeedService loads preset and test files into storage.
type SeedService interface {
	SeedFiles(ctx context.Context, fsys fs.FS, pattern string) (*SeedReport, error)
}

type seedServiceImpl struct {
	tests       domain.TestRepository
	presets     domain.PresetRepository
	concurrency int
	now         func() time.Time
}

func NewSeedService(tests domain.TestRepository, presets domain.PresetRepository, concurrency int) SeedService {
	if concurrency <= 0 {
		concurrency = DefaultSeedConcurrency
	}
	return &seedServiceImpl{
		tests:       tests,
		presets:     presets,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// SeedFiles stores every file matching pattern. Files that cannot be parsed
// or whose payload is incomplete are skipped, storage failures are counted
// and the run continues. Only a bad pattern or a cancelled context aborts it.
func (s *seedServiceImpl) SeedFiles(ctx context.Context, fsys fs.FS, pattern string) (*SeedReport, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid seed pattern %q: %w", pattern, err)
	}

	var presets, tests, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := readSeedFile(fsys, name)
			if err != nil {
				logger.Get().Warn("Skipping seed file", zap.String("file", name), zap.Error(err))
				skipped.Add(1)
				return nil
			}

			kind, err := s.store(gctx, name, file)
			if err != nil {
				logger.Get().Error("Failed to store seed file", zap.String("file", name), zap.Error(err))
				failed.Add(1)
				return nil
			}
			if kind == SeedKindPreset {
				presets.Add(1)
			} else {
				tests.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &SeedReport{
		Files:   len(names),
		Presets: int(presets.Load()),
		Tests:   int(tests.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	logger.Get().Info("Seeding finished",
		zap.Int("files", report.Files),
		zap.Int("presets", report.Presets),
		zap.Int("tests", report.Tests),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func readSeedFile(fsys fs.FS, name string) (*SeedFile, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var file SeedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("malformed seed file: %w", err)
	}
	if file.Kind == "" {
		file.Kind = SeedKindPreset
	}
	if file.Kind != SeedKindPreset && file.Kind != SeedKindTest {
		return nil, fmt.Errorf("unknown kind %q", file.Kind)
	}
	module, ok := domain.ParseModule(file.Module)
	if !ok {
		return nil, fmt.Errorf("unknown module %q", file.Module)
	}
	if err := domain.ValidatePayload(module, file.Payload); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *seedServiceImpl) store(ctx context.Context, name string, file *SeedFile) (string, error) {
	module, _ := domain.ParseModule(file.Module)
	id := file.ID
	if id == "" {
		id = util.NewULID()
	}
	published := file.Published == nil || *file.Published
	now := s.now().UTC()

	if file.Kind == SeedKindPreset {
		err := s.presets.SavePreset(ctx, &domain.Preset{
			ID:          id,
			Module:      module,
			Topic:       file.Topic,
			Payload:     file.Payload,
			IsPublished: published,
			CreatedAt:   now,
		})
		if err == nil {
			logger.Get().Debug("Seeded preset", zap.String("file", path.Base(name)), zap.String("id", id))
		}
		return SeedKindPreset, err
	}

	err := s.tests.CreateTest(ctx, &domain.CandidateTest{
		ID:          id,
		Module:      module,
		Topic:       file.Topic,
		Accent:      file.Accent,
		Status:      domain.TestStatusReady,
		IsPublished: published,
		Payload:     file.Payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err == nil {
		logger.Get().Debug("Seeded test", zap.String("file", path.Base(name)), zap.String("id", id))
	}
	return SeedKindTest, err
}
