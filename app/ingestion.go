package app

import (
	"log/slog"

	"mlproject/adapters/tabular"
	"mlproject/internal/config"
	"mlproject/internal/errors"
	"mlproject/internal/logging"
	"mlproject/internal/profiling"
	"mlproject/internal/split"
)

const stageIngestion = "ingestion"

// IngestionResult describes the artifacts written by an ingestion run
type IngestionResult struct {
	RawPath     string
	TrainPath   string
	TestPath    string
	SourceHash  string
	RawRows     int
	TrainRows   int
	TestRows    int
	SplitMethod string
	Profile     *profiling.TableProfile
}

// IngestionService reads the source dataset, splits it and persists the
// raw/train/test CSV artifacts.
type IngestionService struct {
	config   config.Config
	reader   *tabular.Reader
	profiler *profiling.DataProfiler
	logger   *slog.Logger
}

// NewIngestionService creates a new ingestion stage
func NewIngestionService(cfg config.Config, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("stage", stageIngestion)
	return &IngestionService{
		config:   cfg,
		reader:   tabular.NewReader(logger),
		profiler: profiling.NewDataProfiler(),
		logger:   logger,
	}
}

// Run performs the ingestion and returns the train and test artifact paths.
func (s *IngestionService) Run() (trainPath, testPath string, err error) {
	res, err := s.RunDetailed()
	if err != nil {
		return "", "", err
	}
	return res.TrainPath, res.TestPath, nil
}

// RunDetailed performs the ingestion and reports row counts alongside the paths.
func (s *IngestionService) RunDetailed() (*IngestionResult, error) {
	s.logger.Info("entered the data ingestion stage", "source", s.config.Source.Path)

	table, err := s.reader.Read(s.config.Source.Path)
	if err != nil {
		return nil, errors.Stage(stageIngestion, errors.SourceRead("read source", err))
	}
	sourceHash, err := fileSHA256(s.config.Source.Path)
	if err != nil {
		return nil, errors.Stage(stageIngestion, errors.SourceRead("hash source", err))
	}
	profile := s.profiler.ProfileTable(table)
	s.logger.Info("read the dataset",
		"rows", table.Len(),
		"columns", len(table.Columns),
		"missing_cells", profile.MissingCells())
	for _, col := range profile.Columns {
		s.logger.Debug("profiled column",
			"column", col.Name,
			"kind", col.Kind,
			"missing", col.Missing,
			"distinct", col.Distinct)
	}

	paths := s.config.Artifacts
	if err := paths.EnsureDir(); err != nil {
		return nil, errors.Stage(stageIngestion, errors.Wrap(err, "prepare artifact directory"))
	}
	if err := tabular.WriteCSV(paths.Raw, table); err != nil {
		return nil, errors.Stage(stageIngestion, errors.Wrap(err, "write raw artifact"))
	}

	s.logger.Info("train test split initiated",
		"test_fraction", s.config.Split.TestFraction,
		"seed", s.config.Split.Seed)
	splitter := split.NewSplitter(s.config.Split.TestFraction, s.config.Split.Seed)
	if s.config.Split.StratifyBy != "" {
		splitter = splitter.WithStratification(s.config.Split.StratifyBy)
	}
	res, err := splitter.Split(table)
	if err != nil {
		return nil, errors.Stage(stageIngestion, errors.WithCode(errors.CodeConfigInvalid, err))
	}

	if err := tabular.WriteCSV(paths.Train, res.Train); err != nil {
		return nil, errors.Stage(stageIngestion, errors.Wrap(err, "write train artifact"))
	}
	if err := tabular.WriteCSV(paths.Test, res.Test); err != nil {
		return nil, errors.Stage(stageIngestion, errors.Wrap(err, "write test artifact"))
	}

	s.logger.Info("ingestion of the data is completed",
		"train_rows", res.Train.Len(),
		"test_rows", res.Test.Len(),
		"method", res.Method)

	return &IngestionResult{
		RawPath:     paths.Raw,
		TrainPath:   paths.Train,
		TestPath:    paths.Test,
		SourceHash:  sourceHash,
		RawRows:     table.Len(),
		TrainRows:   res.Train.Len(),
		TestRows:    res.Test.Len(),
		SplitMethod: res.Method,
		Profile:     profile,
	}, nil
}
