package config

const (
	defaultConfigPath      = "~/.config/labelaudit/config.toml"
	defaultStateDir        = "~/.local/share/labelaudit"
	defaultLogDir          = "~/.local/share/labelaudit/logs"
	defaultFolds           = 5
	defaultSeed            = 42
	defaultClassifier      = "logreg"
	defaultEpochs          = 200
	defaultLearningRate    = 0.5
	defaultL2              = 1e-4
	defaultTemperature     = 0.5
	defaultFeatureProvider = "hashed"
	defaultFeatureDim      = 256
	defaultFeatureWindow   = 1
	defaultReportWindow    = 10
	defaultReportFormat    = "table"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Estimator: Estimator{
			Folds:      defaultFolds,
			Seed:       defaultSeed,
			Classifier: defaultClassifier,
		},
		Classifier: Classifier{
			Epochs:       defaultEpochs,
			LearningRate: defaultLearningRate,
			L2:           defaultL2,
			Temperature:  defaultTemperature,
		},
		Features: Features{
			Provider:      defaultFeatureProvider,
			Dim:           defaultFeatureDim,
			ContextWindow: defaultFeatureWindow,
		},
		Report: Report{
			Window: defaultReportWindow,
			Format: defaultReportFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
