package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"vinoapi/dataset"
	qhttp "vinoapi/http"
	"vinoapi/logger"
	"vinoapi/ml"
)

type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Path      string `yaml:"path"`
		MaxSizeMB int    `yaml:"max_size_mb"`
		Level     string `yaml:"level"`
	} `yaml:"log"`
	Model struct {
		Trees     int     `yaml:"trees"`
		MaxDepth  int     `yaml:"max_depth"`
		Seed      int64   `yaml:"seed"`
		TestRatio float64 `yaml:"test_ratio"`
	} `yaml:"model"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize rotating logger
	zlog := logger.New(logger.Config{
		Path:      config.Log.Path,
		MaxSizeMB: config.Log.MaxSizeMB,
		Level:     config.Log.Level,
	})
	defer zlog.Sync()

	// 3. Load dataset and fit the classifier; any failure here is fatal since
	// no request can be served without a model
	samples, labels, err := dataset.Load()
	if err != nil {
		zlog.Fatal("failed to load wine dataset", zap.Error(err))
	}
	trainX, trainY, testX, testY := dataset.Split(samples, labels, config.Model.TestRatio, config.Model.Seed)

	model := ml.NewRandomForest(config.Model.Trees, config.Model.MaxDepth, config.Model.Seed)
	if err := model.Fit(trainX, trainY); err != nil {
		zlog.Fatal("failed to fit classifier", zap.Error(err))
	}
	accuracy, _, err := ml.EvaluateClassifier(model, testX, testY)
	if err != nil {
		zlog.Fatal("failed to evaluate classifier", zap.Error(err))
	}
	trainRows, _ := trainX.Dims()
	testRows, _ := testX.Dims()
	zlog.Info("classifier fitted",
		zap.Int("trees", model.Trees),
		zap.Int("train_samples", trainRows),
		zap.Int("holdout_samples", testRows),
		zap.Float64("holdout_accuracy", accuracy),
	)

	// 4. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	handlers := qhttp.NewHandlers(model, zlog)
	server := qhttp.NewServer(serverConfig, handlers, zlog)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	if err := server.Stop(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Http.Port == 0 {
		config.Http.Port = 8000
	}
	if config.Model.Trees == 0 {
		config.Model.Trees = 100
	}
	if config.Model.MaxDepth == 0 {
		config.Model.MaxDepth = 10
	}
	if config.Model.Seed == 0 {
		config.Model.Seed = 42
	}
	if config.Model.TestRatio == 0 {
		config.Model.TestRatio = 0.2
	}
}
