package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roadsense/telemetry-hub/internal/agent"
	"github.com/roadsense/telemetry-hub/internal/models"
)

func main() {
	configPath := flag.String("config", "", "path to agent config file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := agent.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	datasource := agent.NewFileDatasource(cfg.AccelerometerCSV, cfg.GpsCSV)
	if err := datasource.Start(); err != nil {
		log.WithError(err).Fatal("failed to start datasource")
	}

	adapter := agent.NewStoreAPIAdapter(cfg.HubURL, log)
	classify := agent.Classifier(agent.ClassifyByVerticalAcceleration)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"hub":        cfg.HubURL,
		"batch_size": cfg.BatchSize,
	}).Info("agent started")

	run(ctx, log, cfg, datasource, classify, adapter)

	log.Info("agent stopped")
}

// run reads, classifies and batches readings, forwarding each full batch to
// the hub. A batch that still fails after the adapter's retries is dropped
// and logged; the read loop keeps going.
func run(ctx context.Context, log *logrus.Logger, cfg *agent.Config, datasource *agent.FileDatasource, classify agent.Classifier, adapter *agent.StoreAPIAdapter) {
	ticker := time.NewTicker(cfg.ReadInterval)
	defer ticker.Stop()

	batch := make([]models.ProcessedAgentData, 0, cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		data, err := datasource.Read()
		if err != nil {
			log.WithError(err).Error("failed to read sensor data")
			continue
		}

		batch = append(batch, models.ProcessedAgentData{
			RoadState: classify(data),
			AgentData: data,
		})
		if len(batch) < cfg.BatchSize {
			continue
		}

		if err := adapter.SaveData(ctx, batch); err != nil {
			log.WithError(err).Error("failed to upload batch, dropping")
		}
		batch = batch[:0]
	}
}
