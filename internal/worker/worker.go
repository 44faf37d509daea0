package worker

import (
	"context"
	"log"

	"datagen-service/internal/broker"
	"datagen-service/internal/models"
	"datagen-service/internal/service"
)

// GenerationWorker processes dataset requests arriving over Kafka, so
// batch clients can queue generation without holding an HTTP connection.
type GenerationWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	datasetService *service.DatasetService
}

// NewGenerationWorker creates a new generation worker
func NewGenerationWorker(
	consumer *broker.Consumer,
	datasetService *service.DatasetService,
) *GenerationWorker {
	eventHandler := broker.NewEventHandler()

	w := &GenerationWorker{
		consumer:       consumer,
		eventHandler:   eventHandler,
		datasetService: datasetService,
	}
	eventHandler.OnDatasetRequested(w.handleRequested)

	return w
}

func (w *GenerationWorker) handleRequested(ctx context.Context, event *models.DatasetRequestedEvent) error {
	req := &service.GenerateRequest{
		Seed:        event.Seed,
		RecordCount: event.RecordCount,
		WindowStart: event.WindowStart,
		WindowEnd:   event.WindowEnd,
	}
	if event.ErrorFraction > 0 {
		req.ErrorFraction = &event.ErrorFraction
	}

	resp, err := w.datasetService.Generate(ctx, req)
	if err != nil {
		// Configuration errors are terminal for this request; the failure
		// event has already been published. Do not redeliver.
		log.Printf("Generation request failed: %v", err)
		return nil
	}

	log.Printf("Generation request done: run=%s rows=%d corrupted=%d",
		resp.RunID, resp.RowCount, resp.CorruptedCount)
	return nil
}

// Start starts the worker
func (w *GenerationWorker) Start(ctx context.Context) error {
	log.Println("Starting generation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *GenerationWorker) Stop() error {
	log.Println("Stopping generation worker...")
	return w.consumer.Close()
}
