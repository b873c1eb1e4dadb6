package services

import (
	"log"

	"deeplinkqr/internal/entities"
)

// ScanStore is the write side the recorder needs; *repositories.ScanRepo
// satisfies it.
type ScanStore interface {
	Create(evt *entities.ScanEvent) error
}

// ScanRecorder appends scan events from a background worker so the redirect
// response never waits on the database. Best-effort, no backpressure: Record
// never blocks, events are dropped when the queue is full, and write failures
// are logged, never surfaced to the caller.
type ScanRecorder struct {
	store ScanStore
	queue chan entities.ScanEvent
	done  chan struct{}
}

func NewScanRecorder(store ScanStore, buffer int) *ScanRecorder {
	if buffer < 1 {
		buffer = 1
	}
	r := &ScanRecorder{
		store: store,
		queue: make(chan entities.ScanEvent, buffer),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Record enqueues one event and returns immediately.
func (r *ScanRecorder) Record(evt entities.ScanEvent) {
	select {
	case r.queue <- evt:
	default:
		log.Printf("scan queue full, dropping event for link %s", evt.LinkID)
	}
}

func (r *ScanRecorder) loop() {
	defer close(r.done)
	for evt := range r.queue {
		if err := r.store.Create(&evt); err != nil {
			log.Printf("scan insert failed for link %s: %v", evt.LinkID, err)
		}
	}
}

// Close drains already-queued events and stops the worker. Record must not
// be called after Close, so this belongs at process shutdown only.
func (r *ScanRecorder) Close() {
	close(r.queue)
	<-r.done
}
