// Package profile implements the profiling event sink backing the
// LogSize/LogTimer statements (spec.md §4.8): a Recorder interface with
// a no-op, a JSON-lines file implementation, and a live websocket
// implementation, grounded on the ProfileEventSingleton call sites
// throughout original_source/src/Interpreter.cpp and on sentra's
// websocket usage for live event streaming.
package profile

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is one profiling record: a relation-size snapshot, a
// timer-scope measurement, a stratum membership record, or an
// existence-check read count.
type Event struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"` // "size", "timer", "stratum", or "read"
	Message   string  `json:"message,omitempty"`
	Relation  string  `json:"relation,omitempty"`
	Size      int     `json:"size,omitempty"`
	Count     int     `json:"count,omitempty"`
	Stratum   int     `json:"stratum,omitempty"`
	Iteration int     `json:"iteration,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms,omitempty"`
}

// Recorder accepts profiling events as they occur during execution.
type Recorder interface {
	Record(ev Event)
}

// NopRecorder discards every event; the default when profiling is
// disabled.
type NopRecorder struct{}

func (NopRecorder) Record(Event) {}

// FileRecorder appends one JSON object per line to an open file.
type FileRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileRecorder opens (creating/truncating) path for JSON-lines
// profiling output.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{file: f, enc: json.NewEncoder(f)}, nil
}

func (r *FileRecorder) Record(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(ev)
}

// Close flushes and closes the underlying file.
func (r *FileRecorder) Close() error { return r.file.Close() }

// WebSocketRecorder pushes events to a single connected client as they
// occur, for a live profiling dashboard.
type WebSocketRecorder struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketRecorder wraps an already-established connection.
func NewWebSocketRecorder(conn *websocket.Conn) *WebSocketRecorder {
	return &WebSocketRecorder{conn: conn}
}

func (r *WebSocketRecorder) Record(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.conn.WriteJSON(ev)
}

// Timer measures the elapsed duration of a LogTimer-bracketed statement
// and emits a "timer" event on completion, tagged with the enclosing
// Loop iteration.
func Timer(rec Recorder, message, relationHint string, iteration int, size func() int) func() {
	start := time.Now()
	return func() {
		ev := Event{Kind: "timer", Message: message, Iteration: iteration, ElapsedMS: float64(time.Since(start).Microseconds()) / 1000.0}
		if relationHint != "" && size != nil {
			ev.Relation = relationHint
			ev.Size = size()
		}
		rec.Record(ev)
	}
}
