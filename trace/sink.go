// Package trace implements the optional Trace Sink: a per-charge/per-call
// execution trace for debugging and gas calibration, batched to disk in the
// background. Grounded almost directly on arbitrum/multigas/collector.go's
// channel-fed batching goroutine and protobuf-marshaled batch files.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protowire"
)

// Kind distinguishes the two trace record shapes the sink emits.
type Kind int

const (
	KindCharge Kind = iota
	KindCall
)

// Record is one traced event: either a gas charge or a call-manager frame
// transition, in the exact program order they occurred (spec.md §5
// "Ordering: ... traces record that order exactly").
type Record struct {
	Kind     Kind
	Seq      uint64
	Name     string // charge name, or "send"/"return" for call records
	Actor    uint64
	Method   uint64
	Milligas int64
}

// Config mirrors arbitrum/multigas.Collector's Config: an output directory
// and a batch size at which buffered records are flushed to a file.
type Config struct {
	OutputDir string
	BatchSize int
}

// Sink batches Records and flushes them to protobuf-wire-encoded files in
// OutputDir, the same channel-fed background-goroutine shape as
// multigas.Collector's processData/flushBatch.
type Sink struct {
	cfg     Config
	input   chan Record
	wg      sync.WaitGroup
	mu      sync.Mutex
	buffer  []Record
	batchNo int
}

// NewSink validates cfg and starts the background batching goroutine,
// mirroring multigas.NewCollector.
func NewSink(cfg Config) (*Sink, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("trace: OutputDir required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("trace: creating output dir: %w", err)
	}
	s := &Sink{cfg: cfg, input: make(chan Record, cfg.BatchSize)}
	s.wg.Add(1)
	go s.processData()
	return s, nil
}

func (s *Sink) processData() {
	defer s.wg.Done()
	for rec := range s.input {
		s.mu.Lock()
		s.buffer = append(s.buffer, rec)
		if len(s.buffer) >= s.cfg.BatchSize {
			s.flushBatchLocked()
		}
		s.mu.Unlock()
	}
	s.mu.Lock()
	if len(s.buffer) > 0 {
		s.flushBatchLocked()
	}
	s.mu.Unlock()
}

func (s *Sink) flushBatchLocked() {
	data := marshalBatch(s.buffer)
	path := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("trace_batch_%010d.pb", s.batchNo))
	s.batchNo++
	_ = os.WriteFile(path, data, 0o644)
	s.buffer = s.buffer[:0]
}

// Emit enqueues rec for batching. The queue holds BatchSize records; once
// it is full, Emit blocks until the background goroutine, which may be
// writing a batch to disk, takes the next record.
func (s *Sink) Emit(rec Record) {
	s.input <- rec
}

// Close drains remaining records, flushes the final partial batch, and
// waits for the background goroutine to exit.
func (s *Sink) Close() {
	close(s.input)
	s.wg.Wait()
}

// marshalBatch hand-encodes records using protowire directly (rather than
// a generated .pb.go message) so the trace format stays a real protobuf
// wire stream without requiring a protoc invocation in this environment:
// field 1 = repeated Record submessages, each itself length-delimited with
// fields kind(1)/seq(2)/name(3)/actor(4)/method(5)/milligas(6).
func marshalBatch(records []Record) []byte {
	var out []byte
	for _, r := range records {
		var rec []byte
		rec = protowire.AppendTag(rec, 1, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(r.Kind))
		rec = protowire.AppendTag(rec, 2, protowire.VarintType)
		rec = protowire.AppendVarint(rec, r.Seq)
		rec = protowire.AppendTag(rec, 3, protowire.BytesType)
		rec = protowire.AppendString(rec, r.Name)
		rec = protowire.AppendTag(rec, 4, protowire.VarintType)
		rec = protowire.AppendVarint(rec, r.Actor)
		rec = protowire.AppendTag(rec, 5, protowire.VarintType)
		rec = protowire.AppendVarint(rec, r.Method)
		rec = protowire.AppendTag(rec, 6, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(r.Milligas))

		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, rec)
	}
	return out
}

// UnmarshalBatch decodes a batch file written by marshalBatch; exported so
// operator tooling (and tests) can read trace output back.
func UnmarshalBatch(data []byte) ([]Record, error) {
	var records []Record
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 || num != 1 || typ != protowire.BytesType {
			return nil, fmt.Errorf("trace: malformed batch at offset %d", len(data))
		}
		data = data[n:]
		recBytes, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("trace: malformed record length")
		}
		data = data[n:]

		var r Record
		buf := recBytes
		for len(buf) > 0 {
			fnum, ftyp, fn := protowire.ConsumeTag(buf)
			if fn < 0 {
				return nil, fmt.Errorf("trace: malformed record field")
			}
			buf = buf[fn:]
			switch fnum {
			case 1:
				v, vn := protowire.ConsumeVarint(buf)
				r.Kind = Kind(v)
				buf = buf[vn:]
			case 2:
				v, vn := protowire.ConsumeVarint(buf)
				r.Seq = v
				buf = buf[vn:]
			case 3:
				v, vn := protowire.ConsumeBytes(buf)
				r.Name = string(v)
				buf = buf[vn:]
			case 4:
				v, vn := protowire.ConsumeVarint(buf)
				r.Actor = v
				buf = buf[vn:]
			case 5:
				v, vn := protowire.ConsumeVarint(buf)
				r.Method = v
				buf = buf[vn:]
			case 6:
				v, vn := protowire.ConsumeVarint(buf)
				r.Milligas = int64(v)
				buf = buf[vn:]
			default:
				fskip := protowire.ConsumeFieldValue(fnum, ftyp, buf)
				if fskip < 0 {
					return nil, fmt.Errorf("trace: cannot skip unknown field %d", fnum)
				}
				buf = buf[fskip:]
			}
		}
		records = append(records, r)
	}
	return records, nil
}
