package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
)

// DefaultBatchSize is the number of descriptors written per transaction.
const DefaultBatchSize = 1000

// LayoutEntry is the stored form of one packed-layout span.
type LayoutEntry struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Len    int    `json:"len"`
}

// RunRecord is a row of the runs table.
type RunRecord struct {
	RunID         string          `json:"run_id"`
	CreatedAt     int64           `json:"created_at"`
	FinishedAt    int64           `json:"finished_at,omitempty"` // 0 while the run is open
	ConfigJSON    json.RawMessage `json:"config_json,omitempty"`
	Layout        []LayoutEntry   `json:"layout"`
	FrameSize     image.Point     `json:"frame_size"`
	DescriptorLen int             `json:"descriptor_len"`
	Frames        int             `json:"frames"`
	SkippedFrames int             `json:"skipped_frames"`
	Patches       int             `json:"patches"`
}

// DescriptorRow is a row of the descriptors table.
type DescriptorRow struct {
	Rect       image.Rectangle
	StartPTS   int
	EndPTS     int
	Descriptor []float32
}

// RunSummary carries the final counters stored by Finish.
type RunSummary struct {
	Frames        int
	SkippedFrames int
}

// Run writes descriptors for one extraction. It implements l5descriptor.Sink.
// A Run is not safe for concurrent use.
type Run struct {
	ID string

	store     *Store
	tx        *sql.Tx
	stmt      *sql.Stmt
	batch     int
	batchSize int
	patches   int
	descLen   int
	blob      []byte
}

// BeginRun inserts a run row and returns a Run that writes its descriptors.
// configJSON may be nil.
func (s *Store) BeginRun(configJSON []byte, layout []l5descriptor.Span, frameSize image.Point) (*Run, error) {
	entries := make([]LayoutEntry, len(layout))
	descLen := 0
	for i, sp := range layout {
		entries[i] = LayoutEntry{Kind: sp.Kind.String(), Offset: sp.Offset, Len: sp.Len}
		descLen += sp.Len
	}
	layoutJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}

	var cfg any
	if len(configJSON) > 0 {
		cfg = string(configJSON)
	}

	r := &Run{ID: uuid.New().String(), store: s, batchSize: DefaultBatchSize, descLen: descLen}
	_, err = s.db.Exec(`
		INSERT INTO runs (run_id, created_at, config_json, layout_json, frame_width, frame_height, descriptor_len)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, time.Now().UnixNano(), cfg, string(layoutJSON), frameSize.X, frameSize.Y, descLen,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

// SetBatchSize sets how many descriptors are committed per transaction.
func (r *Run) SetBatchSize(n int) {
	if n > 0 {
		r.batchSize = n
	}
}

// Patches returns the number of descriptors written.
func (r *Run) Patches() int { return r.patches }

func (r *Run) begin() error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return fmt.Errorf("begin descriptor batch: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO descriptors (run_id, x, y, width, height, start_pts, end_pts, descriptor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare descriptor insert: %w", err)
	}
	r.tx, r.stmt = tx, stmt
	return nil
}

func (r *Run) commit() error {
	if r.tx == nil {
		return nil
	}
	r.stmt.Close()
	err := r.tx.Commit()
	r.tx, r.stmt, r.batch = nil, nil, 0
	if err != nil {
		return fmt.Errorf("commit descriptor batch: %w", err)
	}
	return nil
}

// WritePatch stores one descriptor.
func (r *Run) WritePatch(p l5descriptor.Patch, desc []float32) error {
	if len(desc) != r.descLen {
		return fmt.Errorf("descriptor has %d values, run layout has %d", len(desc), r.descLen)
	}
	if r.tx == nil {
		if err := r.begin(); err != nil {
			return err
		}
	}
	r.blob = EncodeDescriptor(r.blob[:0], desc)
	rect := p.Rect
	if _, err := r.stmt.Exec(r.ID, rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), p.StartPTS, p.EndPTS, r.blob); err != nil {
		return fmt.Errorf("insert descriptor: %w", err)
	}
	r.patches++
	r.batch++
	if r.batch >= r.batchSize {
		return r.commit()
	}
	return nil
}

// Finish commits pending descriptors and records the final counters.
func (r *Run) Finish(s RunSummary) error {
	if err := r.commit(); err != nil {
		return err
	}
	_, err := r.store.db.Exec(`
		UPDATE runs SET finished_at = ?, frames = ?, skipped_frames = ?, patches = ?
		WHERE run_id = ?`,
		time.Now().UnixNano(), s.Frames, s.SkippedFrames, r.patches, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, created_at, finished_at, config_json, layout_json,
		       frame_width, frame_height, descriptor_len, frames, skipped_frames, patches
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			finished   sql.NullInt64
			cfg        sql.NullString
			layoutJSON string
		)
		if err := rows.Scan(&rec.RunID, &rec.CreatedAt, &finished, &cfg, &layoutJSON,
			&rec.FrameSize.X, &rec.FrameSize.Y, &rec.DescriptorLen,
			&rec.Frames, &rec.SkippedFrames, &rec.Patches); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.FinishedAt = finished.Int64
		if cfg.Valid {
			rec.ConfigJSON = json.RawMessage(cfg.String)
		}
		if err := json.Unmarshal([]byte(layoutJSON), &rec.Layout); err != nil {
			return nil, fmt.Errorf("run %s layout: %w", rec.RunID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Descriptors returns the stored descriptors of a run in insertion order.
func (s *Store) Descriptors(runID string) ([]DescriptorRow, error) {
	rows, err := s.db.Query(`
		SELECT x, y, width, height, start_pts, end_pts, descriptor
		FROM descriptors WHERE run_id = ? ORDER BY descriptor_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query descriptors: %w", err)
	}
	defer rows.Close()

	var out []DescriptorRow
	for rows.Next() {
		var (
			row        DescriptorRow
			x, y, w, h int
			blob       []byte
		)
		if err := rows.Scan(&x, &y, &w, &h, &row.StartPTS, &row.EndPTS, &blob); err != nil {
			return nil, fmt.Errorf("scan descriptor: %w", err)
		}
		row.Rect = image.Rect(x, y, x+w, y+h)
		if row.Descriptor, err = DecodeDescriptor(blob); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ErrBadBlob is returned for descriptor blobs that are not a whole number
// of float32 values.
var ErrBadBlob = errors.New("descriptor blob length is not a multiple of 4")

// EncodeDescriptor appends desc to dst as little-endian float32 values.
func EncodeDescriptor(dst []byte, desc []float32) []byte {
	for _, v := range desc {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// DecodeDescriptor parses a blob written by EncodeDescriptor.
func DecodeDescriptor(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, ErrBadBlob
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out, nil
}
