package l1frames

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

// Frame log (.mvlog) layout, zstd-compressed, little endian:
//
//	header: "MVLG" | version u16 | raw w,h u32 | grid w,h u32
//	record: pts i32 | pict u8 | flags u8 | [raw f32*w*h] [dx,dy f32*gw*gh] [dct f32*w*h]
//
// A record with pts == EndPTS (or the end of the stream) terminates the log.
const (
	mvlogMagic   = "MVLG"
	mvlogVersion = 1

	flagNoMotion = 1 << 0
	flagRaw      = 1 << 1
	flagMotion   = 1 << 2
	flagDCT      = 1 << 3
)

// ErrBadMagic is returned when a stream does not start with a frame log header.
var ErrBadMagic = errors.New("not a frame log")

type mvlogHeader struct {
	Magic   [4]byte
	Version uint16
	RawW    uint32
	RawH    uint32
	GridW   uint32
	GridH   uint32
}

type recordHeader struct {
	PTS   int32
	Pict  uint8
	Flags uint8
}

// Recorder writes frames to a compressed frame log.
type Recorder struct {
	geom Geometry
	enc  *zstd.Encoder
	buf  *bufio.Writer
	n    int
}

// NewRecorder writes a log header for geom to w and returns a Recorder.
// Close must be called to flush the stream; it does not close w.
func NewRecorder(w io.Writer, geom Geometry) (*Recorder, error) {
	if geom.Original.X <= 0 || geom.Original.Y <= 0 || geom.Grid.X <= 0 || geom.Grid.Y <= 0 {
		return nil, fmt.Errorf("invalid frame log geometry %v / %v", geom.Original, geom.Grid)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	rec := &Recorder{geom: geom, enc: enc, buf: bufio.NewWriter(enc)}

	hdr := mvlogHeader{
		Version: mvlogVersion,
		RawW:    uint32(geom.Original.X),
		RawH:    uint32(geom.Original.Y),
		GridW:   uint32(geom.Grid.X),
		GridH:   uint32(geom.Grid.Y),
	}
	copy(hdr.Magic[:], mvlogMagic)
	if err := binary.Write(rec.buf, binary.LittleEndian, hdr); err != nil {
		enc.Close()
		return nil, fmt.Errorf("write frame log header: %w", err)
	}
	return rec, nil
}

// Record appends a frame. Grids must match the recorder geometry.
func (r *Recorder) Record(f *Frame) error {
	var flags uint8
	if f.NoMotionVectors {
		flags |= flagNoMotion
	}
	if f.RawImage != nil {
		if Size(f.RawImage) != r.geom.Original {
			return fmt.Errorf("frame %d: raw image %v, want %v", f.PTS, Size(f.RawImage), r.geom.Original)
		}
		flags |= flagRaw
	}
	if f.DX != nil && f.DY != nil {
		if Size(f.DX) != r.geom.Grid || Size(f.DY) != r.geom.Grid {
			return fmt.Errorf("frame %d: motion field %v, want %v", f.PTS, Size(f.DX), r.geom.Grid)
		}
		flags |= flagMotion
	}
	if f.DCTMap != nil {
		if Size(f.DCTMap) != r.geom.Original {
			return fmt.Errorf("frame %d: dct map %v, want %v", f.PTS, Size(f.DCTMap), r.geom.Original)
		}
		flags |= flagDCT
	}

	rh := recordHeader{PTS: int32(f.PTS), Pict: f.PictType, Flags: flags}
	if err := binary.Write(r.buf, binary.LittleEndian, rh); err != nil {
		return fmt.Errorf("write frame %d: %w", f.PTS, err)
	}
	var grids []*mat.Dense
	if flags&flagRaw != 0 {
		grids = append(grids, f.RawImage)
	}
	if flags&flagMotion != 0 {
		grids = append(grids, f.DX, f.DY)
	}
	if flags&flagDCT != 0 {
		grids = append(grids, f.DCTMap)
	}
	for _, m := range grids {
		if err := writeGrid(r.buf, m); err != nil {
			return fmt.Errorf("write frame %d: %w", f.PTS, err)
		}
	}
	r.n++
	return nil
}

// Frames returns the number of frames recorded so far.
func (r *Recorder) Frames() int {
	return r.n
}

// Close writes the terminating record and flushes the compressed stream.
func (r *Recorder) Close() error {
	end := recordHeader{PTS: EndPTS}
	if err := binary.Write(r.buf, binary.LittleEndian, end); err != nil {
		r.enc.Close()
		return fmt.Errorf("write end record: %w", err)
	}
	if err := r.buf.Flush(); err != nil {
		r.enc.Close()
		return fmt.Errorf("flush frame log: %w", err)
	}
	return r.enc.Close()
}

func writeGrid(w io.Writer, m *mat.Dense) error {
	raw := m.RawMatrix()
	row := make([]float32, raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		for j := 0; j < raw.Cols; j++ {
			row[j] = float32(raw.Data[i*raw.Stride+j])
		}
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

func readGrid(r io.Reader, size image.Point) (*mat.Dense, error) {
	vals := make([]float32, size.X*size.Y)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, err
	}
	data := make([]float64, len(vals))
	for i, v := range vals {
		data[i] = float64(v)
	}
	return mat.NewDense(size.Y, size.X, data), nil
}

// Reader replays a frame log as a Source.
type Reader struct {
	geom   Geometry
	dec    *zstd.Decoder
	buf    *bufio.Reader
	closer io.Closer
	done   bool
}

// NewReader reads the log header from r.
func NewReader(r io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	rd := &Reader{dec: dec, buf: bufio.NewReader(dec)}

	var hdr mvlogHeader
	if err := binary.Read(rd.buf, binary.LittleEndian, &hdr); err != nil {
		dec.Close()
		return nil, fmt.Errorf("read frame log header: %w", err)
	}
	if string(hdr.Magic[:]) != mvlogMagic {
		dec.Close()
		return nil, ErrBadMagic
	}
	if hdr.Version != mvlogVersion {
		dec.Close()
		return nil, fmt.Errorf("unsupported frame log version %d", hdr.Version)
	}
	rd.geom = Geometry{
		Original: image.Pt(int(hdr.RawW), int(hdr.RawH)),
		Grid:     image.Pt(int(hdr.GridW), int(hdr.GridH)),
	}
	return rd, nil
}

// OpenFile opens a frame log on disk. Close releases the file.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame log: %w", err)
	}
	rd, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rd.closer = f
	return rd, nil
}

// Geometry returns the geometry stored in the log header.
func (r *Reader) Geometry() Geometry {
	return r.geom
}

// Read decodes the next frame. It returns io.EOF at the terminating record.
func (r *Reader) Read() (*Frame, error) {
	if r.done {
		return nil, io.EOF
	}
	var rh recordHeader
	if err := binary.Read(r.buf, binary.LittleEndian, &rh); err != nil {
		if errors.Is(err, io.EOF) {
			r.done = true
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame record: %w", err)
	}
	if rh.PTS == EndPTS {
		r.done = true
		return nil, io.EOF
	}

	f := &Frame{
		PTS:             int(rh.PTS),
		PictType:        rh.Pict,
		NoMotionVectors: rh.Flags&flagNoMotion != 0,
	}
	var err error
	if rh.Flags&flagRaw != 0 {
		if f.RawImage, err = readGrid(r.buf, r.geom.Original); err != nil {
			return nil, fmt.Errorf("frame %d raw image: %w", f.PTS, err)
		}
	}
	if rh.Flags&flagMotion != 0 {
		if f.DX, err = readGrid(r.buf, r.geom.Grid); err != nil {
			return nil, fmt.Errorf("frame %d dx: %w", f.PTS, err)
		}
		if f.DY, err = readGrid(r.buf, r.geom.Grid); err != nil {
			return nil, fmt.Errorf("frame %d dy: %w", f.PTS, err)
		}
	}
	if rh.Flags&flagDCT != 0 {
		if f.DCTMap, err = readGrid(r.buf, r.geom.Original); err != nil {
			return nil, fmt.Errorf("frame %d dct map: %w", f.PTS, err)
		}
	}
	return f, nil
}

// Close releases the decoder and the underlying file, if any.
func (r *Reader) Close() error {
	r.dec.Close()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
