// Command gen-mvlog generates sample .mvlog frame logs from the synthetic
// source, for replay through motionfeat -input.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/banshee-data/motionfeat/internal/video/l1frames"
)

func main() {
	output := flag.String("o", "sample.mvlog", "output path")
	frames := flag.Int("n", 100, "number of frames")
	width := flag.Int("width", 320, "frame width in pixels")
	height := flag.Int("height", 240, "frame height in pixels")
	seed := flag.Int64("seed", 1, "motion noise seed")
	keyframes := flag.Int("keyframe-interval", 12, "frames between keyframes without motion vectors, 0 disables")
	noDCT := flag.Bool("no-dct", false, "omit the DCT magnitude map")
	flag.Parse()

	src := l1frames.NewSyntheticSource(*width, *height, *frames, *seed)
	src.KeyframeInterval = *keyframes
	src.WithDCT = !*noDCT

	n, err := generate(*output, src)
	if err != nil {
		log.Fatalf("gen-mvlog: %v", err)
	}
	log.Printf("created %s: %d frames, %dx%d", *output, n, *width, *height)
}

func generate(path string, src l1frames.Source) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rec, err := l1frames.NewRecorder(f, src.Geometry())
	if err != nil {
		return 0, err
	}
	for {
		fr, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rec.Close()
			return rec.Frames(), err
		}
		if err := rec.Record(fr); err != nil {
			rec.Close()
			return rec.Frames(), err
		}
		if n := rec.Frames(); n%10 == 0 {
			log.Printf("%d frames", n)
		}
	}
	if err := rec.Close(); err != nil {
		return rec.Frames(), err
	}
	return rec.Frames(), f.Close()
}
