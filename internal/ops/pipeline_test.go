package ops

import (
	"bytes"
	"testing"

	"github.com/mlnoga/filmr/internal/filmstock"
)

func solidImage(w, h int, v byte) []byte {
	buf := make([]byte, w*h*3)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func TestNeutralAxisStaysNeutral(t *testing.T) {
	stock := filmstock.KodakPortra400()
	opts := DefaultOptions()
	for _, v := range []byte{16, 64, 128, 192, 240} {
		img := solidImage(4, 4, v)
		out, err := Process(img, 4, 4, stock, opts, NewContext(&bytes.Buffer{}))
		if err != nil {
			t.Fatalf("process failed for v=%d: %v", v, err)
		}
		r, g, b := int(out[0]), int(out[1]), int(out[2])
		if abs(r-g) > 2 || abs(g-b) > 2 {
			t.Errorf("v=%d: neutral input produced non-neutral output (%d,%d,%d)", v, r, g, b)
		}
	}
}

func TestSeedDeterminism(t *testing.T) {
	stock := filmstock.KodakTriX400()
	opts := DefaultOptions()
	opts.Seed = 42
	img := solidImage(32, 32, 128)
	out1, err := Process(img, 32, 32, stock, opts, NewContext(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	out2, err := Process(img, 32, 32, stock, opts, NewContext(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !bytes.Equal(out1, out2) {
		t.Errorf("equal seeds must produce bit-identical output")
	}
}

func TestDimensionErrorOnBadBufferLength(t *testing.T) {
	stock := filmstock.KodakPortra400()
	_, err := Process(make([]byte, 10), 4, 4, stock, DefaultOptions(), NewContext(&bytes.Buffer{}))
	if err == nil {
		t.Errorf("expected a dimension error for a mismatched buffer length")
	}
}

func TestPipelineRejectsInvalidStock(t *testing.T) {
	stock := filmstock.KodakPortra400()
	stock.RCurve.Gamma = -1
	img := solidImage(2, 2, 128)
	_, err := Process(img, 2, 2, stock, DefaultOptions(), NewContext(&bytes.Buffer{}))
	if err == nil {
		t.Errorf("expected a configuration error for a negative gamma")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
