package geotiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	"golang.org/x/image/tiff"
)

type testTag struct {
	id    uint16
	typ   uint16
	count uint32
	data  []byte
}

func shorts(order binary.ByteOrder, vs ...uint16) testTag {
	b := make([]byte, 2*len(vs))
	for i, v := range vs {
		order.PutUint16(b[i*2:], v)
	}
	return testTag{typ: DataType_Short, count: uint32(len(vs)), data: b}
}

func doubles(order binary.ByteOrder, vs ...float64) testTag {
	b := make([]byte, 8*len(vs))
	for i, v := range vs {
		order.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return testTag{typ: DataType_Double, count: uint32(len(vs)), data: b}
}

func with(id uint16, t testTag) testTag {
	t.id = id
	return t
}

// buildTIFF writes a header and one IFD; pixel data is not needed to read the extent.
func buildTIFF(order binary.ByteOrder, tags ...testTag) []byte {
	var buf bytes.Buffer
	if order == binary.LittleEndian {
		buf.WriteString("II")
	} else {
		buf.WriteString("MM")
	}
	binary.Write(&buf, order, uint16(42))
	binary.Write(&buf, order, uint32(8))

	dataOffset := 8 + 2 + 12*len(tags) + 4
	var extra bytes.Buffer
	binary.Write(&buf, order, uint16(len(tags)))
	for _, t := range tags {
		binary.Write(&buf, order, t.id)
		binary.Write(&buf, order, t.typ)
		binary.Write(&buf, order, t.count)
		var val [4]byte
		if len(t.data) <= 4 {
			copy(val[:], t.data)
		} else {
			order.PutUint32(val[:], uint32(dataOffset+extra.Len()))
			extra.Write(t.data)
		}
		buf.Write(val[:])
	}
	binary.Write(&buf, order, uint32(0))
	buf.Write(extra.Bytes())
	return buf.Bytes()
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestReadExtentGeographic(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		data := buildTIFF(order,
			with(TagType_ImageWidth, shorts(order, 100)),
			with(TagType_ImageLength, shorts(order, 50)),
			with(TagType_ModelPixelScaleTag, doubles(order, 0.1, 0.1, 0)),
			with(TagType_ModelTiepointTag, doubles(order, 0, 0, 0, 10, 50, 0)),
			with(TagType_GeoKeyDirectoryTag, shorts(order, 1, 1, 0, 1, 1024, 0, 1, 2)),
		)
		ext, err := ReadExtent(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%v: %v", order, err)
		}
		want := Extent{West: 10, South: 45, East: 20, North: 50}
		if !near(ext.West, want.West) || !near(ext.South, want.South) || !near(ext.East, want.East) || !near(ext.North, want.North) {
			t.Errorf("%v: extent = %+v, want %+v", order, ext, want)
		}
	}
}

func TestReadExtentWebMercator(t *testing.T) {
	order := binary.LittleEndian
	half := math.Pi * earthRadius
	data := buildTIFF(order,
		with(TagType_ImageWidth, shorts(order, 256)),
		with(TagType_ImageLength, shorts(order, 256)),
		with(TagType_ModelPixelScaleTag, doubles(order, half/256, half/256, 0)),
		with(TagType_ModelTiepointTag, doubles(order, 0, 0, 0, 0, half, 0)),
		with(TagType_GeoKeyDirectoryTag, shorts(order, 1, 1, 0, 3, 1024, 0, 1, 1, 1025, 0, 1, 1, 3072, 0, 1, 3857)),
	)
	ext, err := ReadExtent(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !near(ext.West, 0) || !near(ext.East, 180) || !near(ext.South, 0) {
		t.Errorf("extent = %+v", ext)
	}
	if math.Abs(ext.North-85.0511287798) > 1e-6 {
		t.Errorf("north = %v", ext.North)
	}
}

func TestReadExtentUnsupportedProjection(t *testing.T) {
	order := binary.LittleEndian
	data := buildTIFF(order,
		with(TagType_ImageWidth, shorts(order, 10)),
		with(TagType_ImageLength, shorts(order, 10)),
		with(TagType_ModelPixelScaleTag, doubles(order, 30, 30, 0)),
		with(TagType_ModelTiepointTag, doubles(order, 0, 0, 0, 500000, 4500000, 0)),
		with(TagType_GeoKeyDirectoryTag, shorts(order, 1, 1, 0, 2, 1024, 0, 1, 1, 3072, 0, 1, 32633)),
	)
	if _, err := ReadExtent(bytes.NewReader(data)); !errors.Is(err, ErrUnsupportedCRS) {
		t.Errorf("err = %v, want ErrUnsupportedCRS", err)
	}
}

func TestReadExtentPlainTIFF(t *testing.T) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadExtent(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrNotGeoreferenced) {
		t.Errorf("err = %v, want ErrNotGeoreferenced", err)
	}
}

func TestReadExtentGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("PK\x03\x04 not a tiff"), []byte("II\x2b\x00\x08\x00\x00\x00")} {
		if _, err := ReadExtent(bytes.NewReader(data)); !errors.Is(err, ErrNotTIFF) {
			t.Errorf("%q: err = %v, want ErrNotTIFF", data, err)
		}
	}
}
