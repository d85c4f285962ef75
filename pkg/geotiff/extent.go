// Package geotiff reads the georeferencing of GeoTIFF files.
//
// Only the tags needed to place an image on a web map are read: image size,
// ModelPixelScale, ModelTiepoint and the model type and projected CRS keys of
// the GeoKey directory. Geographic (EPSG:4326) and Web Mercator (EPSG:3857)
// rasters are supported.
package geotiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	DataType_Byte   = 1
	DataType_ASCII  = 2
	DataType_Short  = 3
	DataType_Long   = 4
	DataType_Double = 12

	TagType_ImageWidth  = 256
	TagType_ImageLength = 257

	// GeoTIFF Tags
	TagType_ModelPixelScaleTag = 33550
	TagType_ModelTiepointTag   = 33922
	TagType_GeoKeyDirectoryTag = 34735

	geoKeyModelType     = 1024
	geoKeyProjectedType = 3072

	modelTypeProjected  = 1
	modelTypeGeographic = 2

	earthRadius = 6378137.0
)

var (
	ErrNotTIFF          = errors.New("not a TIFF file")
	ErrNotGeoreferenced = errors.New("TIFF carries no georeferencing")
	ErrUnsupportedCRS   = errors.New("unsupported coordinate reference system")
)

var webMercatorEPSGCodes = map[uint16]bool{3857: true, 3785: true}

// Extent is a raster footprint in degrees.
type Extent struct {
	West, South, East, North float64
}

type entry struct {
	datatype uint16
	count    uint32
	value    []byte // raw bytes, already dereferenced
}

type reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
}

// ReadExtent returns the WGS84 footprint of the GeoTIFF in r.
func ReadExtent(r io.ReaderAt) (Extent, error) {
	var header [8]byte
	if _, err := r.ReadAt(header[:], 0); err != nil {
		return Extent{}, ErrNotTIFF
	}

	rd := &reader{r: r}
	switch string(header[:2]) {
	case "II":
		rd.order = binary.LittleEndian
	case "MM":
		rd.order = binary.BigEndian
	default:
		return Extent{}, ErrNotTIFF
	}
	if rd.order.Uint16(header[2:4]) != 42 {
		return Extent{}, ErrNotTIFF
	}

	tags, err := rd.readIFD(int64(rd.order.Uint32(header[4:8])))
	if err != nil {
		return Extent{}, err
	}

	width, okW := rd.integer(tags[TagType_ImageWidth])
	height, okH := rd.integer(tags[TagType_ImageLength])
	if !okW || !okH {
		return Extent{}, fmt.Errorf("%w: missing image size", ErrNotTIFF)
	}

	scale := rd.doubles(tags[TagType_ModelPixelScaleTag])
	tie := rd.doubles(tags[TagType_ModelTiepointTag])
	if len(scale) < 2 || len(tie) < 6 {
		return Extent{}, ErrNotGeoreferenced
	}

	// Tie point maps raster (i, j) to model (x, y); rows grow southward.
	west := tie[3] - tie[0]*scale[0]
	north := tie[4] + tie[1]*scale[1]
	east := west + float64(width)*scale[0]
	south := north - float64(height)*scale[1]

	keys := rd.geoKeys(tags[TagType_GeoKeyDirectoryTag])
	switch keys[geoKeyModelType] {
	case modelTypeGeographic, 0:
		return Extent{West: west, South: south, East: east, North: north}, nil
	case modelTypeProjected:
		if !webMercatorEPSGCodes[keys[geoKeyProjectedType]] {
			return Extent{}, fmt.Errorf("%w: EPSG:%d", ErrUnsupportedCRS, keys[geoKeyProjectedType])
		}
		w, s := mercatorToDegrees(west, south)
		e, n := mercatorToDegrees(east, north)
		return Extent{West: w, South: s, East: e, North: n}, nil
	}
	return Extent{}, fmt.Errorf("%w: model type %d", ErrUnsupportedCRS, keys[geoKeyModelType])
}

func mercatorToDegrees(x, y float64) (lon, lat float64) {
	lon = x / earthRadius * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

func typeSize(datatype uint16) int {
	switch datatype {
	case DataType_Byte, DataType_ASCII:
		return 1
	case DataType_Short:
		return 2
	case DataType_Long:
		return 4
	case DataType_Double:
		return 8
	}
	return 0
}

func (rd *reader) readIFD(offset int64) (map[uint16]entry, error) {
	var countBuf [2]byte
	if _, err := rd.r.ReadAt(countBuf[:], offset); err != nil {
		return nil, fmt.Errorf("failed to read IFD: %w", err)
	}
	n := int(rd.order.Uint16(countBuf[:]))

	raw := make([]byte, 12*n)
	if _, err := rd.r.ReadAt(raw, offset+2); err != nil {
		return nil, fmt.Errorf("failed to read IFD entries: %w", err)
	}

	tags := make(map[uint16]entry, n)
	for i := 0; i < n; i++ {
		e := raw[i*12 : (i+1)*12]
		tag := rd.order.Uint16(e[0:2])
		datatype := rd.order.Uint16(e[2:4])
		count := rd.order.Uint32(e[4:8])

		size := typeSize(datatype)
		if size == 0 {
			continue // types we never read
		}
		length := int64(size) * int64(count)
		value := make([]byte, length)
		if length <= 4 {
			copy(value, e[8:12])
		} else if _, err := rd.r.ReadAt(value, int64(rd.order.Uint32(e[8:12]))); err != nil {
			return nil, fmt.Errorf("failed to read tag %d: %w", tag, err)
		}
		tags[tag] = entry{datatype: datatype, count: count, value: value}
	}
	return tags, nil
}

func (rd *reader) integer(e entry) (int, bool) {
	if e.count == 0 {
		return 0, false
	}
	switch e.datatype {
	case DataType_Short:
		return int(rd.order.Uint16(e.value)), true
	case DataType_Long:
		return int(rd.order.Uint32(e.value)), true
	}
	return 0, false
}

func (rd *reader) doubles(e entry) []float64 {
	if e.datatype != DataType_Double {
		return nil
	}
	out := make([]float64, e.count)
	for i := range out {
		out[i] = math.Float64frombits(rd.order.Uint64(e.value[i*8:]))
	}
	return out
}

// geoKeys returns the inline SHORT values of the key directory.
func (rd *reader) geoKeys(e entry) map[uint16]uint16 {
	keys := make(map[uint16]uint16)
	if e.datatype != DataType_Short || e.count < 4 {
		return keys
	}
	shorts := make([]uint16, e.count)
	for i := range shorts {
		shorts[i] = rd.order.Uint16(e.value[i*2:])
	}
	n := int(shorts[3])
	for i := 0; i < n && 4+i*4+3 < len(shorts); i++ {
		k := shorts[4+i*4:]
		if k[1] == 0 { // value stored inline
			keys[k[0]] = k[3]
		}
	}
	return keys
}
