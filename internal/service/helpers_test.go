package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"

	"github.com/kurtaconger/egm/internal/model"
)

// buildGPSExif собирает минимальный little-endian TIFF с GPS-блоком EXIF
// (тот же формат, что в тестах пакета media): достаточно, чтобы extractor
// конвейера увидел настоящие координаты без бинарных фикстур.
func buildGPSExif(latRef string, latDMS [3]uint32, lngRef string, lngDMS [3]uint32) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	write16 := func(v uint16) { _ = binary.Write(&buf, le, v) }
	write32 := func(v uint32) { _ = binary.Write(&buf, le, v) }

	buf.WriteString("II")
	write16(42)
	write32(8)

	const gpsIFDOffset = 26
	write16(1)
	write16(0x8825)
	write16(4)
	write32(1)
	write32(gpsIFDOffset)
	write32(0)

	const latDataOffset = 80
	const lngDataOffset = 104
	write16(4)
	writeRef := func(tag uint16, ref string) {
		write16(tag)
		write16(2)
		write32(2)
		value := [4]byte{}
		copy(value[:], ref)
		buf.Write(value[:])
	}
	writeRationalPtr := func(tag uint16, offset uint32) {
		write16(tag)
		write16(5)
		write32(3)
		write32(offset)
	}
	writeRef(1, latRef)
	writeRationalPtr(2, latDataOffset)
	writeRef(3, lngRef)
	writeRationalPtr(4, lngDataOffset)
	write32(0)

	for _, v := range latDMS {
		write32(v)
		write32(1)
	}
	for _, v := range lngDMS {
		write32(v)
		write32(1)
	}
	return buf.Bytes()
}

// gpsFixture - байты файла с координатами 18.40, -64.63 (18°24'00"N 64°37'48"W).
func gpsFixture() []byte {
	return buildGPSExif("N", [3]uint32{18, 24, 0}, "W", [3]uint32{64, 37, 48})
}

func ptr(v float64) *float64 { return &v }

// fakeStopStore - документная база в памяти для тестов конвейера.
type fakeStopStore struct {
	mu        sync.Mutex
	stops     []model.TripStop
	findErr   error
	appendErr error
	findCalls int
}

func (f *fakeStopStore) FindAll(ctx context.Context, tripID string) ([]model.TripStop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]model.TripStop, len(f.stops))
	copy(out, f.stops)
	return out, nil
}

func (f *fakeStopStore) AppendMedia(ctx context.Context, tripID, stopID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	for i := range f.stops {
		if f.stops[i].ID == stopID {
			f.stops[i].Media = append(f.stops[i].Media, path)
			return nil
		}
	}
	return model.ErrStopNotFound
}

func (f *fakeStopStore) AppendMediaUnique(ctx context.Context, tripID, stopID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.stops {
		if f.stops[i].ID != stopID {
			continue
		}
		for _, existing := range f.stops[i].Media {
			if existing == path {
				return nil
			}
		}
		f.stops[i].Media = append(f.stops[i].Media, path)
		return nil
	}
	return model.ErrStopNotFound
}

func (f *fakeStopStore) ReplaceAll(ctx context.Context, tripID string, stops []model.TripStop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = stops
	return nil
}

func (f *fakeStopStore) mediaOf(stopID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.stops {
		if s.ID == stopID {
			out := make([]string, len(s.Media))
			copy(out, s.Media)
			return out
		}
	}
	return nil
}

// fakeBlobStore - хранилище блобов в памяти.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][][]byte // история загрузок по ключу
	failKey string              // ключ, загрузка которого завершается ошибкой
	failErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][][]byte{}}
}

func (f *fakeBlobStore) Upload(ctx context.Context, key string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKey != "" && key == f.failKey {
		return "", f.failErr
	}
	f.objects[key] = append(f.objects[key], content)
	return key, nil
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, uploads := range f.objects {
		n += len(uploads)
	}
	return n
}

// testStops - остановки из сквозного сценария: Spot-01 ближе к точке съёмки.
func testStops() []model.TripStop {
	return []model.TripStop{
		{ID: "Spot-01", Name: "Cane Garden Bay, Tortola", ShortName: "Cane Garden Bay",
			Lat: ptr(18.42), Lng: ptr(-64.62), Seq: 1, Media: []string{}},
		{ID: "Spot-02", Name: "Soper's Hole, Tortola", ShortName: "Soper's Hole",
			Lat: ptr(18.31), Lng: ptr(-64.73), Seq: 2, Media: []string{}},
	}
}
