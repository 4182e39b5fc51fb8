package checkpoint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io/ioutil"
	"os"

	"github.com/evilsocket/meepo/storage"

	"github.com/golang/protobuf/proto"
)

const (
	// Magic opens every checkpoint file.
	Magic = "MEEPOCKP"
	// Version of the format written by this package.
	Version = 1
	// FileExt is the conventional extension of checkpoint files.
	FileExt = ".ckpt"
	// MaxDim is the largest row dimension a checkpoint can declare.
	MaxDim = 1 << 20
)

// Header describes the table a checkpoint was taken from.
type Header struct {
	Key   storage.DType
	Value storage.DType
	Score storage.DType
	Dim   int
	Count int
}

// HeaderFor builds the header of a table of the given types.
func HeaderFor[K storage.Key, V storage.Value, S storage.Score](dim, count int) Header {
	return Header{
		Key:   storage.DTypeOf[K](),
		Value: storage.DTypeOf[V](),
		Score: storage.DTypeOf[S](),
		Dim:   dim,
		Count: count,
	}
}

// Writer encodes a checkpoint in memory. Exactly Header.Count entries
// must be appended before calling Bytes.
type Writer[K storage.Key, V storage.Value, S storage.Score] struct {
	hdr     Header
	buf     *proto.Buffer
	row     bytes.Buffer
	written int
}

// NewWriter starts a checkpoint of count entries of dim elements each.
func NewWriter[K storage.Key, V storage.Value, S storage.Score](dim, count int) *Writer[K, V, S] {
	w := &Writer[K, V, S]{
		hdr: HeaderFor[K, V, S](dim, count),
		buf: proto.NewBuffer(nil),
	}

	w.buf.EncodeRawBytes([]byte(Magic))
	w.buf.EncodeVarint(Version)
	w.buf.EncodeVarint(uint64(w.hdr.Key))
	w.buf.EncodeVarint(uint64(w.hdr.Value))
	w.buf.EncodeVarint(uint64(w.hdr.Score))
	w.buf.EncodeVarint(uint64(dim))
	w.buf.EncodeVarint(uint64(count))

	return w
}

// Append encodes one entry.
func (w *Writer[K, V, S]) Append(key K, row []V, score S) error {
	if w.written >= w.hdr.Count {
		return fmt.Errorf("checkpoint already holds %d entries", w.hdr.Count)
	} else if len(row) != w.hdr.Dim {
		return fmt.Errorf("row of key %d has %d elements, expected %d", key, len(row), w.hdr.Dim)
	}

	w.row.Reset()
	if err := binary.Write(&w.row, binary.LittleEndian, row); err != nil {
		return err
	}

	w.buf.EncodeZigzag64(uint64(int64(key)))
	w.buf.EncodeVarint(uint64(score))
	w.buf.EncodeRawBytes(w.row.Bytes())
	w.written++

	return nil
}

// Bytes returns the encoded checkpoint, trailer included.
func (w *Writer[K, V, S]) Bytes() ([]byte, error) {
	if w.written != w.hdr.Count {
		return nil, fmt.Errorf("checkpoint declares %d entries, %d appended", w.hdr.Count, w.written)
	}

	body := w.buf.Bytes()
	data := make([]byte, len(body)+4)
	copy(data, body)
	binary.LittleEndian.PutUint32(data[len(body):], crc32.ChecksumIEEE(body))

	return data, nil
}

// Flush atomically replaces fileName with data.
func Flush(data []byte, fileName string) error {
	tmpName := fileName + ".tmp"
	if err := ioutil.WriteFile(tmpName, data, 0644); err != nil {
		return fmt.Errorf("Error while saving checkpoint to %s: %s", tmpName, err)
	} else if err = os.Rename(tmpName, fileName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Error while moving checkpoint to %s: %s", fileName, err)
	}
	return nil
}
