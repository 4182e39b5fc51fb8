package checkpoint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"io/ioutil"

	"github.com/evilsocket/meepo/storage"

	"github.com/golang/protobuf/proto"
)

// Reader decodes a checkpoint taken from a table of the same types.
type Reader[K storage.Key, V storage.Value, S storage.Score] struct {
	hdr  Header
	buf  *proto.Buffer
	read int
}

// Load reads a checkpoint file in memory.
func Load(fileName string) ([]byte, error) {
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("Error while reading %s: %s", fileName, err)
	}
	return data, nil
}

// NewReader validates the trailer and the header of data, rejecting
// checkpoints of other types.
func NewReader[K storage.Key, V storage.Value, S storage.Score](data []byte) (*Reader[K, V, S], error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("checkpoint is truncated (%d bytes)", len(data))
	}

	body := data[:len(data)-4]
	if sum := binary.LittleEndian.Uint32(data[len(body):]); sum != crc32.ChecksumIEEE(body) {
		return nil, fmt.Errorf("checkpoint checksum mismatch")
	}

	r := &Reader[K, V, S]{buf: proto.NewBuffer(body)}

	magic, err := r.buf.DecodeRawBytes(false)
	if err != nil {
		return nil, err
	} else if string(magic) != Magic {
		return nil, fmt.Errorf("not a checkpoint")
	}

	var fields [6]uint64
	for i := range fields {
		if fields[i], err = r.buf.DecodeVarint(); err != nil {
			return nil, fmt.Errorf("checkpoint header is truncated: %s", err)
		}
	}

	if fields[0] != Version {
		return nil, fmt.Errorf("unsupported checkpoint version %d", fields[0])
	}

	r.hdr = Header{
		Key:   storage.DType(fields[1]),
		Value: storage.DType(fields[2]),
		Score: storage.DType(fields[3]),
		Dim:   int(fields[4]),
		Count: int(fields[5]),
	}

	if expected := HeaderFor[K, V, S](r.hdr.Dim, r.hdr.Count); r.hdr != expected {
		return nil, fmt.Errorf("checkpoint holds <%s,%s,%s> entries, expected <%s,%s,%s>",
			r.hdr.Key, r.hdr.Value, r.hdr.Score,
			expected.Key, expected.Value, expected.Score)
	}

	if fields[4] == 0 || fields[4] > MaxDim {
		return nil, fmt.Errorf("checkpoint dimension %d is out of range", fields[4])
	}

	// key, score and row length take one byte each at least
	hdrSize := proto.SizeVarint(uint64(len(magic))) + len(magic)
	for _, f := range fields {
		hdrSize += proto.SizeVarint(f)
	}
	entrySize := 3 + fields[4]*uint64(storage.DTypeOf[V]().Size())
	if left := uint64(len(body) - hdrSize); fields[5] > left/entrySize {
		return nil, fmt.Errorf("checkpoint declares %d entries, %d bytes can hold at most %d", fields[5], left, left/entrySize)
	}

	return r, nil
}

// Header returns the decoded header.
func (r *Reader[K, V, S]) Header() Header {
	return r.hdr
}

// Next decodes the next entry, filling row which must hold Header.Dim
// elements. It returns io.EOF once every entry has been read.
func (r *Reader[K, V, S]) Next(row []V) (key K, score S, err error) {
	if r.read >= r.hdr.Count {
		return key, score, io.EOF
	} else if len(row) != r.hdr.Dim {
		return key, score, fmt.Errorf("row buffer has %d elements, expected %d", len(row), r.hdr.Dim)
	}

	var k, s uint64
	var raw []byte

	if k, err = r.buf.DecodeZigzag64(); err != nil {
	} else if s, err = r.buf.DecodeVarint(); err != nil {
	} else if raw, err = r.buf.DecodeRawBytes(false); err != nil {
	} else if expected := r.hdr.Dim * r.hdr.Value.Size(); len(raw) != expected {
		err = fmt.Errorf("row has %d bytes, expected %d", len(raw), expected)
	} else {
		err = binary.Read(bytes.NewReader(raw), binary.LittleEndian, row)
	}

	if err != nil {
		return key, score, fmt.Errorf("checkpoint entry %d is corrupted: %s", r.read, err)
	}

	r.read++

	return K(int64(k)), S(s), nil
}
