package facestore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Snapshot file layout (little endian), versioned so the format can grow
// without guessing games:
//
//	magic   "FSNP"
//	version uint8  (currently 1)
//	count   uint32 number of enrolled signatures
//	dim     uint32 components per signature
//	count*dim float64 signature values
//	count records of: uint16 len + admission bytes, uint16 len + name bytes
var snapshotMagic = [4]byte{'F', 'S', 'N', 'P'}

const snapshotVersion = 1

var errCorruptSnapshot = errors.New("corrupt snapshot")

// writeSnapshot serializes the working set and replaces the snapshot file
// atomically (temp file + rename), so a crash mid-write never leaves a
// truncated snapshot behind.
func writeSnapshot(path string, sigs [][]float64, admissionNos, names []string) error {
	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	buf.WriteByte(snapshotVersion)

	dim := 0
	if len(sigs) > 0 {
		dim = len(sigs[0])
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(sigs)))
	binary.Write(&buf, binary.LittleEndian, uint32(dim))

	for _, sig := range sigs {
		for _, v := range sig {
			binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		}
	}
	for i := range sigs {
		writeString(&buf, admissionNos[i])
		writeString(&buf, names[i])
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".encodings-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// readSnapshot parses a snapshot file. Callers treat any error the same
// way: log it and start with an empty store.
func readSnapshot(path string, wantDim int) ([][]float64, []string, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	r := bytes.NewReader(raw)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != snapshotMagic {
		return nil, nil, nil, fmt.Errorf("%w: bad magic", errCorruptSnapshot)
	}
	version, err := r.ReadByte()
	if err != nil || version != snapshotVersion {
		return nil, nil, nil, fmt.Errorf("%w: unsupported version %d", errCorruptSnapshot, version)
	}

	var count, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", errCorruptSnapshot, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", errCorruptSnapshot, err)
	}
	if count > 0 && int(dim) != wantDim {
		return nil, nil, nil, fmt.Errorf("%w: dimensionality %d, want %d", errCorruptSnapshot, dim, wantDim)
	}

	sigs := make([][]float64, 0, count)
	for i := uint32(0); i < count; i++ {
		sig := make([]float64, dim)
		for j := range sig {
			var bits uint64
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return nil, nil, nil, fmt.Errorf("%w: truncated signatures", errCorruptSnapshot)
			}
			sig[j] = math.Float64frombits(bits)
		}
		sigs = append(sigs, sig)
	}

	admissionNos := make([]string, 0, count)
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		adm, err := readString(r)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: truncated key table", errCorruptSnapshot)
		}
		name, err := readString(r)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: truncated name table", errCorruptSnapshot)
		}
		admissionNos = append(admissionNos, adm)
		names = append(names, name)
	}

	return sigs, admissionNos, names, nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
