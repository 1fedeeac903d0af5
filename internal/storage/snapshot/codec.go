package snapshot

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/sedris-go/sedris/internal/keyspace"
)

// magic identifies a snapshot file; version allows the layout to evolve.
// Together they form the 9-byte header required by the file format.
var magic = [8]byte{'S', 'E', 'D', 'R', 'I', 'S', 'D', 'B'}

const formatVersion byte = 1

// Per-record tag bytes.
const (
	tagDB    byte = 0xDB // db selector marker, followed by a 1-byte db index
	tagEntry byte = 0x01 // entry record
)

// ErrInvalidMagic is returned when a file does not start with the expected
// magic bytes or carries an unsupported version.
var ErrInvalidMagic = fmt.Errorf("snapshot: invalid magic or unsupported version")

// ErrInvalidType is returned when an entry's type byte does not correspond
// to a known keyspace.Kind.
var ErrInvalidType = fmt.Errorf("snapshot: invalid type byte")

// ErrChecksumMismatch is returned when the trailing checksum does not match
// the recomputed checksum over the file's preceding bytes.
var ErrChecksumMismatch = fmt.Errorf("snapshot: checksum mismatch")

// encodeBody writes the per-database, per-entry records (everything between
// the header and the checksum trailer) for images to w.
func encodeBody(w io.Writer, images []keyspace.DBImage) error {
	bw := bufio.NewWriter(w)
	for i, img := range images {
		if len(img.Entries) == 0 {
			continue
		}
		if err := writeDBMarker(bw, i); err != nil {
			return err
		}
		for key, e := range img.Entries {
			if err := writeEntry(bw, key, e); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeDBMarker(w *bufio.Writer, db int) error {
	if db < 0 || db > 255 {
		return fmt.Errorf("snapshot: database index %d out of range", db)
	}
	_, err := w.Write([]byte{tagDB, byte(db)})
	return err
}

func writeEntry(w *bufio.Writer, key string, e *keyspace.Entry) error {
	if err := w.WriteByte(tagEntry); err != nil {
		return err
	}
	if e.ExpireAt != 0 {
		if err := w.WriteByte(1); err != nil {
			return err
		}
		if err := writeUint64(w, uint64(e.ExpireAt)); err != nil {
			return err
		}
	} else if err := w.WriteByte(0); err != nil {
		return err
	}
	if err := w.WriteByte(byte(e.Kind)); err != nil {
		return err
	}
	if err := writeBytes(w, []byte(key)); err != nil {
		return err
	}
	return writeValue(w, e)
}

func writeValue(w *bufio.Writer, e *keyspace.Entry) error {
	switch e.Kind {
	case keyspace.KindString:
		return writeBytes(w, e.Value.([]byte))
	case keyspace.KindList:
		l := e.Value.(*keyspace.List)
		if err := writeUint32(w, uint32(l.Len())); err != nil {
			return err
		}
		for _, v := range l.Range(0, -1) {
			if err := writeBytes(w, v); err != nil {
				return err
			}
		}
		return nil
	case keyspace.KindSet:
		s := e.Value.(keyspace.Set)
		if err := writeUint32(w, uint32(len(s))); err != nil {
			return err
		}
		for _, m := range s.Members() {
			if err := writeBytes(w, m); err != nil {
				return err
			}
		}
		return nil
	case keyspace.KindHash:
		h := e.Value.(keyspace.Hash)
		if err := writeUint32(w, uint32(len(h))); err != nil {
			return err
		}
		for field, val := range h {
			if err := writeBytes(w, []byte(field)); err != nil {
				return err
			}
			if err := writeBytes(w, val); err != nil {
				return err
			}
		}
		return nil
	case keyspace.KindZSet:
		z := e.Value.(*keyspace.ZSet)
		entries := z.RangeByRank(0, -1, false)
		if err := writeUint32(w, uint32(len(entries))); err != nil {
			return err
		}
		for _, ze := range entries {
			if err := writeBytes(w, []byte(ze.Member)); err != nil {
				return err
			}
			if err := writeUint64(w, math.Float64bits(ze.Score)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("snapshot: unknown kind %d", e.Kind)
	}
}

// decodeBody reads db-selector and entry records from br until EOF, building
// one DBImage per database index seen. numDB sizes the returned slice. br is
// shared with any preceding readHeader/readFramed calls so no buffered,
// not-yet-consumed bytes are lost to a freshly wrapped reader.
func decodeBody(br *bufio.Reader, numDB int) ([]keyspace.DBImage, error) {
	images := make([]keyspace.DBImage, numDB)
	for i := range images {
		images[i] = keyspace.DBImage{Entries: make(map[string]*keyspace.Entry)}
	}

	currentDB := 0
	for {
		tag, err := br.ReadByte()
		if err == io.EOF {
			return images, nil
		}
		if err != nil {
			return nil, err
		}
		switch tag {
		case tagDB:
			db, err := br.ReadByte()
			if err != nil {
				return nil, err
			}
			currentDB = int(db)
			if currentDB < 0 || currentDB >= numDB {
				return nil, fmt.Errorf("snapshot: database index %d out of range", currentDB)
			}
		case tagEntry:
			key, e, err := readEntry(br)
			if err != nil {
				return nil, err
			}
			images[currentDB].Entries[key] = e
		default:
			return nil, fmt.Errorf("snapshot: unknown record tag 0x%02x", tag)
		}
	}
}

func readEntry(r *bufio.Reader) (string, *keyspace.Entry, error) {
	hasExpiry, err := r.ReadByte()
	if err != nil {
		return "", nil, err
	}
	var expireAt int64
	if hasExpiry == 1 {
		v, err := readUint64(r)
		if err != nil {
			return "", nil, err
		}
		expireAt = int64(v)
	}

	kindByte, err := r.ReadByte()
	if err != nil {
		return "", nil, err
	}
	kind := keyspace.Kind(kindByte)
	if kind < keyspace.KindString || kind > keyspace.KindZSet {
		return "", nil, ErrInvalidType
	}

	keyBytes, err := readBytes(r)
	if err != nil {
		return "", nil, err
	}

	value, err := readValue(r, kind)
	if err != nil {
		return "", nil, err
	}
	return string(keyBytes), &keyspace.Entry{Kind: kind, Value: value, ExpireAt: expireAt}, nil
}

func readValue(r *bufio.Reader, kind keyspace.Kind) (any, error) {
	switch kind {
	case keyspace.KindString:
		return readBytes(r)
	case keyspace.KindList:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		l := keyspace.NewList()
		for i := uint32(0); i < n; i++ {
			v, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			l.PushBack(v)
		}
		return l, nil
	case keyspace.KindSet:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		s := keyspace.NewSet()
		for i := uint32(0); i < n; i++ {
			m, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			s.Add(m)
		}
		return s, nil
	case keyspace.KindHash:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		h := keyspace.NewHash()
		for i := uint32(0); i < n; i++ {
			field, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			val, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			h.Set(field, val)
		}
		return h, nil
	case keyspace.KindZSet:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		z := keyspace.NewZSet()
		for i := uint32(0); i < n; i++ {
			member, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			bits, err := readUint64(r)
			if err != nil {
				return nil, err
			}
			z.Add(string(member), math.Float64frombits(bits), keyspace.AddDefault, keyspace.CompareNone, false)
		}
		return z, nil
	default:
		return nil, ErrInvalidType
	}
}

func writeBytes(w *bufio.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r *bufio.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeUint32(w *bufio.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r *bufio.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeUint64(w *bufio.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint64(r *bufio.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// writeHeader writes the 9-byte magic+version header followed by encryption
// metadata (a flag byte, and if set, the salt and algorithm name needed to
// rederive the decryption key) and a 1-byte database count, to bw.
func writeHeader(bw *bufio.Writer, numDB int, encrypted bool, salt []byte, algo string) error {
	if numDB < 0 || numDB > 255 {
		return fmt.Errorf("snapshot: database count %d out of range", numDB)
	}
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := bw.WriteByte(formatVersion); err != nil {
		return err
	}
	if encrypted {
		if err := bw.WriteByte(1); err != nil {
			return err
		}
		if err := writeBytes(bw, salt); err != nil {
			return err
		}
		if err := writeBytes(bw, []byte(algo)); err != nil {
			return err
		}
	} else if err := bw.WriteByte(0); err != nil {
		return err
	}
	return bw.WriteByte(byte(numDB))
}

// readHeader parses the header written by writeHeader from br, failing
// closed on a bad magic/version rather than guessing at a partial layout.
// br is shared with any subsequent readFramed/decodeBody calls.
func readHeader(br *bufio.Reader) (numDB int, encrypted bool, salt []byte, algo string, err error) {
	var got [8]byte
	if _, err = io.ReadFull(br, got[:]); err != nil {
		return 0, false, nil, "", ErrInvalidMagic
	}
	if got != magic {
		return 0, false, nil, "", ErrInvalidMagic
	}
	version, err := br.ReadByte()
	if err != nil || version != formatVersion {
		return 0, false, nil, "", ErrInvalidMagic
	}

	flag, err := br.ReadByte()
	if err != nil {
		return 0, false, nil, "", ErrInvalidMagic
	}
	if flag == 1 {
		encrypted = true
		if salt, err = readBytes(br); err != nil {
			return 0, false, nil, "", ErrInvalidMagic
		}
		algoBytes, err := readBytes(br)
		if err != nil {
			return 0, false, nil, "", ErrInvalidMagic
		}
		algo = string(algoBytes)
	}

	dbCount, err := br.ReadByte()
	if err != nil {
		return 0, false, nil, "", ErrInvalidMagic
	}
	return int(dbCount), encrypted, salt, algo, nil
}

// writeFramed writes a 4-byte big-endian length prefix followed by data, to bw.
func writeFramed(bw *bufio.Writer, data []byte) error {
	if err := writeUint32(bw, uint32(len(data))); err != nil {
		return err
	}
	_, err := bw.Write(data)
	return err
}

// readFramed reads a length-prefixed byte slice written by writeFramed from br.
func readFramed(br *bufio.Reader) ([]byte, error) {
	n, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, err
	}
	return data, nil
}
