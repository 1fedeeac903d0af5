// Package snapshot persists a keyspace to timestamped snapshot files in one
// directory and restores the newest valid one at boot (§4.7). Each save
// writes a new file; Prune removes old ones by the retention settings. A
// snapshot is a self-describing binary file: a magic+version
// header, optional encryption metadata, a body of per-database/per-entry
// records, and a trailing checksum covering everything before it.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc64"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sedris-go/sedris/internal/keyspace"
	"github.com/sedris-go/sedris/pkg/crypto/adaptive"
)

const (
	filePrefix    = "snapshot-"
	fileExtension = ".snap"
	checksumSize  = 8 // CRC-64

	// DefaultRetentionCount is how many of the newest snapshots Prune keeps
	// regardless of age.
	DefaultRetentionCount = 5

	// DefaultRetentionDays is how many days old a snapshot can be and still
	// be kept by Prune, regardless of count.
	DefaultRetentionDays = 7
)

var crcTable = crc64.MakeTable(crc64.ISO)

// Snapshot errors.
var (
	ErrNotFound    = errors.New("snapshot: not found")
	ErrNoSnapshots = errors.New("snapshot: no snapshots available")
)

// Config configures a Manager.
type Config struct {
	// Dir is the directory snapshot files are written to and read from.
	Dir string

	// RetentionCount/RetentionDays govern Prune; see the Default constants.
	RetentionCount int
	RetentionDays  int

	// Encryption configures snapshot-at-rest encryption. The zero value
	// disables it (snapshots are written in plain form).
	Encryption EncryptionConfig
}

// DefaultConfig returns a Config with retention defaults and no encryption.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		RetentionCount: DefaultRetentionCount,
		RetentionDays:  DefaultRetentionDays,
	}
}

// Info describes a written or loaded snapshot.
type Info struct {
	ID         string
	Path       string
	CreatedAt  time.Time
	NumDB      int
	EntryCount int
	Size       int64
	Checksum   uint64
	Encrypted  bool
}

// Manager writes and loads snapshot files under Config.Dir.
type Manager struct {
	cfg       Config
	cipher    adaptive.Cipher
	salt      []byte
	algorithm string
}

// NewManager creates a Manager, creating its directory if necessary and
// deriving an encryption cipher from cfg.Encryption if configured.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, errors.New("snapshot: Config.Dir is required")
	}
	if cfg.RetentionCount <= 0 {
		cfg.RetentionCount = DefaultRetentionCount
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}

	cipher, salt, err := NewCipherFromConfig(cfg.Encryption)
	if err != nil {
		return nil, err
	}
	algo := cfg.Encryption.Algorithm
	if algo == "" && cipher != nil {
		algo = string(cipher.Type())
	}
	return &Manager{cfg: cfg, cipher: cipher, salt: salt, algorithm: algo}, nil
}

// Create serializes images to a new snapshot file, written atomically (a
// temp file synced and renamed into place so a crash mid-write never leaves
// a corrupt file at the final path).
func (m *Manager) Create(images []keyspace.DBImage) (*Info, error) {
	id := generateID(time.Now(), m.cfg.Dir)
	finalPath := filepath.Join(m.cfg.Dir, id+fileExtension)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tmpPath) // no-op once renamed into place

	body, entryCount, err := encodeImages(images)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("snapshot: encode body: %w", err)
	}

	encrypted := m.cipher != nil
	if encrypted {
		body, err = m.cipher.Encrypt(body, nil)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("snapshot: encrypt: %w", err)
		}
	}

	hasher := crc64.New(crcTable)
	bw := bufio.NewWriter(io.MultiWriter(f, hasher))
	if err := writeHeader(bw, len(images), encrypted, m.salt, m.algorithm); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeFramed(bw, body); err != nil {
		f.Close()
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("snapshot: flush: %w", err)
	}

	checksum := hasher.Sum64()
	var trailer [checksumSize]byte
	binary.BigEndian.PutUint64(trailer[:], checksum)
	if _, err := f.Write(trailer[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("snapshot: write checksum: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("snapshot: rename into place: %w", err)
	}

	fi, err := os.Stat(finalPath)
	if err != nil {
		return nil, err
	}
	if err := m.prune(); err != nil {
		return nil, err
	}

	return &Info{
		ID:         id,
		Path:       finalPath,
		CreatedAt:  time.Now(),
		NumDB:      len(images),
		EntryCount: entryCount,
		Size:       fi.Size(),
		Checksum:   checksum,
		Encrypted:  encrypted,
	}, nil
}

// Load restores the most recent valid snapshot, trying progressively older
// files if a newer one fails its checksum or header validation — it never
// returns a partially-valid restore, only a fully-valid one or none at all.
func (m *Manager) Load() ([]keyspace.DBImage, *Info, error) {
	files, err := m.List()
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, ErrNoSnapshots
	}

	var lastErr error
	for i := len(files) - 1; i >= 0; i-- {
		images, info, err := m.loadFile(files[i])
		if err == nil {
			return images, info, nil
		}
		if errors.Is(err, ErrInvalidMagic) || errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrInvalidType) {
			lastErr = err
			continue
		}
		return nil, nil, err
	}
	return nil, nil, fmt.Errorf("snapshot: no valid snapshot found, last error: %w", lastErr)
}

func (m *Manager) loadFile(path string) ([]keyspace.DBImage, *Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) < len(magic)+2+checksumSize {
		return nil, nil, ErrInvalidMagic
	}

	body := raw[:len(raw)-checksumSize]
	wantChecksum := binary.BigEndian.Uint64(raw[len(raw)-checksumSize:])
	gotChecksum := crc64.Checksum(body, crcTable)
	if wantChecksum != gotChecksum {
		return nil, nil, ErrChecksumMismatch
	}

	br := bufio.NewReader(bytes.NewReader(body))
	numDB, encrypted, salt, algo, err := readHeader(br)
	if err != nil {
		return nil, nil, err
	}

	data, err := readFramed(br)
	if err != nil {
		return nil, nil, err
	}

	if encrypted {
		cipher := m.cipher
		if cipher == nil || !bytes.Equal(salt, m.salt) {
			// The file's key was derived with a different salt than this
			// Manager's own; rederive it from the header salt.
			cipher, _, err = NewCipherFromConfig(EncryptionConfig{
				Salt:       salt,
				Algorithm:  algo,
				Passphrase: m.cfg.Encryption.Passphrase,
				Key:        m.cfg.Encryption.Key,
			})
			if err != nil || cipher == nil {
				return nil, nil, fmt.Errorf("snapshot: file is encrypted but no key/passphrase is configured")
			}
		}
		data, err = cipher.Decrypt(data, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
		}
	}

	images, err := decodeBody(bufio.NewReader(bytes.NewReader(data)), numDB)
	if err != nil {
		return nil, nil, err
	}

	entryCount := 0
	for _, img := range images {
		entryCount += len(img.Entries)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	return images, &Info{
		ID:         idFromPath(path),
		Path:       path,
		CreatedAt:  fi.ModTime(),
		NumDB:      numDB,
		EntryCount: entryCount,
		Size:       fi.Size(),
		Checksum:   gotChecksum,
		Encrypted:  encrypted,
	}, nil
}

// List returns every snapshot file path in cfg.Dir, sorted oldest-first by
// name (timestamps sort lexicographically because generateID zero-pads).
func (m *Manager) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.cfg.Dir, filePrefix+"*"+fileExtension))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Prune removes old snapshots, keeping the newest RetentionCount files plus
// anything younger than RetentionDays, and always keeping the newest file.
func (m *Manager) Prune() error { return m.prune() }

func (m *Manager) prune() error {
	files, err := m.List()
	if err != nil {
		return err
	}
	if len(files) <= m.cfg.RetentionCount {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -m.cfg.RetentionDays)
	keepFromCount := len(files) - m.cfg.RetentionCount

	for i, path := range files {
		if i == len(files)-1 {
			break // always keep the newest
		}
		if i >= keepFromCount {
			continue // within the retained count window
		}
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.ModTime().After(cutoff) {
			continue // young enough to keep despite being past the count window
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("snapshot: prune %s: %w", path, err)
		}
	}
	return nil
}

// generateID builds a sortable snapshot id, appending a sequence suffix if
// another snapshot with the same second-resolution timestamp already exists.
func generateID(t time.Time, dir string) string {
	base := t.UTC().Format("20060102150405")
	seq := 0
	for {
		candidate := base
		if seq > 0 {
			candidate = fmt.Sprintf("%s-%04d", base, seq)
		}
		if _, err := os.Stat(filepath.Join(dir, filePrefix+candidate+fileExtension)); os.IsNotExist(err) {
			return filePrefix + candidate
		}
		seq++
	}
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(fileExtension)]
}

// encodeImages renders images to their in-memory binary body, ready to be
// optionally encrypted and then framed into the file alongside the header.
func encodeImages(images []keyspace.DBImage) ([]byte, int, error) {
	var buf bytes.Buffer
	if err := encodeBody(&buf, images); err != nil {
		return nil, 0, err
	}
	entryCount := 0
	for _, img := range images {
		entryCount += len(img.Entries)
	}
	return buf.Bytes(), entryCount, nil
}
