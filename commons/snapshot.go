package commons

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/burntcarrot/histdiff/history"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ErrSnapshotOrder is returned when snapshot versions are not strictly increasing.
var ErrSnapshotOrder = errors.New("snapshot versions not strictly increasing")

// Snapshot represents the complete content of the document at one version.
type Snapshot struct {
	Version history.Version `yaml:"version"`
	Blocks  []Block         `yaml:"blocks"`
}

type snapshotFile struct {
	Versions []Snapshot `yaml:"versions"`
}

// ReadSnapshots decodes a YAML snapshot file. Block text is NFC normalised.
func ReadSnapshots(r io.Reader) ([]Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f snapshotFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding snapshots: %w", err)
	}

	var previous history.Version
	for i := range f.Versions {
		s := &f.Versions[i]
		if s.Version.IsZero() {
			return nil, fmt.Errorf("snapshot %d: %w", i, history.ErrZeroVersion)
		}
		if !previous.Less(s.Version) {
			return nil, fmt.Errorf("%w: %s after %s", ErrSnapshotOrder, s.Version, previous)
		}
		previous = s.Version

		for j := range s.Blocks {
			s.Blocks[j].Text = norm.NFC.String(s.Blocks[j].Text)
		}
	}

	return f.Versions, nil
}

// LoadSnapshots reads the snapshot file at path.
func LoadSnapshots(path string) ([]Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snapshots, err := ReadSnapshots(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshots, nil
}
