// package snapshot computes content hashes for playlist snapshots and
// persists them under the grit object store.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/grit-vcs/grit/internal/models"
	"gopkg.in/yaml.v2"
)

// hashable is the subset of a snapshot that participates in content
// addressing. SnapshotHash is deliberately excluded: it is the output of
// this computation, not an input, so a snapshot hashes the same way
// whether or not it already carries a hash.
type hashable struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Tracks      []models.Track `yaml:"tracks"`
	Provider    models.ProviderKind `yaml:"provider"`
	IsAlbum     bool           `yaml:"is_album,omitempty"`
}

// ComputeHash returns the content address of a snapshot: the first 6 bytes
// (12 hex characters) of the SHA-256 digest of its canonical YAML
// serialization. Track order is significant; two snapshots with the same
// tracks in different order hash differently.
func ComputeHash(s models.PlaylistSnapshot) (string, error) {
	h := hashable{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Tracks:      s.Tracks,
		Provider:    s.Provider,
		IsAlbum:     s.IsAlbum,
	}

	data, err := yaml.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot for hashing: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6]), nil
}

// Stamp computes the snapshot's hash and returns a copy with SnapshotHash
// set.
func Stamp(s models.PlaylistSnapshot) (models.PlaylistSnapshot, error) {
	hash, err := ComputeHash(s)
	if err != nil {
		return s, err
	}
	s.SnapshotHash = hash
	return s, nil
}
