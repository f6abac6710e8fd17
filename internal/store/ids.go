package store

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	cardIDPrefix     = "card"
	snapshotIDPrefix = "snap"
)

// newSnapshotID returns snap-<uuid>.
func newSnapshotID() string {
	return snapshotIDPrefix + "-" + uuid.NewString()
}

// newRandomID returns prefix-<8 lowercase base32 chars> (40 random bits).
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}

// newUniqueID draws random ids until taken reports a free one.
func newUniqueID(prefix string, taken func(string) bool) (string, error) {
	for i := 0; i < 16; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			return "", err
		}
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", errors.New("unable to allocate a unique id")
}
