package store

import (
	"errors"
	"fmt"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// IsNotFound reports whether err names a missing card or snapshot.
func IsNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

// ErrNoSpace is returned when two sibling ranks leave no room between them.
var ErrNoSpace = errors.New("no space between ranks")
