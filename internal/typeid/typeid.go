package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Typeids are UUIDv7 underneath, so ids of one prefix sort by creation time.
const (
	PrefixUser     = "user"
	PrefixShape    = "shape"
	PrefixArrow    = "arrow"
	PrefixBookmark = "bm"
	PrefixSession  = "sess"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewShapeID() string    { return New(PrefixShape) }
func NewArrowID() string    { return New(PrefixArrow) }
func NewBookmarkID() string { return New(PrefixBookmark) }
func NewSessionID() string  { return New(PrefixSession) }

// Validate checks that id parses and carries expectedPrefix.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

// Generator hands out ids for one prefix. Tests swap it for a counter.
type Generator func() string

// ForPrefix returns a Generator backed by New.
func ForPrefix(prefix string) Generator {
	return func() string { return New(prefix) }
}

// Sequence returns a Generator yielding prefix_1, prefix_2, ...
// It is not safe for concurrent use.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}
