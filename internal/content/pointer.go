// Package content handles off-ledger content pointers. The ledger treats a
// pointer as an opaque bounded-length string; this package additionally
// knows how the reference clients build them (CIDv1, raw codec, SHA2-256)
// so tooling can derive a pointer from content bytes.
package content

import (
	"errors"
	"fmt"

	cid "github.com/ipfs/go-cid"
	mc "github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"
)

// DefaultMaxPointerLen bounds pointer length in the pointer-based ledger
// variant.
const DefaultMaxPointerLen = 200

var (
	ErrEmptyPointer   = errors.New("empty content pointer")
	ErrPointerTooLong = errors.New("content pointer too long")
	ErrNotCID         = errors.New("content pointer is not a valid CID")
)

// Build derives the content pointer for a blob the way the reference
// clients do: CIDv1 over the raw bytes with a SHA2-256 multihash.
func Build(data []byte) (string, error) {
	pref := cid.Prefix{
		Version:  1,
		Codec:    uint64(mc.Raw),
		MhType:   mh.SHA2_256,
		MhLength: -1, // default length
	}
	c, err := pref.Sum(data)
	if err != nil {
		return "", fmt.Errorf("unable to build content pointer: %w", err)
	}
	return c.String(), nil
}

// ValidateLength checks the pointer against the length bounds. This is the
// only validation the ledger itself performs.
func ValidateLength(pointer string, maxLen int) error {
	if len(pointer) == 0 {
		return ErrEmptyPointer
	}
	if len(pointer) > maxLen {
		return fmt.Errorf("%w: %d chars exceeds limit %d", ErrPointerTooLong, len(pointer), maxLen)
	}
	return nil
}

// ValidateCID decodes the pointer as a CID. Deployments that know all
// clients publish CIDs can enable this as a stricter admission policy.
func ValidateCID(pointer string) error {
	if _, err := cid.Decode(pointer); err != nil {
		return fmt.Errorf("%w: %v", ErrNotCID, err)
	}
	return nil
}
