// Package domain holds the identifier types shared by the registry components.
//
// Record identifiers are unsigned sequence numbers allocated by their owning
// component starting at zero. Principals are opaque ledger account strings.
package domain

import (
	"strconv"
	"strings"

	dErrors "procurement/pkg/domain-errors"
)

type (
	TenderID  uint64
	BidderID  uint64
	BidID     uint64
	RequestID uint64
)

// Principal identifies a ledger account. Only the burn address is given
// meaning here; any other format checks belong to the ledger.
type Principal string

// BurnAddress is the reserved null principal. It is never accepted as an
// authority.
const BurnAddress Principal = "SP000000000000000000002Q6VF78"

func (p Principal) String() string { return string(p) }

func (p Principal) IsZero() bool { return p == "" }

func (p Principal) IsBurn() bool { return p == BurnAddress }

func (t TenderID) String() string  { return strconv.FormatUint(uint64(t), 10) }
func (b BidderID) String() string  { return strconv.FormatUint(uint64(b), 10) }
func (b BidID) String() string     { return strconv.FormatUint(uint64(b), 10) }
func (r RequestID) String() string { return strconv.FormatUint(uint64(r), 10) }

// ParsePrincipal trims and validates a principal coming from a trust boundary.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal is required")
	}
	return Principal(s), nil
}

func ParseTenderID(s string) (TenderID, error) {
	n, err := parseSequence(s, "tender")
	return TenderID(n), err
}

func ParseBidderID(s string) (BidderID, error) {
	n, err := parseSequence(s, "bidder")
	return BidderID(n), err
}

func ParseBidID(s string) (BidID, error) {
	n, err := parseSequence(s, "bid")
	return BidID(n), err
}

func ParseRequestID(s string) (RequestID, error) {
	n, err := parseSequence(s, "request")
	return RequestID(n), err
}

func parseSequence(s, kind string) (uint64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	return n, nil
}
