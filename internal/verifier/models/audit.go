package models

import id "procurement/pkg/domain"

const DefaultMaxQueries = 1000

// SnapshotStatus is the tender status captured in a snapshot.
type SnapshotStatus string

const (
	SnapshotOpen   SnapshotStatus = "open"
	SnapshotClosed SnapshotStatus = "closed"
)

func (s SnapshotStatus) IsValid() bool {
	return s == SnapshotOpen || s == SnapshotClosed
}

// TenderAudit is a read-only copy of a tender, written by ingestion only.
type TenderAudit struct {
	TenderID     id.TenderID    `json:"tender_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Creator      id.Principal   `json:"creator"`
	Timestamp    uint64         `json:"timestamp"`
	Status       SnapshotStatus `json:"status"`
	MetadataHash id.Hash        `json:"metadata_hash"`
}

func (a *TenderAudit) Clone() *TenderAudit {
	if a == nil {
		return nil
	}
	c := *a
	c.MetadataHash = a.MetadataHash.Clone()
	return &c
}

func (a *TenderAudit) Validate() error {
	if a.TenderID == 0 {
		return ErrInvalidTenderID
	}
	if a.MetadataHash.IsEmpty() {
		return ErrInvalidHash
	}
	if !a.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// BidKey addresses a bid snapshot by value.
type BidKey struct {
	TenderID id.TenderID `json:"tender_id"`
	BidID    id.BidID    `json:"bid_id"`
}

type BidAudit struct {
	Bidder         id.Principal `json:"bidder"`
	BidHash        id.Hash      `json:"bid_hash"`
	SubmissionTime uint64       `json:"submission_time"`
	RevealTime     *uint64      `json:"reveal_time"`
	Score          *uint64      `json:"score"`
	Metadata       string       `json:"metadata"`
}

func (a *BidAudit) Clone() *BidAudit {
	if a == nil {
		return nil
	}
	c := *a
	c.BidHash = a.BidHash.Clone()
	if a.RevealTime != nil {
		v := *a.RevealTime
		c.RevealTime = &v
	}
	if a.Score != nil {
		v := *a.Score
		c.Score = &v
	}
	return &c
}

// ValidateBid checks a bid snapshot and its address before storage.
func ValidateBid(key BidKey, a *BidAudit) error {
	if key.TenderID == 0 {
		return ErrInvalidTenderID
	}
	if key.BidID == 0 {
		return ErrInvalidBidID
	}
	if a.BidHash.IsEmpty() {
		return ErrInvalidHash
	}
	return nil
}

// VerificationRequest is a logged request to verify a snapshot. BidID is
// nil for tender-level requests. Verified only moves false to true.
type VerificationRequest struct {
	ID          id.RequestID `json:"id"`
	Requester   id.Principal `json:"requester"`
	TenderID    id.TenderID  `json:"tender_id"`
	BidID       *id.BidID    `json:"bid_id"`
	RequestTime uint64       `json:"request_time"`
	Verified    bool         `json:"verified"`
}

func (r *VerificationRequest) Clone() *VerificationRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.BidID != nil {
		b := *r.BidID
		c.BidID = &b
	}
	return &c
}

func (r *VerificationRequest) CanVerify() error {
	if r.Verified {
		return ErrAlreadyVerified
	}
	return nil
}

func (r *VerificationRequest) ApplyVerify() {
	r.Verified = true
}

type Settings struct {
	MaxQueries uint64 `json:"max_queries"`
}

func DefaultSettings() Settings {
	return Settings{MaxQueries: DefaultMaxQueries}
}

type SetAuthorityRequest struct {
	Principal id.Principal `json:"principal"`
}

type SetValueRequest struct {
	Value int64 `json:"value"`
}
