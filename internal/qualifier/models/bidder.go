package models

import id "procurement/pkg/domain"

const (
	DefaultMaxBidders       = 1000
	DefaultQualificationFee = 200

	CriteriaAllMet       = "all-criteria-met"
	CriteriaPartialMatch = "partial-match"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusQualified Status = "qualified"
	StatusRejected  Status = "rejected"
)

// ParseStatus accepts exactly the three bidder statuses.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusQualified, StatusRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Bidder is a registered participant, one per principal.
//
// Status moves pending -> qualified | rejected through qualification and is
// then terminal; only the authority override may set it arbitrarily.
type Bidder struct {
	ID                id.BidderID  `json:"id"`
	Principal         id.Principal `json:"principal"`
	QualificationHash id.Hash      `json:"qualification_hash"`
	ProofHash         id.Hash      `json:"proof_hash"`
	FinancialProof    uint64       `json:"financial_proof"`
	LicenseHash       id.Hash      `json:"license_hash"`
	ExperienceYears   uint64       `json:"experience_years"`
	Status            Status       `json:"status"`
	RegisteredAt      uint64       `json:"registered_at"`
}

func (b *Bidder) Clone() *Bidder {
	if b == nil {
		return nil
	}
	c := *b
	c.QualificationHash = b.QualificationHash.Clone()
	c.ProofHash = b.ProofHash.Clone()
	c.LicenseHash = b.LicenseHash.Clone()
	return &c
}

// CanQualify checks that caller owns the record and that it is pending.
func (b *Bidder) CanQualify(caller id.Principal) error {
	if caller != b.Principal {
		return ErrNotAuthorized
	}
	if b.Status != StatusPending {
		return ErrInvalidStatus
	}
	return nil
}

// Criteria are the per-tender qualification thresholds.
type Criteria struct {
	TenderID        id.TenderID  `json:"tender_id"`
	MinFinancial    uint64       `json:"min_financial"`
	RequiredLicense string       `json:"required_license"`
	MinExperience   uint64       `json:"min_experience"`
	DocHash         id.Hash      `json:"doc_hash"`
	SetBy           id.Principal `json:"set_by"`
	SetAt           uint64       `json:"set_at"`
}

func (c *Criteria) Clone() *Criteria {
	if c == nil {
		return nil
	}
	cp := *c
	cp.DocHash = c.DocHash.Clone()
	return &cp
}

// Meets reports whether b satisfies every threshold of c. The license
// check compares the bidder license hash with the criteria document hash.
func (c *Criteria) Meets(b *Bidder) bool {
	return b.FinancialProof >= c.MinFinancial &&
		b.ExperienceYears >= c.MinExperience &&
		b.LicenseHash.Equal(c.DocHash)
}

// QualificationKey addresses an outcome by value.
type QualificationKey struct {
	BidderID id.BidderID
	TenderID id.TenderID
}

// Qualification is the recorded outcome of one evaluation.
type Qualification struct {
	Qualified   bool   `json:"qualified"`
	CriteriaMet string `json:"criteria_met"`
	QualifiedAt uint64 `json:"qualified_at"`
}

// NewQualification builds the outcome record for a decision.
func NewQualification(qualified bool, height uint64) Qualification {
	tag := CriteriaPartialMatch
	if qualified {
		tag = CriteriaAllMet
	}
	return Qualification{Qualified: qualified, CriteriaMet: tag, QualifiedAt: height}
}

type Settings struct {
	MaxBidders       uint64 `json:"max_bidders"`
	QualificationFee uint64 `json:"qualification_fee"`
}

func DefaultSettings() Settings {
	return Settings{MaxBidders: DefaultMaxBidders, QualificationFee: DefaultQualificationFee}
}
