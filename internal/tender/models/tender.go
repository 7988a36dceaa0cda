package models

import (
	"unicode/utf8"

	id "procurement/pkg/domain"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxEligibilityLength = 200

	DefaultMaxTenders      = 500
	DefaultRegistrationFee = 500
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryServices       Category = "services"
	CategoryGoods          Category = "goods"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryInfrastructure, CategoryServices, CategoryGoods:
		return true
	}
	return false
}

// Tender is a published solicitation.
//
// Invariants:
//   - Title is unique across all tenders
//   - Status only moves open -> closed
//   - Creator, Budget, Category, CreatedAt and MetadataHash never change
type Tender struct {
	ID           id.TenderID  `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Creator      id.Principal `json:"creator"`
	Deadline     uint64       `json:"deadline"`
	Eligibility  string       `json:"eligibility"`
	Budget       uint64       `json:"budget"`
	Category     Category     `json:"category"`
	Status       Status       `json:"status"`
	CreatedAt    uint64       `json:"created_at"`
	MetadataHash id.Hash      `json:"metadata_hash"`
}

func (t *Tender) IsOpen() bool { return t.Status == StatusOpen }

// Clone returns a deep copy so stored records are never aliased by callers.
func (t *Tender) Clone() *Tender {
	if t == nil {
		return nil
	}
	c := *t
	c.MetadataHash = t.MetadataHash.Clone()
	return &c
}

// CanModify checks that caller owns the tender.
func (t *Tender) CanModify(caller id.Principal) error {
	if caller != t.Creator {
		return ErrNotAuthorized
	}
	return nil
}

// CanClose checks the open -> closed transition.
func (t *Tender) CanClose() error {
	if !t.IsOpen() {
		return ErrInvalidStatus
	}
	return nil
}

// ApplyClose transitions the tender to closed. Call CanClose first.
func (t *Tender) ApplyClose() {
	t.Status = StatusClosed
}

// ApplyRevision overwrites the mutable fields.
func (t *Tender) ApplyRevision(title, description string, deadline uint64) {
	t.Title = title
	t.Description = description
	t.Deadline = deadline
}

// TenderUpdate is the single-slot log of the most recent revision.
type TenderUpdate struct {
	UpdatedTitle       string       `json:"updated_title"`
	UpdatedDescription string       `json:"updated_description"`
	UpdatedDeadline    uint64       `json:"updated_deadline"`
	UpdatedBy          id.Principal `json:"updated_by"`
	UpdatedAt          uint64       `json:"updated_at"`
}

// Settings are the authority-controlled knobs.
type Settings struct {
	MaxTenders      uint64 `json:"max_tenders"`
	RegistrationFee uint64 `json:"registration_fee"`
}

func DefaultSettings() Settings {
	return Settings{MaxTenders: DefaultMaxTenders, RegistrationFee: DefaultRegistrationFee}
}

func ValidateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n == 0 || n > MaxTitleLength {
		return ErrInvalidTitle
	}
	return nil
}

func ValidateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n == 0 || n > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	return nil
}

func ValidateEligibility(eligibility string) error {
	if n := utf8.RuneCountInString(eligibility); n == 0 || n > MaxEligibilityLength {
		return ErrInvalidEligibility
	}
	return nil
}

// ValidateDeadline requires the deadline to lie strictly after height.
func ValidateDeadline(deadline, height uint64) error {
	if deadline <= height {
		return ErrInvalidDeadline
	}
	return nil
}
