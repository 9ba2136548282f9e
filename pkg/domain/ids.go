// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	dErrors "credverify/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a TestID where a ResumeID is expected.
type (
	ResumeID       uuid.UUID
	VerificationID uuid.UUID
	TestID         uuid.UUID
	CertificateID  uuid.UUID
)

// SubjectID is the wallet address owning every record. Always lower-case hex.
type SubjectID string

// New constructors for store inserts.

func NewResumeID() ResumeID             { return ResumeID(uuid.New()) }
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }
func NewTestID() TestID                 { return TestID(uuid.New()) }
func NewCertificateID() CertificateID   { return CertificateID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseResumeID(s string) (ResumeID, error) {
	id, err := parseUUID(s, "resume ID")
	return ResumeID(id), err
}

func ParseVerificationID(s string) (VerificationID, error) {
	id, err := parseUUID(s, "verification ID")
	return VerificationID(id), err
}

func ParseTestID(s string) (TestID, error) {
	id, err := parseUUID(s, "test ID")
	return TestID(id), err
}

func ParseCertificateID(s string) (CertificateID, error) {
	id, err := parseUUID(s, "certificate ID")
	return CertificateID(id), err
}

// ParseSubjectID validates a wallet address and normalizes it to lower case.
func ParseSubjectID(s string) (SubjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address format")
	}
	return SubjectID(strings.ToLower(common.HexToAddress(s).Hex())), nil
}

// String methods - for logging and persistence.

func (id ResumeID) String() string       { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id TestID) String() string         { return uuid.UUID(id).String() }
func (id CertificateID) String() string  { return uuid.UUID(id).String() }
func (id SubjectID) String() string      { return string(id) }

// IsNil checks - used for service-layer validation.

func (id ResumeID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TestID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id SubjectID) IsNil() bool      { return id == "" }

// Owns reports whether id and other name the same wallet, ignoring case.
func (id SubjectID) Owns(other SubjectID) bool {
	return id != "" && strings.EqualFold(string(id), string(other))
}

// Address returns the checksummed form for ledger calls.
func (id SubjectID) Address() common.Address {
	return common.HexToAddress(string(id))
}

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here so store lookups can return NotFound consistently.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}

// Text encoding, so ids render as canonical UUID strings in JSON.

func (id ResumeID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id VerificationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id TestID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id CertificateID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *ResumeID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *VerificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TestID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CertificateID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
