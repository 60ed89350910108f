// Package ruleerrors defines the stable error-kind taxonomy every
// consensus-rule rejection surfaces through, matching spec.md §7. Every
// error a node-facing caller might branch on is a RuleError carrying one
// of the ErrorKind constants below; callers compare kinds with
// errors.As, never by matching message text.
package ruleerrors

import "fmt"

// ErrorKind identifies the specific invariant a RuleError reports.
type ErrorKind int

// Error kinds, grouped as in spec.md §7.
const (
	// Codec
	ErrInvalidEncoding ErrorKind = iota
	ErrInvalidValue
	ErrInvalidParentsLevelCount
	ErrInvalidTipsCount

	// Structural
	ErrBlockHashMismatch
	ErrInvalidVersion
	ErrNoParents
	ErrTooManyParents
	ErrParentNotFound
	ErrParentIsAncestorOfOtherParent
	ErrReservedFieldNonZero
	ErrWrongParentsOrder
	ErrDuplicateBlock
	ErrKnownInvalid
	ErrMissingParentBody
	ErrMissingBlockHeaderInIBD

	// Timestamp
	ErrInvalidTimestamp

	// PoW / difficulty
	ErrInvalidPoW
	ErrInvalidBitsField
	ErrZeroDifficulty
	ErrTargetOverflow
	ErrDAAWindowOverflow

	// GHOSTDAG
	ErrInvalidBlueScore
	ErrInvalidBlueWork
	ErrInvalidDaaScore
	ErrKViolation
	ErrViolatingMergeLimit

	// Commitment
	ErrInvalidMerkleRoot
	ErrInvalidPruningPoint
	ErrPruningPointViolation

	// Config
	ErrUnsafeConfigurationOnMainnet
)

var kindNames = map[ErrorKind]string{
	ErrInvalidEncoding:               "InvalidEncoding",
	ErrInvalidValue:                  "InvalidValue",
	ErrInvalidParentsLevelCount:      "InvalidParentsLevelCount",
	ErrInvalidTipsCount:              "InvalidTipsCount",
	ErrBlockHashMismatch:             "BlockHashMismatch",
	ErrInvalidVersion:                "InvalidVersion",
	ErrNoParents:                     "NoParents",
	ErrTooManyParents:                "TooManyParents",
	ErrParentNotFound:                "ParentNotFound",
	ErrParentIsAncestorOfOtherParent: "ParentIsAncestorOfOtherParent",
	ErrReservedFieldNonZero:          "ReservedFieldNonZero",
	ErrWrongParentsOrder:             "WrongParentsOrder",
	ErrDuplicateBlock:                "DuplicateBlock",
	ErrKnownInvalid:                  "KnownInvalid",
	ErrMissingParentBody:             "MissingParentBody",
	ErrMissingBlockHeaderInIBD:       "MissingBlockHeaderInIBD",
	ErrInvalidTimestamp:              "InvalidTimestamp",
	ErrInvalidPoW:                    "InvalidPoW",
	ErrInvalidBitsField:              "InvalidBitsField",
	ErrZeroDifficulty:                "ZeroDifficulty",
	ErrTargetOverflow:                "TargetOverflow",
	ErrDAAWindowOverflow:             "DAAWindowOverflow",
	ErrInvalidBlueScore:              "InvalidBlueScore",
	ErrInvalidBlueWork:               "InvalidBlueWork",
	ErrInvalidDaaScore:               "InvalidDaaScore",
	ErrKViolation:                    "KViolation",
	ErrViolatingMergeLimit:           "ViolatingMergeLimit",
	ErrInvalidMerkleRoot:             "InvalidMerkleRoot",
	ErrInvalidPruningPoint:           "InvalidPruningPoint",
	ErrPruningPointViolation:         "PruningPointViolation",
	ErrUnsafeConfigurationOnMainnet:  "UnsafeConfigurationOnMainnet",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownErrorKind"
}

// RuleError identifies a rule violation. It is the type every consensus
// rejection in this repo surfaces as, so callers can branch on Kind via
// errors.As instead of matching message strings.
type RuleError struct {
	Kind    ErrorKind
	Message string
}

func (e RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs a RuleError of the given kind with a formatted message.
func New(kind ErrorKind, format string, args ...interface{}) error {
	return RuleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewErrMissingParents builds an ErrParentNotFound RuleError naming every
// missing parent.
func NewErrMissingParents(missingParentHashes []fmt.Stringer) error {
	return RuleError{
		Kind:    ErrParentNotFound,
		Message: fmt.Sprintf("block has %d missing parent(s): %v", len(missingParentHashes), missingParentHashes),
	}
}
