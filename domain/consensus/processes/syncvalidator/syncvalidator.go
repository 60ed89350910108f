// Package syncvalidator implements C7 (spec.md §4.7): the header-only
// validation path used during initial sync, before a block's body has
// arrived. It runs every C6 step except the body's merkle-root check —
// spec.md is explicit that no other check may be weakened just because
// the body hasn't arrived yet. Grounded on the teacher's
// blockprocessor.validatePostProofOfWork, which conditionally skips
// only the body-dependent checks when a block is running the
// headers-first sync path.
package syncvalidator

import (
	"github.com/ghostdag-network/consensus/domain/consensus/model"
	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

type syncValidator struct {
	blockValidator model.BlockValidator
}

// New returns a model.SyncValidator that delegates to blockValidator for
// every check except the merkle-root one.
func New(blockValidator model.BlockValidator) model.SyncValidator {
	return &syncValidator{blockValidator: blockValidator}
}

// ValidateHeaderOnly runs ValidateHeaderInIsolation and
// ValidateHeaderInContext against header, skipping ValidateBody since
// the block's transactions aren't known yet.
func (v *syncValidator) ValidateHeaderOnly(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	headerOnlyBlock := &externalapi.DomainBlock{Header: header}

	if err := v.blockValidator.ValidateHeaderInIsolation(headerOnlyBlock); err != nil {
		return err
	}

	return v.blockValidator.ValidateHeaderInContext(stagingArea, blockHash)
}
