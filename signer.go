package ptb

import (
	"context"
)

// SubmitResult is a signer's response to a submission. Signers may return
// partial data: ObjectChanges and GasUsed are best-effort, and the
// authoritative record is re-fetched from the chain by digest.
type SubmitResult struct {
	Digest        string
	ObjectChanges []ObjectChange
	GasUsed       uint64
}

// Signer signs a built script with an externally held key and submits it.
// The signer supplies the sender; scripts handed to a plain Signer carry no
// forced sender address.
type Signer interface {
	SignAndSubmit(ctx context.Context, script *BuiltScript) (*SubmitResult, error)
}

// LocalSigner is a Signer whose key material is held locally, so the sender
// address is known before signing. Scripts from local signers are probed
// with an inspect-only call first: a probe that yields decoded return values
// means the script was a read, and nothing is submitted.
type LocalSigner interface {
	Signer

	// Address returns the sender address the signer will sign for.
	Address() Address
}
