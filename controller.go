package ptb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// placeholderSender is the well-known sender used for previews when neither
// an explicit address nor an object owner is available.
var placeholderSender = MustParseAddress(
	"0x000000000000000000000000000000000000000000000000000000000000dead")

// OutcomeKind tags the three execution result shapes.
type OutcomeKind uint8

const (
	// OutcomeReadProbe means the script was inspected but not committed,
	// yielding decoded return values instead of a transaction record.
	OutcomeReadProbe OutcomeKind = iota

	// OutcomeSubmission means the script was signed and committed.
	OutcomeSubmission

	// OutcomeFailure means the attempt terminated with a classified cause.
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReadProbe:
		return "read-probe"
	case OutcomeSubmission:
		return "submission"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", uint8(k))
	}
}

// DecodedValue is one decoded return value of a read probe.
type DecodedValue struct {
	Type  TypeTag
	Value any
}

// Outcome is the result of one execution attempt. Kind selects which fields
// are meaningful: Returns and Effects for read probes, Digest and Effects
// for submissions, Cause and Raw for failures. Repairs lists any automatic
// target rewrites applied during validation, regardless of kind.
type Outcome struct {
	Kind OutcomeKind

	Returns []DecodedValue // OutcomeReadProbe
	Effects []ObjectChange // simulated or committed object changes
	Events  []Event        // OutcomeSubmission, from the post-submit requery
	Digest  string         // OutcomeSubmission
	GasUsed uint64

	Cause error  // OutcomeFailure
	Raw   string // raw underlying message, when one exists

	Repairs []Repair
}

// Controller drives the two execution modes over a compiled script. It holds
// no cross-execution state: every attempt rebuilds the script from the
// command list, so attempts are independent and idempotent at that level.
type Controller struct {
	client ChainClient
	cfg    *controllerConfig
}

// NewController creates a Controller over the given chain client.
func NewController(client ChainClient, opts ...Option) *Controller {
	cfg := defaultControllerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Controller{client: client, cfg: cfg}
}

// compile runs the full pre-execution pipeline: resolve, validate, build.
func (c *Controller) compile(ctx context.Context, commands []*Command) (*BuiltScript, *Resolution, *Validation, error) {
	res, err := Resolve(commands)
	if err != nil {
		return nil, nil, nil, err
	}

	v := &validator{client: c.client, policy: c.cfg.repairPolicy, logger: c.cfg.logger}
	val, err := v.validate(ctx, commands, res)
	if err != nil {
		return nil, nil, nil, err
	}

	script, err := buildScript(commands, res, val)
	if err != nil {
		return nil, nil, nil, err
	}
	return script, res, val, nil
}

// CompileAndPreview compiles the command list and simulates it without
// committing anything. The sender is the explicit address when given, else
// the owner of the first object-typed argument, else a well-known
// placeholder. The simulation uses a fixed preview gas budget.
func (c *Controller) CompileAndPreview(ctx context.Context, commands []*Command, sender *Address) (*Outcome, error) {
	script, res, val, err := c.compile(ctx, commands)
	if err != nil {
		return c.fail(commands, nil, err)
	}

	script.Sender = c.previewSender(sender, res, val)
	script.HasSender = true
	script.GasBudget = c.cfg.previewGasBudget

	sim, err := c.client.Simulate(ctx, script, script.Sender)
	if err != nil {
		return c.fail(commands, val, err)
	}
	if !sim.Success {
		return c.fail(commands, val, classifyChainError(sim.Error))
	}

	outcome := &Outcome{
		Kind:    OutcomeReadProbe,
		Returns: c.decodeReturns(sim.Returns),
		Effects: sim.Changes,
		GasUsed: sim.GasUsed,
		Repairs: val.Repairs,
	}
	c.record(commands, outcome)
	return outcome, nil
}

// previewSender picks a best-effort sender for simulation.
func (c *Controller) previewSender(explicit *Address, res *Resolution, val *Validation) Address {
	if explicit != nil {
		return *explicit
	}
	for _, id := range res.ObjectIDs {
		if info := val.Objects[id]; info != nil && info.Owner.Kind == OwnerAddress {
			return info.Owner.Address
		}
	}
	return placeholderSender
}

// CompileAndSubmit compiles the command list and hands it to the signer.
//
// When the signer holds its key locally the script is probed with an
// inspect-only call first; a successful probe that yields at least one
// return value means the script was semantically a read, and it terminates
// as a read-probe outcome with no submission. That decision cannot be made
// before asking the network, because a read script is built identically to
// a state-changing one.
//
// After a successful submission the transaction is re-fetched by digest:
// the signer's own response may be partial and is not trusted for object
// changes.
func (c *Controller) CompileAndSubmit(ctx context.Context, commands []*Command, signer Signer) (*Outcome, error) {
	script, _, val, err := c.compile(ctx, commands)
	if err != nil {
		return c.fail(commands, nil, err)
	}
	script.GasBudget = c.cfg.gasBudget

	if local, ok := signer.(LocalSigner); ok {
		script.Sender = local.Address()
		script.HasSender = true

		sim, simErr := c.client.Simulate(ctx, script, script.Sender)
		if simErr == nil && sim.Success && len(sim.Returns) > 0 {
			outcome := &Outcome{
				Kind:    OutcomeReadProbe,
				Returns: c.decodeReturns(sim.Returns),
				Effects: sim.Changes,
				GasUsed: sim.GasUsed,
				Repairs: val.Repairs,
			}
			c.record(commands, outcome)
			return outcome, nil
		}
		if simErr != nil {
			c.cfg.logger.Debug("read probe unavailable, submitting", "err", simErr)
		}
	}

	result, err := signer.SignAndSubmit(ctx, script)
	if err != nil {
		return c.fail(commands, val, classifySubmitError(err))
	}

	outcome := &Outcome{
		Kind:    OutcomeSubmission,
		Digest:  result.Digest,
		Effects: result.ObjectChanges,
		GasUsed: result.GasUsed,
		Repairs: val.Repairs,
	}

	// The signer's response is untrusted and possibly incomplete; re-fetch
	// the authoritative record by digest. One requery, no retries.
	if tx, qerr := c.client.GetTransaction(ctx, result.Digest); qerr == nil {
		outcome.Effects = tx.Changes
		outcome.Events = tx.Events
		if tx.GasUsed > 0 {
			outcome.GasUsed = tx.GasUsed
		}
	} else {
		c.cfg.logger.Warn("post-submission requery failed, using signer data",
			"digest", result.Digest, "err", qerr)
	}

	c.record(commands, outcome)
	return outcome, nil
}

// decodeReturns decodes raw return values using the wire rules in reverse.
// A value that fails to decode is surfaced as its raw hex rather than
// aborting the whole outcome.
func (c *Controller) decodeReturns(returns []RawReturn) []DecodedValue {
	if len(returns) == 0 {
		return nil
	}
	out := make([]DecodedValue, len(returns))
	for i, r := range returns {
		tag := ParseTypeTag(r.Type)
		v, err := DecodeReturn(r.Bytes, tag)
		if err != nil {
			c.cfg.logger.Debug("undecodable return value", "index", i, "type", r.Type, "err", err)
			out[i] = DecodedValue{Type: tag, Value: hexutil.Encode(r.Bytes)}
			continue
		}
		out[i] = DecodedValue{Type: tag, Value: v}
	}
	return out
}

// fail builds the failure-shaped outcome for a classified error. The error
// is returned alongside so callers can branch on it directly.
func (c *Controller) fail(commands []*Command, val *Validation, cause error) (*Outcome, error) {
	outcome := &Outcome{
		Kind:  OutcomeFailure,
		Cause: cause,
		Raw:   cause.Error(),
	}
	if val != nil {
		outcome.Repairs = val.Repairs
	}
	c.record(commands, outcome)
	return outcome, cause
}

// record writes a history entry. Fire-and-forget: failures are logged and
// never affect the outcome.
func (c *Controller) record(commands []*Command, outcome *Outcome) {
	if c.cfg.history == nil {
		return
	}
	entry := HistoryEntry{
		Network:  c.cfg.network,
		Commands: commands,
		Outcome:  outcome.Kind,
		Digest:   outcome.Digest,
		GasUsed:  outcome.GasUsed,
		When:     time.Now(),
	}
	if err := c.cfg.history.Record(entry); err != nil {
		c.cfg.logger.Warn("history record failed", "err", err)
	}
}

// ownerPattern extracts the offending owner from a chain rejection message.
var ownerPattern = regexp.MustCompile(`(?i)owned by (?:account address |object )?(0x[0-9a-fA-F]{1,64})`)

// classifyChainError classifies a raw chain rejection message. An ownership
// rejection is re-phrased with the extracted owner; anything else passes
// through unchanged inside a SubmissionRejectedError.
func classifyChainError(raw string) error {
	if m := ownerPattern.FindStringSubmatch(raw); m != nil {
		owner := m[1]
		if canonical, err := NormalizeAddress(owner); err == nil {
			owner = canonical
		}
		return &OwnershipDeniedError{Owner: owner, Raw: raw}
	}
	return &SubmissionRejectedError{Raw: raw}
}

// classifySubmitError classifies an error returned by a signer or the chain.
func classifySubmitError(err error) error {
	if od, ok := classifyChainError(err.Error()).(*OwnershipDeniedError); ok {
		return od
	}
	return &SubmissionRejectedError{Raw: err.Error(), Err: err}
}
