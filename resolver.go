package ptb

import "fmt"

// ResolvedKind identifies what an argument slot resolved to.
type ResolvedKind uint8

const (
	// ResolvedPure is an already-encoded literal value.
	ResolvedPure ResolvedKind = iota

	// ResolvedGas is the shared gas coin placeholder.
	ResolvedGas

	// ResolvedObject is a concrete, canonicalized object id.
	ResolvedObject

	// ResolvedResult points at (commandIndex, resultSlot) of an earlier command.
	ResolvedResult
)

// ResolvedArg is one resolved argument slot.
type ResolvedArg struct {
	Kind ResolvedKind

	Pure     []byte  // ResolvedPure
	ObjectID string  // ResolvedObject, canonical form
	Command  int     // ResolvedResult
	Sub      int     // ResolvedResult, -1 for the whole result
	Type     TypeTag // declared type, when the slot carried one
}

// ResolvedCommand mirrors a command's argument slots after resolution.
// Only the fields of the command's own variant are populated.
type ResolvedCommand struct {
	Kind CommandKind

	Args []ResolvedArg // MoveCall

	Objects   []ResolvedArg // TransferObjects
	Recipient ResolvedArg

	Coin    ResolvedArg // SplitCoins
	Amounts []ResolvedArg

	Destination ResolvedArg // MergeCoins
	Sources     []ResolvedArg
}

// Resolution is the resolver's output: per-command resolved slots plus the
// distinct object ids encountered, in first-use order.
type Resolution struct {
	Commands []ResolvedCommand

	// ObjectIDs holds every distinct canonical object id, ordered by first
	// appearance across the command list.
	ObjectIDs []string

	seen map[string]bool
}

// Resolve maps every argument slot of every command to an encoded literal,
// the gas placeholder, a canonical object id, or a back-reference to an
// earlier command's result slot. It is a pure function of the command list.
//
// A Result argument pointing at or beyond its own command's index, or at a
// command that produces no consumable result, fails with a
// DanglingReferenceError. Malformed literals fail with EncodingError;
// malformed addresses and object ids fail with InvalidAddressError. No
// network access happens here.
func Resolve(commands []*Command) (*Resolution, error) {
	if len(commands) == 0 {
		return nil, ErrEmptyScript
	}

	res := &Resolution{
		Commands: make([]ResolvedCommand, len(commands)),
		seen:     make(map[string]bool),
	}

	for i, cmd := range commands {
		rc := ResolvedCommand{Kind: cmd.kind}
		var err error

		switch cmd.kind {
		case CommandMoveCall:
			rc.Args, err = res.resolveAll(commands, i, cmd.callArgs)

		case CommandTransferObjects:
			rc.Objects, err = res.resolveAll(commands, i, cmd.objects)
			if err == nil {
				rc.Recipient, err = res.resolveRecipient(commands, i, cmd.recipient)
			}

		case CommandSplitCoins:
			rc.Coin, err = res.resolveArg(commands, i, cmd.coin)
			if err == nil {
				rc.Amounts, err = res.resolveAll(commands, i, cmd.amounts)
			}

		case CommandMergeCoins:
			rc.Destination, err = res.resolveArg(commands, i, cmd.destination)
			if err == nil {
				rc.Sources, err = res.resolveAll(commands, i, cmd.sources)
			}
		}

		if err != nil {
			return nil, err
		}
		res.Commands[i] = rc
	}

	res.seen = nil
	return res, nil
}

func (r *Resolution) resolveAll(commands []*Command, idx int, args []Argument) ([]ResolvedArg, error) {
	out := make([]ResolvedArg, len(args))
	for i, arg := range args {
		ra, err := r.resolveArg(commands, idx, arg)
		if err != nil {
			return nil, err
		}
		out[i] = ra
	}
	return out, nil
}

func (r *Resolution) resolveArg(commands []*Command, idx int, arg Argument) (ResolvedArg, error) {
	switch a := arg.(type) {
	case Literal:
		// A reference marker on the declared type overrides the nominal
		// argument kind: the literal text is an object id.
		if a.Type.IsObject() {
			return r.resolveObjectID(a.Value, a.Type)
		}
		pure, err := EncodePure(a.Value, a.Type)
		if err != nil {
			return ResolvedArg{}, err
		}
		return ResolvedArg{Kind: ResolvedPure, Pure: pure, Type: a.Type}, nil

	case GasPlaceholder:
		return ResolvedArg{Kind: ResolvedGas}, nil

	case ObjectRef:
		return r.resolveObjectID(a.ID, a.Type)

	case Result:
		return r.resolveResult(commands, idx, a)

	default:
		return ResolvedArg{}, &EncodingError{Type: "argument",
			Err: fmt.Errorf("unsupported argument type %T", arg)}
	}
}

// resolveRecipient resolves a TransferObjects recipient, which must be an
// address-shaped literal or a result reference. Malformed recipients fail
// before any network call is made.
func (r *Resolution) resolveRecipient(commands []*Command, idx int, arg Argument) (ResolvedArg, error) {
	if lit, ok := arg.(Literal); ok {
		addr, err := ParseAddress(lit.Value)
		if err != nil {
			return ResolvedArg{}, err
		}
		return ResolvedArg{
			Kind: ResolvedPure,
			Pure: addr.Bytes(),
			Type: TypeTag{Kind: TypeAddress, Raw: "address"},
		}, nil
	}
	return r.resolveArg(commands, idx, arg)
}

func (r *Resolution) resolveObjectID(id string, t TypeTag) (ResolvedArg, error) {
	canonical, err := NormalizeAddress(id)
	if err != nil {
		return ResolvedArg{}, err
	}
	if !r.seen[canonical] {
		r.seen[canonical] = true
		r.ObjectIDs = append(r.ObjectIDs, canonical)
	}
	return ResolvedArg{Kind: ResolvedObject, ObjectID: canonical, Type: t}, nil
}

func (r *Resolution) resolveResult(commands []*Command, idx int, a Result) (ResolvedArg, error) {
	if a.Command < 0 || a.Command >= idx {
		return ResolvedArg{}, &DanglingReferenceError{
			CommandIndex: idx,
			Target:       a.Command,
			Sub:          a.Sub,
			Reason:       "result must come from a strictly earlier command",
		}
	}

	// -1 selects the whole result; anything below it is not a slot.
	if a.Sub < -1 {
		return ResolvedArg{}, &DanglingReferenceError{
			CommandIndex: idx,
			Target:       a.Command,
			Sub:          a.Sub,
			Reason:       "negative result slot",
		}
	}

	producer := commands[a.Command]
	arity, produces := producer.resultArity()
	if !produces {
		return ResolvedArg{}, &DanglingReferenceError{
			CommandIndex: idx,
			Target:       a.Command,
			Sub:          a.Sub,
			Reason:       producer.kind.String() + " produces no consumable result",
		}
	}
	if arity >= 0 && a.Sub >= arity {
		return ResolvedArg{}, &DanglingReferenceError{
			CommandIndex: idx,
			Target:       a.Command,
			Sub:          a.Sub,
			Reason:       "result slot out of range",
		}
	}

	return ResolvedArg{Kind: ResolvedResult, Command: a.Command, Sub: a.Sub}, nil
}
