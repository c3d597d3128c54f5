package ptb

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// InputKind identifies one entry in a script's input table.
type InputKind uint8

const (
	// InputPure is an encoded literal value.
	InputPure InputKind = iota

	// InputObject is an on-chain object, referenced by canonical id.
	InputObject
)

// ScriptInput is one deduplicated entry in a script's input table.
type ScriptInput struct {
	Kind     InputKind
	Pure     []byte
	ObjectID string
	Owner    Owner // populated from validation for object inputs
}

// ScriptArgKind identifies how a command argument is wired.
type ScriptArgKind uint8

const (
	// ScriptArgInput references the input table by index.
	ScriptArgInput ScriptArgKind = iota

	// ScriptArgGas references the shared gas coin.
	ScriptArgGas

	// ScriptArgResult references an earlier command's result slot.
	ScriptArgResult
)

// ScriptArg wires one command argument to an input-table entry, the gas
// coin, or a prior command's result.
type ScriptArg struct {
	Kind    ScriptArgKind
	Input   int // ScriptArgInput
	Command int // ScriptArgResult
	Sub     int // ScriptArgResult, -1 for the whole result
}

// ScriptCommand is one fully wired step of a built script.
type ScriptCommand struct {
	Kind CommandKind

	Target   Target // MoveCall
	TypeArgs []TypeTag
	Args     []ScriptArg

	Objects   []ScriptArg // TransferObjects
	Recipient ScriptArg

	Coin    ScriptArg // SplitCoins
	Amounts []ScriptArg

	Destination ScriptArg // MergeCoins
	Sources     []ScriptArg

	// ResultArity is the number of result slots this step exposes;
	// -1 when unknown before execution (MoveCall).
	ResultArity int
}

// BuiltScript is the ordered, fully resolved transaction: deduplicated
// inputs, wired commands, a sender, and a gas budget. It is constructed
// fresh per execution attempt and never mutated afterwards.
type BuiltScript struct {
	Inputs   []ScriptInput
	Commands []ScriptCommand

	Sender    Address
	HasSender bool
	GasBudget uint64
}

// Len returns the number of commands in the script.
func (s *BuiltScript) Len() int {
	return len(s.Commands)
}

// CommandAt returns the command at the given index, or nil if out of range.
func (s *BuiltScript) CommandAt(i int) *ScriptCommand {
	if i < 0 || i >= len(s.Commands) {
		return nil
	}
	return &s.Commands[i]
}

// scriptBuilder folds resolved commands into one BuiltScript, deduplicating
// identical inputs into a shared table.
type scriptBuilder struct {
	script   *BuiltScript
	inputIdx map[string]int // dedup key -> input table index
	arity    []int          // result arity per appended command
}

// buildScript consumes the command list plus the resolver's and validator's
// outputs and emits one BuiltScript. Processing is strictly sequential in
// command order: a result reference is only legal once its producer has been
// appended. Building is deterministic and has no side effects.
func buildScript(commands []*Command, res *Resolution, val *Validation) (*BuiltScript, error) {
	b := &scriptBuilder{
		script:   &BuiltScript{},
		inputIdx: make(map[string]int),
	}

	for i, cmd := range commands {
		rc := res.Commands[i]
		sc := ScriptCommand{Kind: cmd.kind, ResultArity: 0}
		var err error

		switch cmd.kind {
		case CommandMoveCall:
			sc.Target = cmd.target
			sc.TypeArgs = cmd.typeArgs
			sc.Args, err = b.wireAll(i, rc.Args, val)
			sc.ResultArity = -1

		case CommandTransferObjects:
			sc.Objects, err = b.wireAll(i, rc.Objects, val)
			if err == nil {
				sc.Recipient, err = b.wire(i, rc.Recipient, val)
			}

		case CommandSplitCoins:
			sc.Coin, err = b.wire(i, rc.Coin, val)
			if err == nil {
				sc.Amounts, err = b.wireAll(i, rc.Amounts, val)
			}
			sc.ResultArity = len(rc.Amounts)

		case CommandMergeCoins:
			sc.Destination, err = b.wire(i, rc.Destination, val)
			if err == nil {
				sc.Sources, err = b.wireAll(i, rc.Sources, val)
			}
		}

		if err != nil {
			return nil, err
		}

		b.script.Commands = append(b.script.Commands, sc)
		b.arity = append(b.arity, sc.ResultArity)
	}

	return b.script, nil
}

func (b *scriptBuilder) wireAll(idx int, args []ResolvedArg, val *Validation) ([]ScriptArg, error) {
	out := make([]ScriptArg, len(args))
	for i, a := range args {
		wired, err := b.wire(idx, a, val)
		if err != nil {
			return nil, err
		}
		out[i] = wired
	}
	return out, nil
}

func (b *scriptBuilder) wire(idx int, a ResolvedArg, val *Validation) (ScriptArg, error) {
	switch a.Kind {
	case ResolvedPure:
		return ScriptArg{Kind: ScriptArgInput, Input: b.addPure(a.Pure)}, nil

	case ResolvedGas:
		return ScriptArg{Kind: ScriptArgGas}, nil

	case ResolvedObject:
		var owner Owner
		if val != nil {
			if info := val.Objects[a.ObjectID]; info != nil {
				owner = info.Owner
			}
		}
		return ScriptArg{Kind: ScriptArgInput, Input: b.addObject(a.ObjectID, owner)}, nil

	case ResolvedResult:
		// The producer must already be appended.
		if a.Command >= len(b.arity) {
			return ScriptArg{}, &DanglingReferenceError{
				CommandIndex: idx,
				Target:       a.Command,
				Sub:          a.Sub,
				Reason:       "result not yet produced at this point",
			}
		}
		if n := b.arity[a.Command]; n >= 0 && a.Sub >= n {
			return ScriptArg{}, &DanglingReferenceError{
				CommandIndex: idx,
				Target:       a.Command,
				Sub:          a.Sub,
				Reason:       "result slot out of range",
			}
		}
		return ScriptArg{Kind: ScriptArgResult, Command: a.Command, Sub: a.Sub}, nil

	default:
		return ScriptArg{}, &DanglingReferenceError{
			CommandIndex: idx,
			Target:       -1,
			Sub:          -1,
			Reason:       "unresolvable argument slot",
		}
	}
}

// addPure appends a pure input, deduplicating identical byte values.
func (b *scriptBuilder) addPure(data []byte) int {
	key := "p:" + hexutil.Encode(data)
	if idx, ok := b.inputIdx[key]; ok {
		return idx
	}
	idx := len(b.script.Inputs)
	b.script.Inputs = append(b.script.Inputs, ScriptInput{Kind: InputPure, Pure: data})
	b.inputIdx[key] = idx
	return idx
}

// addObject appends an object input, deduplicating by canonical id.
func (b *scriptBuilder) addObject(id string, owner Owner) int {
	key := "o:" + id
	if idx, ok := b.inputIdx[key]; ok {
		return idx
	}
	idx := len(b.script.Inputs)
	b.script.Inputs = append(b.script.Inputs, ScriptInput{Kind: InputObject, ObjectID: id, Owner: owner})
	b.inputIdx[key] = idx
	return idx
}

// Wire shapes used when handing the script to the RPC layer.

type rpcInput struct {
	Kind     string        `json:"kind"`
	Value    hexutil.Bytes `json:"value,omitempty"`
	ObjectID string        `json:"objectId,omitempty"`
}

type rpcArg struct {
	Kind    string `json:"kind"`
	Input   int    `json:"input,omitempty"`
	Command int    `json:"command,omitempty"`
	Sub     *int   `json:"sub,omitempty"`
}

type rpcCommand struct {
	Kind        string   `json:"kind"`
	Target      string   `json:"target,omitempty"`
	TypeArgs    []string `json:"typeArguments,omitempty"`
	Args        []rpcArg `json:"arguments,omitempty"`
	Objects     []rpcArg `json:"objects,omitempty"`
	Recipient   *rpcArg  `json:"recipient,omitempty"`
	Coin        *rpcArg  `json:"coin,omitempty"`
	Amounts     []rpcArg `json:"amounts,omitempty"`
	Destination *rpcArg  `json:"destination,omitempty"`
	Sources     []rpcArg `json:"sources,omitempty"`
}

type rpcScript struct {
	Inputs    []rpcInput   `json:"inputs"`
	Commands  []rpcCommand `json:"commands"`
	Sender    string       `json:"sender,omitempty"`
	GasBudget uint64       `json:"gasBudget,omitempty"`
}

// toRPC converts the script to its wire representation.
func (s *BuiltScript) toRPC() rpcScript {
	out := rpcScript{GasBudget: s.GasBudget}
	if s.HasSender {
		out.Sender = s.Sender.Hex()
	}

	for _, in := range s.Inputs {
		switch in.Kind {
		case InputPure:
			out.Inputs = append(out.Inputs, rpcInput{Kind: "pure", Value: in.Pure})
		case InputObject:
			out.Inputs = append(out.Inputs, rpcInput{Kind: "object", ObjectID: in.ObjectID})
		}
	}

	for _, cmd := range s.Commands {
		rc := rpcCommand{Kind: cmd.Kind.String()}
		switch cmd.Kind {
		case CommandMoveCall:
			rc.Target = cmd.Target.String()
			for _, ta := range cmd.TypeArgs {
				rc.TypeArgs = append(rc.TypeArgs, ta.String())
			}
			rc.Args = convertArgs(cmd.Args)
		case CommandTransferObjects:
			rc.Objects = convertArgs(cmd.Objects)
			rec := convertArg(cmd.Recipient)
			rc.Recipient = &rec
		case CommandSplitCoins:
			coin := convertArg(cmd.Coin)
			rc.Coin = &coin
			rc.Amounts = convertArgs(cmd.Amounts)
		case CommandMergeCoins:
			dst := convertArg(cmd.Destination)
			rc.Destination = &dst
			rc.Sources = convertArgs(cmd.Sources)
		}
		out.Commands = append(out.Commands, rc)
	}

	return out
}

func convertArgs(args []ScriptArg) []rpcArg {
	out := make([]rpcArg, len(args))
	for i, a := range args {
		out[i] = convertArg(a)
	}
	return out
}

func convertArg(a ScriptArg) rpcArg {
	switch a.Kind {
	case ScriptArgGas:
		return rpcArg{Kind: "gas"}
	case ScriptArgResult:
		out := rpcArg{Kind: "result", Command: a.Command}
		if a.Sub >= 0 {
			sub := a.Sub
			out.Sub = &sub
		}
		return out
	default:
		return rpcArg{Kind: "input", Input: a.Input}
	}
}
