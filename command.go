package ptb

import (
	"fmt"
	"strings"
)

// CommandKind specifies the type of command operation.
type CommandKind uint8

const (
	// CommandMoveCall invokes an exposed function of an on-chain package.
	CommandMoveCall CommandKind = iota

	// CommandTransferObjects sends a list of objects to one recipient.
	CommandTransferObjects

	// CommandSplitCoins splits a coin source into requested amounts.
	CommandSplitCoins

	// CommandMergeCoins merges source coins into one destination.
	CommandMergeCoins
)

func (k CommandKind) String() string {
	switch k {
	case CommandMoveCall:
		return "MoveCall"
	case CommandTransferObjects:
		return "TransferObjects"
	case CommandSplitCoins:
		return "SplitCoins"
	case CommandMergeCoins:
		return "MergeCoins"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
}

// Argument is one argument slot of a command.
// This is a sealed interface - only types within this package can implement it.
type Argument interface {
	// isArgument is unexported to seal the interface.
	isArgument()
}

// Literal is a constant value known at build time, carried as text together
// with its declared type. Object-typed literals (declared behind & or &mut)
// are treated as object references during resolution.
type Literal struct {
	Value string
	Type  TypeTag
}

func (Literal) isArgument() {}

// GasPlaceholder stands for the shared gas coin of the transaction.
type GasPlaceholder struct{}

func (GasPlaceholder) isArgument() {}

// ObjectRef names an on-chain object by id. The id may be shortened or
// mixed-case; it is normalized during resolution.
type ObjectRef struct {
	ID   string
	Type TypeTag // declared parameter type, used for live-state checks
}

func (ObjectRef) isArgument() {}

// Result references the output of an earlier command by its index.
// Sub selects one slot of a multi-result command; -1 means the whole result.
type Result struct {
	Command int
	Sub     int
}

func (Result) isArgument() {}

// Lit creates a literal argument with a declared type string.
func Lit(value, declaredType string) Argument {
	return Literal{Value: value, Type: ParseTypeTag(declaredType)}
}

// Gas creates a gas placeholder argument.
func Gas() Argument {
	return GasPlaceholder{}
}

// Object creates an object reference argument without a declared type.
func Object(id string) Argument {
	return ObjectRef{ID: id}
}

// ObjectTyped creates an object reference with a declared parameter type.
func ObjectTyped(id, declaredType string) Argument {
	return ObjectRef{ID: id, Type: ParseTypeTag(declaredType)}
}

// ResultOf references the whole result of the command at index i.
func ResultOf(i int) Argument {
	return Result{Command: i, Sub: -1}
}

// NestedResultOf references result slot sub of the command at index i.
func NestedResultOf(i, sub int) Argument {
	return Result{Command: i, Sub: sub}
}

// Target identifies an exposed function: package::module::function.
type Target struct {
	Package  Address
	Module   string
	Function string
}

// ParseTarget parses a "0xpkg::module::function" target string.
func ParseTarget(s string) (Target, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Target{}, fmt.Errorf("ptb: malformed target %q", s)
	}
	pkg, err := ParseAddress(parts[0])
	if err != nil {
		return Target{}, err
	}
	return Target{Package: pkg, Module: parts[1], Function: parts[2]}, nil
}

// MustParseTarget is like ParseTarget but panics on error.
func MustParseTarget(s string) Target {
	t, err := ParseTarget(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Target) String() string {
	return t.Package.Hex() + "::" + t.Module + "::" + t.Function
}

// Command is one instruction in a transaction script. Each variant owns its
// own argument slots; the variant-specific fields are populated by the
// corresponding constructor.
type Command struct {
	kind CommandKind

	// MoveCall
	target   Target
	typeArgs []TypeTag
	callArgs []Argument

	// TransferObjects
	objects   []Argument
	recipient Argument

	// SplitCoins
	coin    Argument
	amounts []Argument

	// MergeCoins
	destination Argument
	sources     []Argument
}

// NewMoveCall creates a contract invocation command.
func NewMoveCall(target Target, typeArgs []string, args ...Argument) *Command {
	tags := make([]TypeTag, len(typeArgs))
	for i, ta := range typeArgs {
		tags[i] = ParseTypeTag(ta)
	}
	return &Command{
		kind:     CommandMoveCall,
		target:   target,
		typeArgs: tags,
		callArgs: args,
	}
}

// NewTransferObjects creates a transfer of objects to one recipient.
func NewTransferObjects(objects []Argument, recipient Argument) *Command {
	return &Command{
		kind:      CommandTransferObjects,
		objects:   objects,
		recipient: recipient,
	}
}

// NewSplitCoins creates a split of one coin source into the given amounts.
// The command produces one result slot per amount, addressable by sub-index.
func NewSplitCoins(coin Argument, amounts ...Argument) *Command {
	return &Command{
		kind:    CommandSplitCoins,
		coin:    coin,
		amounts: amounts,
	}
}

// NewMergeCoins creates a merge of source coins into a destination coin.
func NewMergeCoins(destination Argument, sources ...Argument) *Command {
	return &Command{
		kind:        CommandMergeCoins,
		destination: destination,
		sources:     sources,
	}
}

// Kind returns the command variant.
func (c *Command) Kind() CommandKind {
	return c.kind
}

// Target returns the invocation target of a MoveCall command.
func (c *Command) Target() Target {
	return c.target
}

// TypeArgs returns the declared type parameters of a MoveCall command.
func (c *Command) TypeArgs() []TypeTag {
	return c.typeArgs
}

// Args returns the arguments of a MoveCall command.
func (c *Command) Args() []Argument {
	return c.callArgs
}

// Objects returns the objects of a TransferObjects command.
func (c *Command) Objects() []Argument {
	return c.objects
}

// Recipient returns the recipient of a TransferObjects command.
func (c *Command) Recipient() Argument {
	return c.recipient
}

// Coin returns the coin source of a SplitCoins command.
func (c *Command) Coin() Argument {
	return c.coin
}

// Amounts returns the requested amounts of a SplitCoins command.
func (c *Command) Amounts() []Argument {
	return c.amounts
}

// Destination returns the destination coin of a MergeCoins command.
func (c *Command) Destination() Argument {
	return c.destination
}

// Sources returns the source coins of a MergeCoins command.
func (c *Command) Sources() []Argument {
	return c.sources
}

// resultArity returns the number of result slots the command exposes to
// later commands. MoveCall arity is unknown before execution and reported
// as -1; TransferObjects and MergeCoins expose none.
func (c *Command) resultArity() (int, bool) {
	switch c.kind {
	case CommandMoveCall:
		return -1, true
	case CommandSplitCoins:
		return len(c.amounts), true
	default:
		return 0, false
	}
}
