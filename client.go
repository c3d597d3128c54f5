package ptb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// OwnerKind classifies who controls an on-chain object.
type OwnerKind uint8

const (
	// OwnerAddress means the object is owned by a single address.
	OwnerAddress OwnerKind = iota

	// OwnerShared means the object is shared and usable by anyone.
	OwnerShared

	// OwnerImmutable means the object is frozen.
	OwnerImmutable
)

// Owner describes an object's ownership.
type Owner struct {
	Kind    OwnerKind
	Address Address // set when Kind == OwnerAddress
}

// ObjectInfo is the live state of an object: its canonical id, owner, and
// concrete type. Read-only ground truth for validation.
type ObjectInfo struct {
	ID    string
	Owner Owner
	Type  TypeTag
}

// ExposedFunction describes one callable function of a normalized module.
type ExposedFunction struct {
	Visibility string
	Parameters []string
}

// NormalizedModule describes a module's callable surface.
type NormalizedModule struct {
	Name      string
	Functions map[string]ExposedFunction
}

// RawReturn is one undecoded return value from an inspect-only execution.
type RawReturn struct {
	Bytes []byte
	Type  string
}

// SimulationResult is the outcome of an inspect-only execution. Nothing is
// committed; Changes describe what would have happened.
type SimulationResult struct {
	Success bool
	Error   string
	GasUsed uint64
	Returns []RawReturn
	Changes []ObjectChange
}

// ObjectChange summarizes one object-level effect of an execution.
type ObjectChange struct {
	Kind       string // created, mutated, deleted, transferred
	ObjectID   string
	ObjectType string
	Owner      string
}

// Event is one event emitted by a committed transaction. Data is kept as raw
// JSON; event payload shapes are contract-defined and not interpreted here.
type Event struct {
	Type string
	Data json.RawMessage
}

// TransactionResult is the authoritative record of a committed transaction.
type TransactionResult struct {
	Digest  string
	GasUsed uint64
	Changes []ObjectChange
	Events  []Event
}

// ChainClient is the read/simulate surface of the chain consumed by
// validation and execution. GetObject returns an ObjectNotFoundError for
// dead ids; transport-level problems surface as NetworkFailureError.
type ChainClient interface {
	GetObject(ctx context.Context, id string) (*ObjectInfo, error)
	GetNormalizedModule(ctx context.Context, pkg Address, module string) (*NormalizedModule, error)
	Simulate(ctx context.Context, script *BuiltScript, sender Address) (*SimulationResult, error)
	GetTransaction(ctx context.Context, digest string) (*TransactionResult, error)
}

// RPCClient implements ChainClient over a JSON-RPC endpoint.
type RPCClient struct {
	c *rpc.Client
}

// DialChain connects a client to the given JSON-RPC URL.
func DialChain(ctx context.Context, url string) (*RPCClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, &NetworkFailureError{Op: "dial", Err: err}
	}
	return NewRPCClient(c), nil
}

// NewRPCClient wraps an existing rpc.Client.
func NewRPCClient(c *rpc.Client) *RPCClient {
	return &RPCClient{c: c}
}

// Close closes the underlying RPC connection.
func (c *RPCClient) Close() {
	c.c.Close()
}

type rpcObjectData struct {
	ObjectID string          `json:"objectId"`
	Type     string          `json:"type"`
	Owner    json.RawMessage `json:"owner"`
}

type rpcObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

type rpcObject struct {
	Data  *rpcObjectData  `json:"data"`
	Error *rpcObjectError `json:"error"`
}

// GetObject fetches an object's live owner and type.
func (c *RPCClient) GetObject(ctx context.Context, id string) (*ObjectInfo, error) {
	canonical, err := NormalizeAddress(id)
	if err != nil {
		return nil, err
	}

	var raw rpcObject
	err = c.c.CallContext(ctx, &raw, "sui_getObject", canonical,
		map[string]bool{"showType": true, "showOwner": true})
	if err != nil {
		return nil, &NetworkFailureError{Op: "getObject", Err: err}
	}

	if raw.Error != nil || raw.Data == nil {
		return nil, &ObjectNotFoundError{ID: canonical}
	}

	owner, err := parseOwner(raw.Data.Owner)
	if err != nil {
		return nil, &NetworkFailureError{Op: "getObject", Err: err}
	}

	return &ObjectInfo{
		ID:    canonical,
		Owner: owner,
		Type:  ParseTypeTag(raw.Data.Type),
	}, nil
}

// parseOwner decodes the wire owner shape: the string "Immutable", or an
// object keyed by AddressOwner / ObjectOwner / Shared.
func parseOwner(raw json.RawMessage) (Owner, error) {
	if len(raw) == 0 {
		return Owner{Kind: OwnerImmutable}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "Immutable" {
			return Owner{Kind: OwnerImmutable}, nil
		}
		return Owner{}, fmt.Errorf("unknown owner %q", s)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Owner{}, err
	}

	if addrRaw, ok := obj["AddressOwner"]; ok {
		var addr string
		if err := json.Unmarshal(addrRaw, &addr); err != nil {
			return Owner{}, err
		}
		a, err := ParseAddress(addr)
		if err != nil {
			return Owner{}, err
		}
		return Owner{Kind: OwnerAddress, Address: a}, nil
	}
	if addrRaw, ok := obj["ObjectOwner"]; ok {
		var addr string
		if err := json.Unmarshal(addrRaw, &addr); err != nil {
			return Owner{}, err
		}
		a, err := ParseAddress(addr)
		if err != nil {
			return Owner{}, err
		}
		return Owner{Kind: OwnerAddress, Address: a}, nil
	}
	if _, ok := obj["Shared"]; ok {
		return Owner{Kind: OwnerShared}, nil
	}

	return Owner{}, fmt.Errorf("unknown owner shape %s", string(raw))
}

type rpcExposedFunction struct {
	Visibility string   `json:"visibility"`
	Parameters []string `json:"parameters"`
}

type rpcNormalizedModule struct {
	Name             string                        `json:"name"`
	ExposedFunctions map[string]rpcExposedFunction `json:"exposedFunctions"`
}

// GetNormalizedModule fetches the callable surface of package::module.
func (c *RPCClient) GetNormalizedModule(ctx context.Context, pkg Address, module string) (*NormalizedModule, error) {
	var raw rpcNormalizedModule
	err := c.c.CallContext(ctx, &raw, "sui_getNormalizedMoveModule", pkg.Hex(), module)
	if err != nil {
		return nil, &NetworkFailureError{Op: "getNormalizedModule", Err: err}
	}
	if raw.Name == "" && len(raw.ExposedFunctions) == 0 {
		return nil, ErrNotFound
	}

	fns := make(map[string]ExposedFunction, len(raw.ExposedFunctions))
	for name, fn := range raw.ExposedFunctions {
		fns[name] = ExposedFunction{Visibility: fn.Visibility, Parameters: fn.Parameters}
	}
	return &NormalizedModule{Name: raw.Name, Functions: fns}, nil
}

type rpcReturnValue struct {
	Bytes hexutil.Bytes `json:"bytes"`
	Type  string        `json:"type"`
}

type rpcSimulation struct {
	Status        string            `json:"status"`
	Error         string            `json:"error"`
	GasUsed       uint64            `json:"gasUsed"`
	ReturnValues  []rpcReturnValue  `json:"returnValues"`
	ObjectChanges []rpcObjectChange `json:"objectChanges"`
}

type rpcObjectChange struct {
	Type       string `json:"type"`
	ObjectID   string `json:"objectId"`
	ObjectType string `json:"objectType"`
	Owner      string `json:"owner"`
}

// Simulate runs the script in inspect-only mode. Chain state is never
// mutated regardless of what the script does.
func (c *RPCClient) Simulate(ctx context.Context, script *BuiltScript, sender Address) (*SimulationResult, error) {
	if sender.IsZero() {
		return nil, ErrMissingSender
	}

	var raw rpcSimulation
	err := c.c.CallContext(ctx, &raw, "sui_devInspectTransactionBlock",
		sender.Hex(), script.toRPC())
	if err != nil {
		return nil, &NetworkFailureError{Op: "simulate", Err: err}
	}

	out := &SimulationResult{
		Success: raw.Status == "success",
		Error:   raw.Error,
		GasUsed: raw.GasUsed,
	}
	for _, rv := range raw.ReturnValues {
		out.Returns = append(out.Returns, RawReturn{Bytes: rv.Bytes, Type: rv.Type})
	}
	out.Changes = convertChanges(raw.ObjectChanges)
	return out, nil
}

type rpcEvent struct {
	Type       string          `json:"type"`
	ParsedJSON json.RawMessage `json:"parsedJson"`
}

type rpcTransaction struct {
	Digest        string            `json:"digest"`
	ObjectChanges []rpcObjectChange `json:"objectChanges"`
	Events        []rpcEvent        `json:"events"`
	Effects       struct {
		GasUsed uint64 `json:"gasUsed"`
	} `json:"effects"`
}

// GetTransaction fetches the authoritative record of a committed transaction.
func (c *RPCClient) GetTransaction(ctx context.Context, digest string) (*TransactionResult, error) {
	var raw rpcTransaction
	err := c.c.CallContext(ctx, &raw, "sui_getTransactionBlock", digest,
		map[string]bool{"showObjectChanges": true, "showEffects": true, "showEvents": true})
	if err != nil {
		return nil, &NetworkFailureError{Op: "getTransaction", Err: err}
	}
	if raw.Digest == "" {
		return nil, ErrNotFound
	}

	out := &TransactionResult{
		Digest:  raw.Digest,
		GasUsed: raw.Effects.GasUsed,
		Changes: convertChanges(raw.ObjectChanges),
	}
	for _, ev := range raw.Events {
		out.Events = append(out.Events, Event{Type: ev.Type, Data: ev.ParsedJSON})
	}
	return out, nil
}

func convertChanges(raw []rpcObjectChange) []ObjectChange {
	if len(raw) == 0 {
		return nil
	}
	out := make([]ObjectChange, len(raw))
	for i, ch := range raw {
		out[i] = ObjectChange{
			Kind:       ch.Type,
			ObjectID:   ch.ObjectID,
			ObjectType: ch.ObjectType,
			Owner:      ch.Owner,
		}
	}
	return out
}
