package ptb

import (
	"context"
	"errors"
)

// fakeChainClient is an in-memory ChainClient that counts calls so tests can
// assert that cheap failures never reach the network.
type fakeChainClient struct {
	objects map[string]*ObjectInfo
	modules map[string]*NormalizedModule // key: pkgHex + "::" + module

	simResult *SimulationResult
	simErr    error
	tx        *TransactionResult
	txErr     error

	getObjectCalls int
	moduleCalls    int
	simulateCalls  int
	txCalls        int

	lastSimSender Address
	lastScript    *BuiltScript
}

func newFakeChainClient() *fakeChainClient {
	return &fakeChainClient{
		objects: make(map[string]*ObjectInfo),
		modules: make(map[string]*NormalizedModule),
	}
}

func (f *fakeChainClient) addObject(id, owner, objType string) string {
	canonical := MustParseAddress(id).Hex()
	info := &ObjectInfo{ID: canonical, Type: ParseTypeTag(objType)}
	switch owner {
	case "shared":
		info.Owner = Owner{Kind: OwnerShared}
	case "immutable":
		info.Owner = Owner{Kind: OwnerImmutable}
	default:
		info.Owner = Owner{Kind: OwnerAddress, Address: MustParseAddress(owner)}
	}
	f.objects[canonical] = info
	return canonical
}

func (f *fakeChainClient) addModule(pkg Address, module string, functions ...string) {
	fns := make(map[string]ExposedFunction, len(functions))
	for _, name := range functions {
		fns[name] = ExposedFunction{Visibility: "Public"}
	}
	f.modules[pkg.Hex()+"::"+module] = &NormalizedModule{Name: module, Functions: fns}
}

func (f *fakeChainClient) GetObject(_ context.Context, id string) (*ObjectInfo, error) {
	f.getObjectCalls++
	canonical, err := NormalizeAddress(id)
	if err != nil {
		return nil, err
	}
	info, ok := f.objects[canonical]
	if !ok {
		return nil, &ObjectNotFoundError{ID: canonical}
	}
	return info, nil
}

func (f *fakeChainClient) GetNormalizedModule(_ context.Context, pkg Address, module string) (*NormalizedModule, error) {
	f.moduleCalls++
	mod, ok := f.modules[pkg.Hex()+"::"+module]
	if !ok {
		return nil, ErrNotFound
	}
	return mod, nil
}

func (f *fakeChainClient) Simulate(_ context.Context, script *BuiltScript, sender Address) (*SimulationResult, error) {
	f.simulateCalls++
	f.lastSimSender = sender
	f.lastScript = script
	if f.simErr != nil {
		return nil, f.simErr
	}
	if f.simResult != nil {
		return f.simResult, nil
	}
	return &SimulationResult{Success: true}, nil
}

func (f *fakeChainClient) GetTransaction(_ context.Context, digest string) (*TransactionResult, error) {
	f.txCalls++
	if f.txErr != nil {
		return nil, f.txErr
	}
	if f.tx != nil && f.tx.Digest == digest {
		return f.tx, nil
	}
	return nil, ErrNotFound
}

// fakeSigner is an externally held key: it submits whatever it is handed.
type fakeSigner struct {
	result *SubmitResult
	err    error

	calls      int
	lastScript *BuiltScript
}

func (f *fakeSigner) SignAndSubmit(_ context.Context, script *BuiltScript) (*SubmitResult, error) {
	f.calls++
	f.lastScript = script
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeLocalSigner holds its key locally, so the sender is known up front.
type fakeLocalSigner struct {
	fakeSigner
	addr Address
}

func (f *fakeLocalSigner) Address() Address {
	return f.addr
}

// fakeHistory records entries, optionally failing every call.
type fakeHistory struct {
	entries []HistoryEntry
	fail    bool
}

func (f *fakeHistory) Record(entry HistoryEntry) error {
	if f.fail {
		return errors.New("history store down")
	}
	f.entries = append(f.entries, entry)
	return nil
}
