package ptb

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
)

// RepairPolicy controls what happens when an object argument's declared
// struct type matches the live object's module and name but names a
// different package address (a stale package id after redeploy).
type RepairPolicy uint8

const (
	// RepairWarn attempts the rewrite, logs it, and reports it to the
	// caller in the Validation result. This is the default.
	RepairWarn RepairPolicy = iota

	// RepairOff turns every repairable mismatch into a TypeMismatchError.
	RepairOff
)

// Repair records one automatic target rewrite applied during validation.
type Repair struct {
	CommandIndex int
	OldPackage   Address
	NewPackage   Address
	Target       string // the rewritten target, canonical form
}

// Validation is the validator's output: the live state of every object
// argument plus any target repairs applied to the command list.
type Validation struct {
	// Objects maps canonical object ids to their live state.
	Objects map[string]*ObjectInfo

	// Repairs lists automatic target rewrites, in command order.
	Repairs []Repair
}

// validator checks every object-typed argument against live chain state.
type validator struct {
	client ChainClient
	policy RepairPolicy
	logger log.Logger
}

// validate fetches the live (owner, type) of every distinct object argument
// and checks declared types against it. Cheap checks run first: malformed
// recipient addresses fail before any network call. Object fetches run
// concurrently; everything joins before the type-compatibility pass, which
// runs sequentially because it may rewrite command targets.
//
// Commands whose declared parameter type names the live object's module and
// struct under a different package address are repaired by retargeting the
// call at the live package, provided that package exposes a function of the
// same module/name shape. Repairs are applied in place and reported.
func (v *validator) validate(ctx context.Context, commands []*Command, res *Resolution) (*Validation, error) {
	if err := precheckRecipients(commands); err != nil {
		return nil, err
	}

	objects, err := v.fetchObjects(ctx, res.ObjectIDs)
	if err != nil {
		return nil, err
	}

	out := &Validation{Objects: objects}

	for i, cmd := range commands {
		rc := res.Commands[i]
		for _, slot := range objectSlots(rc) {
			info := objects[slot.ObjectID]
			if info == nil {
				return nil, &ObjectNotFoundError{ID: slot.ObjectID}
			}
			if err := v.checkCompatibility(ctx, i, cmd, slot, info, out); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// precheckRecipients validates transfer recipients before any network call.
func precheckRecipients(commands []*Command) error {
	for _, cmd := range commands {
		if cmd.kind != CommandTransferObjects {
			continue
		}
		if lit, ok := cmd.recipient.(Literal); ok {
			if _, err := ParseAddress(lit.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetchObjects loads every distinct object id concurrently and joins before
// returning. One fetch per id; a single failure aborts the whole batch.
func (v *validator) fetchObjects(ctx context.Context, ids []string) (map[string]*ObjectInfo, error) {
	infos := make([]*ObjectInfo, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			info, err := v.client.GetObject(gctx, id)
			if err != nil {
				return err
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	objects := make(map[string]*ObjectInfo, len(ids))
	for i, id := range ids {
		objects[id] = infos[i]
	}
	return objects, nil
}

// objectSlots collects the resolved object arguments of one command.
func objectSlots(rc ResolvedCommand) []ResolvedArg {
	var out []ResolvedArg
	collect := func(args ...ResolvedArg) {
		for _, a := range args {
			if a.Kind == ResolvedObject {
				out = append(out, a)
			}
		}
	}
	collect(rc.Args...)
	collect(rc.Objects...)
	collect(rc.Recipient, rc.Coin, rc.Destination)
	collect(rc.Amounts...)
	collect(rc.Sources...)
	return out
}

// checkCompatibility compares a slot's declared struct type with the live
// object's type, attempting a target repair for stale package addresses.
func (v *validator) checkCompatibility(ctx context.Context, idx int, cmd *Command, slot ResolvedArg, info *ObjectInfo, out *Validation) error {
	if slot.Type.Kind != TypeStruct {
		return nil
	}
	live := info.Type
	if live.Kind != TypeStruct {
		return nil
	}

	mismatch := &TypeMismatchError{
		CommandIndex: idx,
		Declared:     slot.Type.String(),
		Live:         live.String(),
	}

	// Different module or struct name: no repair attempted.
	if !slot.Type.SameStruct(live) {
		return mismatch
	}
	if slot.Type.Struct.Package == live.Struct.Package {
		return nil
	}

	// Same module and struct, different package: stale package id. Only
	// call targets can be retargeted.
	if cmd.kind != CommandMoveCall || v.policy == RepairOff {
		return mismatch
	}

	livePkg := live.Struct.Package
	mod, err := v.client.GetNormalizedModule(ctx, livePkg, cmd.target.Module)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			mismatch.RepairAttempted = true
			return mismatch
		}
		return err
	}
	if _, ok := mod.Functions[cmd.target.Function]; !ok {
		mismatch.RepairAttempted = true
		return mismatch
	}

	oldPkg := cmd.target.Package
	cmd.target.Package = livePkg
	out.Repairs = append(out.Repairs, Repair{
		CommandIndex: idx,
		OldPackage:   oldPkg,
		NewPackage:   livePkg,
		Target:       cmd.target.String(),
	})
	v.logger.Warn("retargeted command at live package",
		"command", idx, "old", oldPkg.Hex(), "new", livePkg.Hex(),
		"target", cmd.target.String())

	return nil
}
