// Package ptb compiles ordered ledger commands into a single atomic
// transaction script and drives its execution against a Move-style chain.
//
// A script is assembled from a closed set of commands:
//   - MoveCall: invoke an exposed function of an on-chain package
//   - TransferObjects: send objects to one recipient
//   - SplitCoins: split a coin into several amounts
//   - MergeCoins: merge coins into one destination
//
// Commands may consume the outputs of earlier commands by index, so a whole
// multi-step workflow (split a coin, call a contract with one piece, transfer
// the result) executes as one transaction.
//
// # Basic Usage
//
// Build a command list, construct a Controller with a chain client, and
// either preview or submit:
//
//	client, err := ptb.DialChain(ctx, rpcURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl := ptb.NewController(client, ptb.WithNetwork("testnet"))
//
//	split := ptb.NewSplitCoins(ptb.Gas(), ptb.Lit("1000000000", "u64"))
//	send := ptb.NewTransferObjects(
//	    []ptb.Argument{ptb.NestedResultOf(0, 0)},
//	    ptb.Lit(recipient, "address"),
//	)
//
//	outcome, err := ctrl.CompileAndPreview(ctx, []*ptb.Command{split, send}, nil)
//
// # Compilation Pipeline
//
// Compilation runs in fixed stages, cheapest first:
//
//  1. Resolve: every argument slot becomes an encoded literal, the gas
//     placeholder, a canonical object id, or a back-reference to an earlier
//     command's result. Forward references fail.
//  2. Validate: every object id is fetched from live chain state and checked
//     for existence and type compatibility. A stale package id can be
//     repaired automatically when a compatible redeployment is found.
//  3. Build: commands fold, in order, into one BuiltScript with deduplicated
//     inputs, a sender, and a gas budget.
//
// # Execution
//
// The Controller exposes two entry points. CompileAndPreview simulates the
// script without committing anything. CompileAndSubmit hands the script to a
// Signer; when the signer holds its key locally the controller first probes
// the script with an inspect-only call, and a probe that yields decoded
// return values short-circuits into a read-probe outcome with no submission.
//
// Outcomes are a tagged union of three shapes: read-probe (decoded values,
// nothing committed), submission (transaction digest plus object changes),
// and failure (classified cause).
package ptb
