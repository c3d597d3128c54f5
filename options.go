package ptb

import (
	"github.com/ethereum/go-ethereum/log"
)

// Option configures a Controller.
type Option func(*controllerConfig)

// controllerConfig holds construction-time state for a Controller. The
// network segment and budgets are explicit here so that two controllers
// against different networks run without interference.
type controllerConfig struct {
	network          string
	gasBudget        uint64
	previewGasBudget uint64
	repairPolicy     RepairPolicy
	logger           log.Logger
	history          HistoryStore
}

// Default gas budgets, in base units.
const (
	// DefaultGasBudget is the cost ceiling attached to submitted scripts.
	DefaultGasBudget uint64 = 50_000_000

	// DefaultPreviewGasBudget is the fixed budget attached to inspect-only
	// simulations, generous enough that previews never fail on gas.
	DefaultPreviewGasBudget uint64 = 10_000_000_000
)

func defaultControllerConfig() *controllerConfig {
	return &controllerConfig{
		network:          "testnet",
		gasBudget:        DefaultGasBudget,
		previewGasBudget: DefaultPreviewGasBudget,
		repairPolicy:     RepairWarn,
		logger:           log.Root(),
	}
}

// WithNetwork sets the network segment name recorded in history entries.
func WithNetwork(network string) Option {
	return func(c *controllerConfig) {
		c.network = network
	}
}

// WithGasBudget sets the cost ceiling attached to submitted scripts.
func WithGasBudget(budget uint64) Option {
	return func(c *controllerConfig) {
		c.gasBudget = budget
	}
}

// WithPreviewGasBudget sets the fixed budget used for inspect-only
// simulations.
func WithPreviewGasBudget(budget uint64) Option {
	return func(c *controllerConfig) {
		c.previewGasBudget = budget
	}
}

// WithRepairPolicy controls automatic retargeting of stale package ids.
// Default is RepairWarn.
func WithRepairPolicy(policy RepairPolicy) Option {
	return func(c *controllerConfig) {
		c.repairPolicy = policy
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(c *controllerConfig) {
		c.logger = logger
	}
}

// WithHistory attaches a history store. Recording failures are logged and
// otherwise ignored.
func WithHistory(store HistoryStore) Option {
	return func(c *controllerConfig) {
		c.history = store
	}
}
