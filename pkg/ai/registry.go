package ai

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Builds a strategy from the parsed configuration parameters
type Factory func(params map[string]string, r *rand.Rand) (Strategy, error)

var (
	// Registered strategy constructors, by name
	keywordToFactory = map[string]Factory{
		"random":    newRandomFromParams,
		"minimax":   newMinimaxFromParams,
		"alphabeta": newAlphaBetaFromParams,
	}

	// Used if no configuration was given
	DefaultConfig = "alphabeta:maxDepth=3"
)

// Register a strategy constructor, so it can be created with New
func Register(name string, factory Factory) {
	keywordToFactory[name] = factory
}

// Names of all registered strategies, sorted
func Registered() []string {
	names := make([]string, 0, len(keywordToFactory))
	for name := range keywordToFactory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a strategy given the configuration string.
//
// The config is the strategy name followed by a colon (":") and a comma-separated
// list of parameters with optional values, e.g. "minimax:maxDepth=3" or
// "alphabeta:maxDepth=4,ordering=false". If empty, DefaultConfig is used.
// The generator is only used by randomized strategies, nil seeds a new one.
func New(config string, r *rand.Rand) (Strategy, error) {
	if config == "" {
		config = DefaultConfig
	}

	name, params := config, ""
	if split := strings.Index(config, ":"); split != -1 {
		name, params = config[:split], config[split+1:]
	}
	factory, ok := keywordToFactory[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unknown strategy %q", name)
	}

	strategy, err := factory(splitConfigString(params), r)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create strategy %q", name)
	}
	return strategy, nil
}

// Split the config string into a map of keys to values, all strings
func splitConfigString(config string) map[string]string {
	params := make(map[string]string)
	if config == "" {
		return params
	}
	for _, part := range strings.Split(config, ",") {
		subParts := strings.SplitN(part, "=", 2)
		if len(subParts) == 1 {
			params[subParts[0]] = ""
		} else {
			params[subParts[0]] = subParts[1]
		}
	}
	return params
}

// PopParamOr parses the parameter, if present, and removes it from the map.
// For bool types, a key without a value is interpreted as true.
func PopParamOr[T interface{ bool | int }](params map[string]string, key string, defaultValue T) (T, error) {
	value, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	delete(params, key)

	var result any
	switch any(defaultValue).(type) {
	case int:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue, errors.Wrapf(ErrInvalidConfiguration, "failed to parse %s=%q to int", key, value)
		}
		result = parsed
	case bool:
		switch strings.ToLower(value) {
		case "", "true", "1":
			result = true
		case "false", "0":
			result = false
		default:
			return defaultValue, errors.Wrapf(ErrInvalidConfiguration, "failed to parse %s=%q to bool", key, value)
		}
	}
	return result.(T), nil
}

// Leftover parameters are not recognized by the strategy
func checkUnused(params map[string]string) error {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return errors.Wrapf(ErrInvalidConfiguration, "unknown parameters %v", keys)
}

// Depth limit shared by the searching strategies
func limitsFromParams(params map[string]string) (*Limits, error) {
	limits := DefaultLimits()
	depth, err := PopParamOr(params, "maxDepth", limits.Depth)
	if err != nil {
		return nil, err
	}
	return limits.SetDepth(depth), nil
}

func newRandomFromParams(params map[string]string, r *rand.Rand) (Strategy, error) {
	if err := checkUnused(params); err != nil {
		return nil, err
	}
	return NewRandomHeuristic(r), nil
}

func newMinimaxFromParams(params map[string]string, _ *rand.Rand) (Strategy, error) {
	limits, err := limitsFromParams(params)
	if err != nil {
		return nil, err
	}
	if err := checkUnused(params); err != nil {
		return nil, err
	}
	return NewMinimax(limits, nil)
}

func newAlphaBetaFromParams(params map[string]string, _ *rand.Rand) (Strategy, error) {
	limits, err := limitsFromParams(params)
	if err != nil {
		return nil, err
	}
	ordering, err := PopParamOr(params, "ordering", limits.Ordering)
	if err != nil {
		return nil, err
	}
	limits.SetOrdering(ordering)
	if err := checkUnused(params); err != nil {
		return nil, err
	}
	return NewAlphaBeta(limits, nil)
}
