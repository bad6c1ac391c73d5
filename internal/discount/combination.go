package discount

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	ReasonCombinable      = "Discount codes can be successfully combined"
	ReasonInvalidPair     = "One or both discount codes are invalid"
	ReasonSameCode        = "Cannot use the same discount code multiple times"
	reasonIncompatibleFmt = "%s and %s discounts cannot be combined based on their combination settings"
)

//go:embed combination_rules.yaml
var defaultRulePack []byte

// RulePack is the stacking table loaded from YAML.
type RulePack struct {
	Version string            `yaml:"version"`
	Rules   []CombinationRule `yaml:"rules"`
}

// CombinationRule is one cell of the stacking table.
type CombinationRule struct {
	First  Kind           `yaml:"first"`
	Second Kind           `yaml:"second"`
	Logic  map[string]any `yaml:"logic"`
}

// DefaultRulePack returns the built-in stacking table.
func DefaultRulePack() (*RulePack, error) {
	return ParseRulePack(defaultRulePack)
}

// LoadRulePack reads a stacking table from a YAML file.
func LoadRulePack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule pack %s: %w", path, err)
	}
	return ParseRulePack(data)
}

// ParseRulePack decodes a stacking table from YAML.
func ParseRulePack(data []byte) (*RulePack, error) {
	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse rule pack: %w", err)
	}
	return &pack, nil
}

// CombinationDetails records the flags that were inspected for a pair.
type CombinationDetails struct {
	FirstCombinesWith  CombinesWith `json:"firstCombinesWith"`
	SecondCombinesWith CombinesWith `json:"secondCombinesWith"`
}

// CombinationResult is the stacking verdict for an ordered pair of codes.
type CombinationResult struct {
	FirstCode  string              `json:"firstCode"`
	SecondCode string              `json:"secondCode"`
	CanCombine bool                `json:"canCombine"`
	Reason     string              `json:"reason"`
	Details    *CombinationDetails `json:"details,omitempty"`
}

type kindPair struct {
	first, second Kind
}

// Combiner evaluates the stacking table for pairs of validated codes.
type Combiner struct {
	rules  map[kindPair][]byte
	logger zerolog.Logger
}

// NewCombiner compiles a rule pack. Every rule is dry-run once so that a
// malformed expression fails at startup rather than per request.
func NewCombiner(pack *RulePack, logger zerolog.Logger) (*Combiner, error) {
	if pack == nil {
		return nil, fmt.Errorf("rule pack is nil")
	}

	logger = logger.With().Str("component", "discount-combiner").Logger()

	c := &Combiner{
		rules:  make(map[kindPair][]byte, len(pack.Rules)),
		logger: logger,
	}

	for i, rule := range pack.Rules {
		if !rule.First.Valid() || !rule.Second.Valid() {
			return nil, fmt.Errorf("rule %d: unknown discount kind pair (%q, %q)", i, rule.First, rule.Second)
		}

		key := kindPair{rule.First, rule.Second}
		if _, dup := c.rules[key]; dup {
			return nil, fmt.Errorf("rule %d: duplicate rule for (%s, %s)", i, rule.First, rule.Second)
		}

		compiled, err := json.Marshal(rule.Logic)
		if err != nil {
			return nil, fmt.Errorf("rule %d: failed to encode logic: %w", i, err)
		}

		if _, err := apply(compiled, CombinesWith{}, CombinesWith{}); err != nil {
			return nil, fmt.Errorf("rule %d (%s, %s): %w", i, rule.First, rule.Second, err)
		}

		c.rules[key] = compiled
	}

	logger.Info().
		Str("version", pack.Version).
		Int("rules", len(c.rules)).
		Msg("combination rules loaded")

	return c, nil
}

// Evaluate decides whether a and b may be applied together. The lookup is
// keyed by (a.Type, b.Type) in that order.
func (c *Combiner) Evaluate(a, b ValidationResult) CombinationResult {
	result := CombinationResult{
		FirstCode:  a.Code,
		SecondCode: b.Code,
	}

	if !a.Valid || !b.Valid {
		result.Reason = ReasonInvalidPair
		return result
	}

	if strings.EqualFold(a.Code, b.Code) {
		result.Reason = ReasonSameCode
		return result
	}

	result.Details = &CombinationDetails{
		FirstCombinesWith:  a.CombinesWith,
		SecondCombinesWith: b.CombinesWith,
	}

	canCombine := false
	if logic, ok := c.rules[kindPair{a.Type, b.Type}]; ok {
		var err error
		canCombine, err = apply(logic, a.CombinesWith, b.CombinesWith)
		if err != nil {
			c.logger.Error().
				Err(err).
				Str("first", string(a.Type)).
				Str("second", string(b.Type)).
				Msg("failed to evaluate combination rule")
			canCombine = false
		}
	}

	if !canCombine {
		result.Reason = fmt.Sprintf(reasonIncompatibleFmt, a.Type, b.Type)
		return result
	}

	result.CanCombine = true
	result.Reason = ReasonCombinable
	return result
}

func apply(logic []byte, first, second CombinesWith) (bool, error) {
	data, err := json.Marshal(map[string]CombinesWith{
		"first":  first,
		"second": second,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode rule data: %w", err)
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(logic), bytes.NewReader(data), &out); err != nil {
		return false, fmt.Errorf("failed to apply rule: %w", err)
	}

	var verdict any
	if err := json.Unmarshal(out.Bytes(), &verdict); err != nil {
		return false, fmt.Errorf("failed to decode rule result: %w", err)
	}

	b, ok := verdict.(bool)
	return ok && b, nil
}
