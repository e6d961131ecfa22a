package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Operation names accepted in scenario steps.
const (
	OpMint         = "mint"
	OpTransfer     = "transfer"
	OpSubmit       = "submit"
	OpVote         = "vote"
	OpUpdateStatus = "updateStatus"
)

// Scenario is a named list of cases. Every case starts from empty registries.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

type Case struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one registry call. Only the fields relevant to Op are read.
type Step struct {
	Op string `yaml:"op"`
	ID int64  `yaml:"id"`

	// mint
	Name             string `yaml:"name"`
	VisualizationURL string `yaml:"visualizationUrl"`
	// submit
	Title string `yaml:"title"`
	// mint, submit
	Description string `yaml:"description"`
	Dimensions  int    `yaml:"dimensions"`
	Creator     string `yaml:"creator"`
	// transfer
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient"`
	// vote
	Value int    `yaml:"value"`
	Voter string `yaml:"voter"`
	// updateStatus
	Status  string `yaml:"status"`
	Updater string `yaml:"updater"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks made after a step. Unset fields are not checked.
type Expect struct {
	ID *int64 `yaml:"id"`
	OK *bool  `yaml:"ok"`
	// Error is matched case-insensitively as a substring of the returned
	// error message.
	Error  string  `yaml:"error"`
	Owner  *string `yaml:"owner"`
	Tally  *int64  `yaml:"tally"`
	Status *string `yaml:"status"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario. Unknown keys are rejected.
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(sc); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

func validateScenario(sc Scenario) error {
	if len(sc.Cases) == 0 {
		return ErrEmptyScenario
	}
	for i, c := range sc.Cases {
		for j, step := range c.Steps {
			switch step.Op {
			case OpMint, OpTransfer, OpSubmit, OpVote, OpUpdateStatus:
			default:
				return fmt.Errorf("case %d (%s) step %d: %w: %q", i+1, c.Name, j+1, ErrUnknownOp, step.Op)
			}
		}
	}
	return nil
}
