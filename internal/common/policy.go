package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// PolicyFile is the optional YAML form of the ledger policy. Values set in
// the file override the environment-derived config.
type PolicyFile struct {
	MessageFee         string   `yaml:"message_fee"`
	MinimumDeposit     string   `yaml:"minimum_deposit"`
	MaxPerWindow       int      `yaml:"max_per_window"`
	Window             string   `yaml:"window"`
	MaxPointerLength   int      `yaml:"max_pointer_length"`
	ValidatePointerCID bool     `yaml:"validate_pointer_cid"`
	EscrowSigners      []string `yaml:"escrow_signers"`
	EscrowThreshold    int      `yaml:"escrow_threshold"`
}

// LoadPolicy reads a YAML policy file and applies it over cfg.
func LoadPolicy(policyFile string, cfg *models.LedgerConfig) error {
	var policyPath string
	if filepath.IsAbs(policyFile) {
		policyPath = policyFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		policyPath = filepath.Join(wd, policyFile)
	}

	data, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", policyFile, err)
	}

	var policy PolicyFile
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return fmt.Errorf("unable to parse %s: %w", policyFile, err)
	}

	if policy.MessageFee != "" {
		fee, err := decimal.NewFromString(policy.MessageFee)
		if err != nil {
			return fmt.Errorf("invalid message_fee %q: %w", policy.MessageFee, err)
		}
		cfg.MessageFee = fee
	}
	if policy.MinimumDeposit != "" {
		min, err := decimal.NewFromString(policy.MinimumDeposit)
		if err != nil {
			return fmt.Errorf("invalid minimum_deposit %q: %w", policy.MinimumDeposit, err)
		}
		cfg.MinimumDeposit = min
	}
	if policy.MaxPerWindow > 0 {
		cfg.MaxPerWindow = policy.MaxPerWindow
	}
	if policy.Window != "" {
		window, err := time.ParseDuration(policy.Window)
		if err != nil {
			return fmt.Errorf("invalid window %q: %w", policy.Window, err)
		}
		cfg.WindowDuration = window
	}
	if policy.MaxPointerLength > 0 {
		cfg.MaxPointerLen = policy.MaxPointerLength
	}
	if policy.ValidatePointerCID {
		cfg.ValidatePointerCID = true
	}
	if len(policy.EscrowSigners) > 0 {
		signers := make([]models.Account, 0, len(policy.EscrowSigners))
		for _, s := range policy.EscrowSigners {
			signers = append(signers, models.Account(s))
		}
		cfg.EscrowSigners = signers
	}
	if policy.EscrowThreshold > 0 {
		cfg.EscrowThreshold = policy.EscrowThreshold
	}
	return nil
}
