/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	windowDuration, err := getEnvDuration("RATE_WINDOW", time.Hour)
	if err != nil {
		return nil, err
	}

	reconcileInterval, err := getEnvDuration("RECONCILE_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	messageFee, err := getEnvDecimal("MESSAGE_FEE", "0.001")
	if err != nil {
		return nil, err
	}

	minimumDeposit, err := getEnvDecimal("MINIMUM_DEPOSIT", "0.01")
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "ledger.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Ledger: models.LedgerConfig{
			Owner:              models.Account(getEnvString("LEDGER_OWNER", "owner")),
			LedgerAccount:      models.Account(getEnvString("LEDGER_ACCOUNT", "message-ledger")),
			MessageFee:         messageFee,
			MinimumDeposit:     minimumDeposit,
			MaxPointerLen:      getEnvInt("MAX_POINTER_LEN", 200),
			ValidatePointerCID: getEnvBool("VALIDATE_POINTER_CID", false),
			WindowDuration:     windowDuration,
			MaxPerWindow:       getEnvInt("RATE_MAX_PER_WINDOW", 100),
			EscrowSigners:      getEnvAccounts("ESCROW_SIGNERS"),
			EscrowThreshold:    getEnvInt("ESCROW_THRESHOLD", 1),
		},
		Reconciler: models.ReconcilerConfig{
			Interval: reconcileInterval,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnvString(key, defaultValue)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, raw, err)
	}
	return d, nil
}

func getEnvAccounts(key string) []models.Account {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var accounts []models.Account
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			accounts = append(accounts, models.Account(part))
		}
	}
	return accounts
}
