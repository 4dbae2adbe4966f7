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

package main

import (
	"context"
	"flag"
	"fmt"

	"message-ledger-go/internal/common"
	"message-ledger-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	policyFlag := flag.String("policy", "", "Path to a YAML policy file (optional)")
	flag.Parse()

	logger.Info("Starting ledger setup")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if *policyFlag != "" {
		if err := common.LoadPolicy(*policyFlag, &cfg.Ledger); err != nil {
			logger.Fatal("Failed to load policy file", zap.Error(err))
		}
		logger.Info("Policy file applied", zap.String("file", *policyFlag))
	}

	logger.Info("Initializing database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	common.PrintHeader("LEDGER SETUP", common.DefaultWidth)
	fmt.Printf("Database:        %s\n", cfg.Database.Path)
	fmt.Printf("Owner:           %s\n", cfg.Ledger.Owner)
	fmt.Printf("Ledger account:  %s\n", services.Ledger.LedgerAccount())
	fmt.Printf("Message fee:     %s\n", cfg.Ledger.MessageFee.String())
	fmt.Printf("Minimum deposit: %s\n", cfg.Ledger.MinimumDeposit.String())
	fmt.Printf("Rate limit:      %d per %s\n", cfg.Ledger.MaxPerWindow, cfg.Ledger.WindowDuration)
	common.PrintFooter("Setup complete: schema created, ledger spender authorized", common.DefaultWidth)

	logger.Info("Ledger setup completed")
}
