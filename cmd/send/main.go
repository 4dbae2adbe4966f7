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
	"os"

	"message-ledger-go/internal/api"
	"message-ledger-go/internal/common"
	"message-ledger-go/internal/config"
	"message-ledger-go/internal/content"
	"message-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	senderFlag := flag.String("sender", "", "Sender account")
	receiverFlag := flag.String("receiver", "", "Receiver account")
	fileFlag := flag.String("file", "", "Content file: its CID becomes the content pointer")
	pointerFlag := flag.String("pointer", "", "Content pointer to record (alternative to -file)")
	depositFlag := flag.String("deposit", "", "Deposit this amount to the sender first (optional)")
	flag.Parse()

	if *senderFlag == "" || *receiverFlag == "" {
		logger.Fatal("Both -sender and -receiver are required")
	}
	if (*fileFlag == "") == (*pointerFlag == "") {
		logger.Fatal("Exactly one of -file or -pointer is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	pointer := *pointerFlag
	if *fileFlag != "" {
		data, err := os.ReadFile(*fileFlag)
		if err != nil {
			logger.Fatal("Failed to read content file", zap.String("file", *fileFlag), zap.Error(err))
		}
		pointer, err = content.Build(data)
		if err != nil {
			logger.Fatal("Failed to build content pointer", zap.Error(err))
		}
		logger.Info("Using content pointer", zap.String("cid", pointer), zap.Int("bytes", len(data)))
	}

	svc := api.NewLedgerService(services.Ledger)
	sender := models.Account(*senderFlag)
	receiver := models.Account(*receiverFlag)

	if *depositFlag != "" {
		amount, err := decimal.NewFromString(*depositFlag)
		if err != nil {
			logger.Fatal("Invalid deposit amount", zap.String("amount", *depositFlag), zap.Error(err))
		}
		result := svc.Deposit(ctx, sender, amount)
		if !result.Success {
			logger.Fatal("Deposit failed", zap.String("error", result.Error))
		}
		fmt.Printf("Deposited %s, new balance %s\n", amount.String(), result.NewBalance.String())
	}

	result := svc.SendMessage(ctx, sender, receiver, pointer)
	if !result.Success {
		logger.Fatal("Send failed", zap.String("error", result.Error))
	}

	fmt.Printf("Message %d sent from %s to %s (fee %s)\n",
		result.MessageId, sender, receiver, result.FeePaid.String())
	fmt.Printf("Remaining balance: %s\n", svc.Balance(sender).String())
}
