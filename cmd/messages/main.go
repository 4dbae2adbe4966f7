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
	"message-ledger-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account to list messages for")
	sentFlag := flag.Bool("sent", false, "List sent messages instead of received")
	limitFlag := flag.Int("limit", 20, "Maximum messages to list")
	offsetFlag := flag.Int("offset", 0, "Messages to skip")
	flag.Parse()

	if *accountFlag == "" {
		logger.Fatal("-account is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	st, err := common.InitializeStoreOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	account := models.Account(*accountFlag)
	messages, err := st.MessageHistory(ctx, account, *sentFlag, *limitFlag, *offsetFlag)
	if err != nil {
		logger.Fatal("Failed to get message history", zap.Error(err))
	}

	direction := "RECEIVED BY"
	if *sentFlag {
		direction = "SENT BY"
	}
	common.PrintHeader(fmt.Sprintf("MESSAGES %s %s", direction, account), common.DefaultWidth)

	for i, msg := range messages {
		prefix := common.BoxPrefix(i == len(messages)-1)
		fmt.Printf("%s #%d  %s -> %s  fee=%s  %s\n",
			prefix, msg.Id, msg.Sender, msg.Receiver,
			msg.FeePaid.String(), msg.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("%s    pointer: %s\n", common.BoxPrefix(i == len(messages)-1), msg.ContentPointer)
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d messages", len(messages)), common.DefaultWidth)
}
