package database

import (
	"context"
	"database/sql"
	"fmt"

	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordMessage appends a message record. Ids are assigned upstream by the
// ledger and never reused.
func (s *Service) RecordMessage(ctx context.Context, msg models.Message) error {
	var existing uint64
	err := s.db.QueryRowContext(ctx, queryCheckDuplicateMessage, msg.Id).Scan(&existing)
	if err == nil {
		zap.L().Warn("Duplicate message id detected, skipping",
			zap.Uint64("message_id", msg.Id))
		return fmt.Errorf("%w: message %d", store.ErrDuplicateRecord, msg.Id)
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate message: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryInsertMessage,
		msg.Id, string(msg.Sender), string(msg.Receiver),
		msg.ContentPointer, msg.FeePaid.String(), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessage returns a single message record by id.
func (s *Service) GetMessage(ctx context.Context, id uint64) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, queryGetMessage, id)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: message %d", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// MessageHistory returns the account's sent or received messages, newest
// first.
func (s *Service) MessageHistory(ctx context.Context, account models.Account, sent bool, limit, offset int) ([]models.Message, error) {
	query := queryMessagesByReceiver
	if sent {
		query = queryMessagesBySender
	}

	rows, err := s.db.QueryContext(ctx, query, string(account), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get message history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// MessagesAfter scans records with id greater than afterId in id order.
func (s *Service) MessagesAfter(ctx context.Context, afterId uint64, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, queryMessagesAfter, afterId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan messages: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var msg models.Message
	var sender, receiver, feeStr string
	if err := row.Scan(&msg.Id, &sender, &receiver, &msg.ContentPointer, &feeStr, &msg.CreatedAt); err != nil {
		return nil, err
	}
	msg.Sender = models.Account(sender)
	msg.Receiver = models.Account(receiver)

	fee, err := decimal.NewFromString(feeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fee '%s': %w", feeStr, err)
	}
	msg.FeePaid = fee
	return &msg, nil
}
