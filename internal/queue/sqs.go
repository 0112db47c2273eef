// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Message is one received queue message.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Queue is the message transport the worker reads jobs from and writes results to.
type Queue interface {
	Receive(ctx context.Context, queueURL string) ([]Message, error)
	Delete(ctx context.Context, queueURL, receiptHandle string) error
	Send(ctx context.Context, queueURL string, msg any) error
}

// SQS implements Queue on Amazon SQS.
type SQS struct {
	Client *sqs.Client

	// WaitSeconds is the long-poll wait (max 20).
	WaitSeconds int32

	// MaxMessages is the receive batch size (1-10).
	MaxMessages int32
}

// NewSQS loads AWS configuration from the environment and shared config files.
func NewSQS(ctx context.Context, waitSeconds, maxMessages int32) (*SQS, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &SQS{Client: sqs.NewFromConfig(cfg), WaitSeconds: waitSeconds, MaxMessages: maxMessages}, nil
}

// Receive implements Queue.
func (s *SQS) Receive(ctx context.Context, queueURL string) ([]Message, error) {
	maxMessages := s.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 1
	}
	out, err := s.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: min(maxMessages, 10),
		WaitTimeSeconds:     min(max(s.WaitSeconds, 0), 20),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}
	return convert(out.Messages), nil
}

func convert(in []sqstypes.Message) []Message {
	msgs := make([]Message, 0, len(in))
	for _, m := range in {
		msgs = append(msgs, Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs
}

// Delete implements Queue.
func (s *SQS) Delete(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := s.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Send implements Queue. msg is encoded as JSON.
func (s *SQS) Send(ctx context.Context, queueURL string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", queueURL, err)
	}
	return nil
}
