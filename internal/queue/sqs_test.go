// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSMiddleware short-circuits the request before it is signed or sent.
func mockSQSMiddleware(output any, err error) func(*middleware.Stack) error {
	return func(stack *middleware.Stack) error {
		return stack.Finalize.Add(
			middleware.FinalizeMiddlewareFunc("MockMiddleware", func(context.Context, middleware.FinalizeInput, middleware.FinalizeHandler) (middleware.FinalizeOutput, middleware.Metadata, error) {
				return middleware.FinalizeOutput{Result: output}, middleware.Metadata{}, err
			}),
			middleware.Before,
		)
	}
}

// captureInput records the operation input.
func captureInput(dst *any) func(*middleware.Stack) error {
	return func(stack *middleware.Stack) error {
		return stack.Initialize.Add(
			middleware.InitializeMiddlewareFunc("CaptureInput", func(ctx context.Context, in middleware.InitializeInput, next middleware.InitializeHandler) (middleware.InitializeOutput, middleware.Metadata, error) {
				*dst = in.Parameters
				return next.HandleInitialize(ctx, in)
			}),
			middleware.Before,
		)
	}
}

func mockClient(output any, err error, captured *any) *sqs.Client {
	return sqs.NewFromConfig(aws.Config{Region: "us-east-1"}, func(o *sqs.Options) {
		o.APIOptions = append(o.APIOptions, mockSQSMiddleware(output, err))
		if captured != nil {
			o.APIOptions = append(o.APIOptions, captureInput(captured))
		}
	})
}

func TestSQSReceive(t *testing.T) {
	output := &sqs.ReceiveMessageOutput{
		Messages: []sqstypes.Message{
			{MessageId: aws.String("m-1"), Body: aws.String(`{"topic":"solar"}`), ReceiptHandle: aws.String("handle-1")},
		},
	}
	var captured any
	q := &SQS{Client: mockClient(output, nil, &captured), WaitSeconds: 45, MaxMessages: 25}

	msgs, err := q.Receive(context.Background(), "in-url")
	require.NoError(t, err)
	assert.Equal(t, []Message{{ID: "m-1", Body: `{"topic":"solar"}`, ReceiptHandle: "handle-1"}}, msgs)

	in, ok := captured.(*sqs.ReceiveMessageInput)
	require.True(t, ok)
	assert.Equal(t, "in-url", aws.ToString(in.QueueUrl))
	assert.Equal(t, int32(10), in.MaxNumberOfMessages, "batch size capped")
	assert.Equal(t, int32(20), in.WaitTimeSeconds, "long poll capped")

	qErr := &SQS{Client: mockClient(nil, errors.New("aws error"), nil)}
	_, err = qErr.Receive(context.Background(), "in-url")
	assert.ErrorContains(t, err, "failed to receive messages")
}

func TestSQSSend(t *testing.T) {
	var captured any
	q := &SQS{Client: mockClient(&sqs.SendMessageOutput{}, nil, &captured)}

	require.NoError(t, q.Send(context.Background(), "out-url", Result{MessageID: "m-1", Topic: "solar", Status: StatusOK}))
	in, ok := captured.(*sqs.SendMessageInput)
	require.True(t, ok)
	assert.Equal(t, "out-url", aws.ToString(in.QueueUrl))
	assert.JSONEq(t, `{"message_id":"m-1","topic":"solar","status":"ok"}`, aws.ToString(in.MessageBody))

	qErr := &SQS{Client: mockClient(nil, errors.New("aws error"), nil)}
	err := qErr.Send(context.Background(), "out-url", Result{})
	assert.ErrorContains(t, err, "failed to send message")
}

func TestSQSDelete(t *testing.T) {
	var captured any
	q := &SQS{Client: mockClient(&sqs.DeleteMessageOutput{}, nil, &captured)}

	require.NoError(t, q.Delete(context.Background(), "in-url", "handle-1"))
	in, ok := captured.(*sqs.DeleteMessageInput)
	require.True(t, ok)
	assert.Equal(t, "handle-1", aws.ToString(in.ReceiptHandle))

	qErr := &SQS{Client: mockClient(nil, errors.New("aws error"), nil)}
	assert.ErrorContains(t, qErr.Delete(context.Background(), "in-url", "h"), "failed to delete message")
}
