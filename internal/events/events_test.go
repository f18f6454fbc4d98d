package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"aari-docs/internal/shared/telemetry"
)

func TestEventRoundTrip(t *testing.T) {
	evt := Event{
		Type:       CommentCreated,
		DocumentID: "doc-1",
		CommentID:  "comment-1",
		UserID:     "user-1",
		OccurredAt: "2026-01-30T22:00:00Z",
		Version:    1,
	}

	payload, err := Encode(evt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got Event
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, evt) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, evt)
	}
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisherSendsTypedMessage(t *testing.T) {
	fake := &fakeSQS{}
	pub := &SQSPublisher{client: fake, queueURL: "https://sqs.local/queue"}

	evt := New(DocumentDeleted)
	evt.DocumentID = "doc-9"
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if aws.ToString(fake.input.QueueUrl) != "https://sqs.local/queue" {
		t.Fatalf("unexpected queue url %s", aws.ToString(fake.input.QueueUrl))
	}
	attr, ok := fake.input.MessageAttributes["type"]
	if !ok || aws.ToString(attr.StringValue) != DocumentDeleted {
		t.Fatalf("missing type attribute: %+v", fake.input.MessageAttributes)
	}
	var decoded Event
	if err := json.Unmarshal([]byte(aws.ToString(fake.input.MessageBody)), &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.DocumentID != "doc-9" {
		t.Fatalf("unexpected body %+v", decoded)
	}
}

func TestEmitLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(nil) })

	pub := &SQSPublisher{client: &fakeSQS{err: errors.New("throttled")}, queueURL: "q"}
	Emit(context.Background(), pub, New(ReplyCreated))
	Emit(context.Background(), nil, New(ReplyCreated))

	if !bytes.Contains(buf.Bytes(), []byte("events.publish_failed")) {
		t.Fatalf("expected failure log, got %s", buf.String())
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	var rec Recorder
	_ = rec.Publish(context.Background(), New(CommentResolved))
	_ = rec.Publish(context.Background(), New(CommentReopened))
	got := rec.Events()
	if len(got) != 2 || got[0].Type != CommentResolved || got[1].Type != CommentReopened {
		t.Fatalf("unexpected events %+v", got)
	}
}
