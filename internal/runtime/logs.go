package runtime

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// Agent runtimes write to a fixed per-runtime log group; DEFAULT is the
// endpoint every deploy creates.
const logGroupPattern = "/aws/bedrock-agentcore/runtimes/%s-DEFAULT"

// FilterLogEventsAPI is the slice of the CloudWatch Logs client used by the
// tailer.
type FilterLogEventsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// LogTailer prints recent log events of a deployed agent runtime.
type LogTailer struct {
	// NewClient builds a regional CloudWatch Logs client. Overridable in tests.
	NewClient func(ctx context.Context, region string) (FilterLogEventsAPI, error)
}

func NewLogTailer() *LogTailer {
	return &LogTailer{NewClient: defaultLogsClient}
}

func defaultLogsClient(ctx context.Context, region string) (FilterLogEventsAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return cloudwatchlogs.NewFromConfig(cfg), nil
}

// Tail writes log events newer than `since` to w, oldest first.
func (lt *LogTailer) Tail(ctx context.Context, region, runtimeID string, since time.Duration, w io.Writer) error {
	client, err := lt.NewClient(ctx, region)
	if err != nil {
		return err
	}

	logGroup := fmt.Sprintf(logGroupPattern, runtimeID)
	start := time.Now().Add(-since).UnixMilli()

	var nextToken *string
	for {
		resp, err := client.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName: aws.String(logGroup),
			StartTime:    aws.Int64(start),
			NextToken:    nextToken,
		})
		if err != nil {
			return fmt.Errorf("failed to read logs from %s: %w", logGroup, err)
		}

		for _, event := range resp.Events {
			ts := time.UnixMilli(aws.ToInt64(event.Timestamp)).UTC().Format(time.RFC3339)
			fmt.Fprintf(w, "%s %s\n", ts, aws.ToString(event.Message))
		}

		if resp.NextToken == nil {
			return nil
		}
		nextToken = resp.NextToken
	}
}
