package recordstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

type dynamoStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamo stores records in a DynamoDB table keyed by requestId
func NewDynamo(ctx context.Context, cfg config.DynamoConfig) (Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &dynamoStore{client: dynamodb.NewFromConfig(awsCfg), table: cfg.Table}, nil
}

func (s *dynamoStore) Save(ctx context.Context, rec models.VideoRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal video record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(requestId)"),
	})
	if err != nil {
		return fmt.Errorf("DynamoDB PutItem: %w", err)
	}
	return nil
}

// List scans the table; it is meant for the records command, not hot paths
func (s *dynamoStore) List(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	var out []models.VideoRecord
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DynamoDB Scan: %w", err)
		}
		var recs []models.VideoRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, fmt.Errorf("unmarshal video records: %w", err)
		}
		out = append(out, recs...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *dynamoStore) Close() error { return nil }
