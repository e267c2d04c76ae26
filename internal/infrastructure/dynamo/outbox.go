package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
)

// OutboxRepo stores captured outbound mail for the development mailbox.
type OutboxRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOutboxRepo(client *dynamodb.Client, tableName string) *OutboxRepo {
	return &OutboxRepo{client: client, tableName: tableName}
}

func (r *OutboxRepo) Put(ctx context.Context, e *domain.OutboxEmail) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal outbox email: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListRecent scans the outbox and returns at most limit messages, newest first.
// The outbox is a development aid, so a full scan is acceptable.
func (r *OutboxRepo) ListRecent(ctx context.Context, limit int) ([]domain.OutboxEmail, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	var emails []domain.OutboxEmail
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.OutboxEmail
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		emails = append(emails, batch...)
	}
	sort.Slice(emails, func(i, j int) bool { return emails[i].CreatedAt.After(emails[j].CreatedAt) })
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}
	return emails, nil
}
