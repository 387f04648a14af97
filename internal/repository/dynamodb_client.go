package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"onboarding-agent/internal/domain"
)

const (
	skPrefixDoc = "DOC#"
	ttlDuration = 30 * 24 * time.Hour // 30-day TTL

	// defaultCompanyID buckets uploads that arrive without a company id.
	defaultCompanyID = "default"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps a DynamoDB table holding the document registry: one record per
// processed upload.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new registry Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// companyPK returns the partition key for a company's documents.
func companyPK(companyID string) string {
	if strings.TrimSpace(companyID) == "" {
		companyID = defaultCompanyID
	}
	return "COMPANY#" + companyID
}

// docSK returns the sort key for a document using the current UTC timestamp.
func docSK(ts time.Time) string {
	return skPrefixDoc + ts.UTC().Format(time.RFC3339Nano)
}

// ttlValue returns a Unix timestamp 30 days in the future.
func ttlValue() int64 {
	return time.Now().Add(ttlDuration).Unix()
}

// SaveDocument persists one registry record. Missing keys are assigned from
// the company id and the current time.
func (c *Client) SaveDocument(ctx context.Context, rec domain.DocumentRecord) error {
	if rec.DocumentID == "" {
		return errors.New("repository: SaveDocument: document id is required")
	}
	if rec.PK == "" {
		rec.PK = companyPK(rec.CompanyID)
	}
	if rec.SK == "" {
		rec.SK = docSK(time.Now())
	}
	if rec.TTL == 0 {
		rec.TTL = ttlValue()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                documentItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: SaveDocument: %w", err)
	}
	return nil
}

// ListDocuments queries a company's DOC# items, newest first.
func (c *Client) ListDocuments(ctx context.Context, companyID string, limit int) ([]domain.DocumentRecord, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: companyPK(companyID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixDoc},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: ListDocuments query: %w", err)
	}

	recs := make([]domain.DocumentRecord, 0, len(out.Items))
	for _, item := range out.Items {
		rec, err := itemToDocument(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListDocuments unmarshal: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func documentItem(rec domain.DocumentRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: rec.PK},
		"SK":         &types.AttributeValueMemberS{Value: rec.SK},
		"documentId": &types.AttributeValueMemberS{Value: rec.DocumentID},
		"companyId":  &types.AttributeValueMemberS{Value: rec.CompanyID},
		"filename":   &types.AttributeValueMemberS{Value: rec.Filename},
		"pages":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.Pages)},
		"textLength": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.TextLength)},
		"status":     &types.AttributeValueMemberS{Value: rec.Status},
		"ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.TTL)},
	}
}

// itemToDocument converts a DynamoDB attribute map to a DocumentRecord.
func itemToDocument(item map[string]types.AttributeValue) (domain.DocumentRecord, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.DocumentRecord{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.DocumentRecord{}, err
	}
	filename, err := strAttr(item, "filename")
	if err != nil {
		return domain.DocumentRecord{}, err
	}
	docID, _ := strAttr(item, "documentId") // allow empty
	status, _ := strAttr(item, "status")    // allow empty
	companyID, _ := strAttr(item, "companyId")
	pages, _ := intAttr(item, "pages")
	textLength, _ := intAttr(item, "textLength")

	return domain.DocumentRecord{
		PK:         pk,
		SK:         sk,
		DocumentID: docID,
		CompanyID:  companyID,
		Filename:   filename,
		Pages:      pages,
		TextLength: textLength,
		Status:     status,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
