// Package mongo stores interview records as MongoDB documents, one collection
// for interviews keyed by phone number and one for call links keyed by call id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roboyoz/hotline/internal/interview"
)

// Collection names.
const (
	InterviewsCollection = "interviews"
	CallsCollection      = "calls"
)

// Store implements interview.Store on MongoDB.
type Store struct {
	client     *mongo.Client
	interviews *mongo.Collection
	calls      *mongo.Collection
}

var _ interview.Store = (*Store)(nil)

// Open connects to uri and uses the named database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client, database), nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:     client,
		interviews: db.Collection(InterviewsCollection),
		calls:      db.Collection(CallsCollection),
	}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) LoadInterview(ctx context.Context, phoneNumber string) (*interview.Interview, error) {
	var iv interview.Interview
	err := s.interviews.FindOne(ctx, bson.M{"_id": phoneNumber}).Decode(&iv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return interview.New(phoneNumber), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading interview %s: %w", phoneNumber, err)
	}
	iv.Normalize()
	return &iv, nil
}

func (s *Store) SaveInterview(ctx context.Context, iv *interview.Interview) error {
	_, err := s.interviews.ReplaceOne(ctx, bson.M{"_id": iv.PhoneNumber}, iv,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving interview %s: %w", iv.PhoneNumber, err)
	}
	return nil
}

func (s *Store) LoadCall(ctx context.Context, callSid string) (*interview.Call, error) {
	var call interview.Call
	err := s.calls.FindOne(ctx, bson.M{"_id": callSid}).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interview.ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading call %s: %w", callSid, err)
	}
	return &call, nil
}

func (s *Store) SaveCall(ctx context.Context, call interview.Call) error {
	_, err := s.calls.ReplaceOne(ctx, bson.M{"_id": call.CallSid}, call,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving call %s: %w", call.CallSid, err)
	}
	return nil
}

func (s *Store) ListPhoneNumbers(ctx context.Context) ([]string, error) {
	ids, err := s.interviews.Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing callers: %w", err)
	}
	return phoneNumbers(ids), nil
}

// phoneNumbers keeps the string ids from a Distinct result, sorted.
func phoneNumbers(ids []any) []string {
	numbers := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := id.(string); ok {
			numbers = append(numbers, n)
		}
	}
	slices.Sort(numbers)
	return numbers
}
