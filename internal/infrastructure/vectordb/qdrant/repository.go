// Package qdrant provides an EdgeIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/ports"
	"github.com/ersonp/kin-core/internal/infrastructure/config"
)

var (
	_ ports.EdgeIndex         = (*Repository)(nil)
	_ ports.CollectionManager = (*Repository)(nil)
)

// pointNamespace derives point IDs for relationship IDs that are not UUIDs.
var pointNamespace = uuid.MustParse("3b0f6d2c-9e8a-4c1f-8d57-21a4e6b9c0f3")

// Repository implements ports.EdgeIndex and ports.CollectionManager using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository for one collection.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// apiKeyInterceptor attaches the Qdrant Cloud API key to every call.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Collection returns the collection name.
func (r *Repository) Collection() string {
	return r.collection
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all its points.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Upsert stores or replaces the point for a relationship.
func (r *Repository) Upsert(ctx context.Context, doc entities.IndexedRelationship, embedding []float32) error {
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         []*pb.PointStruct{docToPoint(doc, embedding)},
	})
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}
	return nil
}

// Delete removes the point for a relationship.
func (r *Repository) Delete(ctx context.Context, relationshipID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{pointID(relationshipID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// Search returns the relationships whose sentences are closest to embedding.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.IndexedRelationship, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToDocs(resp.Result), nil
}

// SearchByType is Search restricted to one relationship type.
func (r *Repository) SearchByType(ctx context.Context, embedding []float32, relType entities.RelationType, limit int) ([]entities.IndexedRelationship, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter: &pb.Filter{
			Must: []*pb.Condition{
				{
					ConditionOneOf: &pb.Condition_Field{
						Field: &pb.FieldCondition{
							Key: "type",
							Match: &pb.Match{
								MatchValue: &pb.Match_Keyword{
									Keyword: string(relType),
								},
							},
						},
					},
				},
			},
		},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points by type: %w", err)
	}

	return scoredPointsToDocs(resp.Result), nil
}

// Count returns the number of indexed relationships.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// pointID maps a relationship ID to a Qdrant point ID. UUIDs are used as
// is; anything else gets a stable UUIDv5.
func pointID(relationshipID string) *pb.PointId {
	id, err := uuid.Parse(relationshipID)
	if err != nil {
		id = uuid.NewSHA1(pointNamespace, []byte(relationshipID))
	}
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id.String()}}
}

func docToPoint(doc entities.IndexedRelationship, embedding []float32) *pb.PointStruct {
	return &pb.PointStruct{
		Id: pointID(doc.RelationshipID),
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{
					Data: embedding,
				},
			},
		},
		Payload: map[string]*pb.Value{
			"relationship_id": {Kind: &pb.Value_StringValue{StringValue: doc.RelationshipID}},
			"person_id":       {Kind: &pb.Value_StringValue{StringValue: doc.PersonID}},
			"related_id":      {Kind: &pb.Value_StringValue{StringValue: doc.RelatedID}},
			"type":            {Kind: &pb.Value_StringValue{StringValue: string(doc.Type)}},
			"sentence":        {Kind: &pb.Value_StringValue{StringValue: doc.Sentence}},
		},
	}
}

// scoredPointsToDocs converts search hits to indexed relationships.
func scoredPointsToDocs(points []*pb.ScoredPoint) []entities.IndexedRelationship {
	docs := make([]entities.IndexedRelationship, 0, len(points))
	for _, point := range points {
		payload := point.Payload
		docs = append(docs, entities.IndexedRelationship{
			RelationshipID: getStringValue(payload, "relationship_id"),
			PersonID:       getStringValue(payload, "person_id"),
			RelatedID:      getStringValue(payload, "related_id"),
			Type:           entities.RelationType(getStringValue(payload, "type")),
			Sentence:       getStringValue(payload, "sentence"),
			Score:          point.Score,
		})
	}
	return docs
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
