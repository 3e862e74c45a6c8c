package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aunovis/secure-sum/pkg/errors"
)

const (
	mongoDatabase   = "secure_sum"
	mongoCollection = "runs"
)

// MongoStore keeps one document per run.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

type mongoRun struct {
	ID       string      `bson:"_id"`
	Started  time.Time   `bson:"started"`
	Finished time.Time   `bson:"finished"`
	Metric   string      `bson:"metric"`
	Repos    []mongoRepo `bson:"repos"`
}

type mongoRepo struct {
	Repo    string  `bson:"repo"`
	Score   float64 `bson:"score"`
	Failing bool    `bson:"failing"`
}

func openMongo(ctx context.Context, uri string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "history backend mongo needs a dsn")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid mongo uri")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeIO, err, "connect to mongo history")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
	}, nil
}

// Record inserts run as one document.
func (s *MongoStore) Record(ctx context.Context, run *Run) error {
	doc := mongoRun{
		ID:       run.ID,
		Started:  run.Started,
		Finished: run.Finished,
		Metric:   run.Metric,
		Repos:    make([]mongoRepo, len(run.Repos)),
	}
	for i, r := range run.Repos {
		doc.Repos[i] = mongoRepo(r)
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "record run %s", run.ID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *MongoStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
	}
	var docs []mongoRun
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
	}

	runs := make([]Run, len(docs))
	for i, d := range docs {
		runs[i] = Run{ID: d.ID, Started: d.Started.UTC(), Finished: d.Finished.UTC(), Metric: d.Metric}
		for _, r := range d.Repos {
			runs[i].Repos = append(runs[i].Repos, RepoScore(r))
		}
	}
	return runs, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
