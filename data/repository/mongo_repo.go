package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"event-bookings/data/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// MongoRepo stores events and bookings as documents. Transactions need the
// server to run as a replica set or sharded cluster.
type MongoRepo struct {
	Client *mongo.Client
	DB     *mongo.Database
	Log    zerolog.Logger
}

func NewMongoRepo(client *mongo.Client, dbName string, log zerolog.Logger) *MongoRepo {
	return &MongoRepo{Client: client, DB: client.Database(dbName), Log: log}
}

// OpenMongo connects to uri and pings the primary.
func OpenMongo(ctx context.Context, uri, dbName string, log zerolog.Logger) (*MongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return NewMongoRepo(client, dbName, log), nil
}

func (mr *MongoRepo) Close(ctx context.Context) error {
	return mr.Client.Disconnect(ctx)
}

func (mr *MongoRepo) events() *mongo.Collection {
	return mr.DB.Collection(models.EventCollection)
}

func (mr *MongoRepo) bookings() *mongo.Collection {
	return mr.DB.Collection(models.BookingCollection)
}

// Migrate creates the unique indexes. Creating them also creates the
// collections, which must exist before they are written in a transaction.
func (mr *MongoRepo) Migrate(ctx context.Context) error {
	_, err := mr.events().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName(models.EventSlugUniqueConstraint).SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create events indexes: %w", err)
	}

	_, err = mr.bookings().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetName(models.BookingUniqueConstraint).SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create bookings indexes: %w", err)
	}

	mr.Log.Info().Str("database", mr.DB.Name()).Msg("indexes ensured")
	return nil
}

var txnOptions = options.Transaction().
	SetReadConcern(readconcern.Snapshot()).
	SetWriteConcern(writeconcern.Majority())

// withTransaction runs fn in a transaction on a fresh session. The driver
// commits when fn succeeds, aborts when it fails and retries the whole body
// on transient transaction errors such as write conflicts. The session is
// always ended. The returned error is prefixed with op.
func (mr *MongoRepo) withTransaction(ctx context.Context, op string, fn func(sc mongo.SessionContext) error) error {
	sess, err := mr.Client.StartSession()
	if err != nil {
		return fmt.Errorf("%s: start session: %w", op, err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (_ interface{}, err error) {
		defer func() {
			if p := recover(); p != nil {
				mr.Log.Error().Interface("panic", p).Str("op", op).Msg("transaction body panicked")
				err = panicError(p)
			}
		}()
		return nil, fn(sc)
	}, txnOptions)
	if err != nil {
		err = mapMongoError(err)
		mr.Log.Debug().Err(err).Str("op", op).Msg("transaction aborted")
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var dupKeyIndex = regexp.MustCompile(`index: (\S+) dup key`)

// mapMongoError turns duplicate key errors into ConflictError, named after
// the violated index, and passes everything else through.
func mapMongoError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	constraint := ""
	if m := dupKeyIndex.FindStringSubmatch(err.Error()); m != nil {
		constraint = m[1]
	}
	return &models.ConflictError{Constraint: constraint, Err: err}
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

// findOne decodes the single document matching filter into out.
func findOne(ctx context.Context, coll *mongo.Collection, filter bson.D, out interface{}, notFound error) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return err
}
