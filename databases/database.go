// Package databases wraps the mongo driver behind small interfaces so the
// archive collections can be mocked in tests. Only the write-behind archives
// live in mongo; the dispatch board itself never touches it.
package databases

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
)

// ErrNoCursor is returned when a query never produced a cursor
var ErrNoCursor = errors.New("databases: no cursor for query")

// DatabaseHelper hands out collections on the configured database
type DatabaseHelper interface {
	Collection(name string) CollectionHelper
	Client() ClientHelper
}

// CollectionHelper is the subset of mongo collection operations the archive
// layer needs
type CollectionHelper interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) SingleResultHelper
	Find(context.Context, interface{}, ...*options.FindOptions) CursorHelper
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

// SingleResultHelper decodes a single document
type SingleResultHelper interface {
	Decode(v interface{}) error
}

// InsertOneResultHelper exposes the inserted ID
type InsertOneResultHelper interface {
	Decode() interface{}
}

// CursorHelper decodes a result set
type CursorHelper interface {
	Decode(v interface{}) error
}

// ClientHelper is the connection handle used by main at startup
type ClientHelper interface {
	Database(string) DatabaseHelper
	Connect() error
}

// NewClient builds a mongo client from the configured connection URL
func NewClient(conf *config.Config) (ClientHelper, error) {
	c, err := mongo.NewClient(options.Client().ApplyURI(conf.URL))
	if err != nil {
		return nil, err
	}
	return &archiveClient{cl: c}, nil
}

// NewDatabase selects the configured archive database on the client
func NewDatabase(conf *config.Config, client ClientHelper) DatabaseHelper {
	return client.Database(conf.DatabaseName)
}

type archiveClient struct {
	cl *mongo.Client
}

func (ac *archiveClient) Database(name string) DatabaseHelper {
	return &archiveDatabase{db: ac.cl.Database(name)}
}

func (ac *archiveClient) Connect() error {
	return ac.cl.Connect(nil)
}

type archiveDatabase struct {
	db *mongo.Database
}

func (ad *archiveDatabase) Collection(name string) CollectionHelper {
	return &archiveCollection{coll: ad.db.Collection(name)}
}

func (ad *archiveDatabase) Client() ClientHelper {
	return &archiveClient{cl: ad.db.Client()}
}

type archiveCollection struct {
	coll *mongo.Collection
}

func (ac *archiveCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) SingleResultHelper {
	return &archiveSingleResult{sr: ac.coll.FindOne(ctx, filter, opts...)}
}

func (ac *archiveCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper {
	cursor, err := ac.coll.Find(ctx, filter, opts...)
	if err != nil {
		zap.S().Warnw("archive query failed", "error", err)
	}
	return &archiveCursor{cr: cursor}
}

func (ac *archiveCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	result, err := ac.coll.InsertOne(ctx, document, opts...)
	if err != nil {
		return nil, err
	}
	return &archiveInsertOneResult{ior: result}, nil
}

type archiveSingleResult struct {
	sr *mongo.SingleResult
}

func (r *archiveSingleResult) Decode(v interface{}) error {
	return r.sr.Decode(v)
}

type archiveInsertOneResult struct {
	ior *mongo.InsertOneResult
}

func (r *archiveInsertOneResult) Decode() interface{} {
	if r.ior == nil {
		return nil
	}
	return r.ior.InsertedID
}

type archiveCursor struct {
	cr *mongo.Cursor
}

func (c *archiveCursor) Decode(v interface{}) error {
	if c.cr == nil {
		return ErrNoCursor
	}
	return c.cr.All(context.Background(), v)
}
