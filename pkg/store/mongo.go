package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cvtopo/pkg/topology"
)

// Default MongoDB names used when the URI carries no database.
const (
	DefaultDatabase     = "cvtopo"
	SnapshotsCollection = "snapshots"
)

// MongoStore keeps snapshots in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// containerDoc is one topology entry. Entries are stored as an array so the
// extraction order survives the round trip.
type containerDoc struct {
	Name    string   `bson:"name"`
	Parent  string   `bson:"parent_container,omitempty"`
	Devices []string `bson:"devices,omitempty"`
	Leaf    bool     `bson:"leaf,omitempty"`
}

type snapshotDoc struct {
	ID            string         `bson:"_id"`
	CreatedAt     time.Time      `bson:"created_at"`
	Root          string         `bson:"root"`
	ReservedRoot  string         `bson:"reserved_root"`
	InventoryHash string         `bson:"inventory_hash"`
	Containers    []containerDoc `bson:"containers"`
	Warnings      []string       `bson:"warnings,omitempty"`
}

// NewMongoStore connects to the MongoDB deployment at uri. The database is
// taken from the URI path, defaulting to DefaultDatabase. The driver connects
// lazily; the first operation reports an unreachable server.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return NewMongoStoreFromClient(client, databaseName(uri)), nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = DefaultDatabase
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(SnapshotsCollection),
	}
}

func databaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultDatabase
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return DefaultDatabase
}

// Ping checks that the deployment is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	prepare(snap)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, toDoc(snap), opts); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var doc snapshotDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return fromDoc(&doc), nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Snapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limitOrDefault(limit)))

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var docs []snapshotDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}

	out := make([]*Snapshot, len(docs))
	for i := range docs {
		out[i] = fromDoc(&docs[i])
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDoc(s *Snapshot) *snapshotDoc {
	doc := &snapshotDoc{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Root:          s.Root,
		ReservedRoot:  s.ReservedRoot,
		InventoryHash: s.InventoryHash,
		Warnings:      s.Warnings,
		Containers:    make([]containerDoc, 0, s.Topology.Len()),
	}
	for name, c := range s.Topology.All() {
		doc.Containers = append(doc.Containers, containerDoc{
			Name:    name,
			Parent:  c.Parent,
			Devices: c.Devices,
			Leaf:    c.Leaf,
		})
	}
	return doc
}

func fromDoc(doc *snapshotDoc) *Snapshot {
	t := topology.NewTopology(doc.ReservedRoot)
	for _, c := range doc.Containers {
		t.Set(c.Name, topology.Container{Parent: c.Parent, Devices: c.Devices, Leaf: c.Leaf})
	}
	return &Snapshot{
		ID:            doc.ID,
		CreatedAt:     doc.CreatedAt,
		Root:          doc.Root,
		ReservedRoot:  doc.ReservedRoot,
		InventoryHash: doc.InventoryHash,
		Topology:      t,
		Warnings:      doc.Warnings,
	}
}

var _ Store = (*MongoStore)(nil)
