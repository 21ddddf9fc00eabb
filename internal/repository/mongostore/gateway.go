// Package mongostore implements the document store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hrmslite/hrmslite/internal/repository"
)

// Collection names.
const (
	collEmployees  = "employees"
	collAttendance = "attendance"
)

// Index names are the server defaults for the key patterns below, so a
// database created by an earlier deployment keeps working.
const (
	indexEmployeeID   = "employee_id_1"
	indexEmail        = "email_1"
	indexEmployeeDate = "employee_id_1_date_1"
)

var indexFields = map[string]string{
	indexEmployeeID:   repository.FieldEmployeeID,
	indexEmail:        repository.FieldEmail,
	indexEmployeeDate: repository.FieldDate,
}

var dupIndexPattern = regexp.MustCompile(`index: (\S+)`)

// Gateway lazily connects to MongoDB on first use and memoizes the handle.
// A failed connection attempt is not memoized.
type Gateway struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
	db     atomic.Pointer[mongo.Database]
}

// New creates a Gateway. No connection is made until the first operation.
func New(uri, dbName string) *Gateway {
	return &Gateway{uri: uri, dbName: dbName}
}

// Database returns the live database handle, connecting and ensuring
// indexes on first call.
func (g *Gateway) Database(ctx context.Context) (*mongo.Database, error) {
	if db := g.db.Load(); db != nil {
		return db, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if db := g.db.Load(); db != nil {
		return db, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(g.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(g.dbName)
	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	g.client = client
	g.db.Store(db)
	return db, nil
}

// ensureIndexes creates the unique indexes. Creating an existing index with
// identical options is a no-op on the server.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collEmployees).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexEmployeeID),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexEmail),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create employee indexes: %w", err)
	}

	_, err = db.Collection(collAttendance).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(indexEmployeeDate),
	})
	if err != nil {
		return fmt.Errorf("failed to create attendance index: %w", err)
	}

	return nil
}

// Employees returns the employee collection handle.
func (g *Gateway) Employees() repository.EmployeeCollection {
	return &employeeCollection{g: g}
}

// Attendance returns the attendance collection handle.
func (g *Gateway) Attendance() repository.AttendanceCollection {
	return &attendanceCollection{g: g}
}

// Ping checks MongoDB connectivity, connecting first if needed.
func (g *Gateway) Ping(ctx context.Context) error {
	db, err := g.Database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client if one was established.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		return nil
	}
	err := g.client.Disconnect(ctx)
	g.client = nil
	g.db.Store(nil)
	return err
}

func (g *Gateway) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := g.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// translateWriteError maps duplicate key failures to repository.DuplicateKeyError.
func translateWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return &repository.DuplicateKeyError{Field: duplicateField(err), Err: err}
}

// duplicateField extracts the colliding index from an E11000 message.
func duplicateField(err error) string {
	var we mongo.WriteException
	msg := err.Error()
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		msg = we.WriteErrors[0].Message
	}

	m := dupIndexPattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return ""
	}
	return indexFields[m[1]]
}

func sortDoc(sort repository.Sort, allowed ...string) (bson.D, error) {
	for _, f := range allowed {
		if f == sort.Field {
			dir := 1
			if sort.Descending {
				dir = -1
			}
			return bson.D{{Key: sort.Field, Value: dir}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", repository.ErrInvalidSort, sort.Field)
}
