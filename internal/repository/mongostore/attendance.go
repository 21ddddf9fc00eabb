package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
)

type attendanceDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employee_id"`
	Date       string             `bson:"date"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *attendanceDoc) toModel() *model.Attendance {
	return &model.Attendance{
		ID:         d.ID.Hex(),
		EmployeeID: d.EmployeeID,
		Date:       d.Date,
		Status:     model.AttendanceStatus(d.Status),
		CreatedAt:  d.CreatedAt,
	}
}

type presenceDoc struct {
	EmployeeID  string `bson:"_id"`
	PresentDays int64  `bson:"present_days"`
}

type attendanceCollection struct {
	g *Gateway
}

func attendanceQuery(f repository.AttendanceFilter) bson.D {
	q := bson.D{}
	if f.EmployeeID != "" {
		q = append(q, bson.E{Key: "employee_id", Value: f.EmployeeID})
	}
	if f.Date != "" {
		q = append(q, bson.E{Key: "date", Value: f.Date})
	}
	if f.Status != "" {
		q = append(q, bson.E{Key: "status", Value: string(f.Status)})
	}
	return q
}

// Insert stores a new attendance mark and returns the generated id.
func (c *attendanceCollection) Insert(ctx context.Context, a *model.Attendance) (string, error) {
	coll, err := c.g.collection(ctx, collAttendance)
	if err != nil {
		return "", err
	}

	res, err := coll.InsertOne(ctx, attendanceDoc{
		EmployeeID: a.EmployeeID,
		Date:       a.Date,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert attendance: %w", translateWriteError(err))
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Find returns attendance matching filter in the requested order.
func (c *attendanceCollection) Find(ctx context.Context, filter repository.AttendanceFilter, sort repository.Sort) ([]*model.Attendance, error) {
	order, err := sortDoc(sort, repository.SortDate, repository.SortCreatedAt)
	if err != nil {
		return nil, err
	}

	coll, err := c.g.collection(ctx, collAttendance)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, attendanceQuery(filter), options.Find().SetSort(order))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	var docs []attendanceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}

	records := make([]*model.Attendance, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toModel())
	}
	return records, nil
}

// Count returns the number of marks matching filter.
func (c *attendanceCollection) Count(ctx context.Context, filter repository.AttendanceFilter) (int64, error) {
	coll, err := c.g.collection(ctx, collAttendance)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, attendanceQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return n, nil
}

// DeleteMany removes every mark matching filter and returns how many went.
func (c *attendanceCollection) DeleteMany(ctx context.Context, filter repository.AttendanceFilter) (int64, error) {
	coll, err := c.g.collection(ctx, collAttendance)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteMany(ctx, attendanceQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance: %w", err)
	}
	return res.DeletedCount, nil
}

// PresentCounts runs the present-days aggregation.
func (c *attendanceCollection) PresentCounts(ctx context.Context) ([]model.PresenceCount, error) {
	coll, err := c.g.collection(ctx, collAttendance)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: string(model.StatusPresent)}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$employee_id"},
			{Key: "present_days", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "present_days", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance: %w", err)
	}

	var docs []presenceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}

	counts := make([]model.PresenceCount, 0, len(docs))
	for _, d := range docs {
		counts = append(counts, model.PresenceCount{EmployeeID: d.EmployeeID, PresentDays: d.PresentDays})
	}
	return counts, nil
}
