package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hrmslite/hrmslite/internal/model"
	"github.com/hrmslite/hrmslite/internal/repository"
)

type employeeDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employee_id"`
	FullName   string             `bson:"full_name"`
	Email      string             `bson:"email"`
	Department string             `bson:"department"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *employeeDoc) toModel() *model.Employee {
	return &model.Employee{
		ID:         d.ID.Hex(),
		EmployeeID: d.EmployeeID,
		FullName:   d.FullName,
		Email:      d.Email,
		Department: d.Department,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type employeeCollection struct {
	g *Gateway
}

// Insert stores a new employee and returns the generated id.
func (c *employeeCollection) Insert(ctx context.Context, emp *model.Employee) (string, error) {
	coll, err := c.g.collection(ctx, collEmployees)
	if err != nil {
		return "", err
	}

	res, err := coll.InsertOne(ctx, employeeDoc{
		EmployeeID: emp.EmployeeID,
		FullName:   emp.FullName,
		Email:      emp.Email,
		Department: emp.Department,
		CreatedAt:  emp.CreatedAt,
		UpdatedAt:  emp.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert employee: %w", translateWriteError(err))
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Find returns all employees in the requested order.
func (c *employeeCollection) Find(ctx context.Context, sort repository.Sort) ([]*model.Employee, error) {
	order, err := sortDoc(sort, repository.SortCreatedAt)
	if err != nil {
		return nil, err
	}

	coll, err := c.g.collection(ctx, collEmployees)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(order))
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var docs []employeeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	employees := make([]*model.Employee, 0, len(docs))
	for i := range docs {
		employees = append(employees, docs[i].toModel())
	}
	return employees, nil
}

// FindByID returns the employee with the given id or repository.ErrNotFound.
func (c *employeeCollection) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrInvalidID
	}

	coll, err := c.g.collection(ctx, collEmployees)
	if err != nil {
		return nil, err
	}

	var doc employeeDoc
	if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return doc.toModel(), nil
}

// Count returns the number of employees.
func (c *employeeCollection) Count(ctx context.Context) (int64, error) {
	coll, err := c.g.collection(ctx, collEmployees)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

// DeleteByID removes one employee. It does not touch attendance.
func (c *employeeCollection) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrInvalidID
	}

	coll, err := c.g.collection(ctx, collEmployees)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
