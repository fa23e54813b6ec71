package databases

// go generate: mockery --name ArchivedCaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

const archivedCaseName = "archivedCases"

// ArchivedCaseDatabase contains the methods to use with the closed-case archive
type ArchivedCaseDatabase interface {
	Insert(context.Context, models.ArchivedCase) error
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.ArchivedCase, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.ArchivedCase, error)
}

type archivedCaseDatabase struct {
	db DatabaseHelper
}

// NewArchivedCaseDatabase initializes a new instance of the closed-case
// archive with the provided db connection
func NewArchivedCaseDatabase(db DatabaseHelper) ArchivedCaseDatabase {
	return &archivedCaseDatabase{
		db: db,
	}
}

func (a *archivedCaseDatabase) Insert(ctx context.Context, archived models.ArchivedCase) error {
	_, err := a.db.Collection(archivedCaseName).InsertOne(ctx, archived)
	return err
}

func (a *archivedCaseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ArchivedCase, error) {
	archived := &models.ArchivedCase{}
	err := a.db.Collection(archivedCaseName).FindOne(ctx, filter, opts...).Decode(&archived)
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (a *archivedCaseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ArchivedCase, error) {
	var archives []models.ArchivedCase
	cr := a.db.Collection(archivedCaseName).Find(ctx, filter, opts...)
	err := cr.Decode(&archives)
	if err != nil {
		return nil, err
	}
	return archives, nil
}
