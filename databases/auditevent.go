package databases

// go generate: mockery --name AuditEventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

const auditEventName = "auditEvents"

// AuditEventDatabase contains the methods to use with the audit event archive
type AuditEventDatabase interface {
	Insert(context.Context, models.AuditEvent) error
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.AuditEvent, error)
}

type auditEventDatabase struct {
	db DatabaseHelper
}

// NewAuditEventDatabase initializes a new instance of the audit event
// database with the provided db connection
func NewAuditEventDatabase(db DatabaseHelper) AuditEventDatabase {
	return &auditEventDatabase{
		db: db,
	}
}

func (a *auditEventDatabase) Insert(ctx context.Context, event models.AuditEvent) error {
	_, err := a.db.Collection(auditEventName).InsertOne(ctx, event)
	return err
}

func (a *auditEventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	cr := a.db.Collection(auditEventName).Find(ctx, filter, opts...)
	err := cr.Decode(&events)
	if err != nil {
		return nil, err
	}
	return events, nil
}
