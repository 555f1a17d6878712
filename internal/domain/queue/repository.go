package queue

import "context"

// Repository es el sink de persistencia para VisitRecord.
// El Manager es la fuente de verdad en memoria; el repo sirve para auditoría y Restore.
type Repository interface {
	Create(ctx context.Context, v VisitRecord) error
	Update(ctx context.Context, v VisitRecord) error
	GetByID(ctx context.Context, id string) (VisitRecord, error)
	ListByDepartment(ctx context.Context, dept Department) ([]VisitRecord, error)
}
