// Package customers manages the optional sale participants. Phone and email
// carry no uniqueness constraint; a walk-in sale simply omits the reference.
package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftretail/pos-backend/pkg/db/models"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
)

// CustomerInput carries the writable customer fields.
type CustomerInput struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

// Service is the customer management surface.
type Service interface {
	List(ctx context.Context, search string) ([]models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Create(ctx context.Context, input CustomerInput) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg}
}

func (s *service) List(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return customers, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) Create(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer := &models.Customer{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}

	s.logg.Info(s.logg.WithField(ctx, "customer_id", customer.ID.String()), "customer created")
	return customer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.Customer, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.Email = input.Email
	customer.Address = input.Address

	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return customer, nil
}

// Delete removes a customer that has no sale history. Customers referenced by
// sales are kept so receipts keep resolving.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountSales(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customer sales")
	}
	if n > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "customer has sale history").
			WithDetails(map[string]any{"sales": n})
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}
