package service

import (
	"context"
	"errors"

	donationdomain "github.com/smallbiznis/donare/internal/donation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type repository struct{}

func ProvideRepository() donationdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, donation *donationdomain.DonationTransaction) error {
	return db.WithContext(ctx).Create(donation).Error
}

func (r *repository) List(ctx context.Context, db *gorm.DB) ([]donationdomain.DonationTransaction, error) {
	var items []donationdomain.DonationTransaction
	err := db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo donationdomain.Repository
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo donationdomain.Repository
}

func NewService(p Params) (donationdomain.Service, error) {
	if p.DB == nil {
		return nil, errors.New("donation service requires a database")
	}
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("donation.service"),
		repo: p.Repo,
	}, nil
}

// Append implements domain.Service.
func (s *Service) Append(ctx context.Context, donation *donationdomain.DonationTransaction) error {
	return s.repo.Insert(ctx, s.db, donation)
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) ([]donationdomain.DonationTransaction, error) {
	return s.repo.List(ctx, s.db)
}
