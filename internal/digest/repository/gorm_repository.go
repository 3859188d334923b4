package repository

import (
	"time"

	"newsly-backend/internal/digest/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormSubscriberRepository implements SubscriberRepository using GORM
type gormSubscriberRepository struct {
	db *gorm.DB
}

func NewGormSubscriberRepository(db *gorm.DB) SubscriberRepository {
	db.AutoMigrate(&domain.Subscriber{})
	return &gormSubscriberRepository{db: db}
}

func (r *gormSubscriberRepository) Upsert(subscriber *domain.Subscriber) error {
	if subscriber.CreatedAt.IsZero() {
		subscriber.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"timezone"}),
	}).Create(subscriber).Error
}

func (r *gormSubscriberRepository) FindByEmail(email string) (*domain.Subscriber, error) {
	var subscriber domain.Subscriber
	err := r.db.Where("email = ?", email).First(&subscriber).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

func (r *gormSubscriberRepository) FindAll() ([]*domain.Subscriber, error) {
	var subscribers []*domain.Subscriber
	err := r.db.Order("created_at ASC").Find(&subscribers).Error
	return subscribers, err
}

func (r *gormSubscriberRepository) FindByTimezone(tz string) ([]*domain.Subscriber, error) {
	var subscribers []*domain.Subscriber
	err := r.db.Where("timezone = ?", tz).Find(&subscribers).Error
	return subscribers, err
}

func (r *gormSubscriberRepository) DistinctTimezones() ([]string, error) {
	var timezones []string
	err := r.db.Model(&domain.Subscriber{}).Distinct("timezone").Pluck("timezone", &timezones).Error
	return timezones, err
}

func (r *gormSubscriberRepository) Delete(email string) error {
	return r.db.Where("email = ?", email).Delete(&domain.Subscriber{}).Error
}
