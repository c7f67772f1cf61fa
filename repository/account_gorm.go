package repository

import (
	"context"
	"database/sql"
	"time"

	domainAccount "github.com/AzielCF/az-blast/domains/account"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	PhoneNumber string         `gorm:"column:phone_number;not null"`
	Name        string         `gorm:"column:name;not null"`
	// No default tag: gorm drops zero-valued fields that carry one on
	// insert, which would turn a deactivated account back on.
	IsActive    bool           `gorm:"column:is_active;index"`
	IsConnected bool           `gorm:"column:is_connected;default:false;index"`
	SentToday   int            `gorm:"column:sent_today;default:0"`
	DailyLimit  int            `gorm:"column:daily_limit;not null"`
	LastResetAt time.Time      `gorm:"column:last_reset_at;not null"`
	SessionData sql.NullString `gorm:"column:session_data"` // JSON device snapshot
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;not null"`
}

func (accountModel) TableName() string { return "accounts" }

func toAccountModel(a domainAccount.Account) accountModel {
	m := accountModel{
		ID:          a.ID,
		PhoneNumber: a.PhoneNumber,
		Name:        a.Name,
		IsActive:    a.IsActive,
		IsConnected: a.IsConnected,
		SentToday:   a.SentToday,
		DailyLimit:  a.DailyLimit,
		LastResetAt: a.LastResetAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.SessionData != "" {
		m.SessionData = sql.NullString{String: a.SessionData, Valid: true}
	}
	return m
}

func fromAccountModel(m accountModel) domainAccount.Account {
	return domainAccount.Account{
		ID:          m.ID,
		PhoneNumber: m.PhoneNumber,
		Name:        m.Name,
		IsActive:    m.IsActive,
		IsConnected: m.IsConnected,
		SentToday:   m.SentToday,
		DailyLimit:  m.DailyLimit,
		LastResetAt: m.LastResetAt,
		SessionData: m.SessionData.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type AccountGormRepository struct {
	db *gorm.DB
}

func NewAccountGormRepository(db *gorm.DB) *AccountGormRepository {
	return &AccountGormRepository{db: db}
}

func (r *AccountGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&accountModel{})
}

func (r *AccountGormRepository) Save(ctx context.Context, account domainAccount.Account) error {
	model := toAccountModel(account)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
}

func (r *AccountGormRepository) GetByID(ctx context.Context, id string) (domainAccount.Account, error) {
	var m accountModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainAccount.Account{}, ErrAccountNotFound
		}
		return domainAccount.Account{}, err
	}
	return fromAccountModel(m), nil
}

func (r *AccountGormRepository) List(ctx context.Context) ([]domainAccount.Account, error) {
	var models []accountModel
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domainAccount.Account, len(models))
	for i, m := range models {
		res[i] = fromAccountModel(m)
	}
	return res, nil
}

func (r *AccountGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&accountModel{}, "id = ?", id).Error
}

func (r *AccountGormRepository) SetConnected(ctx context.Context, id string, connected bool, sessionData string) error {
	updates := map[string]any{"is_connected": connected}
	if sessionData != "" {
		updates["session_data"] = sessionData
	}
	return r.db.WithContext(ctx).Model(&accountModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *AccountGormRepository) ClearSessionData(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&accountModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_connected": false,
			"session_data": nil,
		}).Error
}

func (r *AccountGormRepository) ListEligible(ctx context.Context) ([]domainAccount.Account, error) {
	var models []accountModel
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_connected = ?", true, true).
		Order("sent_today asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domainAccount.Account, len(models))
	for i, m := range models {
		res[i] = fromAccountModel(m)
	}
	return res, nil
}

func (r *AccountGormRepository) IncrementSentToday(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&accountModel{}).
		Where("id = ?", id).
		UpdateColumn("sent_today", gorm.Expr("sent_today + ?", 1)).Error
}

func (r *AccountGormRepository) ResetDailyCounters(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&accountModel{}).
		Where("last_reset_at < ?", cutoff).
		Updates(map[string]any{
			"sent_today":    0,
			"last_reset_at": now,
		})
	return res.RowsAffected, res.Error
}
