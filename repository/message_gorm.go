package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type scheduledMessageModel struct {
	ID            string         `gorm:"primaryKey;column:id"`
	Content       string         `gorm:"column:content;not null"`
	Recipients    string         `gorm:"column:recipients;not null"` // JSON array
	RecipientType string         `gorm:"column:recipient_type;not null"`
	ScheduledAt   time.Time      `gorm:"column:scheduled_at;not null;index"`
	Status        string         `gorm:"column:status;default:'PENDING';index"`
	Error         sql.NullString `gorm:"column:error"`
	SentAt        sql.NullTime   `gorm:"column:sent_at"`
	AccountID     sql.NullString `gorm:"column:account_id"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null"`
}

func (scheduledMessageModel) TableName() string { return "scheduled_messages" }

type deliveryAttemptModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	MessageID string         `gorm:"column:message_id;not null;index"`
	Recipient string         `gorm:"column:recipient;not null"`
	Success   bool           `gorm:"column:success;not null"`
	Error     sql.NullString `gorm:"column:error"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
}

func (deliveryAttemptModel) TableName() string { return "delivery_attempts" }

func toMessageModel(msg domainMessage.ScheduledMessage) scheduledMessageModel {
	recipients, err := json.Marshal(msg.Recipients)
	if err != nil {
		logrus.Errorf("[REPO] Failed to marshal recipients for %s: %v", msg.ID, err)
		recipients = []byte("[]")
	}
	m := scheduledMessageModel{
		ID:            msg.ID,
		Content:       msg.Content,
		Recipients:    string(recipients),
		RecipientType: string(msg.RecipientType),
		ScheduledAt:   msg.ScheduledAt,
		Status:        string(msg.Status),
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     msg.UpdatedAt,
	}
	if msg.Error != "" {
		m.Error = sql.NullString{String: msg.Error, Valid: true}
	}
	if msg.SentAt != nil {
		m.SentAt = sql.NullTime{Time: *msg.SentAt, Valid: true}
	}
	if msg.AccountID != "" {
		m.AccountID = sql.NullString{String: msg.AccountID, Valid: true}
	}
	return m
}

func fromMessageModel(m scheduledMessageModel) domainMessage.ScheduledMessage {
	var recipients []string
	if err := json.Unmarshal([]byte(m.Recipients), &recipients); err != nil {
		logrus.Errorf("[REPO] Corrupt recipients payload for %s: %v", m.ID, err)
	}
	msg := domainMessage.ScheduledMessage{
		ID:            m.ID,
		Content:       m.Content,
		Recipients:    recipients,
		RecipientType: domainMessage.RecipientType(m.RecipientType),
		ScheduledAt:   m.ScheduledAt,
		Status:        domainMessage.Status(m.Status),
		Error:         m.Error.String,
		AccountID:     m.AccountID.String,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.SentAt.Valid {
		t := m.SentAt.Time
		msg.SentAt = &t
	}
	return msg
}

type MessageGormRepository struct {
	db *gorm.DB
}

func NewMessageGormRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

func (r *MessageGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&scheduledMessageModel{},
		&deliveryAttemptModel{},
	)
}

func (r *MessageGormRepository) Create(ctx context.Context, msg domainMessage.ScheduledMessage) error {
	model := toMessageModel(msg)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *MessageGormRepository) GetByID(ctx context.Context, id string) (domainMessage.ScheduledMessage, error) {
	var m scheduledMessageModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainMessage.ScheduledMessage{}, ErrMessageNotFound
		}
		return domainMessage.ScheduledMessage{}, err
	}
	return fromMessageModel(m), nil
}

func (r *MessageGormRepository) List(ctx context.Context, status string, limit int) ([]domainMessage.ScheduledMessage, error) {
	query := r.db.WithContext(ctx).Order("scheduled_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []scheduledMessageModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domainMessage.ScheduledMessage, len(models))
	for i, m := range models {
		res[i] = fromMessageModel(m)
	}
	return res, nil
}

func (r *MessageGormRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domainMessage.ScheduledMessage, error) {
	var candidates []scheduledMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(domainMessage.StatusPending), now).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]domainMessage.ScheduledMessage, 0, len(candidates))
	for _, m := range candidates {
		// Conditional update is the claim: whoever flips PENDING first wins.
		res := r.db.WithContext(ctx).Model(&scheduledMessageModel{}).
			Where("id = ? AND status = ?", m.ID, string(domainMessage.StatusPending)).
			Update("status", string(domainMessage.StatusProcessing))
		if res.Error != nil {
			return claimed, res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race to another cycle
		}
		m.Status = string(domainMessage.StatusProcessing)
		claimed = append(claimed, fromMessageModel(m))
	}
	return claimed, nil
}

func (r *MessageGormRepository) MarkSent(ctx context.Context, id, accountID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&scheduledMessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(domainMessage.StatusSent),
			"account_id": accountID,
			"sent_at":    at,
			"error":      nil,
		}).Error
}

func (r *MessageGormRepository) MarkPartial(ctx context.Context, id, accountID, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&scheduledMessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(domainMessage.StatusPartial),
			"account_id": accountID,
			"sent_at":    at,
			"error":      errMsg,
		}).Error
}

func (r *MessageGormRepository) MarkFailed(ctx context.Context, id, accountID, errMsg string) error {
	updates := map[string]any{
		"status": string(domainMessage.StatusFailed),
		"error":  errMsg,
	}
	if accountID != "" {
		updates["account_id"] = accountID
	}
	return r.db.WithContext(ctx).Model(&scheduledMessageModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *MessageGormRepository) Cancel(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&scheduledMessageModel{}).
		Where("id = ? AND status = ?", id, string(domainMessage.StatusPending)).
		Update("status", string(domainMessage.StatusCancelled))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).Model(&scheduledMessageModel{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return ErrMessageNotFound
		}
		return ErrNotCancellable
	}
	return nil
}

func (r *MessageGormRepository) FailStalled(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&scheduledMessageModel{}).
		Where("status IN ? AND scheduled_at < ?",
			[]string{string(domainMessage.StatusPending), string(domainMessage.StatusProcessing)}, cutoff).
		Updates(map[string]any{
			"status": string(domainMessage.StatusFailed),
			"error":  reason,
		})
	return res.RowsAffected, res.Error
}

func (r *MessageGormRepository) CreateAttempt(ctx context.Context, attempt domainMessage.DeliveryAttempt) error {
	model := deliveryAttemptModel{
		MessageID: attempt.MessageID,
		Recipient: attempt.Recipient,
		Success:   attempt.Success,
		CreatedAt: attempt.CreatedAt,
	}
	if attempt.Error != "" {
		model.Error = sql.NullString{String: attempt.Error, Valid: true}
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *MessageGormRepository) ListAttempts(ctx context.Context, messageID string) ([]domainMessage.DeliveryAttempt, error) {
	var models []deliveryAttemptModel
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("id asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domainMessage.DeliveryAttempt, len(models))
	for i, m := range models {
		res[i] = domainMessage.DeliveryAttempt{
			ID:        m.ID,
			MessageID: m.MessageID,
			Recipient: m.Recipient,
			Success:   m.Success,
			Error:     m.Error.String,
			CreatedAt: m.CreatedAt,
		}
	}
	return res, nil
}
