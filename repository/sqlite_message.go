package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Apostolos-Valiakos/AptApp/database"
	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
// Create kendi transaction'ını açtığı için *sql.DB tutar.
type sqliteMessageRepo struct {
	db *sql.DB
}

// NewSQLiteMessageRepo, constructor — interface döner.
func NewSQLiteMessageRepo(db *sql.DB) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

// Create, mesajı ve kanal updated_at güncellemesini atomik yazar.
// İkisinden biri başarısız olursa hiçbiri kalıcı olmaz — kanal listesi
// sıralaması mesaj logundan kopamaz.
func (r *sqliteMessageRepo) Create(ctx context.Context, message *models.Message, fileData []byte) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.MessageType == "" {
		message.MessageType = models.MessageTypeText
	}
	now := time.Now().UTC()
	message.CreatedAt = now

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (id, channel_id, user_id, content, message_type, file_name, file_size, file_type, file_blob, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			message.ID,
			message.ChannelID,
			message.UserID,
			message.Content,
			message.MessageType,
			message.FileName,
			message.FileSize,
			message.FileType,
			fileData,
			formatChatTime(now),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE chat_channels SET updated_at = ? WHERE id = ?`,
			formatChatTime(now), message.ChannelID,
		)
		if err != nil {
			return fmt.Errorf("failed to touch channel: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: channel not found", pkg.ErrNotFound)
		}

		return nil
	})
}

func (r *sqliteMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, channel_id, user_id, content, message_type, file_name, file_size, file_type, created_at
		FROM chat_messages WHERE id = ?`

	msg := &models.Message{}
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.ChannelID, &msg.UserID, &msg.Content, &msg.MessageType,
		&msg.FileName, &msg.FileSize, &msg.FileType, &createdAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message by id: %w", err)
	}

	if msg.CreatedAt, err = parseChatTime(createdAt); err != nil {
		return nil, err
	}

	return msg, nil
}

// GetByChannelID, beforeID'den eski mesajları yeni→eski sırayla döner.
//
// Cursor karşılaştırması (created_at, rowid) çifti üzerinden yapılır —
// aynı milisaniyede yazılmış iki mesaj olsa bile her mesaj tam olarak
// bir sayfada görünür.
func (r *sqliteMessageRepo) GetByChannelID(ctx context.Context, channelID string, beforeID string, limit int) ([]models.Message, error) {
	var rows *sql.Rows
	var err error

	if beforeID == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, channel_id, user_id, content, message_type, file_name, file_size, file_type, created_at
			FROM chat_messages
			WHERE channel_id = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?`,
			channelID, limit,
		)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT m.id, m.channel_id, m.user_id, m.content, m.message_type, m.file_name, m.file_size, m.file_type, m.created_at
			FROM chat_messages m
			WHERE m.channel_id = ?
			  AND (m.created_at, m.rowid) < (SELECT created_at, rowid FROM chat_messages WHERE id = ?)
			ORDER BY m.created_at DESC, m.rowid DESC
			LIMIT ?`,
			channelID, beforeID, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var createdAt string
		if err := rows.Scan(
			&m.ID, &m.ChannelID, &m.UserID, &m.Content, &m.MessageType,
			&m.FileName, &m.FileSize, &m.FileType, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if m.CreatedAt, err = parseChatTime(createdAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

func (r *sqliteMessageRepo) GetFileData(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT file_blob FROM chat_messages WHERE id = ?`, id,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: message has no file", pkg.ErrNotFound)
	}

	return data, nil
}
