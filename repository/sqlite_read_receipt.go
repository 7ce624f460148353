package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apostolos-Valiakos/AptApp/database"
	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
)

// sqliteReadReceiptRepo, ReadReceiptRepository interface'inin SQLite
// implementasyonu. MarkBulk kendi transaction'ını açtığı için *sql.DB tutar.
type sqliteReadReceiptRepo struct {
	db *sql.DB
}

// NewSQLiteReadReceiptRepo, constructor.
func NewSQLiteReadReceiptRepo(db *sql.DB) ReadReceiptRepository {
	return &sqliteReadReceiptRepo{db: db}
}

// MarkBulk, receipt'leri ve watermark'ı atomik yazar.
//
// ON CONFLICT DO UPDATE: aynı mesaj iki kez ack'lenirse satır sayısı
// değişmez, sadece read_at tazelenir. Watermark aynı transaction'da
// ilerler — receipt yazılıp watermark kaçması (veya tersi) mümkün değil.
func (r *sqliteReadReceiptRepo) MarkBulk(ctx context.Context, channelID, userID string, messageIDs []string) error {
	now := time.Now().UTC()

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, messageID := range messageIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO message_read_receipts (message_id, user_id)
				VALUES (?, ?)
				ON CONFLICT(message_id, user_id) DO UPDATE SET read_at = CURRENT_TIMESTAMP`,
				messageID, userID,
			); err != nil {
				return fmt.Errorf("failed to insert read receipt: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE channel_members SET last_read_at = ?
			WHERE channel_id = ? AND user_id = ?`,
			formatChatTime(now), channelID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update last_read_at: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: channel membership not found", pkg.ErrNotFound)
		}

		return nil
	})
}

func (r *sqliteReadReceiptRepo) MarkOne(ctx context.Context, userID, messageID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_read_receipts (message_id, user_id)
		VALUES (?, ?)
		ON CONFLICT(message_id, user_id) DO UPDATE SET read_at = CURRENT_TIMESTAMP`,
		messageID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert read receipt: %w", err)
	}
	return nil
}

// ForMessages, verilen mesajların tüm receipt'lerini tek sorguda toplar.
// Dönen map'te receipt'i olmayan mesaj için key bulunmaz — caller boş
// dizi ataması yapar.
func (r *sqliteReadReceiptRepo) ForMessages(ctx context.Context, messageIDs []string) (map[string][]models.ReadReceipt, error) {
	result := make(map[string][]models.ReadReceipt)
	if len(messageIDs) == 0 {
		return result, nil
	}

	// IN (?, ?, ...) placeholder'ları dinamik kurulur
	placeholders := strings.Repeat("?,", len(messageIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT message_id, user_id, read_at
		FROM message_read_receipts
		WHERE message_id IN (%s)
		ORDER BY read_at`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get read receipts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rr models.ReadReceipt
		if err := rows.Scan(&rr.MessageID, &rr.UserID, &rr.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan read receipt row: %w", err)
		}
		result[rr.MessageID] = append(result[rr.MessageID], rr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating read receipt rows: %w", err)
	}

	return result, nil
}

func (r *sqliteReadReceiptRepo) LastReadAt(ctx context.Context, channelID, userID string) (*time.Time, error) {
	var lastRead sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT last_read_at FROM channel_members
		WHERE channel_id = ? AND user_id = ?`,
		channelID, userID,
	).Scan(&lastRead)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last_read_at: %w", err)
	}

	return parseNullableChatTime(lastRead)
}
