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

// sqliteChannelRepo, ChannelRepository interface'inin SQLite implementasyonu.
//
// Diğer repo'lardan farklı olarak *sql.DB tutar (TxQuerier değil) —
// CreateWithMembers kendi transaction'ını açar.
type sqliteChannelRepo struct {
	db *sql.DB
}

// NewSQLiteChannelRepo, constructor — interface döner (Dependency Inversion).
func NewSQLiteChannelRepo(db *sql.DB) ChannelRepository {
	return &sqliteChannelRepo{db: db}
}

func (r *sqliteChannelRepo) CreateWithMembers(ctx context.Context, channel *models.Channel, creatorID string, memberIDs []string) error {
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	channel.CreatedAt = now
	channel.UpdatedAt = now
	channel.CreatedBy = &creatorID

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_channels (id, shop_id, name, description, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			channel.ID,
			channel.ShopID,
			channel.Name,
			channel.Description,
			creatorID,
			formatChatTime(now),
			formatChatTime(now),
		)
		if err != nil {
			return fmt.Errorf("failed to insert channel: %w", err)
		}

		// Creator her zaman üye — memberIDs'in başına eklenir.
		// ON CONFLICT DO NOTHING: listede creator veya tekrar varsa sorun olmaz.
		ids := append([]string{creatorID}, memberIDs...)
		for _, userID := range ids {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO channel_members (channel_id, user_id)
				VALUES (?, ?)
				ON CONFLICT(channel_id, user_id) DO NOTHING`,
				channel.ID, userID,
			); err != nil {
				return fmt.Errorf("failed to insert channel member: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	channel.MemberCount = countUnique(append([]string{creatorID}, memberIDs...))
	return nil
}

func (r *sqliteChannelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `
		SELECT id, shop_id, name, description, created_by, created_at, updated_at
		FROM chat_channels WHERE id = ?`

	ch := &models.Channel{}
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ch.ID, &ch.ShopID, &ch.Name, &ch.Description, &ch.CreatedBy,
		&createdAt, &updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel by id: %w", err)
	}

	if ch.CreatedAt, err = parseChatTime(createdAt); err != nil {
		return nil, err
	}
	if ch.UpdatedAt, err = parseChatTime(updatedAt); err != nil {
		return nil, err
	}

	return ch, nil
}

func (r *sqliteChannelRepo) ListForUser(ctx context.Context, userID, shopID string) ([]models.Channel, error) {
	// unread_count formülü: watermark'tan (yoksa epoch'tan) yeni,
	// başkası tarafından yazılmış ve receipt'i olmayan mesajlar.
	// Yazar silinmişse (user_id NULL) mesaj "başkasının" sayılır.
	query := `
		SELECT c.id, c.shop_id, c.name, c.description, c.created_by, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM channel_members mc WHERE mc.channel_id = c.id) AS member_count,
			(SELECT COUNT(*) FROM chat_messages m
				WHERE m.channel_id = c.id
				  AND m.created_at > COALESCE(cm.last_read_at, '1970-01-01')
				  AND (m.user_id IS NULL OR m.user_id != cm.user_id)
				  AND NOT EXISTS (
					SELECT 1 FROM message_read_receipts rr
					WHERE rr.message_id = m.id AND rr.user_id = cm.user_id
				  )
			) AS unread_count
		FROM chat_channels c
		JOIN channel_members cm ON cm.channel_id = c.id AND cm.user_id = ?
		WHERE c.shop_id = ?
		ORDER BY c.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		var createdAt, updatedAt string
		if err := rows.Scan(
			&ch.ID, &ch.ShopID, &ch.Name, &ch.Description, &ch.CreatedBy,
			&createdAt, &updatedAt, &ch.MemberCount, &ch.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		if ch.CreatedAt, err = parseChatTime(createdAt); err != nil {
			return nil, err
		}
		if ch.UpdatedAt, err = parseChatTime(updatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

func (r *sqliteChannelRepo) Members(ctx context.Context, channelID string) ([]models.ChannelMember, error) {
	query := `
		SELECT cm.channel_id, cm.user_id, cm.joined_at, cm.last_read_at,
			u.id, u.shop_id, u.username, u.display_name, u.avatar_url, u.role, u.created_at
		FROM channel_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.channel_id = ?
		ORDER BY u.username`

	rows, err := r.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel members: %w", err)
	}
	defer rows.Close()

	var members []models.ChannelMember
	for rows.Next() {
		var m models.ChannelMember
		var lastRead sql.NullString
		var u models.User
		if err := rows.Scan(
			&m.ChannelID, &m.UserID, &m.JoinedAt, &lastRead,
			&u.ID, &u.ShopID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.Role, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		if m.LastReadAt, err = parseNullableChatTime(lastRead); err != nil {
			return nil, err
		}
		m.User = &u
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

func (r *sqliteChannelRepo) AddMember(ctx context.Context, channelID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channel_members (channel_id, user_id)
		VALUES (?, ?)
		ON CONFLICT(channel_id, user_id) DO NOTHING`,
		channelID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add channel member: %w", err)
	}
	return nil
}

func (r *sqliteChannelRepo) IsMember(ctx context.Context, channelID, userID string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM channel_members
		WHERE channel_id = ? AND user_id = ?`,
		channelID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists > 0, nil
}

func (r *sqliteChannelRepo) MemberUserIDs(ctx context.Context, channelID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM channel_members WHERE channel_id = ?`,
		channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member ids: %w", err)
	}

	return ids, nil
}

// countUnique, ID listesindeki tekrarları sayım dışı bırakır.
func countUnique(ids []string) int {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return len(seen)
}
