package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// chatTimeLayout, kanal ve mesaj zaman damgalarının TEXT formatı.
//
// Milisaniye hassasiyeti önemli: unread hesabı ve pagination cursor'u
// created_at string karşılaştırmasına dayanır — bu layout lexical
// sıralama ile kronolojik sıralamayı aynı yapar.
const chatTimeLayout = "2006-01-02 15:04:05.000"

// formatChatTime, time.Time'ı DB'ye yazılacak TEXT formatına çevirir (UTC).
func formatChatTime(t time.Time) string {
	return t.UTC().Format(chatTimeLayout)
}

// parseChatTime, DB'den okunan TEXT zaman damgasını time.Time'a çevirir.
func parseChatTime(s string) (time.Time, error) {
	t, err := time.Parse(chatTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// parseNullableChatTime, NULL olabilen TEXT zaman damgası için.
func parseNullableChatTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseChatTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
