// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository bir SQL.DB bağlantısı alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"database/sql"

	"github.com/Apostolos-Valiakos/AptApp/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı repository değişkenleri yerine tek struct kullanmak:
// 1. Fonksiyon imzalarını temiz tutar
// 2. Yeni repository eklendiğinde sadece struct + initRepositories güncellenir
// 3. IDE auto-complete ile kolay erişim (repos.User, repos.Channel, vb.)
type Repositories struct {
	Shop        repository.ShopRepository
	User        repository.UserRepository
	Session     repository.SessionRepository
	Channel     repository.ChannelRepository
	Message     repository.MessageRepository
	ReadReceipt repository.ReadReceiptRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Her NewSQLite* fonksiyonu aynı *sql.DB'yi alır — Go'nun sql.DB'si
// thread-safe connection pool'dur, paylaşılması güvenlidir.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		Shop:        repository.NewSQLiteShopRepo(conn),
		User:        repository.NewSQLiteUserRepo(conn),
		Session:     repository.NewSQLiteSessionRepo(conn),
		Channel:     repository.NewSQLiteChannelRepo(conn),
		Message:     repository.NewSQLiteMessageRepo(conn),
		ReadReceipt: repository.NewSQLiteReadReceiptRepo(conn),
	}
}
