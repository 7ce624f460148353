// Migration SQL dosyalarını binary'ye gömer.
//
// embed paketi derleme zamanında dosyaları binary içine alır — deploy
// edilen binary'nin yanında migration dosyası taşımak gerekmez.
package database

import "embed"

// EmbeddedMigrations, migrations/ dizinindeki SQL dosyalarını içerir.
// Kullanım: fs.Sub(EmbeddedMigrations, "migrations").
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
