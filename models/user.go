// Package models, uygulamanın domain modellerini tanımlar.
//
// Model, veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den gelen/giden verinin şeklini belirler. `json:"..."` tag'leri
// serialize/deserialize davranışını kontrol eder; `json:"-"` ile
// hassas alanlar (password hash gibi) response dışında tutulur.
//
// Request struct'ları da burada yaşar — her biri kendi Validate()
// metodunu taşır, handler'lar decode sonrası bu metodu çağırır.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role, kullanıcının shop içindeki yetkisini temsil eder.
// Go'da enum yoktur, typed constant'lar kullanılır.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// User, bir shop personelini temsil eder.
// Her kullanıcı tam olarak bir shop'a bağlıdır — chat görünürlüğü
// shop sınırında biter.
type User struct {
	ID           string    `json:"id"`
	ShopID       string    `json:"shop_id"`
	Username     string    `json:"username"`
	DisplayName  *string   `json:"display_name"` // *string = nullable
	AvatarURL    *string   `json:"avatar_url"`
	PasswordHash string    `json:"-"` // API response'a asla dahil edilmez
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest, giriş isteği.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ChangePasswordRequest, şifre değiştirme isteği.
// Eski şifre doğrulanmadan yeni şifre yazılmaz.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate, ChangePasswordRequest'in geçerli olup olmadığını kontrol eder.
// Yeni şifre minimum 8 karakter olmalı.
func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return fmt.Errorf("current password is required")
	}
	if utf8.RuneCountInString(r.NewPassword) < 8 {
		return fmt.Errorf("new password must be at least 8 characters")
	}
	return nil
}
