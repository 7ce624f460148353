// Package main — WebSocket Hub callback wire-up.
//
// registerHubCallbacks, Hub'ın chat callback'lerini service katmanına bağlar.
//
// Bu callback'ler neden burada (main package'da)?
// Hub ws paketinde yaşıyor, ama mesaj/receipt persist'i service katmanında.
// Hub'ın service'lere bağımlı olmasını istemiyoruz (Dependency Inversion).
// main package wire-up noktasıdır — tüm katmanları birbirine bağlar.
//
// Callback'ler client'ın read loop'undan `go callback()` ile çağrılır;
// DB yazısı devam ederken bağlantı yeni frame okumaya devam eder.
package main

import (
	"context"
	"log"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/services"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// registerHubCallbacks, tüm Hub callback'lerini register eder.
func registerHubCallbacks(
	hub *ws.Hub,
	messageService services.MessageService,
	readReceiptService services.ReadReceiptService,
) {
	// ─── Mesaj Callback'i ───
	//
	// Akış: persist → broadcast (MessageService.Send içinde).
	// Hata sadece göndericiye chat:error olarak döner — kanalın geri
	// kalanı yarım kalmış bir gönderimi hiç görmez.
	hub.OnChatMessage(func(senderID, shopID string, data ws.ChatMessageData, reply func(ws.Event)) {
		req := &models.CreateMessageRequest{
			ChannelID:   data.ChannelID,
			Content:     data.Content,
			MessageType: data.MessageType,
			FileName:    data.FileName,
			FileSize:    data.FileSize,
			FileType:    data.FileType,
			FileBase64:  data.FileBase64,
		}

		if _, err := messageService.Send(context.Background(), senderID, shopID, req); err != nil {
			log.Printf("[ws] chat message from %s failed: %v", senderID, err)
			reply(ws.Event{
				Op:   ws.OpChatError,
				Data: ws.ChatErrorData{Message: "failed to send message"},
			})
		}
	})

	// ─── Receipt Callback'leri ───
	//
	// Receipt hataları sessizdir: log'lanır ama göndericiye chat:error
	// gitmez. Okundu bilgisi best-effort'tur, mesaj akışını bozmamalı.
	hub.OnReadBulk(func(userID string, data ws.BulkReadData, reply func(ws.Event)) {
		req := &models.BulkReadRequest{
			ChannelID:  data.ChannelID,
			MessageIDs: data.MessageIDs,
		}
		if err := readReceiptService.MarkBulk(context.Background(), userID, req); err != nil {
			log.Printf("[ws] bulk read from %s failed: %v", userID, err)
		}
	})

	hub.OnRead(func(userID string, data ws.ReadData, reply func(ws.Event)) {
		req := &models.ReadRequest{
			ChannelID: data.ChannelID,
			MessageID: data.MessageID,
		}
		if err := readReceiptService.MarkOne(context.Background(), userID, req); err != nil {
			log.Printf("[ws] read receipt from %s failed: %v", userID, err)
		}
	})
}
