package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apostolos-Valiakos/AptApp/models"
	"github.com/Apostolos-Valiakos/AptApp/pkg"
	"github.com/Apostolos-Valiakos/AptApp/repository"
	"github.com/Apostolos-Valiakos/AptApp/ws"
)

// ReadReceiptService, okundu bilgisi iş mantığı interface'i.
//
// Okundu işaretleme idempotent'tir: aynı mesaj ikinci kez işaretlenince
// receipt güncellenir, çoğalmaz. Var olmayan mesaj/üyelik no-op sayılır —
// client'ın gecikmiş ack'i hataya dönüşmez.
type ReadReceiptService interface {
	// MarkBulk, listedeki mesajları okundu işaretler ve kanalın
	// last_read_at filigranını ilerletir. Başarılıysa kanal odasına
	// messages:read:bulk:update broadcast eder.
	MarkBulk(ctx context.Context, userID string, req *models.BulkReadRequest) error
	// MarkOne, tek mesajı okundu işaretler ve chat:read broadcast eder.
	MarkOne(ctx context.Context, userID string, req *models.ReadRequest) error
}

type readReceiptService struct {
	receiptRepo repository.ReadReceiptRepository
	hub         ws.EventPublisher
}

func NewReadReceiptService(
	receiptRepo repository.ReadReceiptRepository,
	hub ws.EventPublisher,
) ReadReceiptService {
	return &readReceiptService{
		receiptRepo: receiptRepo,
		hub:         hub,
	}
}

func (s *readReceiptService) MarkBulk(ctx context.Context, userID string, req *models.BulkReadRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.receiptRepo.MarkBulk(ctx, req.ChannelID, userID, req.MessageIDs); err != nil {
		// Silinmiş mesaj ya da kaybolmuş üyelik için gelen geç ack
		// sessizce yutulur — client için hata değildir
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	s.hub.BroadcastToRoom(ws.ChannelRoom(req.ChannelID), ws.Event{
		Op: ws.OpReadBulkUpdate,
		Data: ws.ReadBulkUpdateData{
			ChannelID:  req.ChannelID,
			MessageIDs: req.MessageIDs,
			UserID:     userID,
		},
	})

	return nil
}

func (s *readReceiptService) MarkOne(ctx context.Context, userID string, req *models.ReadRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.receiptRepo.MarkOne(ctx, userID, req.MessageID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	s.hub.BroadcastToRoom(ws.ChannelRoom(req.ChannelID), ws.Event{
		Op: ws.OpChatReadUpdate,
		Data: ws.ReadUpdateData{
			ChannelID: req.ChannelID,
			MessageID: req.MessageID,
			UserID:    userID,
		},
	})

	return nil
}
