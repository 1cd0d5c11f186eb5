package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// ContactAPI accepts public contact messages upstream.
type ContactAPI interface {
	SubmitContact(ctx context.Context, msg *models.Contact) error
}

// ContactService forwards the public contact form.
type ContactService struct {
	api ContactAPI
}

func NewContactService(api ContactAPI) *ContactService {
	return &ContactService{api: api}
}

// Submit validates and forwards a message.
func (s *ContactService) Submit(ctx context.Context, msg models.Contact) error {
	msg.ID = ""
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if err := utils.ValidateStruct(msg); err != nil {
		return err
	}
	if err := s.api.SubmitContact(ctx, &msg); err != nil {
		return upstreamErr(err)
	}
	log.Info().Str("email", msg.Email).Msg("Contact message forwarded")
	return nil
}
