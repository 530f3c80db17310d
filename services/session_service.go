//go:generate go run go.uber.org/mock/mockgen -source=session_service.go -destination=../mocks/mock_session_service.go -package=mocks
package services

import (
	stderrors "errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ga-dutra/batepapo-uol-api/contract"
	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
	"github.com/ga-dutra/batepapo-uol-api/moderation"
	"github.com/ga-dutra/batepapo-uol-api/projection"
	"github.com/ga-dutra/batepapo-uol-api/repositories"
)

var validate = validator.New()

type ISessionService interface {
	Join(cmd domain.JoinCommand) (domain.Participant, error)
	ListParticipants() ([]domain.Participant, error)
	Send(cmd domain.SendMessageCommand) (domain.Message, error)
	ListMessages(cmd domain.ListMessagesCommand) ([]domain.Message, error)
	Heartbeat(name string) error
	EditMessage(cmd domain.EditMessageCommand) error
	DeleteMessage(cmd domain.DeleteMessageCommand) error
}

// SessionService translates client commands into registry and log
// calls. It owns the identity and ownership checks; a structural
// validation failure never reaches storage.
type SessionService struct {
	log          *slog.Logger
	registry     contract.IRegistry
	messages     contract.IMessageLog
	participants repositories.IParticipantRepository
	moderator    moderation.Moderator
	broadcast    domain.Broadcast
}

func NewSessionService(
	log *slog.Logger,
	registry contract.IRegistry,
	messages contract.IMessageLog,
	participants repositories.IParticipantRepository,
	moderator moderation.Moderator,
	broadcast domain.Broadcast,
) *SessionService {
	return &SessionService{
		log:          log,
		registry:     registry,
		messages:     messages,
		participants: participants,
		moderator:    moderator,
		broadcast:    broadcast,
	}
}

// Join registers the participant and posts the arrival notice the
// legacy API emitted on every successful join.
func (s *SessionService) Join(cmd domain.JoinCommand) (domain.Participant, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Participant{}, err
	}

	participant, err := s.registry.Join(cmd.Name)
	if err != nil {
		return domain.Participant{}, err
	}

	_, err = s.messages.Append(domain.Message{
		From: participant.Name,
		To:   s.broadcast.Primary(),
		Kind: domain.KindStatus,
		Text: domain.StatusJoined,
	})
	if err != nil {
		// The registration itself stands; the caller still learns the
		// notice was lost.
		return participant, err
	}
	return participant, nil
}

func (s *SessionService) ListParticipants() ([]domain.Participant, error) {
	return s.registry.List()
}

// Send appends a client-originated message. The author comes from the
// acting identity and must name a registered participant; the kind is
// restricted to the client set, and the text goes through moderation.
func (s *SessionService) Send(cmd domain.SendMessageCommand) (domain.Message, error) {
	if cmd.From == "" {
		return domain.Message{}, errors.ErrMissingIdentity
	}
	if _, err := s.participants.FindByName(cmd.From); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Message{}, errors.ErrUnknownUser
		}
		return domain.Message{}, err
	}
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, err
	}

	return s.messages.Append(domain.Message{
		From: cmd.From,
		To:   cmd.To,
		Kind: cmd.Kind,
		Text: s.moderator.Censor(cmd.Text),
	})
}

// ListMessages returns the acting identity's view of the log, oldest
// to newest, trimmed to the last N when a limit is supplied.
func (s *SessionService) ListMessages(cmd domain.ListMessagesCommand) ([]domain.Message, error) {
	if cmd.User == "" {
		return nil, errors.ErrMissingIdentity
	}
	visible, err := s.messages.VisibleTo(cmd.User)
	if err != nil {
		return nil, err
	}
	return projection.Tail(visible, cmd.Limit), nil
}

// Heartbeat refreshes the acting identity's liveness. An unknown or
// already-evicted identity must rejoin.
func (s *SessionService) Heartbeat(name string) error {
	if name == "" {
		return errors.ErrMissingIdentity
	}
	return s.registry.Heartbeat(name)
}

// EditMessage replaces the text of a message the requester authored.
func (s *SessionService) EditMessage(cmd domain.EditMessageCommand) error {
	if _, err := s.participants.FindByName(cmd.User); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return errors.ErrUnknownUser
		}
		return err
	}
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	return s.messages.Edit(cmd.ID, cmd.User, s.moderator.Censor(cmd.Text))
}

// DeleteMessage removes a message the requester authored. Mirroring
// the legacy API, no registration check is made here: ownership of the
// message is the only gate.
func (s *SessionService) DeleteMessage(cmd domain.DeleteMessageCommand) error {
	if cmd.User == "" {
		return errors.ErrMissingIdentity
	}
	if cmd.ID == uuid.Nil {
		return errors.ErrNotFound
	}
	return s.messages.Delete(cmd.ID, cmd.User)
}
