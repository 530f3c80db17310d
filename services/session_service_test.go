package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
	"github.com/ga-dutra/batepapo-uol-api/mocks"
	"github.com/ga-dutra/batepapo-uol-api/moderation"
)

type serviceMocks struct {
	registry     *mocks.MockIRegistry
	messages     *mocks.MockIMessageLog
	participants *mocks.MockIParticipantRepository
}

func newTestService(t *testing.T, censored []string) (*SessionService, serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		registry:     mocks.NewMockIRegistry(ctrl),
		messages:     mocks.NewMockIMessageLog(ctrl),
		participants: mocks.NewMockIParticipantRepository(ctrl),
	}
	moderator, err := moderation.NewModerator(censored, '*')
	require.NoError(t, err)
	svc := NewSessionService(slog.Default(), m.registry, m.messages,
		m.participants, moderator, domain.NewBroadcast())
	return svc, m
}

func TestSessionService_Join(t *testing.T) {
	t.Run("should register and post the arrival notice", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		joined := domain.Participant{Name: "alice", LastSeen: time.Now().UTC()}
		m.registry.EXPECT().Join("alice").Return(joined, nil).Times(1)
		m.messages.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(msg domain.Message) (domain.Message, error) {
				req.Equal("alice", msg.From)
				req.Equal("Todos", msg.To)
				req.Equal(domain.KindStatus, msg.Kind)
				req.Equal(domain.StatusJoined, msg.Text)
				return msg, nil
			}).
			Times(1)

		participant, err := svc.Join(domain.JoinCommand{Name: "alice"})
		req.NoError(err)
		req.Equal(joined, participant)
	})

	t.Run("should fail validation before touching state", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		// Registry and log must never be called
		m.registry.EXPECT().Join(gomock.Any()).Times(0)
		m.messages.EXPECT().Append(gomock.Any()).Times(0)

		_, err := svc.Join(domain.JoinCommand{Name: ""})
		var validationErrs validator.ValidationErrors
		req.ErrorAs(err, &validationErrs)
	})

	t.Run("should propagate a taken name", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		m.registry.EXPECT().Join("alice").Return(domain.Participant{}, errors.ErrNameTaken).Times(1)
		m.messages.EXPECT().Append(gomock.Any()).Times(0)

		_, err := svc.Join(domain.JoinCommand{Name: "alice"})
		req.ErrorIs(err, errors.ErrNameTaken)
	})
}

func TestSessionService_Send(t *testing.T) {
	t.Run("should append a moderated message", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, []string{"badger"})

		m.participants.EXPECT().
			FindByName("alice").
			Return(domain.Participant{Name: "alice"}, nil).
			Times(1)
		m.messages.EXPECT().
			Append(gomock.Any()).
			DoAndReturn(func(msg domain.Message) (domain.Message, error) {
				req.Equal("alice", msg.From)
				req.Equal("bob", msg.To)
				req.Equal(domain.KindPrivate, msg.Kind)
				// The banned word went through moderation
				req.Equal("a ****** bit me", msg.Text)
				return msg, nil
			}).
			Times(1)

		_, err := svc.Send(domain.SendMessageCommand{
			From: "alice", To: "bob", Kind: domain.KindPrivate, Text: "a badger bit me",
		})
		req.NoError(err)
	})

	t.Run("should fail without identity", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newTestService(t, nil)

		_, err := svc.Send(domain.SendMessageCommand{To: "bob", Kind: domain.KindMessage, Text: "hi"})
		req.ErrorIs(err, errors.ErrMissingIdentity)
	})

	t.Run("should fail for an unregistered identity", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		m.participants.EXPECT().
			FindByName("ghost").
			Return(domain.Participant{}, errors.ErrNotFound).
			Times(1)
		m.messages.EXPECT().Append(gomock.Any()).Times(0)

		_, err := svc.Send(domain.SendMessageCommand{
			From: "ghost", To: "Todos", Kind: domain.KindMessage, Text: "boo",
		})
		req.ErrorIs(err, errors.ErrUnknownUser)
	})

	t.Run("should reject a status kind from clients", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		m.participants.EXPECT().
			FindByName("alice").
			Return(domain.Participant{Name: "alice"}, nil).
			Times(1)
		m.messages.EXPECT().Append(gomock.Any()).Times(0)

		_, err := svc.Send(domain.SendMessageCommand{
			From: "alice", To: "Todos", Kind: domain.KindStatus, Text: "fake notice",
		})
		var validationErrs validator.ValidationErrors
		req.ErrorAs(err, &validationErrs)
	})
}

func TestSessionService_ListMessages(t *testing.T) {
	t.Run("should trim to the last n", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		visible := []domain.Message{{Text: "one"}, {Text: "two"}, {Text: "three"}}
		m.messages.EXPECT().VisibleTo("alice").Return(visible, nil).Times(1)

		limit := 2
		view, err := svc.ListMessages(domain.ListMessagesCommand{User: "alice", Limit: &limit})
		req.NoError(err)
		req.Equal(visible[1:], view)
	})

	t.Run("should fail without identity", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newTestService(t, nil)

		_, err := svc.ListMessages(domain.ListMessagesCommand{})
		req.ErrorIs(err, errors.ErrMissingIdentity)
	})
}

func TestSessionService_Heartbeat(t *testing.T) {
	req := require.New(t)
	svc, m := newTestService(t, nil)

	m.registry.EXPECT().Heartbeat("alice").Return(nil).Times(1)
	req.NoError(svc.Heartbeat("alice"))

	req.ErrorIs(svc.Heartbeat(""), errors.ErrMissingIdentity)
}

func TestSessionService_EditMessage(t *testing.T) {
	t.Run("should moderate the replacement text", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, []string{"badger"})
		id := uuid.New()

		m.participants.EXPECT().
			FindByName("alice").
			Return(domain.Participant{Name: "alice"}, nil).
			Times(1)
		m.messages.EXPECT().Edit(id, "alice", "****** again").Return(nil).Times(1)

		req.NoError(svc.EditMessage(domain.EditMessageCommand{
			User: "alice", ID: id, Text: "badger again",
		}))
	})

	t.Run("should fail for an unregistered identity", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)

		m.participants.EXPECT().
			FindByName("ghost").
			Return(domain.Participant{}, errors.ErrNotFound).
			Times(1)
		m.messages.EXPECT().Edit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := svc.EditMessage(domain.EditMessageCommand{
			User: "ghost", ID: uuid.New(), Text: "hi",
		})
		req.ErrorIs(err, errors.ErrUnknownUser)
	})

	t.Run("should propagate ownership failures", func(t *testing.T) {
		req := require.New(t)
		svc, m := newTestService(t, nil)
		id := uuid.New()

		m.participants.EXPECT().
			FindByName("bob").
			Return(domain.Participant{Name: "bob"}, nil).
			Times(1)
		m.messages.EXPECT().Edit(id, "bob", "mine now").Return(errors.ErrForbidden).Times(1)

		err := svc.EditMessage(domain.EditMessageCommand{User: "bob", ID: id, Text: "mine now"})
		req.ErrorIs(err, errors.ErrForbidden)
	})
}

func TestSessionService_DeleteMessage(t *testing.T) {
	req := require.New(t)
	svc, m := newTestService(t, nil)
	id := uuid.New()

	m.messages.EXPECT().Delete(id, "alice").Return(nil).Times(1)
	req.NoError(svc.DeleteMessage(domain.DeleteMessageCommand{User: "alice", ID: id}))

	req.ErrorIs(svc.DeleteMessage(domain.DeleteMessageCommand{ID: id}),
		errors.ErrMissingIdentity)
	req.ErrorIs(svc.DeleteMessage(domain.DeleteMessageCommand{User: "alice"}),
		errors.ErrNotFound)
}
