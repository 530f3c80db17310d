package runtime

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
	"github.com/ga-dutra/batepapo-uol-api/repositories"
)

func newTestLog(t *testing.T) *MessageLog {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repository := repositories.NewMessageRepository(db, slog.Default())
	return NewMessageLog(repository, domain.NewBroadcast())
}

func TestMessageLog_Append_Assigns_Id_And_Time(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	log := newTestLog(t).WithClock(func() time.Time { return at })

	msg, err := log.Append(domain.Message{
		From: "alice", To: "Todos", Kind: domain.KindMessage, Text: "hi",
	})
	req.NoError(err)
	req.NotEqual(uuid.Nil, msg.ID)
	req.Equal(at, msg.At)
}

func TestMessageLog_Append_Order_Survives_Frozen_Clock(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	log := newTestLog(t).WithClock(func() time.Time { return at })

	// Every append gets the same timestamp; delivery order must still
	// be insertion order
	var sent []string
	for _, text := range []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6", "m7"} {
		sent = append(sent, text)
		_, err := log.Append(domain.Message{
			From: "alice", To: "Todos", Kind: domain.KindMessage, Text: text,
		})
		req.NoError(err)
	}

	view, err := log.VisibleTo("bob")
	req.NoError(err)
	req.Equal(sent, lo.Map(view, func(m domain.Message, _ int) string { return m.Text }))
}

func TestMessageLog_VisibleTo(t *testing.T) {
	req := require.New(t)
	log := newTestLog(t)

	_, err := log.Append(domain.Message{From: "alice", To: "Todos", Kind: domain.KindMessage, Text: "room"})
	req.NoError(err)
	_, err = log.Append(domain.Message{From: "alice", To: "bob", Kind: domain.KindPrivate, Text: "secret"})
	req.NoError(err)

	texts := func(msgs []domain.Message) []string {
		return lo.Map(msgs, func(m domain.Message, _ int) string { return m.Text })
	}

	aliceView, err := log.VisibleTo("alice")
	req.NoError(err)
	req.Equal([]string{"room", "secret"}, texts(aliceView))

	bobView, err := log.VisibleTo("bob")
	req.NoError(err)
	req.Equal([]string{"room", "secret"}, texts(bobView))

	carolView, err := log.VisibleTo("carol")
	req.NoError(err)
	req.Equal([]string{"room"}, texts(carolView))
}

func TestMessageLog_Edit_Ownership(t *testing.T) {
	req := require.New(t)
	log := newTestLog(t)

	msg, err := log.Append(domain.Message{From: "alice", To: "Todos", Kind: domain.KindMessage, Text: "draft"})
	req.NoError(err)

	// A non-author edit fails and leaves the message unchanged
	req.ErrorIs(log.Edit(msg.ID, "bob", "hijacked"), errors.ErrForbidden)
	view, err := log.VisibleTo("alice")
	req.NoError(err)
	req.Equal("draft", view[0].Text)

	// The author may edit; only the text changes
	req.NoError(log.Edit(msg.ID, "alice", "final"))
	view, err = log.VisibleTo("alice")
	req.NoError(err)
	req.Equal("final", view[0].Text)
	req.Equal(msg.ID, view[0].ID)
	req.Equal(msg.At, view[0].At)
	req.Equal(domain.KindMessage, view[0].Kind)
}

func TestMessageLog_Edit_Missing(t *testing.T) {
	req := require.New(t)
	log := newTestLog(t)
	req.ErrorIs(log.Edit(uuid.New(), "alice", "nope"), errors.ErrNotFound)
}

func TestMessageLog_Delete_Ownership(t *testing.T) {
	req := require.New(t)
	log := newTestLog(t)

	msg, err := log.Append(domain.Message{From: "alice", To: "Todos", Kind: domain.KindMessage, Text: "oops"})
	req.NoError(err)

	req.ErrorIs(log.Delete(msg.ID, "bob"), errors.ErrForbidden)
	req.NoError(log.Delete(msg.ID, "alice"))

	// A second delete loses the race and sees the absence
	req.ErrorIs(log.Delete(msg.ID, "alice"), errors.ErrNotFound)

	view, err := log.VisibleTo("alice")
	req.NoError(err)
	req.Empty(view)
}
