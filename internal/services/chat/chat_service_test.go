package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

type mockImages struct {
	mock.Mock
}

func (m *mockImages) UploadImage(ctx context.Context, file io.Reader, subfolder string) (string, error) {
	args := m.Called(ctx, file, subfolder)
	return args.String(0), args.Error(1)
}

type fixture struct {
	store  *memdb.DB
	images *mockImages
	svc    *ChatService
	ana    models.User
	luis   models.User
	carla  models.User
	admin  models.User
	chat   *models.Chat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	images := &mockImages{}
	f := &fixture{
		store:  store,
		images: images,
		svc:    NewChatService(store, outbox.NewDispatcher(store, time.Second), images),
		ana:    store.AddUser(models.User{FirstName: "Ana", Active: true}),
		luis:   store.AddUser(models.User{FirstName: "Luis", LastName: "Gómez", Active: true}),
		carla:  store.AddUser(models.User{FirstName: "Carla", Active: true}),
		admin:  store.AddUser(models.User{FirstName: "Soporte", Active: true, IsAdmin: true}),
	}
	e := store.AddExchange(models.Exchange{ProposerID: f.ana.ID, ReceiverID: f.luis.ID, OfferedProductID: 1, Status: models.ExchangePending})
	f.chat = &models.Chat{ExchangeID: e.ID}
	require.NoError(t, store.CreateChat(context.Background(), f.chat))
	return f
}

func TestSend_NotifiesCounterparty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, &f.ana, f.chat.ID, SendInput{Content: "  Hola, ¿sigue disponible?  "})
	require.NoError(t, err)
	assert.Equal(t, "Hola, ¿sigue disponible?", msg.Content)
	assert.Equal(t, models.MessageText, msg.Type)

	notifs := f.store.Notifications(f.luis.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotifNewMessage, notifs[0].Type)
	assert.Equal(t, "Nuevo mensaje de Ana", notifs[0].Title)
	assert.Empty(t, f.store.Notifications(f.ana.ID))
}

func TestSend_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, &f.ana, f.chat.ID, SendInput{Content: "   "})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = f.svc.Send(ctx, &f.carla, f.chat.ID, SendInput{Content: "hola"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Send(ctx, &f.ana, 777, SendInput{Content: "hola"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMessages_MarksIncomingRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, &f.ana, f.chat.ID, SendInput{Content: "uno"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, &f.luis, f.chat.ID, SendInput{Content: "dos"})
	require.NoError(t, err)

	chats, err := f.svc.ListChats(ctx, &f.luis)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, 1, chats[0].UnreadCount)
	require.NotNil(t, chats[0].Counterparty)
	assert.Equal(t, f.ana.ID, chats[0].Counterparty.ID)

	messages, err := f.svc.Messages(ctx, &f.luis, f.chat.ID, 0, 50)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	chats, err = f.svc.ListChats(ctx, &f.luis)
	require.NoError(t, err)
	assert.Equal(t, 0, chats[0].UnreadCount)

	_, err = f.svc.Messages(ctx, &f.carla, f.chat.ID, 0, 50)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestSendImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	subfolder := "chat_" + strconv.FormatInt(f.chat.ID, 10)

	f.images.On("UploadImage", mock.Anything, mock.Anything, subfolder).
		Return("https://res.cloudinary.com/demo/image/upload/foto.jpg", nil).Once()

	msg, err := f.svc.SendImage(ctx, &f.ana, f.chat.ID, strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, models.MessageImage, msg.Type)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/foto.jpg", msg.Content)

	notifs := f.store.Notifications(f.luis.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "📷 Imagen", notifs[0].Message)

	f.images.On("UploadImage", mock.Anything, mock.Anything, subfolder).
		Return("", errors.New("cloudinary caído")).Once()
	_, err = f.svc.SendImage(ctx, &f.ana, f.chat.ID, strings.NewReader("jpeg"))
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	_, err = f.svc.SendImage(ctx, &f.carla, f.chat.ID, strings.NewReader("jpeg"))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	f.images.AssertExpectations(t)
}

func TestSendImage_InactiveChatSkipsUpload(t *testing.T) {
	f := newFixture(t)
	f.store.SetChatActive(f.chat.ID, false)

	_, err := f.svc.SendImage(context.Background(), &f.ana, f.chat.ID, strings.NewReader("jpeg"))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, "El chat no está activo", apperr.PublicMessage(err))
	f.images.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.store.Messages(f.chat.ID))
}

func TestSendAdminMessage_NotifiesBoth(t *testing.T) {
	f := newFixture(t)

	msg, err := f.svc.SendAdminMessage(context.Background(), &f.admin, f.chat.ID, "Recordad validar el intercambio")
	require.NoError(t, err)
	assert.True(t, msg.IsAdmin)

	assert.Len(t, f.store.Notifications(f.ana.ID), 1)
	assert.Len(t, f.store.Notifications(f.luis.ID), 1)

	_, err = f.svc.SendAdminMessage(context.Background(), &f.admin, f.chat.ID, strings.Repeat("a", maxMessageLength+1))
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestUploadImageHandler(t *testing.T) {
	f := newFixture(t)
	f.images.On("UploadImage", mock.Anything, mock.Anything, mock.Anything).
		Return("https://res.cloudinary.com/demo/image/upload/x.png", nil)

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("user", &f.luis)
		return c.Next()
	})
	app.Post("/chats/:id/images", f.svc.UploadImage)
	url := "/chats/" + strconv.FormatInt(f.chat.ID, 10) + "/images"

	req := httptest.NewRequest(http.MethodPost, url, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "x.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req = httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	messages := f.store.Messages(f.chat.ID)
	require.Len(t, messages, 1)
	assert.Equal(t, models.MessageImage, messages[0].Type)
}
