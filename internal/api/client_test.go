package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/itemdesk/internal/model"
	"github.com/Makepad-fr/itemdesk/internal/session"
)

type seenRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// recorder is a fake API: it records every request and answers with the
// configured status and body.
type recorder struct {
	mu     sync.Mutex
	seen   []seenRequest
	status int
	body   string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	rec.mu.Lock()
	rec.seen = append(rec.seen, seenRequest{Method: r.Method, Path: r.URL.EscapedPath(), Header: r.Header.Clone(), Body: string(b)})
	status, body := rec.status, rec.body
	rec.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (rec *recorder) requests() []seenRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]seenRequest(nil), rec.seen...)
}

func newTestClient(t *testing.T, rec *recorder, st session.Store) *Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api", Session: st})
}

func TestRequestInterceptorAttachesToken(t *testing.T) {
	rec := &recorder{body: `[]`}
	st := session.NewMemoryStore(&session.Session{Token: "abc"})
	c := newTestClient(t, rec, st)

	_, err := c.ListItems(context.Background())
	require.NoError(t, err)

	reqs := rec.requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "Bearer abc", reqs[0].Header.Get("Authorization"))
	require.Equal(t, "application/json", reqs[0].Header.Get("Accept"))
	require.NotEmpty(t, reqs[0].Header.Get("X-Request-ID"))
	require.Equal(t, "/api/items", reqs[0].Path)
}

func TestRequestInterceptorWithoutToken(t *testing.T) {
	rec := &recorder{body: `[]`}
	c := newTestClient(t, rec, session.NewMemoryStore(nil))

	_, err := c.ListItems(context.Background())
	require.NoError(t, err)
	require.Empty(t, rec.requests()[0].Header.Get("Authorization"))
}

type brokenStore struct{ session.MemoryStore }

var errDisk = errors.New("disk on fire")

func (*brokenStore) Load() (*session.Session, error) { return nil, errDisk }

func TestRequestInterceptorPropagatesStoreError(t *testing.T) {
	rec := &recorder{body: `[]`}
	c := newTestClient(t, rec, &brokenStore{})

	_, err := c.ListItems(context.Background())
	require.ErrorIs(t, err, errDisk)
	require.Empty(t, rec.requests())
}

func TestUnauthorizedClearsSession(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized, body: `{"message":"Token expired"}`}
	st := session.NewMemoryStore(&session.Session{Token: "stale"})
	c := newTestClient(t, rec, st)

	_, err := c.CreateItem(context.Background(), model.ItemInput{Title: "Milk", Description: "two litres"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, http.StatusUnauthorized, StatusOf(err))
	require.Equal(t, "Token expired", Message(err, "fallback"))

	s, err := st.Load()
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestOtherErrorsKeepSession(t *testing.T) {
	st := session.NewMemoryStore(&session.Session{Token: "abc"})

	t.Run("with message", func(t *testing.T) {
		rec := &recorder{status: http.StatusUnprocessableEntity, body: `{"message":"Title already taken"}`}
		c := newTestClient(t, rec, st)
		_, err := c.UpdateItem(context.Background(), "3", model.ItemInput{Title: "Milk", Description: "two litres"})
		require.Error(t, err)
		require.False(t, errors.Is(err, ErrUnauthorized))
		require.Equal(t, "Title already taken", Message(err, "Failed to save data"))
	})

	t.Run("without message", func(t *testing.T) {
		rec := &recorder{status: http.StatusInternalServerError}
		c := newTestClient(t, rec, st)
		err := c.DeleteItem(context.Background(), "3")
		require.Equal(t, http.StatusInternalServerError, StatusOf(err))
		require.Equal(t, "Failed to delete data", Message(err, "Failed to delete data"))
	})

	tok, err := session.Token(st)
	require.NoError(t, err)
	require.Equal(t, "abc", tok)
}

func TestLogin(t *testing.T) {
	rec := &recorder{body: `{"token":"abc","user":{"id":1,"name":"Alice","email":"a@b.com"}}`}
	c := newTestClient(t, rec, session.NewMemoryStore(nil))

	res, err := c.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "abc", res.Token)
	require.Equal(t, "Alice", res.User.Name)

	req := rec.requests()[0]
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "/api/auth/login", req.Path)
	require.JSONEq(t, `{"email":"a@b.com","password":"secret"}`, req.Body)
	require.Contains(t, req.Header.Get("Content-Type"), "application/json")
}

func TestLoginWithoutToken(t *testing.T) {
	rec := &recorder{body: `{"message":"ok"}`}
	c := newTestClient(t, rec, session.NewMemoryStore(nil))
	_, err := c.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret"})
	require.ErrorIs(t, err, ErrNoToken)
}

func TestLoginRejectedShowsServerMessage(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized, body: `{"message":"Wrong password"}`}
	c := newTestClient(t, rec, session.NewMemoryStore(nil))
	_, err := c.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "nope"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "Wrong password", Message(err, "Invalid email or password"))
}

func TestRegister(t *testing.T) {
	rec := &recorder{status: http.StatusCreated, body: `{"message":"created"}`}
	c := newTestClient(t, rec, session.NewMemoryStore(nil))
	err := c.Register(context.Background(), model.Registration{Name: "Alice", Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "/api/auth/register", rec.requests()[0].Path)
}

func TestItemCalls(t *testing.T) {
	rec := &recorder{body: `{"id":9,"title":"Milk","description":"two litres"}`}
	c := newTestClient(t, rec, session.NewMemoryStore(&session.Session{Token: "abc"}))
	ctx := context.Background()
	in := model.ItemInput{Title: "Milk", Description: "two litres"}

	created, err := c.CreateItem(ctx, in)
	require.NoError(t, err)
	require.Equal(t, model.ItemID("9"), created.ID)

	_, err = c.UpdateItem(ctx, "a/b", in)
	require.NoError(t, err)
	require.NoError(t, c.DeleteItem(ctx, "9"))

	reqs := rec.requests()
	require.Len(t, reqs, 3)
	require.Equal(t, [2]string{http.MethodPost, "/api/items"}, [2]string{reqs[0].Method, reqs[0].Path})
	require.Equal(t, [2]string{http.MethodPut, "/api/items/a%2Fb"}, [2]string{reqs[1].Method, reqs[1].Path})
	require.Equal(t, [2]string{http.MethodDelete, "/api/items/9"}, [2]string{reqs[2].Method, reqs[2].Path})

	var body model.ItemInput
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	require.Equal(t, in, body)

	require.Error(t, c.DeleteItem(ctx, ""))
}

func TestListItemsEmptyBody(t *testing.T) {
	rec := &recorder{body: `null`}
	c := newTestClient(t, rec, session.NewMemoryStore(&session.Session{Token: "abc"}))
	items, err := c.ListItems(context.Background())
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Options{BaseURL: srv.URL, Session: session.NewMemoryStore(nil)})

	_, err := c.ListItems(context.Background())
	require.Error(t, err)
	require.Zero(t, StatusOf(err))
	require.Equal(t, "Failed to load data. Please refresh the page.", Message(err, "Failed to load data. Please refresh the page."))
}

func TestMessageFromPlainText(t *testing.T) {
	require.Equal(t, "Invalid or expired token", messageFrom([]byte("Invalid or expired token\n")))
	require.Equal(t, "nope", messageFrom([]byte(`{"error":"nope"}`)))
	require.Empty(t, messageFrom([]byte("<html>bad gateway</html>")))
	require.Empty(t, messageFrom(nil))
}
