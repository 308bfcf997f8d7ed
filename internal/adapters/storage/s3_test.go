package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
)

type fakeObject struct {
	data        []byte
	contentType string
}

// fakeS3 serves path-style PUT and GET object requests from memory.
func fakeS3(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	objects := map[string]fakeObject{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = fakeObject{data: data, contentType: r.Header.Get("Content-Type")}
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			obj, ok := objects[r.URL.Path]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
				return
			}
			w.Header().Set("Content-Type", obj.contentType)
			_, _ = w.Write(obj.data)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T) *S3AttachmentStore {
	t.Helper()
	srv := fakeS3(t)
	store, err := NewS3AttachmentStore(context.Background(), S3Options{
		Bucket:    "attachments",
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return store
}

func TestS3AttachmentStore_PutThenGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bookings/b1/ticket.pdf", "application/pdf", []byte("%PDF-1.4 ticket")))

	data, contentType, err := store.Get(ctx, "bookings/b1/ticket.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 ticket", string(data))
	assert.Equal(t, "application/pdf", contentType)
}

func TestS3AttachmentStore_MissingKey(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Get(context.Background(), "missing.png")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestNewS3AttachmentStore_RequiresBucket(t *testing.T) {
	_, err := NewS3AttachmentStore(context.Background(), S3Options{})
	assert.Error(t, err)
}
