package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisperClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "zh", r.FormValue("language"))
		assert.Equal(t, "text", r.FormValue("response_format"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "note.m4a", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "audio-bytes", string(data))

		w.Write([]byte("  今天很开心\n"))
	}))
	defer srv.Close()

	c := NewWhisperClient("key", srv.URL, "")
	text, err := c.Transcribe(context.Background(), "note.m4a", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "今天很开心", text)
}

func TestWhisperClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewWhisperClient("key", srv.URL, "").Transcribe(context.Background(), "a.mp3", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad audio")

	_, err = NewWhisperClient("", srv.URL, "").Transcribe(context.Background(), "a.mp3", strings.NewReader("x"))
	assert.Error(t, err)
}
