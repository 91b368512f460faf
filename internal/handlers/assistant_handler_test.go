package handlers

import (
	"net/http"
	"testing"

	"task-secretary-api/internal/ai"

	"github.com/stretchr/testify/require"
)

func TestAssist(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, "alice@example.com")
	task := env.createTask(t, token, paintPayload(false))

	w := env.do(t, http.MethodPost, "/api/assistant", token, map[string]string{"taskId": task.ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Start with the paint.", decode[map[string]string](t, w)["answer"])

	w = env.do(t, http.MethodPost, "/api/assistant", token, map[string]string{"taskId": "task-404"})
	require.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPost, "/api/assistant", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	env.h.Assistant = fakeAssistant{err: ai.ErrNotConfigured}
	w = env.do(t, http.MethodPost, "/api/assistant", token, map[string]string{"title": "x"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	env.h.Assistant = fakeAssistant{err: errBoom}
	w = env.do(t, http.MethodPost, "/api/assistant", token, map[string]string{"title": "x"})
	require.Equal(t, http.StatusBadGateway, w.Code)
}
