package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
)

func askReq(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/chatbot/ask", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestAsk_Success(t *testing.T) {
	svc := &stubChat{answer: &chat.Answer{
		Answer:         "Twenty days per year.",
		ConversationID: "conv-1",
		Sources:        []chat.Source{{DocumentName: "Leave Policy", DocumentID: "hr/leave.json"}},
		Timestamp:      "2026-03-01T12:00:00Z",
	}}
	router := newTestRouter(t, RouterServices{Chat: svc, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"How much leave do I get?"}`), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var answer chat.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, "Twenty days per year.", answer.Answer)
	assert.Equal(t, "conv-1", answer.ConversationID)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "How much leave do I get?", svc.lastIn.Question)
}

func TestAsk_SourcesAlwaysPresent(t *testing.T) {
	router := newTestRouter(t, RouterServices{Chat: &stubChat{}, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"q"}`), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := &stubChat{}
	router := newTestRouter(t, RouterServices{Chat: svc, Stats: &stubStats{}})

	tests := []string{
		`{"question":""}`,
		`{"question":"   "}`,
		`{}`,
	}
	for _, body := range tests {
		req := withBearer(askReq(body), "user")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		code, _ := decodeErrorBody(t, rec)
		assert.Equal(t, "INVALID_QUESTION", code)
	}
	assert.False(t, svc.called)
}

func TestAsk_QuestionTooLong(t *testing.T) {
	svc := &stubChat{}
	router := newTestRouter(t, RouterServices{Chat: svc, Stats: &stubStats{}})

	long := strings.Repeat("а", chat.DefaultMaxQuestionLength+1) // multibyte runes
	body, err := json.Marshal(map[string]string{"question": long})
	require.NoError(t, err)

	req := withBearer(askReq(string(body)), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, "INVALID_QUESTION", code)
	assert.False(t, svc.called)
}

func TestAsk_MalformedBody(t *testing.T) {
	router := newTestRouter(t, RouterServices{Chat: &stubChat{}, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question": `), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, "INVALID_REQUEST", code)
}

func TestAsk_RequiresAuth(t *testing.T) {
	svc := &stubChat{}
	router := newTestRouter(t, RouterServices{Chat: svc, Stats: &stubStats{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, askReq(`{"question":"q"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.False(t, svc.called)
}

func TestAsk_ServiceErrorEnvelope(t *testing.T) {
	svc := &stubChat{err: apperr.Unavailable("the answer service is temporarily unavailable")}
	router := newTestRouter(t, RouterServices{Chat: svc, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"q"}`), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, "SERVICE_UNAVAILABLE", code)
	assert.Equal(t, "the answer service is temporarily unavailable", message)
}

func TestAsk_UnknownErrorBecomesInternal(t *testing.T) {
	svc := &stubChat{err: errors.New("pq: connection reset")}
	router := newTestRouter(t, RouterServices{Chat: svc, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"q"}`), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", code)
	assert.NotContains(t, message, "pq:")
}

// forwardRecorder is an AnswerForwarder capturing the forwarded call.
type forwardRecorder struct {
	question string
	convID   string
	idToken  string
	answer   *chat.Answer
	err      error
}

func (f *forwardRecorder) Forward(_ context.Context, question, conversationID, idToken string) (*chat.Answer, error) {
	f.question = question
	f.convID = conversationID
	f.idToken = idToken
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func TestAsk_ProxyModeForwardsCredential(t *testing.T) {
	fwd := &forwardRecorder{answer: &chat.Answer{
		Answer:         "forwarded",
		ConversationID: "conv-9",
		Sources:        []chat.Source{},
		Timestamp:      "2026-03-01T12:00:00Z",
	}}
	local := &stubChat{}
	router := newTestRouter(t, RouterServices{Chat: local, Upstream: fwd, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"q","conversationId":"conv-9"}`), "user")
	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "q", fwd.question)
	assert.Equal(t, "conv-9", fwd.convID)
	assert.Equal(t, token, fwd.idToken)
	assert.False(t, local.called, "local pipeline must not run in proxy mode")
}

func TestAsk_ProxyModeValidatesBeforeForwarding(t *testing.T) {
	fwd := &forwardRecorder{}
	router := newTestRouter(t, RouterServices{Chat: &stubChat{}, Upstream: fwd, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"  "}`), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fwd.question)
}

func TestAsk_ProxyModePassesThroughUpstreamError(t *testing.T) {
	fwd := &forwardRecorder{err: &apperr.Error{Code: "GATEWAY_ERROR", Message: "the answer service returned an unexpected response", Status: http.StatusBadGateway}}
	router := newTestRouter(t, RouterServices{Chat: &stubChat{}, Upstream: fwd, Stats: &stubStats{}})

	req := withBearer(askReq(`{"question":"q"}`), "user")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, "GATEWAY_ERROR", code)
}
