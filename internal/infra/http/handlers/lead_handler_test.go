package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamertech/tradein-backend/internal/entity"
	"github.com/gamertech/tradein-backend/internal/infra/queue"
	"github.com/gamertech/tradein-backend/internal/usecase"
)

// MockLeadProducer
type MockLeadProducer struct {
	mock.Mock
}

func (m *MockLeadProducer) PublishLead(ctx context.Context, payload queue.LeadPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

const leadBody = `{
	"email": "gamer@example.com",
	"phone": "905-247-7085",
	"name": "Aaron",
	"consent": true,
	"selections": [{"Category":"GPU","Item":"GTX1060"}],
	"cash": 80,
	"credit": 120
}`

func TestLeadHandlerBrowsingEnqueues(t *testing.T) {
	producer := new(MockLeadProducer)

	var published queue.LeadPayload
	producer.On("PublishLead", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).(queue.LeadPayload)
	}).Return(nil)

	handler := NewLeadHandler(usecase.NewRecordLeadUseCase(producer))
	req := httptest.NewRequest(http.MethodPost, "/api/leads/quote", strings.NewReader(leadBody))
	rec := httptest.NewRecorder()

	handler.HandleBrowsing(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, entity.StageBrowsing, published.Stage)
	assert.Equal(t, "9052477085", published.Phone)
	assert.True(t, published.ConsentEmail)
}

func TestLeadHandlerLockInSetsCompletedStage(t *testing.T) {
	producer := new(MockLeadProducer)

	var published queue.LeadPayload
	producer.On("PublishLead", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).(queue.LeadPayload)
	}).Return(nil)

	handler := NewLeadHandler(usecase.NewRecordLeadUseCase(producer))
	req := httptest.NewRequest(http.MethodPost, "/api/leads/lock", strings.NewReader(leadBody))
	rec := httptest.NewRecorder()

	handler.HandleLockIn(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.StageCompleted, published.Stage)
}

// The storefront must never see a capture failure: broker down still acks.
func TestLeadHandlerAcksEvenWhenEnqueueFails(t *testing.T) {
	producer := new(MockLeadProducer)
	producer.On("PublishLead", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	handler := NewLeadHandler(usecase.NewRecordLeadUseCase(producer))
	req := httptest.NewRequest(http.MethodPost, "/api/leads/quote", strings.NewReader(leadBody))
	rec := httptest.NewRecorder()

	handler.HandleBrowsing(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestLeadHandlerAcksSubmissionWithoutIdentity(t *testing.T) {
	producer := new(MockLeadProducer)

	handler := NewLeadHandler(usecase.NewRecordLeadUseCase(producer))
	req := httptest.NewRequest(http.MethodPost, "/api/leads/quote", strings.NewReader(`{"name":"Aaron"}`))
	rec := httptest.NewRecorder()

	handler.HandleBrowsing(rec, req)

	// Dropped (nothing to key on), but still acknowledged.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	producer.AssertNotCalled(t, "PublishLead", mock.Anything, mock.Anything)
}

func TestLeadHandlerBadJSON(t *testing.T) {
	producer := new(MockLeadProducer)
	handler := NewLeadHandler(usecase.NewRecordLeadUseCase(producer))

	req := httptest.NewRequest(http.MethodPost, "/api/leads/quote", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()

	handler.HandleBrowsing(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadHandlerRateLimit(t *testing.T) {
	producer := new(MockLeadProducer)
	producer.On("PublishLead", mock.Anything, mock.Anything).Return(nil)

	handler := NewLeadHandler(usecase.NewRecordLeadUseCase(producer))

	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/leads/quote", strings.NewReader(leadBody))
		req.Header.Set("X-Real-IP", "10.0.0.1")
		last = httptest.NewRecorder()
		handler.HandleBrowsing(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	var ack map[string]any
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &ack))
	assert.Equal(t, false, ack["ok"])
}
