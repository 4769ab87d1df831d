package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"exam-simulator/internal/app"
	"exam-simulator/internal/domain"
	"exam-simulator/internal/infra/memory"
)

// idleTicker never fires; countdown expiry is covered by the app tests.
type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

func newTestService() *app.ExamService {
	bank := memory.NewQuestionBank(memory.NewStaticLoader(sampleTests()), time.Minute)
	return app.NewExamService(bank, memory.NewSessionStore(), memory.NewResultStore(), app.ExamConfig{
		NewTicker: func(time.Duration) app.Ticker { return idleTicker{} },
	})
}

func newTestServer(t *testing.T, service *app.ExamService) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(service, RouterConfig{}))
	t.Cleanup(server.Close)
	return server
}

func sampleTests() map[domain.TestID]domain.Test {
	return map[domain.TestID]domain.Test{
		"day-1": {
			ID: "day-1",
			Questions: []domain.Question{
				{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Answer: 1},
				{Prompt: "What is 3 + 3?", Options: []string{"6", "7", "8"}, Answer: 0},
			},
		},
	}
}
