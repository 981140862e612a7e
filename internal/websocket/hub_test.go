package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/cache"
	"github.com/cleberrangel/calculadora-tempos/internal/config"
	"github.com/cleberrangel/calculadora-tempos/internal/engine"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/cleberrangel/calculadora-tempos/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// recordingEstimator guarda o último estado recebido
type recordingEstimator struct {
	last model.EstimateRequest
	err  error
}

func (r *recordingEstimator) Preview(_ context.Context, req model.EstimateRequest) (*model.EstimateResponse, error) {
	r.last = req
	if r.err != nil {
		return nil, r.err
	}
	return &model.EstimateResponse{Status: engine.StatusReady, Mode: engine.Mode(req.Mode)}, nil
}

func newTestService(t *testing.T) *service.EstimateService {
	t.Helper()
	presets, err := config.LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	cfg := &config.Config{
		DefaultPreset:    config.DefaultPresetName,
		WeightPolicy:     engine.WeightStrict,
		OverlapPolicy:    engine.OverlapLongestFirst,
		ExportFilename:   "resultado_tempos.xlsx",
		ExportTTL:        time.Minute,
		ExportMaxEntries: 4,
		MaxInputBytes:    1 << 16,
	}
	return service.NewEstimateService(cfg, presets, cache.NewCache[[]byte](cfg.ExportMaxEntries, cfg.ExportTTL))
}

// drainMessage lê a próxima mensagem enfileirada para o cliente
func drainMessage(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("mensagem inválida: %v", err)
		}
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("nenhuma mensagem enfileirada")
	}
	return Message{}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(&recordingEstimator{}, 1024)
	client := NewClient(hub, "sessao-1")

	hub.registerClient(client)
	if hub.GetConnectionCount() != 1 {
		t.Fatalf("GetConnectionCount = %d, esperado 1", hub.GetConnectionCount())
	}
	if msg := drainMessage(t, client); msg.Type != TypeConnection {
		t.Errorf("primeira mensagem = %s, esperado connection", msg.Type)
	}

	hub.unregisterClient(client)
	hub.unregisterClient(client) // segunda chamada não pode fechar o canal de novo
	if hub.GetConnectionCount() != 0 {
		t.Errorf("GetConnectionCount = %d após unregister", hub.GetConnectionCount())
	}

	// envio após o fechamento é ignorado
	client.SendMessage(Message{Type: TypePong})
}

func TestHubStaleSessions(t *testing.T) {
	hub := NewHub(&recordingEstimator{}, 1024)
	fresh := NewClient(hub, "ativa")
	idle := NewClient(hub, "parada")
	hub.registerClient(fresh)
	hub.registerClient(idle)

	if n := hub.StaleSessions(StaleAfter); n != 0 {
		t.Fatalf("StaleSessions = %d logo após conectar, esperado 0", n)
	}

	idle.touch(time.Now().Add(-2 * StaleAfter))
	if n := hub.StaleSessions(StaleAfter); n != 1 {
		t.Errorf("StaleSessions = %d, esperado 1", n)
	}

	// um ping da aplicação renova a sessão
	idle.handleMessage([]byte(`{"type":"ping"}`))
	if n := hub.StaleSessions(StaleAfter); n != 0 {
		t.Errorf("StaleSessions = %d após ping, esperado 0", n)
	}
	if time.Since(idle.LastPing()) > time.Minute {
		t.Errorf("LastPing não foi atualizado: %v", idle.LastPing())
	}
}

func TestClientHandleMessages(t *testing.T) {
	est := &recordingEstimator{}
	hub := NewHub(est, 1024)
	client := NewClient(hub, "sessao-2")

	tests := []struct {
		name     string
		payload  string
		wantType string
	}{
		{"ping", `{"type":"ping"}`, TypePong},
		{"input", `{"type":"input","data":{"text":"Origem","mode":"free_text"}}`, TypeResult},
		{"json inválido", `{"type":`, TypeError},
		{"data inválido", `{"type":"input","data":{"text":1}}`, TypeError},
		{"tipo desconhecido", `{"type":"subscribe"}`, TypeError},
		{"reset", `{"type":"reset"}`, TypeResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client.handleMessage([]byte(tt.payload))
			if msg := drainMessage(t, client); msg.Type != tt.wantType {
				t.Errorf("tipo = %s, esperado %s", msg.Type, tt.wantType)
			}
		})
	}

	if est.last.Text != "" {
		t.Errorf("reset deveria limpar o estado, texto = %q", est.last.Text)
	}
}

func TestClientMergesPartialUpdates(t *testing.T) {
	est := &recordingEstimator{}
	client := NewClient(NewHub(est, 1024), "sessao-3")

	client.handleMessage([]byte(`{"type":"input","data":{"text":"Origem Canal"}}`))
	drainMessage(t, client)
	client.handleMessage([]byte(`{"type":"input","data":{"weights":{"Origem":"00:45"}}}`))
	drainMessage(t, client)

	if est.last.Text != "Origem Canal" {
		t.Errorf("texto perdido no merge: %q", est.last.Text)
	}
	if est.last.Weights["Origem"] != "00:45" {
		t.Errorf("pesos não aplicados: %v", est.last.Weights)
	}
}

// Para qualquer sequência de textos enviados, o estado final é o último
// texto não vazio
func TestClientStateProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("último texto não vazio prevalece", prop.ForAll(
		func(texts []string) bool {
			est := &recordingEstimator{}
			client := NewClient(NewHub(est, 1<<20), "prop")

			want := ""
			for _, text := range texts {
				payload, _ := json.Marshal(map[string]interface{}{
					"type": TypeInput,
					"data": model.EstimateRequest{Text: text},
				})
				client.handleMessage(payload)
				<-client.Send
				if text != "" {
					want = text
				}
			}
			return len(texts) == 0 || est.last.Text == want
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestClientReportsWeightIssues(t *testing.T) {
	hub := NewHub(newTestService(t), 1<<16)
	client := NewClient(hub, "sessao-4")

	client.handleMessage([]byte(`{"type":"input","data":{"text":"Origem","weights":{"Origem":"xx"}}}`))
	msg := drainMessage(t, client)
	if msg.Type != TypeError {
		t.Fatalf("tipo = %s, esperado error", msg.Type)
	}

	data, _ := json.Marshal(msg.Data)
	var body model.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("corpo de erro inválido: %v", err)
	}
	if len(body.Issues) != 1 || body.Issues[0].Component != "Origem" {
		t.Errorf("issues = %+v", body.Issues)
	}
}

func TestServeWSLiveSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(newTestService(t), 1<<16)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	read := func() Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != TypeConnection {
		t.Fatalf("primeira mensagem = %s", msg.Type)
	}

	if err := conn.WriteJSON(map[string]interface{}{
		"type": TypeInput,
		"data": map[string]string{"text": "Origem Canal Join Join Término"},
	}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	msg := read()
	if msg.Type != TypeResult {
		t.Fatalf("tipo = %s, esperado result", msg.Type)
	}
	data, _ := json.Marshal(msg.Data)
	var resp model.EstimateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("resultado inválido: %v", err)
	}
	if resp.Total == nil || resp.Total.Total != "03:45" || resp.ExportID != "" {
		t.Errorf("resultado inesperado: %+v", resp)
	}

	if hub.GetConnectionCount() != 1 {
		t.Errorf("GetConnectionCount = %d, esperado 1", hub.GetConnectionCount())
	}
}

func TestTokenFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got string
	r := gin.New()
	r.Use(TokenFromQuery())
	r.GET("/ws", func(c *gin.Context) {
		got = c.GetHeader("Authorization")
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Bearer abc" {
		t.Errorf("Authorization = %q, esperado Bearer abc", got)
	}
}
