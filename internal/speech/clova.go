package speech

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"voice-trading-bot/internal/api"
	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
)

const clovaSTTURL = "https://naveropenapi.apigw.ntruss.com/recog/v1/stt"

// Clova transcribes Korean speech through the NAVER Cloud CSR API.
type Clova struct {
	clientID     string
	clientSecret string
	c            *api.Client
}

var _ interfaces.Transcriber = (*Clova)(nil)

func NewClova(clientID, clientSecret string) *Clova {
	return &Clova{
		clientID:     clientID,
		clientSecret: clientSecret,
		c: api.NewClient(
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
	}
}

// Transcribe sends raw audio bytes and returns the recognized text.
func (cl *Clova) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio payload")
	}

	resp, err := cl.c.Do(api.NewRequest(http.MethodPost, clovaSTTURL).
		WithContext(ctx).
		WithQuery("lang", "Kor").
		WithHeader("X-NCP-APIGW-API-KEY-ID", cl.clientID).
		WithHeader("X-NCP-APIGW-API-KEY", cl.clientSecret).
		WithHeader("Content-Type", "application/octet-stream").
		WithRawBody(audio))
	if err != nil {
		return "", err
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", err
	}

	text := strings.TrimSpace(body.Text)
	logger.Info(ctx, "Speech transcribed", "bytes", len(audio), "chars", len([]rune(text)))
	return text, nil
}
