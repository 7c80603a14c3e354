package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/internal/model/speech"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

// successCode is reported by the TTS server on every healthy frame.
const successCode = 3000

// ErrEmptyText is returned for requests with nothing to speak.
var ErrEmptyText = errors.New("TTS text is empty")

// Synthesizer turns text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error)
}

// WSClient talks to the binary streaming TTS endpoint. The request is a
// gzip-compressed JSON payload in a full-client-request frame; the server
// answers with audio-only frames and marks the last one with a negative
// sequence number.
type WSClient struct {
	cfg    config.SpeechConfig
	dialer *websocket.Dialer
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration int64 `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

type ttsClientRequest struct {
	App struct {
		AppID   string `json:"appid"`
		Token   string `json:"token"`
		Cluster string `json:"cluster"`
	} `json:"app"`
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	Audio struct {
		VoiceType     string  `json:"voice_type"`
		Encoding      string  `json:"encoding"`
		SpeedRatio    float32 `json:"speed_ratio,omitempty"`
		VolumeRatio   float32 `json:"volume_ratio,omitempty"`
		Language      string  `json:"language,omitempty"`
		EnableEmotion bool    `json:"enable_emotion,omitempty"`
		Emotion       string  `json:"emotion,omitempty"`
		EmotionScale  float32 `json:"emotion_scale,omitempty"`
	} `json:"audio"`
	Request struct {
		ReqID     string `json:"reqid"`
		Text      string `json:"text"`
		Operation string `json:"operation"`
	} `json:"request"`
}

// NewWSClient creates a client for cfg.Endpoint.
func NewWSClient(cfg config.SpeechConfig) *WSClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.Timeout = timeout
	return &WSClient{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: timeout},
	}
}

// Synthesize implements Synthesizer.
func (c *WSClient) Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	appID, token, err := resolveCredentials(c.cfg)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer;"+token)

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.Endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS websocket: %w", err)
	}
	defer conn.Close()

	log := logger.Component("tts")
	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			log.WithField("logid", logid).Debug("connected")
		}
	}

	payload := c.buildRequest(req, appID, token)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}
	body, err = CompressPayload(body, GzipCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress TTS request: %w", err)
	}
	frame := EncodeMessage(NewFullClientRequest(body, GzipCompression))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	var (
		audio    bytes.Buffer
		duration int64
	)
	for done := false; !done; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read TTS response: %w", err)
		}
		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode TTS frame: %w", err)
		}
		body, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress TTS frame: %w", err)
		}

		switch msg.Header.MessageType {
		case ErrorMessage:
			return nil, serverError(msg.ErrorCode, body)

		case AudioOnlyServerResponse:
			audio.Write(body)
			done = msg.IsLastPacket()

		case FullServerResponse:
			var reply ttsServerMessage
			if len(body) > 0 {
				if err := json.Unmarshal(body, &reply); err != nil {
					return nil, fmt.Errorf("failed to decode TTS response: %w", err)
				}
			}
			if reply.Code != 0 && reply.Code != successCode {
				return nil, fmt.Errorf("TTS server error %d: %s", reply.Code, reply.Message)
			}
			if reply.Data != "" {
				chunk, err := base64.StdEncoding.DecodeString(reply.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode TTS audio: %w", err)
				}
				audio.Write(chunk)
			}
			if reply.Addition.Duration > 0 {
				duration = reply.Addition.Duration
			}
			done = msg.IsLastPacket() || reply.Sequence < 0

		default:
			log.WithField("type", msg.Header.MessageType).Debug("ignoring unexpected frame")
		}
	}

	if audio.Len() == 0 {
		return nil, errors.New("TTS server returned no audio")
	}

	log.WithField("session", req.SessionID).Infof("synthesized %d bytes", audio.Len())
	return &speech.TTSResponse{
		SessionID: req.SessionID,
		AudioData: audio.Bytes(),
		Text:      req.Text,
		Duration:  duration,
		Format:    payload.Audio.Encoding,
		RequestID: payload.Request.ReqID,
		CreatedAt: time.Now(),
	}, nil
}

func (c *WSClient) buildRequest(req *speech.TTSRequest, appID, token string) ttsClientRequest {
	var payload ttsClientRequest
	payload.App.AppID = appID
	payload.App.Token = token
	payload.App.Cluster = c.cfg.Cluster

	payload.User.UID = req.SessionID
	if payload.User.UID == "" {
		payload.User.UID = uuid.NewString()
	}

	payload.Audio.VoiceType = firstNonEmpty(req.Voice, c.cfg.Voice)
	payload.Audio.Encoding = firstNonEmpty(req.Format, "mp3")
	payload.Audio.SpeedRatio = firstPositive(req.Speed, c.cfg.Speed)
	payload.Audio.VolumeRatio = firstPositive(req.Volume, c.cfg.Volume)
	payload.Audio.Language = firstNonEmpty(req.Language, c.cfg.Language)
	if req.Emotion != "" {
		payload.Audio.EnableEmotion = true
		payload.Audio.Emotion = req.Emotion
		payload.Audio.EmotionScale = req.EmotionScale
	}

	payload.Request.ReqID = uuid.NewString()
	payload.Request.Text = req.Text
	payload.Request.Operation = "submit"
	return payload
}

func serverError(code uint32, body []byte) error {
	var reply ttsServerMessage
	if err := json.Unmarshal(body, &reply); err == nil && reply.Message != "" {
		return fmt.Errorf("TTS server error %d: %s", code, reply.Message)
	}
	return fmt.Errorf("TTS server error %d: %s", code, strings.TrimSpace(string(body)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float32) float32 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
