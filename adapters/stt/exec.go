package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/repositories"
)

// ExecSpeechToText runs a local recognizer command. The command receives
// --audio <path> (and --language when set) and must print {"text": ...} as JSON.
type ExecSpeechToText struct {
	cmd      []string
	language string
	logger   *zap.Logger
}

type execResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewExecSpeechToText parses command with shell quoting rules
func NewExecSpeechToText(command, language string, logger *zap.Logger) (*ExecSpeechToText, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse stt command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("stt command is empty")
	}
	return &ExecSpeechToText{cmd: args, language: language, logger: logger}, nil
}

// Transcribe runs the command. The API key is exported as VOXTAG_STT_API_KEY.
func (e *ExecSpeechToText) Transcribe(ctx context.Context, audioPath string, apiKey string) (repositories.TranscriptResult, error) {
	args := append([]string{}, e.cmd[1:]...)
	args = append(args, "--audio", audioPath)
	if e.language != "" {
		args = append(args, "--language", e.language)
	}

	command := exec.CommandContext(ctx, e.cmd[0], args...)
	command.Env = append(command.Environ(), "VOXTAG_STT_API_KEY="+apiKey)

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("stt command failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	var resp execResult
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("decode stt response: %w", err)
	}

	e.logger.Debug("Exec recognizer finished", zap.String("command", e.cmd[0]), zap.Int("chars", len(resp.Text)))
	return repositories.TranscriptResult{Text: resp.Text, Confidence: resp.Confidence}, nil
}

// Ensure ExecSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*ExecSpeechToText)(nil)
