package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/entities"
	"github.com/satriahrh/voxtag/usecase"
)

const (
	audioContentType = "audio/wav"
	apiKeyHeader     = "X-Transcription-Key"
	audioRoute       = "/api/v1/audio/"
)

func (h *handler) createSession(c echo.Context) error {
	s := h.Sessions.Create()

	token, expiresAt, err := h.Issuer.GenerateSessionToken(s.ID)
	if err != nil {
		h.Logger.Error("Failed to generate session token", zap.String("sessionID", s.ID), zap.Error(err))
		_ = h.Sessions.Delete(c.Request().Context(), s.ID)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	return c.JSON(http.StatusCreated, SessionResponse{
		SessionID: s.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func (h *handler) deleteSession(c echo.Context) error {
	_ = h.Sessions.Delete(c.Request().Context(), sessionID(c))
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) listTags(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tags":    entities.TagOptions(),
		"default": entities.DefaultTag,
	})
}

func (h *handler) saveRecording(c echo.Context) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "missing_audio", "No audio file provided")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "invalid_audio", "Failed to read audio file")
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return badRequest(c, "invalid_audio", "Failed to read audio file")
	}

	tag, err := entities.ParseTag(c.FormValue("tag"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}

	rec, err := h.save(c, raw, tag)
	if err != nil {
		return writeError(c, h.Logger, err)
	}

	return c.JSON(http.StatusCreated, SaveRecordingResponse{
		Success:       true,
		ID:            rec.ID,
		Filename:      rec.Filename,
		Transcription: rec.Transcript,
		Duration:      rec.Duration,
		Tag:           rec.Tag,
	})
}

func (h *handler) save(c echo.Context, raw []byte, tag entities.Tag) (*entities.Recording, error) {
	apiKey := c.Request().Header.Get(apiKeyHeader)
	if apiKey == "" {
		apiKey = h.APIKey
	}

	return h.Recordings.Save(c.Request().Context(), usecase.SaveRequest{
		SessionID: sessionID(c),
		Registry:  registry(c),
		Audio:     raw,
		Tag:       tag,
		APIKey:    apiKey,
	})
}

func (h *handler) listRecordings(c echo.Context) error {
	reg := registry(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"recordings": reg.List(),
		"selected":   reg.SelectedIDs(),
	})
}

func (h *handler) getRecording(c echo.Context) error {
	rec, err := registry(c).Get(c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *handler) getRecordingAudio(c echo.Context) error {
	data, err := registry(c).Audio(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.Blob(http.StatusOK, audioContentType, data)
}

func (h *handler) updateTag(c echo.Context) error {
	var req UpdateTagRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Invalid request format")
	}

	id := c.Param("id")
	if err := registry(c).SetTag(id, entities.Tag(req.Tag)); err != nil {
		return writeError(c, h.Logger, err)
	}
	return h.respondRecording(c, id)
}

func (h *handler) updateSelected(c echo.Context) error {
	var req UpdateSelectedRequest
	if err := c.Bind(&req); err != nil || req.Selected == nil {
		return badRequest(c, "invalid_request", "selected must be a boolean")
	}

	id := c.Param("id")
	if err := registry(c).SetSelected(id, *req.Selected); err != nil {
		return writeError(c, h.Logger, err)
	}
	return h.respondRecording(c, id)
}

func (h *handler) respondRecording(c echo.Context, id string) error {
	rec, err := registry(c).Get(id)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *handler) deleteRecording(c echo.Context) error {
	if err := registry(c).Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) combine(c echo.Context) error {
	var req CombineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Invalid request format")
	}

	reg := registry(c)
	ids := req.RecordingIDs
	if len(ids) == 0 && req.UseSelection {
		ids = reg.SelectedIDs()
	}

	combined, err := h.Combiner.Combine(c.Request().Context(), reg, ids)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	h.publishCombined(c, combined)

	return c.JSON(http.StatusOK, CombineResponse{
		Success:    true,
		ID:         combined.ID,
		Filename:   combined.Filename,
		AudioURL:   audioRoute + combined.Filename,
		SourceIDs:  combined.SourceIDs,
		SkippedIDs: nonNil(combined.SkippedIDs),
		Duration:   combined.Duration,
	})
}

func (h *handler) getCombinedAudio(c echo.Context) error {
	data, err := h.Combiner.Get(c.Request().Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Audio file not found",
			})
		}
		return writeError(c, h.Logger, err)
	}
	return c.Blob(http.StatusOK, audioContentType, data)
}

func (h *handler) webhook(c echo.Context) error {
	var req WebhookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "No data received")
	}

	switch req.Type {
	case "recording":
		raw, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil || len(raw) == 0 {
			return badRequest(c, "invalid_audio", "audio must be non-empty base64")
		}
		tag, err := entities.ParseTag(req.Tag)
		if err != nil {
			return writeError(c, h.Logger, err)
		}

		rec, err := h.save(c, raw, tag)
		if err != nil {
			return writeError(c, h.Logger, err)
		}
		return c.JSON(http.StatusOK, WebhookRecordingResponse{
			Status:        "success",
			ID:            rec.ID,
			Filename:      rec.Filename,
			Transcription: rec.Transcript,
		})

	case "combine_recordings":
		combined, err := h.webhookCombine(c.Request().Context(), registry(c), req)
		if err != nil {
			return writeError(c, h.Logger, err)
		}
		h.publishCombined(c, combined)

		return c.JSON(http.StatusOK, WebhookCombinedResponse{
			Type:       "combined_audio",
			Audio:      base64.StdEncoding.EncodeToString(combined.Data),
			Filename:   combined.Filename,
			SkippedIDs: nonNil(combined.SkippedIDs),
		})

	default:
		return badRequest(c, "invalid_type", "Invalid request type")
	}
}

// webhookCombine combines by id when ids are given, otherwise inline clips
func (h *handler) webhookCombine(ctx context.Context, reg *usecase.Registry, req WebhookRequest) (*entities.CombinedRecording, error) {
	if len(req.RecordingIDs) > 0 || len(req.Recordings) == 0 {
		return h.Combiner.Combine(ctx, reg, req.RecordingIDs)
	}

	segments := make([][]byte, len(req.Recordings))
	for i, segment := range req.Recordings {
		raw, err := base64.StdEncoding.DecodeString(segment.Audio)
		if err != nil {
			h.Logger.Warn("Inline segment is not base64", zap.Int("index", i), zap.Error(err))
			continue
		}
		segments[i] = raw
	}
	combined, err := h.Combiner.CombineData(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("inline combine: %w", err)
	}
	return combined, nil
}

func (h *handler) publishCombined(c echo.Context, combined *entities.CombinedRecording) {
	h.Recordings.Publish(sessionID(c), usecase.Event{
		Type:     usecase.EventRecordingsCombined,
		Filename: combined.Filename,
	})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
