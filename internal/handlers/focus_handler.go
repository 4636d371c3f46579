package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"antigravity/focus/internal/auth"
	"antigravity/focus/internal/services"
	"antigravity/focus/internal/utils"

	"github.com/go-chi/chi/v5"
)

// FocusHandler manages the focus-task endpoints. Every endpoint requires a
// resolved identity in the request context.
type FocusHandler struct {
	Tasks TaskLifecycle
}

func NewFocusHandler(tasks TaskLifecycle) *FocusHandler {
	return &FocusHandler{Tasks: tasks}
}

type startRequest struct {
	TaskName        string `json:"taskName"`
	DurationSeconds int    `json:"durationSeconds"`
	StartTime       string `json:"startTime"`
}

type startResponse struct {
	TaskID        uint   `json:"taskId"`
	Message       string `json:"message"`
	ExpectedEndAt string `json:"expectedEndAt"`
}

type completeResponse struct {
	Message         string `json:"message"`
	CultivationRank string `json:"cultivationRank"`
	TotalExperience int64  `json:"totalExperience"`
	LeveledUp       bool   `json:"leveledUp"`
}

func (h *FocusHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "无效的请求")
		return
	}
	if req.TaskName == "" {
		utils.JSONError(w, http.StatusBadRequest, "任务名称不能为空")
		return
	}

	result, err := h.Tasks.Start(identity.UserID, req.TaskName, req.DurationSeconds, req.StartTime, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrInvalidDuration) {
			utils.JSONError(w, http.StatusBadRequest, "专注时长必须为正数")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "任务创建失败")
		return
	}
	utils.JSON(w, http.StatusOK, startResponse{
		TaskID:        result.Task.ID,
		Message:       result.Message,
		ExpectedEndAt: result.ExpectedEndAt,
	})
}

func (h *FocusHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "无效的任务编号")
		return
	}

	result, err := h.Tasks.Complete(taskID, identity.UserID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			utils.JSONError(w, http.StatusNotFound, "任务不存在")
		case errors.Is(err, services.ErrTaskNotStoppable):
			utils.JSONError(w, http.StatusConflict, "任务状态异常，无法完成")
		default:
			utils.JSONError(w, http.StatusInternalServerError, "任务完成失败")
		}
		return
	}
	utils.JSON(w, http.StatusOK, completeResponse{
		Message:         result.Message,
		CultivationRank: result.CultivationRank,
		TotalExperience: result.TotalExperience,
		LeveledUp:       result.LeveledUp,
	})
}

func (h *FocusHandler) AbandonHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "无效的任务编号")
		return
	}

	// Abandon is best-effort cleanup: a missing or already-terminal task is
	// not a user-facing failure.
	if err := h.Tasks.Abandon(taskID, identity.UserID, time.Now()); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "任务放弃失败")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FocusHandler) ListRunningHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	views, err := h.Tasks.ListRunning(identity.UserID, time.Now())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "任务查询失败")
		return
	}
	utils.JSON(w, http.StatusOK, views)
}

func (h *FocusHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, "无效的数量限制")
			return
		}
		limit = parsed
	}

	views, err := h.Tasks.ListHistory(identity.UserID, limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "历史查询失败")
		return
	}
	utils.JSON(w, http.StatusOK, views)
}

func taskIDParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "taskId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid task id")
	}
	return uint(id), nil
}
