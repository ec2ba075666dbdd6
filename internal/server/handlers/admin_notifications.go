package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/storesignal-io/storesignal/internal/database"
	"github.com/storesignal-io/storesignal/internal/logger"
	"github.com/storesignal-io/storesignal/internal/notify"
)

const (
	defaultNotificationListLimit = 50
	maxNotificationListLimit     = 500
)

// HandleListNotifications godoc
//
//	@Summary	List recently stored notifications
//	@Tags		Admin
//	@Produce	json
//	@Param		limit	query		int	false	"Maximum number of notifications to return (default 50, max 500)"
//	@Success	200		{array}		notify.StoredNotificationResponse
//	@Failure	400		{string}	string	"Invalid limit"
//	@Router		/admin/notifications [get]
func HandleListNotifications(queries *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())

		limit := defaultNotificationListLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		if limit > maxNotificationListLimit {
			limit = maxNotificationListLimit
		}

		// #nosec G115 -- limit is capped at maxNotificationListLimit
		notifications, err := queries.ListRecentNotifications(r.Context(), int32(limit))
		if err != nil {
			reqLogger.Error("failed to list notifications", slog.String("error", err.Error()))
			http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
			return
		}

		response := make([]notify.StoredNotificationResponse, 0, len(notifications))
		for _, n := range notifications {
			response = append(response, notify.StoredNotificationFromModel(n))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			reqLogger.Error("failed to encode response", slog.String("error", err.Error()))
		}
	}
}

// HandleGetNotificationByUUID godoc
//
//	@Summary	Get a stored notification by its notification UUID
//	@Tags		Admin
//	@Produce	json
//	@Param		notificationUUID	path		string	true	"Notification UUID"
//	@Success	200					{object}	notify.StoredNotificationResponse
//	@Failure	400					{string}	string	"Invalid notification UUID"
//	@Failure	404					{string}	string	"Notification not found"
//	@Router		/admin/notifications/{notificationUUID} [get]
func HandleGetNotificationByUUID(queries *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())
		uuidStr := chi.URLParam(r, "notificationUUID")

		notificationUUID, err := uuid.Parse(uuidStr)
		if err != nil {
			http.Error(w, "Invalid notification UUID", http.StatusBadRequest)
			return
		}

		notification, err := queries.GetNotificationByUUID(r.Context(), notificationUUID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "Notification not found", http.StatusNotFound)
				return
			}
			reqLogger.Error("failed to get notification", slog.String("error", err.Error()))
			http.Error(w, "Failed to get notification", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(notify.StoredNotificationFromModel(notification)); err != nil {
			reqLogger.Error("failed to encode response", slog.String("error", err.Error()))
		}
	}
}
